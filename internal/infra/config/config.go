// internal/infra/config/config.go
package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds the environment configuration for the whole service.
type Config struct {
	Port          string
	AllowedOrigin string

	FirestoreProjectID       string
	FirestoreCredentialsFile string
	FirebaseProjectID        string

	// Postgres (shipping zone catalog)
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Surrounding marketplace services
	CartBackendURL string
	SubmitBaseURL  string

	// Receipt attachments
	GCSBucket string

	// Verification mail
	SendGridAPIKey         string
	SendGridAPIKeySecretID string
	SendGridFrom           string
	ShopName               string

	// Store behavior
	Currency               string
	Multivendor            bool
	ShippingResponsibility string
	Countries              []string

	GuestBehavior            string
	GuestRequireVerification bool
	GuestRequireTerms        bool

	RecaptchaEnabled bool
	RecaptchaSiteKey string
}

// Load reads the environment and returns the Config.
func Load() *Config {
	defaultProject := getenvDefault("GCP_PROJECT_ID", "")

	return &Config{
		Port:          getenvDefault("PORT", "8080"),
		AllowedOrigin: os.Getenv("ALLOWED_ORIGIN"),

		FirestoreProjectID:       getenvDefault("FIRESTORE_PROJECT_ID", defaultProject),
		FirestoreCredentialsFile: os.Getenv("FIRESTORE_CREDENTIALS_FILE"),
		FirebaseProjectID:        getenvDefault("FIREBASE_PROJECT_ID", defaultProject),

		DBHost:     getenvDefault("DB_HOST", "localhost"),
		DBPort:     getenvDefault("DB_PORT", "5432"),
		DBUser:     getenvDefault("DB_USER", "postgres"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getenvDefault("DB_NAME", "marketcart"),

		CartBackendURL: os.Getenv("CART_BACKEND_URL"),
		SubmitBaseURL:  os.Getenv("SUBMIT_BASE_URL"),

		GCSBucket: os.Getenv("GCS_BUCKET"),

		SendGridAPIKey:         os.Getenv("SENDGRID_API_KEY"),
		SendGridAPIKeySecretID: os.Getenv("SENDGRID_API_KEY_SECRET_ID"),
		SendGridFrom:           os.Getenv("SENDGRID_FROM"),
		ShopName:               getenvDefault("SHOP_NAME", "Marketcart"),

		Currency:               getenvDefault("CURRENCY", "USD"),
		Multivendor:            getenvBool("MULTIVENDOR", false),
		ShippingResponsibility: getenvDefault("SHIPPING_RESPONSIBILITY", "platform"),
		Countries:              splitList(os.Getenv("SHIP_COUNTRIES")),

		GuestBehavior:            getenvDefault("GUEST_BEHAVIOR", "proceed_with_email"),
		GuestRequireVerification: getenvBool("GUEST_REQUIRE_VERIFICATION", true),
		GuestRequireTerms:        getenvBool("GUEST_REQUIRE_TERMS", false),

		RecaptchaEnabled: getenvBool("RECAPTCHA_ENABLED", false),
		RecaptchaSiteKey: os.Getenv("RECAPTCHA_SITE_KEY"),
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
