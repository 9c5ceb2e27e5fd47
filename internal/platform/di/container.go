// internal/platform/di/container.go
package di

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	httpin "marketcart/internal/adapters/in/http"
	dbadapter "marketcart/internal/adapters/out/db"
	fsadapter "marketcart/internal/adapters/out/firestore"
	gcsadapter "marketcart/internal/adapters/out/gcs"
	httpout "marketcart/internal/adapters/out/http"
	mailadapter "marketcart/internal/adapters/out/mail"
	usecase "marketcart/internal/application/usecase"
	chkdom "marketcart/internal/domain/checkout"
	shipdom "marketcart/internal/domain/shipping"
	appcfg "marketcart/internal/infra/config"
	"marketcart/internal/infra/database"
	firestoreinfra "marketcart/internal/infra/firestore"
	"marketcart/internal/infra/secrets"
)

// Container is the bundle of runtime dependencies handed to main.go.
// It owns the external clients and closes them on shutdown.
//
// Strictness:
//   - Firestore and Postgres are required; init fails without them.
//   - GCS, Firebase Auth, Secret Manager, and SendGrid are best-effort:
//     their features degrade (attachments off, everyone a guest, no
//     verification mail) rather than blocking boot.
type Container struct {
	Config *appcfg.Config
	Router http.Handler

	firestore *firestoreinfra.ClientWrapper
	db        *database.DB
	gcs       *storage.Client
	secrets   *secrets.ProviderSM
}

// NewContainer wires the whole service.
func NewContainer(ctx context.Context) (*Container, error) {
	cfg := appcfg.Load()

	if strings.TrimSpace(cfg.FirestoreProjectID) == "" {
		return nil, errors.New("di: FIRESTORE_PROJECT_ID (or GCP_PROJECT_ID) is required")
	}

	c := &Container{Config: cfg}

	// ------------------------------------------------------------
	// 1. External clients
	// ------------------------------------------------------------

	fs, err := firestoreinfra.NewClient(ctx, cfg.FirestoreProjectID, cfg.FirestoreCredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("di: firestore: %w", err)
	}
	c.firestore = fs

	db, err := database.NewConnection(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)
	if err != nil {
		_ = fs.Close()
		return nil, fmt.Errorf("di: postgres: %w", err)
	}
	c.db = db

	var gcsClient *storage.Client
	if strings.TrimSpace(cfg.GCSBucket) != "" {
		gcsClient, err = newStorageClient(ctx, cfg.FirestoreCredentialsFile)
		if err != nil {
			log.Printf("[di] WARN: storage client init failed, attachments disabled: %v", err)
			gcsClient = nil
		}
	} else {
		log.Printf("[di] GCS_BUCKET empty, attachments disabled")
	}
	c.gcs = gcsClient

	firebaseAuth := newFirebaseAuth(ctx, cfg)

	// ------------------------------------------------------------
	// 2. Outbound adapters
	// ------------------------------------------------------------

	sessionRepo := fsadapter.NewCheckoutSessionRepositoryFS(fs.Client)
	zoneRepo := dbadapter.NewShippingZoneRepositoryPG(db.Client)

	cartBackend := httpout.NewCartBackendHTTP(cfg.CartBackendURL)
	submitter := httpout.NewCheckoutSubmitterHTTP(cfg.SubmitBaseURL)
	registrar := httpout.NewGuestRegistrarHTTP(cfg.CartBackendURL)

	mailer := c.buildMailer(ctx, cfg)

	// ------------------------------------------------------------
	// 3. Usecases
	// ------------------------------------------------------------

	storeCfg := storeConfigFrom(cfg)

	shippingUC := usecase.NewShippingUsecase(zoneRepo)
	checkoutUC := usecase.NewCheckoutUsecase(sessionRepo, submitter, storeCfg)
	quickRegisterUC := usecase.NewQuickRegisterUsecase(sessionRepo, mailer, registrar, storeCfg.GuestPolicy)

	var attachmentUC *usecase.AttachmentUsecase
	if gcsClient != nil {
		store := gcsadapter.NewReceiptAttachmentStoreGCS(gcsClient, cfg.GCSBucket, gcsadapter.NewUploadCache())
		attachmentUC = usecase.NewAttachmentUsecase(store)
	}

	// ------------------------------------------------------------
	// 4. Router
	// ------------------------------------------------------------

	c.Router = httpin.NewRouter(httpin.RouterDeps{
		CheckoutUC:      checkoutUC,
		ShippingUC:      shippingUC,
		QuickRegisterUC: quickRegisterUC,
		AttachmentUC:    attachmentUC,
		CartBackend:     cartBackend,
		FirebaseAuth:    firebaseAuth,
		AllowedOrigin:   cfg.AllowedOrigin,
	})

	return c, nil
}

// Close releases the owned clients. Safe to call on a partly built
// container.
func (c *Container) Close() {
	if c == nil {
		return
	}
	if c.secrets != nil {
		_ = c.secrets.Close()
	}
	if c.gcs != nil {
		_ = c.gcs.Close()
	}
	if c.db != nil {
		_ = c.db.Close()
	}
	if c.firestore != nil {
		_ = c.firestore.Close()
	}
}

// ------------------------------------------------------------
// wiring helpers
// ------------------------------------------------------------

func storeConfigFrom(cfg *appcfg.Config) chkdom.StoreConfig {
	return chkdom.StoreConfig{
		Currency:       cfg.Currency,
		Multivendor:    cfg.Multivendor,
		Responsibility: shipdom.ParseResponsibility(cfg.ShippingResponsibility),
		GuestPolicy: chkdom.GuestPolicy{
			Behavior:            chkdom.GuestBehavior(cfg.GuestBehavior),
			RequireVerification: cfg.GuestRequireVerification,
			RequireTerms:        cfg.GuestRequireTerms,
		},
		RecaptchaEnabled: cfg.RecaptchaEnabled,
		RecaptchaSiteKey: cfg.RecaptchaSiteKey,
		Countries:        cfg.Countries,
	}
}

// buildMailer resolves the SendGrid key (env first, Secret Manager as
// fallback) and returns the verification mailer, or nil when mail is not
// configured.
func (c *Container) buildMailer(ctx context.Context, cfg *appcfg.Config) usecase.VerificationMailerPort {
	apiKey := strings.TrimSpace(cfg.SendGridAPIKey)

	if apiKey == "" && strings.TrimSpace(cfg.SendGridAPIKeySecretID) != "" {
		sm, err := secrets.NewProviderSM(ctx, cfg.FirestoreProjectID)
		if err != nil {
			log.Printf("[di] WARN: secret manager init failed: %v", err)
		} else {
			c.secrets = sm
			key, err := sm.Access(ctx, cfg.SendGridAPIKeySecretID)
			if err != nil {
				log.Printf("[di] WARN: sendgrid key fetch failed: %v", err)
			} else {
				apiKey = key
			}
		}
	}

	if apiKey == "" || strings.TrimSpace(cfg.SendGridFrom) == "" {
		log.Printf("[di] verification mail not configured (SENDGRID_API_KEY / SENDGRID_FROM)")
		return nil
	}

	client := mailadapter.NewSendGridClient(apiKey)
	return mailadapter.NewVerificationMailer(client, cfg.SendGridFrom, cfg.ShopName)
}

func newStorageClient(ctx context.Context, credentialsFile string) (*storage.Client, error) {
	if credentialsFile != "" {
		return storage.NewClient(ctx, option.WithCredentialsFile(credentialsFile))
	}
	return storage.NewClient(ctx)
}

// newFirebaseAuth is best-effort: without it every shopper is a guest.
func newFirebaseAuth(ctx context.Context, cfg *appcfg.Config) *firebaseauth.Client {
	fbCfg := &firebase.Config{ProjectID: cfg.FirebaseProjectID}

	var (
		app *firebase.App
		err error
	)
	if cfg.FirestoreCredentialsFile != "" {
		app, err = firebase.NewApp(ctx, fbCfg, option.WithCredentialsFile(cfg.FirestoreCredentialsFile))
	} else {
		app, err = firebase.NewApp(ctx, fbCfg)
	}
	if err != nil {
		log.Printf("[di] WARN: firebase app init failed: %v", err)
		return nil
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		log.Printf("[di] WARN: firebase auth init failed: %v", err)
		return nil
	}
	log.Printf("[di] firebase auth initialized")
	return authClient
}
