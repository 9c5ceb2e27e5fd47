// internal/domain/checkout/state.go
package checkout

import (
	"errors"
	"strings"
	"time"

	"marketcart/internal/domain/cart"
)

var (
	ErrInvalidSession = errors.New("checkout: invalid session")
)

// Status is the checkout session lifecycle flag.
type Status string

const (
	StatusPendingSetup Status = "pending_setup"
	StatusProcessing   Status = "processing"
	StatusCompleted    Status = "completed"
)

// Selection is a chosen (zone, rate) pair.
type Selection struct {
	ZoneKey string `json:"zone" firestore:"zone"`
	RateKey string `json:"rate" firestore:"rate"`
}

func (s *Selection) chosen() bool {
	return s != nil && strings.TrimSpace(s.ZoneKey) != "" && strings.TrimSpace(s.RateKey) != ""
}

// ShippingState is the mutable per-session shipping selection.
//
// Platform holds the single selection under platform-operated shipping;
// Vendors holds one selection per vendor bucket key under vendor-operated
// shipping (nil entry = not chosen yet).
//
// Country changes go through SetCountry, which clears every selection:
// a stale zone/rate must never survive a destination change.
type ShippingState struct {
	Country   string `json:"country" firestore:"country"`
	State     string `json:"state" firestore:"state"`
	Address   string `json:"address" firestore:"address"`
	Zip       string `json:"zip" firestore:"zip"`
	FirstName string `json:"first_name" firestore:"firstName"`
	LastName  string `json:"last_name" firestore:"lastName"`

	Platform *Selection            `json:"platform,omitempty" firestore:"platform"`
	Vendors  map[string]*Selection `json:"vendors,omitempty" firestore:"vendors"`

	Status Status `json:"status" firestore:"status"`
}

func NewShippingState() *ShippingState {
	return &ShippingState{Status: StatusPendingSetup}
}

// SetCountry updates the destination country. Any change drops the
// platform selection and all vendor selections together.
func (s *ShippingState) SetCountry(country string) {
	c := strings.TrimSpace(country)
	if c == s.Country {
		return
	}
	s.Country = c
	s.Platform = nil
	s.Vendors = nil
}

// SelectPlatform records the platform-mode choice.
func (s *ShippingState) SelectPlatform(zoneKey, rateKey string) {
	s.Platform = &Selection{ZoneKey: zoneKey, RateKey: rateKey}
}

// SelectVendor records one vendor bucket's choice.
func (s *ShippingState) SelectVendor(bucketKey, zoneKey, rateKey string) {
	if s.Vendors == nil {
		s.Vendors = make(map[string]*Selection)
	}
	s.Vendors[bucketKey] = &Selection{ZoneKey: zoneKey, RateKey: rateKey}
}

// VendorSelection returns the chosen pair for one bucket, or nil.
func (s *ShippingState) VendorSelection(bucketKey string) *Selection {
	if s == nil || s.Vendors == nil {
		return nil
	}
	return s.Vendors[bucketKey]
}

// GuestBehavior is the shop's policy for unauthenticated checkout.
type GuestBehavior string

const (
	// GuestProceedWithEmail lets guests check out after capturing an email
	// (and, per policy, a verification code and terms acceptance).
	GuestProceedWithEmail GuestBehavior = "proceed_with_email"
	// GuestLoginRequired blocks checkout until the visitor signs in.
	GuestLoginRequired GuestBehavior = "login_required"
)

// GuestPolicy is the configured guest-checkout policy.
type GuestPolicy struct {
	Behavior            GuestBehavior `json:"behavior"`
	RequireVerification bool          `json:"require_verification"`
	RequireTerms        bool          `json:"require_terms"`
}

// QuickRegisterState is the guest identity-capture state.
// Registered is a one-way latch: it is only ever set by Register.
type QuickRegisterState struct {
	Email       string `json:"email" firestore:"email"`
	SendingCode bool   `json:"sending_code" firestore:"sendingCode"`
	SentCode    bool   `json:"sent_code" firestore:"sentCode"`
	Code        string `json:"code" firestore:"code"`
	Registered  bool   `json:"registered" firestore:"registered"`
	TermsAgreed bool   `json:"terms_agreed" firestore:"termsAgreed"`

	// IssuedCode is the server-side copy of the verification code last
	// mailed out. Never serialized to clients.
	IssuedCode string `json:"-" firestore:"issuedCode"`
}

// MarkCodeSent records a successful verification-code send.
func (q *QuickRegisterState) MarkCodeSent() {
	q.SendingCode = false
	q.SentCode = true
}

// Register latches the registered flag after a successful registration
// call. There is no way back to unregistered on the same session.
func (q *QuickRegisterState) Register() {
	q.Registered = true
}

// Verified reports whether the guest identity is acceptable: already
// registered, or a code was sent and the guest typed one in.
func (q *QuickRegisterState) Verified() bool {
	if q == nil {
		return false
	}
	if q.Registered {
		return true
	}
	return q.SentCode && strings.TrimSpace(q.Code) != ""
}

// Session is the persisted checkout session document: shipping state,
// guest registration state, and the optional direct-cart payload.
type Session struct {
	ID            string              `json:"id" firestore:"id"`
	Shipping      *ShippingState      `json:"shipping" firestore:"shipping"`
	QuickRegister *QuickRegisterState `json:"quick_register" firestore:"quickRegister"`

	// Direct-cart checkout (cart bypassed, driven by a URL parameter):
	// the referenced item key plus the cached item payload.
	DirectItemKey string     `json:"direct_item_key,omitempty" firestore:"directItemKey"`
	DirectItem    *cart.Item `json:"direct_item,omitempty" firestore:"directItem"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
	ExpiresAt time.Time `json:"expires_at" firestore:"expiresAt"`
}

// DefaultSessionTTL is the inactivity window after which a session doc
// becomes eligible for auto deletion (Firestore TTL on expiresAt).
const DefaultSessionTTL = 48 * time.Hour

// NewSession creates a session doc keyed by id.
func NewSession(id string, now time.Time) (*Session, error) {
	sid := strings.TrimSpace(id)
	if sid == "" {
		return nil, ErrInvalidSession
	}
	return &Session{
		ID:            sid,
		Shipping:      NewShippingState(),
		QuickRegister: &QuickRegisterState{},
		CreatedAt:     now,
		UpdatedAt:     now,
		ExpiresAt:     now.Add(DefaultSessionTTL),
	}, nil
}

// Touch refreshes UpdatedAt/ExpiresAt on mutation.
func (s *Session) Touch(now time.Time) {
	s.UpdatedAt = now
	s.ExpiresAt = now.Add(DefaultSessionTTL)
}
