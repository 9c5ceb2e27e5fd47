// internal/domain/checkout/repository_port.go
package checkout

import (
	"context"

	"marketcart/internal/domain/shipping"
)

// Repository is the persistence port for checkout sessions.
//
// Storage recommendation (Firestore):
// - collection: checkout_sessions
// - docId: session id
// - fields: shipping(map), quickRegister(map), directItemKey,
//   createdAt, updatedAt, expiresAt
//
// TTL:
// - Configure Firestore TTL on "expiresAt"; Session.Touch refreshes it
//   on each mutation.
type Repository interface {
	// GetByID returns (nil, nil) when the session does not exist.
	GetByID(ctx context.Context, id string) (*Session, error)

	// Upsert saves the session (create or update).
	Upsert(ctx context.Context, s *Session) error

	// DeleteByID removes the session (e.g. after submission).
	DeleteByID(ctx context.Context, id string) error
}

// StoreConfig is the per-shop checkout configuration snapshot fetched
// once per session by the storefront.
type StoreConfig struct {
	Currency         string                  `json:"currency"`
	Multivendor      bool                    `json:"multivendor"`
	Responsibility   shipping.Responsibility `json:"-"`
	GuestPolicy      GuestPolicy             `json:"guest_policy"`
	RecaptchaEnabled bool                    `json:"recaptcha_enabled"`
	RecaptchaSiteKey string                  `json:"recaptcha_site_key,omitempty"`
	Countries        []string                `json:"countries,omitempty"`
}
