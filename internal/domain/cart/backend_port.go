// internal/domain/cart/backend_port.go
package cart

import "context"

// SessionRef identifies whose cart a backend call is about.
// Authenticated sessions carry UserID; guest sessions carry GuestID.
type SessionRef struct {
	UserID  string
	GuestID string
}

// Guest reports whether the session has no authenticated user.
func (s SessionRef) Guest() bool { return s.UserID == "" }

// MutationResult is the backend's answer to a mutation request.
// Success=false with a Message is a business rejection (rollback trigger),
// not a transport failure.
type MutationResult struct {
	Success bool   `json:"success"`
	Item    *Item  `json:"item,omitempty"`
	Message string `json:"message,omitempty"`
}

// Backend is the remote cart collaborator: the system of record the
// coordinator confirms optimistic mutations against.
//
// Separate server-side cart stores exist for authenticated and guest
// sessions; implementations route on SessionRef. The direct-cart variant
// (single-item checkout) never reaches this port.
type Backend interface {
	// FetchItems returns the item map for the session. An empty map is a
	// valid result (empty cart), distinct from a transport error.
	FetchItems(ctx context.Context, sess SessionRef) (map[string]Item, error)

	// UpdateQuantity asks the backend to set the quantity of one line and
	// returns the server-confirmed item on success.
	UpdateQuantity(ctx context.Context, sess SessionRef, key string, qty int) (MutationResult, error)

	// Remove asks the backend to delete one line.
	Remove(ctx context.Context, sess SessionRef, key string) (MutationResult, error)
}
