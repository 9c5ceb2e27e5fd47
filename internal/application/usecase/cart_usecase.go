// internal/application/usecase/cart_usecase.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	cartdom "marketcart/internal/domain/cart"
)

var (
	ErrCartInvalidArgument = errors.New("cart_usecase: invalid argument")
	ErrCartItemNotFound    = errors.New("cart_usecase: item not found")
	ErrCartNotLoaded       = errors.New("cart_usecase: items not loaded")
)

// MutationRejectedError is a business rejection from the cart backend
// ({success:false, message}). It triggers a rollback and its message is
// surfaced to the user; it is not a transport failure.
type MutationRejectedError struct {
	Message string
}

func (e *MutationRejectedError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return "cart_usecase: mutation rejected"
	}
	return "cart_usecase: mutation rejected: " + e.Message
}

// CartUsecase owns the authoritative item map for one checkout session
// and coordinates optimistic mutations against the remote cart backend.
//
// Mutations write locally first (marking the target line disabled), then
// confirm with the backend; on transport failure or business rejection the
// exact pre-mutation item value is restored.
//
// Two concurrent mutations on the same key are not serialized: the later
// response wins. Known gap carried over from the reference behavior; see
// DESIGN.md.
type CartUsecase struct {
	mu    sync.Mutex
	items map[string]cartdom.Item

	backend cartdom.Backend
	sess    cartdom.SessionRef

	// direct-cart mode: single-item checkout sourced from a URL
	// parameter plus a locally cached payload; mutations never reach
	// the backend.
	direct bool
	loaded bool
}

// NewCartUsecase builds a coordinator for a persisted (authenticated or
// guest) cart.
func NewCartUsecase(backend cartdom.Backend, sess cartdom.SessionRef) *CartUsecase {
	return &CartUsecase{
		backend: backend,
		sess:    sess,
		items:   map[string]cartdom.Item{},
	}
}

// NewDirectCartUsecase builds a coordinator for direct-cart checkout:
// the item map holds exactly the cached item and no backend is involved.
func NewDirectCartUsecase(item cartdom.Item) *CartUsecase {
	return &CartUsecase{
		direct: true,
		loaded: true,
		items:  map[string]cartdom.Item{item.Key: item},
	}
}

// Load fetches the item map from the backend. A transport failure leaves
// the map empty (the caller renders an empty cart plus an error banner,
// never a crash). Direct-cart coordinators are pre-loaded.
func (uc *CartUsecase) Load(ctx context.Context) error {
	if uc.direct {
		return nil
	}
	if uc.backend == nil {
		return ErrCartInvalidArgument
	}

	items, err := uc.backend.FetchItems(ctx, uc.sess)
	if err != nil {
		log.Printf("[cart_usecase] fetch items failed: %v (falling back to empty cart)", err)
		uc.mu.Lock()
		uc.items = map[string]cartdom.Item{}
		uc.loaded = true
		uc.mu.Unlock()
		return fmt.Errorf("cart_usecase: fetch items: %w", err)
	}
	if items == nil {
		items = map[string]cartdom.Item{}
	}

	uc.mu.Lock()
	uc.items = items
	uc.loaded = true
	uc.mu.Unlock()
	return nil
}

// Items returns a snapshot of the current item map. Callers must treat it
// as read-only derived data; the coordinator is the single owner.
func (uc *CartUsecase) Items() map[string]cartdom.Item {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return cartdom.CloneItems(uc.items)
}

// Vendors recomputes the vendor buckets from the current item map.
func (uc *CartUsecase) Vendors() map[string]*cartdom.VendorBucket {
	return cartdom.GroupByVendor(uc.Items())
}

// Direct reports whether this coordinator runs in direct-cart mode.
func (uc *CartUsecase) Direct() bool { return uc.direct }

// UpdateQuantity optimistically sets the quantity of one line, confirms
// with the backend, and returns the confirmed item. On failure the exact
// pre-mutation item is restored and the error carries the reason.
func (uc *CartUsecase) UpdateQuantity(ctx context.Context, key string, qty int) (*cartdom.Item, error) {
	k := strings.TrimSpace(key)
	if k == "" || qty < 0 {
		return nil, ErrCartInvalidArgument
	}

	uc.mu.Lock()
	if !uc.loaded {
		uc.mu.Unlock()
		return nil, ErrCartNotLoaded
	}
	prev, ok := uc.items[k]
	if !ok {
		uc.mu.Unlock()
		return nil, ErrCartItemNotFound
	}

	optimistic := withQuantity(prev, qty)
	optimistic.Disabled = true
	uc.items[k] = optimistic
	uc.mu.Unlock()

	if uc.direct {
		// No backend in direct-cart mode: the local write is the truth.
		confirmed := optimistic
		confirmed.Disabled = false
		uc.mu.Lock()
		uc.items[k] = confirmed
		uc.mu.Unlock()
		return &confirmed, nil
	}

	res, err := uc.backend.UpdateQuantity(ctx, uc.sess, k, qty)
	if err != nil {
		uc.rollback(k, prev)
		return nil, fmt.Errorf("cart_usecase: update quantity: %w", err)
	}
	if !res.Success {
		uc.rollback(k, prev)
		return nil, &MutationRejectedError{Message: res.Message}
	}

	confirmed := optimistic
	if res.Item != nil {
		confirmed = *res.Item
		confirmed.Key = k
	}
	confirmed.Disabled = false

	uc.mu.Lock()
	uc.items[k] = confirmed
	uc.mu.Unlock()
	return &confirmed, nil
}

// Remove optimistically deletes one line and confirms with the backend.
// In direct-cart mode it clears local state without any network call.
func (uc *CartUsecase) Remove(ctx context.Context, key string) error {
	k := strings.TrimSpace(key)
	if k == "" {
		return ErrCartInvalidArgument
	}

	uc.mu.Lock()
	if !uc.loaded {
		uc.mu.Unlock()
		return ErrCartNotLoaded
	}

	if uc.direct {
		uc.items = map[string]cartdom.Item{}
		uc.mu.Unlock()
		return nil
	}

	prev, ok := uc.items[k]
	if !ok {
		uc.mu.Unlock()
		return ErrCartItemNotFound
	}
	delete(uc.items, k)
	uc.mu.Unlock()

	res, err := uc.backend.Remove(ctx, uc.sess, k)
	if err != nil {
		uc.restore(k, prev)
		return fmt.Errorf("cart_usecase: remove: %w", err)
	}
	if !res.Success {
		uc.restore(k, prev)
		return &MutationRejectedError{Message: res.Message}
	}
	return nil
}

func (uc *CartUsecase) rollback(key string, prev cartdom.Item) {
	uc.mu.Lock()
	uc.items[key] = prev
	uc.mu.Unlock()
}

func (uc *CartUsecase) restore(key string, prev cartdom.Item) {
	uc.mu.Lock()
	if _, exists := uc.items[key]; !exists {
		uc.items[key] = prev
	}
	uc.mu.Unlock()
}

// withQuantity writes qty into the slot the item's product mode reads.
func withQuantity(it cartdom.Item, qty int) cartdom.Item {
	if it.ProductMode == cartdom.ProductModeRegular {
		it.Stock.Quantity = qty
	} else {
		it.Variations.Quantity = qty
	}
	return it
}
