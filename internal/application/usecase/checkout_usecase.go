// internal/application/usecase/checkout_usecase.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	cartdom "marketcart/internal/domain/cart"
	chkdom "marketcart/internal/domain/checkout"
)

var ErrCheckoutInvalidArgument = errors.New("checkout_usecase: invalid argument")

// NotReadyError means the gate blocked submission; Reason names the
// specific unmet condition so the caller can message it.
type NotReadyError struct {
	Reason chkdom.BlockReason
}

func (e *NotReadyError) Error() string {
	return "checkout_usecase: not ready: " + string(e.Reason)
}

// SubmissionPort hands a ready checkout to the surrounding order system
// and returns the redirect URL for the shopper.
type SubmissionPort interface {
	Submit(ctx context.Context, sess *chkdom.Session, items map[string]cartdom.Item) (string, error)
}

// DestinationUpdate is a shipping-address change request.
type DestinationUpdate struct {
	Country   string `json:"country"`
	State     string `json:"state"`
	Address   string `json:"address"`
	Zip       string `json:"zip"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// CheckoutUsecase owns the checkout session lifecycle: destination and
// rate selection updates, readiness evaluation, and submission.
type CheckoutUsecase struct {
	sessions  chkdom.Repository
	submitter SubmissionPort
	cfg       chkdom.StoreConfig
	clock     Clock
}

func NewCheckoutUsecase(sessions chkdom.Repository, submitter SubmissionPort, cfg chkdom.StoreConfig) *CheckoutUsecase {
	return &CheckoutUsecase{
		sessions:  sessions,
		submitter: submitter,
		cfg:       cfg,
		clock:     systemClock{},
	}
}

// NewCheckoutUsecaseWithClock is useful for tests.
func NewCheckoutUsecaseWithClock(sessions chkdom.Repository, submitter SubmissionPort, cfg chkdom.StoreConfig, clock Clock) *CheckoutUsecase {
	uc := NewCheckoutUsecase(sessions, submitter, cfg)
	if clock != nil {
		uc.clock = clock
	}
	return uc
}

// Config returns the store configuration snapshot.
func (uc *CheckoutUsecase) Config() chkdom.StoreConfig { return uc.cfg }

// Session returns the session, creating and persisting an empty one on
// first touch.
func (uc *CheckoutUsecase) Session(ctx context.Context, id string) (*chkdom.Session, error) {
	sid := strings.TrimSpace(id)
	if sid == "" {
		return nil, ErrCheckoutInvalidArgument
	}

	sess, err := uc.sessions.GetByID(ctx, sid)
	if err != nil {
		return nil, fmt.Errorf("checkout_usecase: load session: %w", err)
	}
	if sess != nil {
		return sess, nil
	}

	sess, err = chkdom.NewSession(sid, uc.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := uc.sessions.Upsert(ctx, sess); err != nil {
		return nil, fmt.Errorf("checkout_usecase: save session: %w", err)
	}
	return sess, nil
}

// UpdateDestination applies an address change. The country goes through
// ShippingState.SetCountry, so a country change drops every stale
// zone/rate selection in the same write.
func (uc *CheckoutUsecase) UpdateDestination(ctx context.Context, id string, upd DestinationUpdate) (*chkdom.Session, error) {
	sess, err := uc.Session(ctx, id)
	if err != nil {
		return nil, err
	}

	ship := sess.Shipping
	if ship == nil {
		ship = chkdom.NewShippingState()
		sess.Shipping = ship
	}

	ship.SetCountry(upd.Country)
	ship.State = strings.TrimSpace(upd.State)
	ship.Address = strings.TrimSpace(upd.Address)
	ship.Zip = strings.TrimSpace(upd.Zip)
	ship.FirstName = strings.TrimSpace(upd.FirstName)
	ship.LastName = strings.TrimSpace(upd.LastName)
	if ship.Status == chkdom.StatusPendingSetup {
		ship.Status = chkdom.StatusProcessing
	}

	sess.Touch(uc.clock.Now())
	if err := uc.sessions.Upsert(ctx, sess); err != nil {
		return nil, fmt.Errorf("checkout_usecase: save session: %w", err)
	}
	return sess, nil
}

// SelectPlatformRate records the platform-mode zone/rate choice.
func (uc *CheckoutUsecase) SelectPlatformRate(ctx context.Context, id, zoneKey, rateKey string) (*chkdom.Session, error) {
	if strings.TrimSpace(zoneKey) == "" || strings.TrimSpace(rateKey) == "" {
		return nil, ErrCheckoutInvalidArgument
	}
	sess, err := uc.Session(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.Shipping.SelectPlatform(zoneKey, rateKey)
	sess.Touch(uc.clock.Now())
	if err := uc.sessions.Upsert(ctx, sess); err != nil {
		return nil, fmt.Errorf("checkout_usecase: save session: %w", err)
	}
	return sess, nil
}

// SelectVendorRate records one vendor bucket's zone/rate choice.
func (uc *CheckoutUsecase) SelectVendorRate(ctx context.Context, id, bucketKey, zoneKey, rateKey string) (*chkdom.Session, error) {
	if strings.TrimSpace(bucketKey) == "" || strings.TrimSpace(zoneKey) == "" || strings.TrimSpace(rateKey) == "" {
		return nil, ErrCheckoutInvalidArgument
	}
	sess, err := uc.Session(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.Shipping.SelectVendor(bucketKey, zoneKey, rateKey)
	sess.Touch(uc.clock.Now())
	if err := uc.sessions.Upsert(ctx, sess); err != nil {
		return nil, fmt.Errorf("checkout_usecase: save session: %w", err)
	}
	return sess, nil
}

// SetDirectItem caches the direct-checkout item payload on the session so
// later requests skip the cart backend entirely.
func (uc *CheckoutUsecase) SetDirectItem(ctx context.Context, id, key string, item cartdom.Item) (*chkdom.Session, error) {
	if strings.TrimSpace(key) == "" {
		return nil, ErrCheckoutInvalidArgument
	}
	if err := item.Validate(); err != nil {
		return nil, fmt.Errorf("checkout_usecase: direct item: %w", err)
	}
	sess, err := uc.Session(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.DirectItemKey = strings.TrimSpace(key)
	sess.DirectItem = &item
	sess.Touch(uc.clock.Now())
	if err := uc.sessions.Upsert(ctx, sess); err != nil {
		return nil, fmt.Errorf("checkout_usecase: save session: %w", err)
	}
	return sess, nil
}

// ClearDirectItem drops the cached direct-checkout payload.
func (uc *CheckoutUsecase) ClearDirectItem(ctx context.Context, id string) (*chkdom.Session, error) {
	sess, err := uc.Session(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.DirectItemKey == "" && sess.DirectItem == nil {
		return sess, nil
	}
	sess.DirectItemKey = ""
	sess.DirectItem = nil
	sess.Touch(uc.clock.Now())
	if err := uc.sessions.Upsert(ctx, sess); err != nil {
		return nil, fmt.Errorf("checkout_usecase: save session: %w", err)
	}
	return sess, nil
}

// VendorMode decides the responsibility mode for the given item map.
func (uc *CheckoutUsecase) VendorMode(items map[string]cartdom.Item) bool {
	return cartdom.UseVendorShipping(uc.cfg.Multivendor, uc.cfg.Responsibility, cartdom.GroupByVendor(items))
}

// Readiness runs the gate over the current session and cart.
func (uc *CheckoutUsecase) Readiness(sess *chkdom.Session, items map[string]cartdom.Item, authenticated bool) chkdom.Decision {
	in := chkdom.GateInput{
		Items:         items,
		Authenticated: authenticated,
		GuestPolicy:   uc.cfg.GuestPolicy,
		VendorMode:    uc.VendorMode(items),
	}
	if sess != nil {
		in.Shipping = sess.Shipping
		in.QuickRegister = sess.QuickRegister
	}
	return chkdom.CanProceed(in)
}

// Submit gates the checkout and, when ready, hands it to the submission
// collaborator. Returns the redirect URL. The session is marked completed
// only after the collaborator accepted it.
func (uc *CheckoutUsecase) Submit(ctx context.Context, id string, items map[string]cartdom.Item, authenticated bool) (string, error) {
	sess, err := uc.Session(ctx, id)
	if err != nil {
		return "", err
	}

	if d := uc.Readiness(sess, items, authenticated); !d.OK {
		return "", &NotReadyError{Reason: d.Reason}
	}

	if uc.submitter == nil {
		return "", errors.New("checkout_usecase: submitter not configured")
	}

	redirect, err := uc.submitter.Submit(ctx, sess, items)
	if err != nil {
		return "", fmt.Errorf("checkout_usecase: submit: %w", err)
	}

	if sess.Shipping != nil {
		sess.Shipping.Status = chkdom.StatusCompleted
	}
	sess.Touch(uc.clock.Now())
	if err := uc.sessions.Upsert(ctx, sess); err != nil {
		// The order went through; a session save failure must not undo it.
		log.Printf("[checkout_usecase] session save after submit failed: %v", err)
	}
	return redirect, nil
}
