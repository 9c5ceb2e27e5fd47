// internal/adapters/in/http/handlers/checkout_handler.go
package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"marketcart/internal/adapters/in/http/middleware"
	usecase "marketcart/internal/application/usecase"
	cartdom "marketcart/internal/domain/cart"
	chkdom "marketcart/internal/domain/checkout"
	shipdom "marketcart/internal/domain/shipping"
)

// CheckoutHandler serves the checkout session endpoints.
//
//   - GET  /checkout/config            store configuration snapshot
//   - GET  /checkout/session           session state
//   - GET  /checkout/shipping/options  computed rate options for the cart
//   - PUT  /checkout/shipping          destination or rate-selection update
//   - GET  /checkout/readiness         gate decision without submitting
//   - POST /checkout/submit            gate + hand off to the order system
type CheckoutHandler struct {
	checkout *usecase.CheckoutUsecase
	shipping *usecase.ShippingUsecase
	backend  cartdom.Backend
}

func NewCheckoutHandler(checkout *usecase.CheckoutUsecase, shipping *usecase.ShippingUsecase, backend cartdom.Backend) http.Handler {
	return &CheckoutHandler{checkout: checkout, shipping: shipping, backend: backend}
}

func (h *CheckoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	path := trimPath(r)

	if h.checkout == nil {
		writeErr(w, http.StatusInternalServerError, "checkout handler is not configured")
		return
	}

	switch {
	case r.Method == http.MethodGet && path == "/checkout/config":
		h.handleConfig(w)
	case r.Method == http.MethodGet && path == "/checkout/session":
		h.handleSession(w, r)
	case r.Method == http.MethodGet && path == "/checkout/shipping/options":
		h.handleShippingOptions(w, r, start)
	case r.Method == http.MethodPut && path == "/checkout/shipping":
		h.handleShippingUpdate(w, r, start)
	case r.Method == http.MethodGet && path == "/checkout/readiness":
		h.handleReadiness(w, r)
	case r.Method == http.MethodPost && path == "/checkout/submit":
		h.handleSubmit(w, r, start)
	default:
		log.Printf("[checkout_handler] exit status=404 method=%s path=%q elapsed=%s", r.Method, path, time.Since(start))
		notFound(w)
	}
}

// -------------------------
// GET /checkout/config
// -------------------------

func (h *CheckoutHandler) handleConfig(w http.ResponseWriter) {
	cfg := h.checkout.Config()
	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"config":         cfg,
		"responsibility": cfg.Responsibility.String(),
		"nonces":         usecase.NewNonces(),
	})
}

// -------------------------
// GET /checkout/session
// -------------------------

func (h *CheckoutHandler) handleSession(w http.ResponseWriter, r *http.Request) {
	sid := readSessionID(r)
	if sid == "" {
		badRequest(w, "session id is required")
		return
	}
	sess, err := h.checkout.Session(r.Context(), sid)
	if err != nil {
		log.Printf("[checkout_handler] session load failed: %v", err)
		writeErr(w, http.StatusBadGateway, "session store unavailable")
		return
	}

	resp := map[string]any{"success": true, "session": sess}
	// Signed-in shoppers get their token email back for form prefill.
	if email, ok := middleware.CurrentEmail(r); ok {
		resp["email"] = email
	}
	writeJSON(w, http.StatusOK, resp)
}

// -------------------------
// GET /checkout/shipping/options
// -------------------------

func (h *CheckoutHandler) handleShippingOptions(w http.ResponseWriter, r *http.Request, start time.Time) {
	ctx := r.Context()

	if h.shipping == nil {
		writeErr(w, http.StatusInternalServerError, "shipping usecase is not configured")
		return
	}

	sid := readSessionID(r)
	if sid == "" {
		badRequest(w, "session id is required")
		return
	}

	sess, items, err := h.sessionAndItems(ctx, r, sid)
	if err != nil {
		log.Printf("[checkout_handler] options load failed: %v", err)
		writeErr(w, http.StatusBadGateway, err.Error())
		return
	}

	dest := destinationOf(sess)
	vendorMode := h.checkout.VendorMode(items)

	resp := map[string]any{
		"success":     true,
		"vendor_mode": vendorMode,
	}

	if vendorMode {
		buckets := cartdom.GroupByVendor(items)
		opts, err := h.shipping.VendorOptions(ctx, buckets, dest)
		if err != nil {
			log.Printf("[checkout_handler] vendor options failed: %v", err)
			writeErr(w, http.StatusBadGateway, "shipping options unavailable")
			return
		}
		resp["vendor_options"] = opts
	} else {
		opts, err := h.shipping.PlatformOptions(ctx, items, dest)
		if err != nil {
			log.Printf("[checkout_handler] platform options failed: %v", err)
			writeErr(w, http.StatusBadGateway, "shipping options unavailable")
			return
		}
		resp["platform_options"] = opts
	}

	log.Printf("[checkout_handler] options ok vendorMode=%t items=%d elapsed=%s", vendorMode, len(items), time.Since(start))
	writeJSON(w, http.StatusOK, resp)
}

// -------------------------
// PUT /checkout/shipping
// -------------------------

type shippingSelection struct {
	Bucket string `json:"bucket"`
	Zone   string `json:"zone"`
	Rate   string `json:"rate"`
}

func (h *CheckoutHandler) handleShippingUpdate(w http.ResponseWriter, r *http.Request, start time.Time) {
	ctx := r.Context()

	sid := readSessionID(r)
	if sid == "" {
		badRequest(w, "session id is required")
		return
	}

	var req struct {
		Destination *usecase.DestinationUpdate `json:"destination,omitempty"`
		Selection   *shippingSelection         `json:"selection,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if req.Destination == nil && req.Selection == nil {
		badRequest(w, "destination or selection is required")
		return
	}

	var (
		sess *chkdom.Session
		err  error
	)
	if req.Destination != nil {
		sess, err = h.checkout.UpdateDestination(ctx, sid, *req.Destination)
	}
	if err == nil && req.Selection != nil {
		sel := req.Selection
		if strings.TrimSpace(sel.Bucket) == "" || sel.Bucket == cartdom.PlatformBucketKey {
			sess, err = h.checkout.SelectPlatformRate(ctx, sid, sel.Zone, sel.Rate)
		} else {
			sess, err = h.checkout.SelectVendorRate(ctx, sid, sel.Bucket, sel.Zone, sel.Rate)
		}
	}
	if err != nil {
		if errors.Is(err, usecase.ErrCheckoutInvalidArgument) {
			badRequest(w, err.Error())
			return
		}
		log.Printf("[checkout_handler] shipping update failed: %v", err)
		writeErr(w, http.StatusBadGateway, "session store unavailable")
		return
	}

	log.Printf("[checkout_handler] shipping update ok sid=%q elapsed=%s", sid, time.Since(start))
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "session": sess})
}

// -------------------------
// GET /checkout/readiness
// -------------------------

func (h *CheckoutHandler) handleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sid := readSessionID(r)
	if sid == "" {
		badRequest(w, "session id is required")
		return
	}

	sess, items, err := h.sessionAndItems(ctx, r, sid)
	if err != nil {
		log.Printf("[checkout_handler] readiness load failed: %v", err)
		writeErr(w, http.StatusBadGateway, err.Error())
		return
	}

	_, authenticated := shopperRef(r)
	d := h.checkout.Readiness(sess, items, authenticated)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"ready":   d.OK,
		"reason":  d.Reason,
	})
}

// -------------------------
// POST /checkout/submit
// -------------------------

func (h *CheckoutHandler) handleSubmit(w http.ResponseWriter, r *http.Request, start time.Time) {
	ctx := r.Context()

	sid := readSessionID(r)
	if sid == "" {
		badRequest(w, "session id is required")
		return
	}

	_, items, err := h.sessionAndItems(ctx, r, sid)
	if err != nil {
		log.Printf("[checkout_handler] submit load failed: %v", err)
		writeErr(w, http.StatusBadGateway, err.Error())
		return
	}

	_, authenticated := shopperRef(r)
	redirect, err := h.checkout.Submit(ctx, sid, items, authenticated)
	if err != nil {
		var notReady *usecase.NotReadyError
		if errors.As(err, &notReady) {
			log.Printf("[checkout_handler] submit blocked reason=%s elapsed=%s", notReady.Reason, time.Since(start))
			writeJSON(w, http.StatusConflict, map[string]any{
				"success": false,
				"reason":  notReady.Reason,
			})
			return
		}
		log.Printf("[checkout_handler] submit failed: %v elapsed=%s", err, time.Since(start))
		writeErr(w, http.StatusBadGateway, "checkout submission failed")
		return
	}

	log.Printf("[checkout_handler] submit ok sid=%q elapsed=%s", sid, time.Since(start))
	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"redirect_url": redirect,
	})
}

// -------------------------
// shared
// -------------------------

// sessionAndItems loads the session and the item map it operates on,
// honoring direct-cart mode when the session carries a cached item.
func (h *CheckoutHandler) sessionAndItems(ctx context.Context, r *http.Request, sid string) (*chkdom.Session, map[string]cartdom.Item, error) {
	sess, err := h.checkout.Session(ctx, sid)
	if err != nil {
		return nil, nil, err
	}

	ref, _ := shopperRef(r)
	direct := strings.TrimSpace(r.URL.Query().Get("direct")) != "" && sess.DirectItem != nil

	uc, err := loadCartForRequest(ctx, h.backend, sess, ref, direct)
	if err != nil {
		return nil, nil, err
	}
	return sess, uc.Items(), nil
}

// destinationOf projects the session's address into the zone-matching
// destination.
func destinationOf(sess *chkdom.Session) shipdom.Destination {
	if sess == nil || sess.Shipping == nil {
		return shipdom.Destination{}
	}
	return shipdom.Destination{
		Country: sess.Shipping.Country,
		State:   sess.Shipping.State,
		Zip:     sess.Shipping.Zip,
	}
}
