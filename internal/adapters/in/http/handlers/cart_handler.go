// internal/adapters/in/http/handlers/cart_handler.go
package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	usecase "marketcart/internal/application/usecase"
	cartdom "marketcart/internal/domain/cart"
)

// CartHandler serves the checkout-facing cart endpoints.
//
//   - GET    /checkout/cart              cart snapshot (?direct=<key> for
//     direct checkout)
//   - PUT    /checkout/cart/quantity     {key, quantity}
//   - DELETE /checkout/cart/item         {key}
//
// The cart of record lives in the marketplace backend; this handler owns
// the optimistic in-flight view and its rollback.
type CartHandler struct {
	backend  cartdom.Backend
	checkout *usecase.CheckoutUsecase
}

func NewCartHandler(backend cartdom.Backend, checkout *usecase.CheckoutUsecase) http.Handler {
	return &CartHandler{backend: backend, checkout: checkout}
}

func (h *CartHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	path := trimPath(r)

	if h.backend == nil || h.checkout == nil {
		writeErr(w, http.StatusInternalServerError, "cart handler is not configured")
		return
	}

	switch {
	case r.Method == http.MethodGet && path == "/checkout/cart":
		h.handleGet(w, r, start)
	case r.Method == http.MethodPut && path == "/checkout/cart/quantity":
		h.handleQuantity(w, r, start)
	case r.Method == http.MethodDelete && path == "/checkout/cart/item":
		h.handleRemove(w, r, start)
	default:
		log.Printf("[cart_handler] exit status=404 method=%s path=%q elapsed=%s", r.Method, path, time.Since(start))
		notFound(w)
	}
}

// -------------------------
// GET /checkout/cart
// -------------------------

func (h *CartHandler) handleGet(w http.ResponseWriter, r *http.Request, start time.Time) {
	ctx := r.Context()
	ref, _ := shopperRef(r)

	directKey := strings.TrimSpace(r.URL.Query().Get("direct"))
	if directKey != "" {
		h.handleGetDirect(w, r, directKey, start)
		return
	}

	uc := usecase.NewCartUsecase(h.backend, ref)
	if err := uc.Load(ctx); err != nil {
		log.Printf("[cart_handler] GET load failed: %v elapsed=%s", err, time.Since(start))
		writeErr(w, http.StatusBadGateway, "cart backend unavailable")
		return
	}

	h.writeCart(w, uc, start)
}

// handleGetDirect serves the direct-checkout snapshot: one item cached on
// the session, no cart backend on the hot path.
func (h *CartHandler) handleGetDirect(w http.ResponseWriter, r *http.Request, key string, start time.Time) {
	ctx := r.Context()
	ref, _ := shopperRef(r)

	sid := readSessionID(r)
	if sid == "" {
		badRequest(w, "session id is required for direct checkout")
		return
	}

	sess, err := h.checkout.Session(ctx, sid)
	if err != nil {
		log.Printf("[cart_handler] GET direct session load failed: %v", err)
		writeErr(w, http.StatusBadGateway, "session store unavailable")
		return
	}

	if sess.DirectItem != nil && sess.DirectItemKey == key {
		h.writeCart(w, usecase.NewDirectCartUsecase(*sess.DirectItem), start)
		return
	}

	// First direct request: resolve the item once through the backend and
	// cache it on the session.
	full := usecase.NewCartUsecase(h.backend, ref)
	if err := full.Load(ctx); err != nil {
		log.Printf("[cart_handler] GET direct load failed: %v", err)
		writeErr(w, http.StatusBadGateway, "cart backend unavailable")
		return
	}
	item, ok := full.Items()[key]
	if !ok {
		notFound(w)
		return
	}
	if _, err := h.checkout.SetDirectItem(ctx, sid, key, item); err != nil {
		log.Printf("[cart_handler] GET direct cache failed: %v", err)
		writeErr(w, http.StatusBadGateway, "session store unavailable")
		return
	}

	h.writeCart(w, usecase.NewDirectCartUsecase(item), start)
}

// -------------------------
// PUT /checkout/cart/quantity
// -------------------------

func (h *CartHandler) handleQuantity(w http.ResponseWriter, r *http.Request, start time.Time) {
	ctx := r.Context()

	var req struct {
		Key      string `json:"key"`
		Quantity int    `json:"quantity"`
		Direct   bool   `json:"direct,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if strings.TrimSpace(req.Key) == "" {
		badRequest(w, "key is required")
		return
	}
	if req.Quantity <= 0 {
		badRequest(w, "quantity must be positive")
		return
	}

	uc, sid, err := h.cartFor(r, req.Direct)
	if err != nil {
		writeErr(w, http.StatusBadGateway, err.Error())
		return
	}

	item, err := uc.UpdateQuantity(ctx, req.Key, req.Quantity)
	if err != nil {
		h.writeMutationError(w, err, start)
		return
	}

	if uc.Direct() && item != nil {
		if _, err := h.checkout.SetDirectItem(ctx, sid, req.Key, *item); err != nil {
			log.Printf("[cart_handler] quantity direct persist failed: %v", err)
		}
	}

	log.Printf("[cart_handler] quantity ok key=%q qty=%d elapsed=%s", req.Key, req.Quantity, time.Since(start))
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"item":    item,
		"items":   uc.Items(),
	})
}

// -------------------------
// DELETE /checkout/cart/item
// -------------------------

func (h *CartHandler) handleRemove(w http.ResponseWriter, r *http.Request, start time.Time) {
	ctx := r.Context()

	var req struct {
		Key    string `json:"key"`
		Direct bool   `json:"direct,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if strings.TrimSpace(req.Key) == "" {
		badRequest(w, "key is required")
		return
	}

	uc, sid, err := h.cartFor(r, req.Direct)
	if err != nil {
		writeErr(w, http.StatusBadGateway, err.Error())
		return
	}

	if err := uc.Remove(ctx, req.Key); err != nil {
		h.writeMutationError(w, err, start)
		return
	}

	if uc.Direct() {
		if _, err := h.checkout.ClearDirectItem(ctx, sid); err != nil {
			log.Printf("[cart_handler] remove direct clear failed: %v", err)
		}
	}

	log.Printf("[cart_handler] remove ok key=%q elapsed=%s", req.Key, time.Since(start))
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"items":   uc.Items(),
	})
}

// -------------------------
// shared
// -------------------------

// cartFor builds the coordinator for a mutation. Direct mode requires a
// session with a cached direct item.
func (h *CartHandler) cartFor(r *http.Request, direct bool) (*usecase.CartUsecase, string, error) {
	ctx := r.Context()
	ref, _ := shopperRef(r)
	sid := readSessionID(r)

	if direct {
		if sid == "" {
			return nil, "", errors.New("session id is required for direct checkout")
		}
		sess, err := h.checkout.Session(ctx, sid)
		if err != nil {
			return nil, "", err
		}
		uc, err := loadCartForRequest(ctx, h.backend, sess, ref, true)
		return uc, sid, err
	}

	uc, err := loadCartForRequest(ctx, h.backend, nil, ref, false)
	return uc, sid, err
}

func (h *CartHandler) writeMutationError(w http.ResponseWriter, err error, start time.Time) {
	var rejected *usecase.MutationRejectedError
	switch {
	case errors.As(err, &rejected):
		// Business rejection: the cart was rolled back, report it as a
		// non-error payload like the backend does.
		log.Printf("[cart_handler] mutation rejected: %s elapsed=%s", rejected.Message, time.Since(start))
		writeJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"message": rejected.Message,
		})
	case errors.Is(err, usecase.ErrCartItemNotFound):
		notFound(w)
	case errors.Is(err, usecase.ErrCartInvalidArgument):
		badRequest(w, err.Error())
	default:
		log.Printf("[cart_handler] mutation failed: %v elapsed=%s", err, time.Since(start))
		writeErr(w, http.StatusBadGateway, "cart backend unavailable")
	}
}

func (h *CartHandler) writeCart(w http.ResponseWriter, uc *usecase.CartUsecase, start time.Time) {
	items := uc.Items()
	log.Printf("[cart_handler] GET ok items=%d direct=%t elapsed=%s", len(items), uc.Direct(), time.Since(start))
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"direct":  uc.Direct(),
		"items":   items,
		"vendors": uc.Vendors(),
	})
}
