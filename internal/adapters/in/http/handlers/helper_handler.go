// internal/adapters/in/http/handlers/helper_handler.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"marketcart/internal/adapters/in/http/middleware"
	usecase "marketcart/internal/application/usecase"
	cartdom "marketcart/internal/domain/cart"
	chkdom "marketcart/internal/domain/checkout"
)

// ============================================================
// HTTP helpers
// ============================================================

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"success": false, "error": msg})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeErr(w, http.StatusBadRequest, msg)
}

func methodNotAllowed(w http.ResponseWriter) {
	writeErr(w, http.StatusMethodNotAllowed, "method_not_allowed")
}

func notFound(w http.ResponseWriter) {
	writeErr(w, http.StatusNotFound, "not_found")
}

func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return errors.New("empty body")
	}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("malformed json: %w", err)
	}
	return nil
}

// trimPath normalizes the request path for exact matching.
func trimPath(r *http.Request) string {
	p := strings.TrimRight(r.URL.Path, "/")
	if p == "" {
		p = "/"
	}
	return p
}

// ============================================================
// Identity helpers
// ============================================================

// readSessionID resolves the checkout session id: X-Session-Id header
// first, then the session_id query parameter.
func readSessionID(r *http.Request) string {
	if sid := strings.TrimSpace(r.Header.Get("X-Session-Id")); sid != "" {
		return sid
	}
	return strings.TrimSpace(r.URL.Query().Get("session_id"))
}

// shopperRef builds the cart session reference from the auth middleware
// context. The second result reports authenticated vs guest.
func shopperRef(r *http.Request) (cartdom.SessionRef, bool) {
	if uid, ok := middleware.CurrentUID(r); ok {
		return cartdom.SessionRef{UserID: uid}, true
	}
	gid, _ := middleware.CurrentGuestID(r)
	return cartdom.SessionRef{GuestID: gid}, false
}

// ============================================================
// Cart loading shared by cart/checkout handlers
// ============================================================

// loadCartForRequest builds the cart coordinator for the request: direct
// mode (session-cached single item, no backend round trip) when the
// session carries a direct item, otherwise a backend-loaded cart.
func loadCartForRequest(ctx context.Context, backend cartdom.Backend, sess *chkdom.Session, ref cartdom.SessionRef, direct bool) (*usecase.CartUsecase, error) {
	if direct {
		if sess == nil || sess.DirectItem == nil {
			return nil, errors.New("direct checkout item is not set")
		}
		return usecase.NewDirectCartUsecase(*sess.DirectItem), nil
	}

	uc := usecase.NewCartUsecase(backend, ref)
	if err := uc.Load(ctx); err != nil {
		return nil, err
	}
	return uc, nil
}
