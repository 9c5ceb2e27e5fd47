// internal/adapters/in/http/middleware/auth.go
package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/google/uuid"
)

// FirebaseAuthClient is an alias for the firebase auth client so callers
// can hold *middleware.FirebaseAuthClient.
type FirebaseAuthClient = fbauth.Client

// context keys use a private type to avoid collisions (SA1029).
type ctxKey struct{ name string }

var (
	ctxKeyUID     = ctxKey{name: "uid"}
	ctxKeyEmail   = ctxKey{name: "email"}
	ctxKeyGuestID = ctxKey{name: "guestId"}
)

// ShopperAuthMiddleware resolves the shopper identity for every request.
//
//   - Authorization: Bearer <ID_TOKEN> present and valid -> authenticated,
//     uid/email land in the context.
//   - No (or invalid) token -> guest. The guest id comes from the
//     X-Guest-Id header, or a fresh one is minted and echoed back in the
//     response header so the client can keep it.
//
// Checkout works for guests, so a bad token never rejects the request; it
// only downgrades it to guest.
type ShopperAuthMiddleware struct {
	FirebaseAuth *FirebaseAuthClient
}

func (m *ShopperAuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if uid, email, ok := m.verify(r); ok {
			next.ServeHTTP(w, r.WithContext(ContextWithShopper(ctx, uid, email)))
			return
		}

		guestID := strings.TrimSpace(r.Header.Get("X-Guest-Id"))
		if guestID == "" {
			guestID = uuid.NewString()
			w.Header().Set("X-Guest-Id", guestID)
		}
		ctx = context.WithValue(ctx, ctxKeyGuestID, guestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *ShopperAuthMiddleware) verify(r *http.Request) (uid, email string, ok bool) {
	if m == nil || m.FirebaseAuth == nil {
		return "", "", false
	}

	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", "", false
	}
	idToken := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if idToken == "" {
		return "", "", false
	}

	token, err := m.FirebaseAuth.VerifyIDToken(r.Context(), idToken)
	if err != nil {
		log.Printf("[shopper_auth] token rejected, continuing as guest: %v", err)
		return "", "", false
	}

	uid = strings.TrimSpace(token.UID)
	if uid == "" {
		return "", "", false
	}

	if emailRaw, found := token.Claims["email"]; found {
		if e, isStr := emailRaw.(string); isStr {
			email = strings.TrimSpace(e)
		}
	}
	return uid, email, true
}

// ContextWithShopper records the authenticated shopper identity on the
// context.
func ContextWithShopper(ctx context.Context, uid, email string) context.Context {
	ctx = context.WithValue(ctx, ctxKeyUID, uid)
	if email != "" {
		ctx = context.WithValue(ctx, ctxKeyEmail, email)
	}
	return ctx
}

// CurrentUID returns the authenticated shopper's uid.
func CurrentUID(r *http.Request) (string, bool) {
	u, ok := r.Context().Value(ctxKeyUID).(string)
	if !ok || strings.TrimSpace(u) == "" {
		return "", false
	}
	return strings.TrimSpace(u), true
}

// CurrentEmail returns the authenticated shopper's email claim.
func CurrentEmail(r *http.Request) (string, bool) {
	e, ok := r.Context().Value(ctxKeyEmail).(string)
	if !ok || strings.TrimSpace(e) == "" {
		return "", false
	}
	return strings.TrimSpace(e), true
}

// CurrentGuestID returns the guest id resolved for an unauthenticated request.
func CurrentGuestID(r *http.Request) (string, bool) {
	g, ok := r.Context().Value(ctxKeyGuestID).(string)
	if !ok || strings.TrimSpace(g) == "" {
		return "", false
	}
	return strings.TrimSpace(g), true
}
