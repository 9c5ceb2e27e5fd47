// internal/adapters/in/http/router.go
package httpin

import (
	"net/http"

	"marketcart/internal/adapters/in/http/handlers"
	"marketcart/internal/adapters/in/http/middleware"
	usecase "marketcart/internal/application/usecase"
	cartdom "marketcart/internal/domain/cart"
)

// RouterDeps collects the usecases (and other dependencies) injected from
// the DI container.
type RouterDeps struct {
	CheckoutUC      *usecase.CheckoutUsecase
	ShippingUC      *usecase.ShippingUsecase
	QuickRegisterUC *usecase.QuickRegisterUsecase
	AttachmentUC    *usecase.AttachmentUsecase

	CartBackend cartdom.Backend

	FirebaseAuth  *middleware.FirebaseAuthClient
	AllowedOrigin string
}

// NewRouter sets up HTTP routing for the checkout endpoints.
func NewRouter(deps RouterDeps) http.Handler {
	mux := http.NewServeMux()

	// Health check (always on)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Mount only what is configured.
	if deps.CheckoutUC != nil && deps.CartBackend != nil {
		cart := handlers.NewCartHandler(deps.CartBackend, deps.CheckoutUC)
		mux.Handle("/checkout/cart", cart)
		mux.Handle("/checkout/cart/", cart)

		checkout := handlers.NewCheckoutHandler(deps.CheckoutUC, deps.ShippingUC, deps.CartBackend)
		mux.Handle("/checkout/config", checkout)
		mux.Handle("/checkout/session", checkout)
		mux.Handle("/checkout/shipping", checkout)
		mux.Handle("/checkout/shipping/", checkout)
		mux.Handle("/checkout/readiness", checkout)
		mux.Handle("/checkout/submit", checkout)
	}

	if deps.QuickRegisterUC != nil {
		qr := handlers.NewQuickRegisterHandler(deps.QuickRegisterUC)
		mux.Handle("/checkout/guest/", qr)
	}

	if deps.AttachmentUC != nil {
		mux.Handle("/checkout/attachments", handlers.NewAttachmentHandler(deps.AttachmentUC))
	}

	// Chain: Recover innermost-first so a panic still answers with CORS
	// headers attached by the outer layer.
	auth := &middleware.ShopperAuthMiddleware{FirebaseAuth: deps.FirebaseAuth}

	var h http.Handler = mux
	h = auth.Handler(h)
	h = middleware.Recover(h)
	h = middleware.CORS(deps.AllowedOrigin)(h)
	return h
}
