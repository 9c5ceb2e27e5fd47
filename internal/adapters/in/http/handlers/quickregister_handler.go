// internal/adapters/in/http/handlers/quickregister_handler.go
package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	usecase "marketcart/internal/application/usecase"
)

// QuickRegisterHandler serves the guest identity-capture endpoints.
//
//   - POST /checkout/guest/send-code  {email}
//   - POST /checkout/guest/register   {code, terms_agreed}
type QuickRegisterHandler struct {
	uc *usecase.QuickRegisterUsecase
}

func NewQuickRegisterHandler(uc *usecase.QuickRegisterUsecase) http.Handler {
	return &QuickRegisterHandler{uc: uc}
}

func (h *QuickRegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	path := trimPath(r)

	if h.uc == nil {
		writeErr(w, http.StatusInternalServerError, "quick register handler is not configured")
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	switch path {
	case "/checkout/guest/send-code":
		h.handleSendCode(w, r, start)
	case "/checkout/guest/register":
		h.handleRegister(w, r, start)
	default:
		notFound(w)
	}
}

func (h *QuickRegisterHandler) handleSendCode(w http.ResponseWriter, r *http.Request, start time.Time) {
	sid := readSessionID(r)
	if sid == "" {
		badRequest(w, "session id is required")
		return
	}

	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	if err := h.uc.SendCode(r.Context(), sid, req.Email); err != nil {
		switch {
		case errors.Is(err, usecase.ErrQuickRegisterInvalidEmail),
			errors.Is(err, usecase.ErrQuickRegisterInvalidArgument):
			badRequest(w, err.Error())
		default:
			log.Printf("[quickregister_handler] send-code failed: %v elapsed=%s", err, time.Since(start))
			writeErr(w, http.StatusBadGateway, "could not send verification code")
		}
		return
	}

	log.Printf("[quickregister_handler] send-code ok sid=%q elapsed=%s", sid, time.Since(start))
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *QuickRegisterHandler) handleRegister(w http.ResponseWriter, r *http.Request, start time.Time) {
	sid := readSessionID(r)
	if sid == "" {
		badRequest(w, "session id is required")
		return
	}

	var req struct {
		Code        string `json:"code"`
		TermsAgreed bool   `json:"terms_agreed"`
	}
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	nonces, err := h.uc.CompleteRegistration(r.Context(), sid, req.Code, req.TermsAgreed)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrQuickRegisterCodeMismatch):
			writeJSON(w, http.StatusOK, map[string]any{
				"success": false,
				"message": "verification code mismatch",
			})
		case errors.Is(err, usecase.ErrQuickRegisterInvalidArgument):
			badRequest(w, err.Error())
		default:
			log.Printf("[quickregister_handler] register failed: %v elapsed=%s", err, time.Since(start))
			writeErr(w, http.StatusBadGateway, "registration failed")
		}
		return
	}

	log.Printf("[quickregister_handler] register ok sid=%q elapsed=%s", sid, time.Since(start))
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"nonces":  nonces,
	})
}
