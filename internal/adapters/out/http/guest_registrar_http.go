// internal/adapters/out/http/guest_registrar_http.go
package httpout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// GuestRegistrarHTTP implements usecase.RegistrarPort against the
// marketplace's account endpoint. Registration is lightweight: the account
// system creates (or reuses) a shadow account for the guest email.
type GuestRegistrarHTTP struct {
	BaseURL string
	Client  *http.Client
}

func NewGuestRegistrarHTTP(baseURL string) *GuestRegistrarHTTP {
	return &GuestRegistrarHTTP{
		BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		Client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (g *GuestRegistrarHTTP) Register(ctx context.Context, email, sessionID string) error {
	if g == nil || g.BaseURL == "" {
		return errors.New("guest_registrar_http: not configured")
	}

	payload := map[string]string{
		"email":      email,
		"session_id": sessionID,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	u, err := url.JoinPath(g.BaseURL, "/cart/guest-register")
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("guest_registrar_http: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("guest_registrar_http: read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("guest_registrar_http: status %d", resp.StatusCode)
	}

	var answer struct {
		Success bool   `json:"success"`
		Message string `json:"message,omitempty"`
	}
	if err := json.Unmarshal(body, &answer); err != nil {
		return fmt.Errorf("guest_registrar_http: malformed payload: %w", err)
	}
	if !answer.Success {
		return fmt.Errorf("guest_registrar_http: rejected: %s", answer.Message)
	}
	return nil
}
