// internal/adapters/out/http/checkout_submitter_http.go
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

	cartdom "marketcart/internal/domain/cart"
	chkdom "marketcart/internal/domain/checkout"
)

// CheckoutSubmitterHTTP implements usecase.SubmissionPort against the
// surrounding order system's checkout endpoint. A successful submission
// answers with a redirect URL for the shopper.
type CheckoutSubmitterHTTP struct {
	BaseURL string
	Client  *http.Client
}

func NewCheckoutSubmitterHTTP(baseURL string) *CheckoutSubmitterHTTP {
	return &CheckoutSubmitterHTTP{
		BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *CheckoutSubmitterHTTP) Submit(ctx context.Context, sess *chkdom.Session, items map[string]cartdom.Item) (string, error) {
	if s == nil || s.BaseURL == "" {
		return "", errors.New("checkout_submitter_http: not configured")
	}
	if sess == nil {
		return "", errors.New("checkout_submitter_http: session is nil")
	}

	payload := struct {
		SessionID string                  `json:"session_id"`
		Shipping  *chkdom.ShippingState   `json:"shipping"`
		Items     map[string]cartdom.Item `json:"items"`
	}{
		SessionID: sess.ID,
		Shipping:  sess.Shipping,
		Items:     items,
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	u, err := url.JoinPath(s.BaseURL, "/checkout/submit")
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(raw))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("checkout_submitter_http: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("checkout_submitter_http: read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("checkout_submitter_http: status %d", resp.StatusCode)
	}

	var answer struct {
		Success     bool   `json:"success"`
		RedirectURL string `json:"redirect_url"`
		Message     string `json:"message,omitempty"`
	}
	if err := json.Unmarshal(body, &answer); err != nil {
		return "", fmt.Errorf("checkout_submitter_http: malformed payload: %w", err)
	}
	if !answer.Success {
		return "", fmt.Errorf("checkout_submitter_http: rejected: %s", answer.Message)
	}
	if strings.TrimSpace(answer.RedirectURL) == "" {
		return "", errors.New("checkout_submitter_http: missing redirect url")
	}
	return answer.RedirectURL, nil
}
