// internal/adapters/out/http/cart_backend_http.go
package httpout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	cartdom "marketcart/internal/domain/cart"
)

var (
	ErrBackendNotConfigured = errors.New("cart_backend_http: not configured")
)

// CartBackendHTTP implements cart.Backend against the marketplace's cart
// REST endpoints.
//
// Endpoint layout (relative to baseURL):
//   - GET  /cart/items            authenticated cart (X-User-Id)
//   - GET  /cart/guest-items      guest cart (X-Guest-Id)
//   - POST /cart/update-quantity  {key, quantity}
//   - POST /cart/remove-item      {key}
//
// Transport failures (non-2xx, empty body, malformed JSON) are returned
// as errors and the caller treats them as "no data"; business rejections
// travel inside MutationResult and are not errors at this layer.
type CartBackendHTTP struct {
	BaseURL string
	Client  *http.Client
}

func NewCartBackendHTTP(baseURL string) *CartBackendHTTP {
	return &CartBackendHTTP{
		BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		Client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (b *CartBackendHTTP) FetchItems(ctx context.Context, sess cartdom.SessionRef) (map[string]cartdom.Item, error) {
	path := "/cart/items"
	if sess.Guest() {
		path = "/cart/guest-items"
	}

	body, err := b.do(ctx, http.MethodGet, path, sess, nil)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Success bool                    `json:"success"`
		Items   map[string]cartdom.Item `json:"items"`
		Message string                  `json:"message,omitempty"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("cart_backend_http: malformed items payload: %w", err)
	}
	if !payload.Success {
		return nil, fmt.Errorf("cart_backend_http: items fetch rejected: %s", payload.Message)
	}
	if payload.Items == nil {
		return map[string]cartdom.Item{}, nil
	}
	return payload.Items, nil
}

func (b *CartBackendHTTP) UpdateQuantity(ctx context.Context, sess cartdom.SessionRef, key string, qty int) (cartdom.MutationResult, error) {
	req := map[string]any{"key": key, "quantity": qty}
	return b.mutate(ctx, "/cart/update-quantity", sess, req)
}

func (b *CartBackendHTTP) Remove(ctx context.Context, sess cartdom.SessionRef, key string) (cartdom.MutationResult, error) {
	req := map[string]any{"key": key}
	return b.mutate(ctx, "/cart/remove-item", sess, req)
}

func (b *CartBackendHTTP) mutate(ctx context.Context, path string, sess cartdom.SessionRef, req map[string]any) (cartdom.MutationResult, error) {
	body, err := b.do(ctx, http.MethodPost, path, sess, req)
	if err != nil {
		return cartdom.MutationResult{}, err
	}

	var res cartdom.MutationResult
	if err := json.Unmarshal(body, &res); err != nil {
		return cartdom.MutationResult{}, fmt.Errorf("cart_backend_http: malformed mutation payload: %w", err)
	}
	return res, nil
}

func (b *CartBackendHTTP) do(ctx context.Context, method, path string, sess cartdom.SessionRef, payload any) ([]byte, error) {
	if b == nil || b.BaseURL == "" {
		return nil, ErrBackendNotConfigured
	}

	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(raw)
	}

	u, err := url.JoinPath(b.BaseURL, path)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sess.Guest() {
		req.Header.Set("X-Guest-Id", sess.GuestID)
	} else {
		req.Header.Set("X-User-Id", sess.UserID)
	}

	client := b.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cart_backend_http: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("cart_backend_http: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("[cart_backend_http] %s %s status=%d body=%q", method, path, resp.StatusCode, truncate(raw, 256))
		return nil, fmt.Errorf("cart_backend_http: %s %s: status %d", method, path, resp.StatusCode)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, fmt.Errorf("cart_backend_http: %s %s: empty body", method, path)
	}
	return raw, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
