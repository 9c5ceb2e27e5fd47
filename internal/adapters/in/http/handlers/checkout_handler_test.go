// internal/adapters/in/http/handlers/checkout_handler_test.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketcart/internal/adapters/in/http/middleware"
	usecase "marketcart/internal/application/usecase"
	cartdom "marketcart/internal/domain/cart"
	chkdom "marketcart/internal/domain/checkout"
	shipdom "marketcart/internal/domain/shipping"
)

// memSessions is an in-memory checkout.Repository.
type memSessions struct {
	docs map[string]*chkdom.Session
}

func newMemSessions() *memSessions {
	return &memSessions{docs: map[string]*chkdom.Session{}}
}

func (m *memSessions) GetByID(ctx context.Context, id string) (*chkdom.Session, error) {
	s, ok := m.docs[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *memSessions) Upsert(ctx context.Context, s *chkdom.Session) error {
	cp := *s
	m.docs[s.ID] = &cp
	return nil
}

func (m *memSessions) DeleteByID(ctx context.Context, id string) error {
	delete(m.docs, id)
	return nil
}

// fakeBackend answers a fixed item map.
type fakeBackend struct {
	items map[string]cartdom.Item
}

func (f *fakeBackend) FetchItems(ctx context.Context, sess cartdom.SessionRef) (map[string]cartdom.Item, error) {
	return cartdom.CloneItems(f.items), nil
}

func (f *fakeBackend) UpdateQuantity(ctx context.Context, sess cartdom.SessionRef, key string, qty int) (cartdom.MutationResult, error) {
	it, ok := f.items[key]
	if !ok {
		return cartdom.MutationResult{Success: false, Message: "no such item"}, nil
	}
	it.Stock.Quantity = qty
	return cartdom.MutationResult{Success: true, Item: &it}, nil
}

func (f *fakeBackend) Remove(ctx context.Context, sess cartdom.SessionRef, key string) (cartdom.MutationResult, error) {
	return cartdom.MutationResult{Success: true}, nil
}

func shippableItem(key string, total int64) cartdom.Item {
	return cartdom.Item{
		Key:         key,
		ProductMode: cartdom.ProductModeRegular,
		Stock:       cartdom.Stock{Quantity: 1},
		Pricing:     cartdom.Pricing{TotalAmount: total},
		Shipping:    cartdom.ShippingInfo{IsShippable: true},
	}
}

func testCheckoutHandler(backend cartdom.Backend) (http.Handler, *memSessions) {
	repo := newMemSessions()
	cfg := chkdom.StoreConfig{
		Currency:       "USD",
		Responsibility: shipdom.ResponsibilityPlatform,
		GuestPolicy:    chkdom.GuestPolicy{Behavior: chkdom.GuestProceedWithEmail},
	}
	uc := usecase.NewCheckoutUsecase(repo, nil, cfg)
	return NewCheckoutHandler(uc, nil, backend), repo
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestConfigEndpoint(t *testing.T) {
	h, _ := testCheckoutHandler(&fakeBackend{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/checkout/config", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "platform", body["responsibility"])
}

func TestShippingUpdateRequiresSession(t *testing.T) {
	h, _ := testCheckoutHandler(&fakeBackend{})

	req := httptest.NewRequest(http.MethodPut, "/checkout/shipping",
		strings.NewReader(`{"destination":{"country":"US"}}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestShippingDestinationUpdatePersists(t *testing.T) {
	h, repo := testCheckoutHandler(&fakeBackend{})

	req := httptest.NewRequest(http.MethodPut, "/checkout/shipping",
		strings.NewReader(`{"destination":{"country":"US","state":"NY","zip":"10001"}}`))
	req.Header.Set("X-Session-Id", "s1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	sess := repo.docs["s1"]
	require.NotNil(t, sess)
	assert.Equal(t, "US", sess.Shipping.Country)
	assert.Equal(t, chkdom.StatusProcessing, sess.Shipping.Status)
}

func TestSessionIncludesShopperEmailForPrefill(t *testing.T) {
	h, _ := testCheckoutHandler(&fakeBackend{})

	req := httptest.NewRequest(http.MethodGet, "/checkout/session", nil)
	req.Header.Set("X-Session-Id", "s1")
	req = req.WithContext(middleware.ContextWithShopper(req.Context(), "u1", "shopper@example.com"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "shopper@example.com", body["email"])

	// Guests carry no email claim; the field stays absent.
	req = httptest.NewRequest(http.MethodGet, "/checkout/session", nil)
	req.Header.Set("X-Session-Id", "s1")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, decodeBody(t, rec), "email")
}

func TestSubmitBlockedAnswersConflictWithReason(t *testing.T) {
	// Empty cart: the gate refuses before the submitter is ever needed.
	h, _ := testCheckoutHandler(&fakeBackend{items: map[string]cartdom.Item{}})

	req := httptest.NewRequest(http.MethodPost, "/checkout/submit", nil)
	req.Header.Set("X-Session-Id", "s1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, string(chkdom.ReasonEmptyCart), body["reason"])
}

func TestCartSnapshotListsItemsAndVendors(t *testing.T) {
	backend := &fakeBackend{items: map[string]cartdom.Item{
		"a": shippableItem("a", 1200),
	}}
	repo := newMemSessions()
	cfg := chkdom.StoreConfig{Responsibility: shipdom.ResponsibilityPlatform}
	uc := usecase.NewCheckoutUsecase(repo, nil, cfg)
	h := NewCartHandler(backend, uc)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/checkout/cart", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, false, body["direct"])

	items, ok := body["items"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, items, "a")

	vendors, ok := body["vendors"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, vendors, cartdom.PlatformBucketKey)
}

func TestCartQuantityUpdateRoundTrip(t *testing.T) {
	backend := &fakeBackend{items: map[string]cartdom.Item{
		"a": shippableItem("a", 1200),
	}}
	repo := newMemSessions()
	uc := usecase.NewCheckoutUsecase(repo, nil, chkdom.StoreConfig{})
	h := NewCartHandler(backend, uc)

	req := httptest.NewRequest(http.MethodPut, "/checkout/cart/quantity",
		strings.NewReader(`{"key":"a","quantity":3}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
}
