package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/essentials-shop/storefront/internal/auth"
	"github.com/essentials-shop/storefront/internal/cart"
	"github.com/essentials-shop/storefront/internal/catalog"
	"github.com/essentials-shop/storefront/internal/orders"
)

type memCatalog map[string]decimal.Decimal

func (m memCatalog) ProductPrice(ctx context.Context, productID string) (decimal.Decimal, error) {
	p, ok := m[productID]
	if !ok {
		return decimal.Zero, catalog.ErrProductNotFound
	}
	return p, nil
}

// memStore is a single-cart store; the handler tests exercise one user.
type memStore struct {
	orderID string
	userID  string
	lines   map[string]orders.CartLine
}

func newMemStore() *memStore {
	return &memStore{lines: map[string]orders.CartLine{}}
}

func (m *memStore) OpenOrder(ctx context.Context, userID string) (string, error) {
	if m.userID != userID || m.orderID == "" {
		return "", orders.ErrNoOpenOrder
	}
	return m.orderID, nil
}

func (m *memStore) EnsureOpenOrder(ctx context.Context, userID string) (string, error) {
	if m.orderID == "" {
		m.orderID, m.userID = "o1", userID
	}
	return m.orderID, nil
}

func (m *memStore) UpsertLineIncrement(ctx context.Context, orderID, productID string, price decimal.Decimal) error {
	l, ok := m.lines[productID]
	if !ok {
		m.lines[productID] = orders.CartLine{ProductID: productID, Quantity: 1, Price: price}
		return nil
	}
	l.Quantity++
	m.lines[productID] = l
	return nil
}

func (m *memStore) IncrementLine(ctx context.Context, orderID, productID string) error {
	if l, ok := m.lines[productID]; ok {
		l.Quantity++
		m.lines[productID] = l
	}
	return nil
}

func (m *memStore) DecrementOrDeleteLine(ctx context.Context, orderID, productID string) error {
	l, ok := m.lines[productID]
	if !ok {
		return nil
	}
	if l.Quantity > 1 {
		l.Quantity--
		m.lines[productID] = l
		return nil
	}
	delete(m.lines, productID)
	return nil
}

func (m *memStore) DeleteLine(ctx context.Context, orderID, productID string) error {
	delete(m.lines, productID)
	return nil
}

func (m *memStore) Lines(ctx context.Context, orderID string) ([]orders.CartLine, error) {
	var out []orders.CartLine
	for _, l := range m.lines {
		out = append(out, l)
	}
	return out, nil
}

func (m *memStore) CountItems(ctx context.Context, userID string) (int, error) {
	if m.userID != userID {
		return 0, nil
	}
	n := 0
	for _, l := range m.lines {
		n += l.Quantity
	}
	return n, nil
}

func newCartTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()

	tokens := &auth.Tokens{Secret: []byte("test-secret"), TTL: time.Hour}
	token, err := tokens.Issue(auth.User{ID: "u1", Email: "jo@example.com"})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	svc := &cart.Service{
		Store:   newMemStore(),
		Catalog: memCatalog{"p1": decimal.RequireFromString("9.99")},
	}
	h := &CartHandler{Cart: svc, Log: zap.NewNop()}

	r := NewRouter(zap.NewNop(), tokens.Middleware)
	h.Register(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, token
}

func doReq(t *testing.T, method, url, token string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return resp, body
}

func TestCartMutationRequiresAuth(t *testing.T) {
	srv, _ := newCartTestServer(t)

	resp, body := doReq(t, http.MethodPost, srv.URL+"/cart/add/p1", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	if msg, _ := body["error"].(string); msg == "" {
		t.Fatalf("body = %v, want error message", body)
	}
}

func TestCartAddAndCount(t *testing.T) {
	srv, token := newCartTestServer(t)

	resp, body := doReq(t, http.MethodPost, srv.URL+"/cart/add/p1", token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if got := body["cartCount"]; got != float64(1) {
		t.Fatalf("cartCount = %v, want 1", got)
	}

	resp, body = doReq(t, http.MethodGet, srv.URL+"/cart/count", token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if got := body["cartCount"]; got != float64(1) {
		t.Fatalf("cartCount = %v, want 1", got)
	}
}

func TestCartAddUnknownProduct(t *testing.T) {
	srv, token := newCartTestServer(t)

	resp, _ := doReq(t, http.MethodPost, srv.URL+"/cart/add/nope", token)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestCartCountAnonymousIsZero(t *testing.T) {
	srv, _ := newCartTestServer(t)

	resp, body := doReq(t, http.MethodGet, srv.URL+"/cart/count", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if got := body["cartCount"]; got != float64(0) {
		t.Fatalf("cartCount = %v, want 0", got)
	}
}

func TestCartView(t *testing.T) {
	srv, token := newCartTestServer(t)

	for i := 0; i < 2; i++ {
		if resp, _ := doReq(t, http.MethodPost, srv.URL+"/cart/add/p1", token); resp.StatusCode != http.StatusOK {
			t.Fatalf("add: status = %d", resp.StatusCode)
		}
	}

	resp, body := doReq(t, http.MethodGet, srv.URL+"/cart", token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if got := body["totalPrice"]; got != "19.98" {
		t.Fatalf("totalPrice = %v, want 19.98", got)
	}
	items, ok := body["items"].([]any)
	if !ok || len(items) != 1 {
		t.Fatalf("items = %v, want one line", body["items"])
	}
}
