package cart

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/essentials-shop/storefront/internal/catalog"
	"github.com/essentials-shop/storefront/internal/orders"
)

type fakeCatalog struct {
	mu     sync.Mutex
	prices map[string]decimal.Decimal
}

func (f *fakeCatalog) ProductPrice(ctx context.Context, productID string) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.prices[productID]
	if !ok {
		return decimal.Zero, catalog.ErrProductNotFound
	}
	return p, nil
}

func (f *fakeCatalog) setPrice(productID string, price string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prices[productID] = decimal.RequireFromString(price)
}

type fakeLine struct {
	qty   int
	price decimal.Decimal
}

type fakeStore struct {
	mu    sync.Mutex
	open  map[string]string              // userID -> open orderID
	owner map[string]string              // orderID -> userID
	lines map[string]map[string]fakeLine // orderID -> productID -> line
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		open:  map[string]string{},
		owner: map[string]string{},
		lines: map[string]map[string]fakeLine{},
	}
}

func (f *fakeStore) OpenOrder(ctx context.Context, userID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.open[userID]
	if !ok {
		return "", orders.ErrNoOpenOrder
	}
	return id, nil
}

func (f *fakeStore) EnsureOpenOrder(ctx context.Context, userID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id, ok := f.open[userID]; ok {
		return id, nil
	}
	id := uuid.NewString()
	f.open[userID] = id
	f.owner[id] = userID
	f.lines[id] = map[string]fakeLine{}
	return id, nil
}

func (f *fakeStore) UpsertLineIncrement(ctx context.Context, orderID, productID string, price decimal.Decimal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.lines[orderID][productID]
	if !ok {
		f.lines[orderID][productID] = fakeLine{qty: 1, price: price}
		return nil
	}
	l.qty++
	f.lines[orderID][productID] = l
	return nil
}

func (f *fakeStore) IncrementLine(ctx context.Context, orderID, productID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if l, ok := f.lines[orderID][productID]; ok {
		l.qty++
		f.lines[orderID][productID] = l
	}
	return nil
}

func (f *fakeStore) DecrementOrDeleteLine(ctx context.Context, orderID, productID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.lines[orderID][productID]
	if !ok {
		return nil
	}
	if l.qty > 1 {
		l.qty--
		f.lines[orderID][productID] = l
		return nil
	}
	delete(f.lines[orderID], productID)
	return nil
}

func (f *fakeStore) DeleteLine(ctx context.Context, orderID, productID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.lines[orderID], productID)
	return nil
}

func (f *fakeStore) Lines(ctx context.Context, orderID string) ([]orders.CartLine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []orders.CartLine
	for pid, l := range f.lines[orderID] {
		out = append(out, orders.CartLine{ProductID: pid, Quantity: l.qty, Price: l.price})
	}
	return out, nil
}

func (f *fakeStore) CountItems(ctx context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.open[userID]
	if !ok {
		return 0, nil
	}
	n := 0
	for _, l := range f.lines[id] {
		n += l.qty
	}
	return n, nil
}

func newTestService() (*Service, *fakeStore, *fakeCatalog) {
	store := newFakeStore()
	cat := &fakeCatalog{prices: map[string]decimal.Decimal{}}
	return &Service{Store: store, Catalog: cat}, store, cat
}

func TestAddItemSnapshotsPrice(t *testing.T) {
	ctx := context.Background()
	svc, store, cat := newTestService()
	cat.setPrice("p1", "10.00")

	count, err := svc.AddItem(ctx, "u1", "p1")
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}

	// later catalog price change must not touch the stored snapshot
	cat.setPrice("p1", "15.00")
	if count, err = svc.AddItem(ctx, "u1", "p1"); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}

	orderID := store.open["u1"]
	line := store.lines[orderID]["p1"]
	if !line.price.Equal(decimal.RequireFromString("10.00")) {
		t.Errorf("snapshot price = %s, want 10.00", line.price)
	}

	view, err := svc.Cart(ctx, "u1")
	if err != nil {
		t.Fatalf("Cart: %v", err)
	}
	if !view.TotalPrice.Equal(decimal.RequireFromString("20.00")) {
		t.Errorf("total = %s, want 20.00", view.TotalPrice)
	}
}

func TestAddItemUnknownProduct(t *testing.T) {
	svc, _, _ := newTestService()
	if _, err := svc.AddItem(context.Background(), "u1", "nope"); !errors.Is(err, catalog.ErrProductNotFound) {
		t.Fatalf("err = %v, want ErrProductNotFound", err)
	}
}

func TestMutationsWithoutOpenOrderAreNoops(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	for name, op := range map[string]func(context.Context, string, string) (int, error){
		"increment": svc.IncrementItem,
		"decrement": svc.DecrementItem,
		"remove":    svc.RemoveItem,
	} {
		count, err := op(ctx, "u1", "p1")
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if count != 0 {
			t.Fatalf("%s count = %d, want 0", name, count)
		}
	}
}

func TestDecrementAtOneRemovesLine(t *testing.T) {
	ctx := context.Background()
	svc, store, cat := newTestService()
	cat.setPrice("p1", "3.50")

	if _, err := svc.AddItem(ctx, "u1", "p1"); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	count, err := svc.DecrementItem(ctx, "u1", "p1")
	if err != nil {
		t.Fatalf("DecrementItem: %v", err)
	}
	if count != 0 {
		t.Fatalf("count = %d, want 0", count)
	}

	orderID := store.open["u1"]
	if _, ok := store.lines[orderID]["p1"]; ok {
		t.Fatal("line still stored after decrement at quantity 1")
	}
}

func TestQuantityAlgebra(t *testing.T) {
	ctx := context.Background()
	svc, _, cat := newTestService()
	cat.setPrice("a", "1.00")
	cat.setPrice("b", "2.00")

	steps := []struct {
		op        func(context.Context, string, string) (int, error)
		productID string
		wantCount int
	}{
		{svc.AddItem, "a", 1},
		{svc.AddItem, "a", 2},
		{svc.AddItem, "b", 3},
		{svc.IncrementItem, "a", 4},
		{svc.DecrementItem, "a", 3},
		{svc.DecrementItem, "a", 2},
		{svc.DecrementItem, "a", 1}, // last unit of a removes the line
		{svc.IncrementItem, "a", 1}, // absent line, no-op
		{svc.RemoveItem, "b", 0},
	}
	for i, s := range steps {
		count, err := s.op(ctx, "u1", s.productID)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if count != s.wantCount {
			t.Fatalf("step %d: count = %d, want %d", i, count, s.wantCount)
		}
	}
}

func TestEmptyCartReads(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	view, err := svc.Cart(ctx, "u1")
	if err != nil {
		t.Fatalf("Cart: %v", err)
	}
	if len(view.Items) != 0 || !view.TotalPrice.Equal(decimal.Zero) {
		t.Fatalf("empty cart view = %+v", view)
	}

	count, err := svc.Count(ctx, "u1")
	if err != nil || count != 0 {
		t.Fatalf("Count = %d, %v; want 0, nil", count, err)
	}
}

func TestConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	svc, _, cat := newTestService()
	cat.setPrice("p1", "9.99")

	const n = 50
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			_, err := svc.AddItem(ctx, "u1", "p1")
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent AddItem: %v", err)
	}

	count, err := svc.Count(ctx, "u1")
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != n {
		t.Fatalf("count = %d, want %d", count, n)
	}
}
