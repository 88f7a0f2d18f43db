package cart

import (
	"testing"
	"time"

	"github.com/mstore/shop-backend/internal/product"
)

func newTestService(stock int) (*Service, *product.InMemoryRepository) {
	products := product.NewInMemoryRepository([]product.Product{
		{ID: 1, UserID: 9, Name: "Collar", Stock: stock, PriceCents: 1000},
	})
	return NewService(NewInMemoryRepository(products)), products
}

func mustStock(t *testing.T, products *product.InMemoryRepository, id, want int) {
	t.Helper()
	p, err := products.GetByID(id)
	if err != nil {
		t.Fatalf("product %d not found: %v", id, err)
	}
	if p.Stock != want {
		t.Fatalf("expected stock %d, got %d", want, p.Stock)
	}
}

func TestAddItem_ReservesStock(t *testing.T) {
	svc, products := newTestService(5)

	item, err := svc.AddItem(42, 1, 3)
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if item.Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", item.Quantity)
	}
	if item.TotalCents != 3000 {
		t.Fatalf("expected item total 3000, got %d", item.TotalCents)
	}
	mustStock(t, products, 1, 2)
}

func TestAddItem_IncrementsExistingRow(t *testing.T) {
	svc, products := newTestService(5)

	if _, err := svc.AddItem(42, 1, 2); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	item, err := svc.AddItem(42, 1, 1)
	if err != nil {
		t.Fatalf("second add failed: %v", err)
	}
	if item.Quantity != 3 {
		t.Fatalf("expected quantity 3 after increment, got %d", item.Quantity)
	}

	c, err := svc.Get(42)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(c.Items) != 1 {
		t.Fatalf("expected a single cart item, got %d", len(c.Items))
	}
	mustStock(t, products, 1, 2)
}

func TestAddItem_OutOfStock(t *testing.T) {
	svc, products := newTestService(0)

	if _, err := svc.AddItem(42, 1, 1); err != ErrOutOfStock {
		t.Fatalf("expected ErrOutOfStock, got %v", err)
	}
	mustStock(t, products, 1, 0)
}

func TestAddItem_InsufficientStock(t *testing.T) {
	svc, products := newTestService(5)

	if _, err := svc.AddItem(42, 1, 6); err != ErrInsufficientStock {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	mustStock(t, products, 1, 5)

	c, _ := svc.Get(42)
	if len(c.Items) != 0 {
		t.Fatalf("expected empty cart after rejected add, got %d items", len(c.Items))
	}
}

func TestAddItem_UnknownProduct(t *testing.T) {
	svc, _ := newTestService(5)

	if _, err := svc.AddItem(42, 99, 1); err != product.ErrNotFound {
		t.Fatalf("expected product.ErrNotFound, got %v", err)
	}
}

func TestAddItem_InvalidQuantity(t *testing.T) {
	svc, _ := newTestService(5)

	if _, err := svc.AddItem(42, 1, 0); err != ErrInvalidQuantity {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestAddThenRemove_RoundTrip(t *testing.T) {
	svc, products := newTestService(5)

	if _, err := svc.AddItem(42, 1, 3); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if err := svc.RemoveItem(42, 1, 3); err != nil {
		t.Fatalf("RemoveItem failed: %v", err)
	}

	mustStock(t, products, 1, 5)
	c, _ := svc.Get(42)
	if len(c.Items) != 0 {
		t.Fatalf("expected empty cart after round trip, got %d items", len(c.Items))
	}
}

func TestRemoveItem_Partial(t *testing.T) {
	svc, products := newTestService(5)

	if _, err := svc.AddItem(42, 1, 3); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if err := svc.RemoveItem(42, 1, 1); err != nil {
		t.Fatalf("RemoveItem failed: %v", err)
	}

	mustStock(t, products, 1, 3)
	c, _ := svc.Get(42)
	if len(c.Items) != 1 || c.Items[0].Quantity != 2 {
		t.Fatalf("expected quantity 2 left in cart, got %+v", c.Items)
	}
}

func TestRemoveItem_ExcessRemoval(t *testing.T) {
	svc, products := newTestService(5)

	if _, err := svc.AddItem(42, 1, 3); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if err := svc.RemoveItem(42, 1, 10); err != ErrExcessRemoval {
		t.Fatalf("expected ErrExcessRemoval, got %v", err)
	}

	// no state change on rejection
	mustStock(t, products, 1, 2)
	c, _ := svc.Get(42)
	if len(c.Items) != 1 || c.Items[0].Quantity != 3 {
		t.Fatalf("expected cart unchanged, got %+v", c.Items)
	}
}

func TestRemoveItem_NotInCart(t *testing.T) {
	svc, _ := newTestService(5)

	if err := svc.RemoveItem(42, 1, 1); err != ErrItemNotInCart {
		t.Fatalf("expected ErrItemNotInCart, got %v", err)
	}
}

func TestGet_ComputesTotals(t *testing.T) {
	products := product.NewInMemoryRepository([]product.Product{
		{ID: 1, Name: "Collar", Stock: 5, PriceCents: 1000},
		{ID: 2, Name: "Leash", Stock: 5, PriceCents: 250},
	})
	svc := NewService(NewInMemoryRepository(products))

	if _, err := svc.AddItem(42, 1, 2); err != nil {
		t.Fatalf("add collar failed: %v", err)
	}
	if _, err := svc.AddItem(42, 2, 4); err != nil {
		t.Fatalf("add leash failed: %v", err)
	}

	c, err := svc.Get(42)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if c.TotalCents != 3000 {
		t.Fatalf("expected cart total 3000, got %d", c.TotalCents)
	}
	for _, it := range c.Items {
		if it.TotalCents != it.PriceCents*int64(it.Quantity) {
			t.Fatalf("item total mismatch: %+v", it)
		}
	}
}

func TestClear_RestoresStock(t *testing.T) {
	svc, products := newTestService(5)

	if _, err := svc.AddItem(42, 1, 4); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if err := svc.Clear(42); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	mustStock(t, products, 1, 5)
	c, _ := svc.Get(42)
	if len(c.Items) != 0 {
		t.Fatalf("expected empty cart after clear, got %d items", len(c.Items))
	}
}

func TestReleaseExpired_RestoresStock(t *testing.T) {
	products := product.NewInMemoryRepository([]product.Product{
		{ID: 1, Name: "Collar", Stock: 5, PriceCents: 1000},
	})
	repo := NewInMemoryRepository(products)
	svc := NewService(repo)

	if _, err := svc.AddItem(42, 1, 3); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	// everything currently in the cart counts as expired
	released, err := repo.ReleaseExpired(time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("ReleaseExpired failed: %v", err)
	}
	if released != 1 {
		t.Fatalf("expected 1 released item, got %d", released)
	}

	mustStock(t, products, 1, 5)
	c, _ := svc.Get(42)
	if len(c.Items) != 0 {
		t.Fatalf("expected empty cart after release, got %d items", len(c.Items))
	}
}

func TestReleaseExpired_KeepsFreshItems(t *testing.T) {
	products := product.NewInMemoryRepository([]product.Product{
		{ID: 1, Name: "Collar", Stock: 5, PriceCents: 1000},
	})
	repo := NewInMemoryRepository(products)

	if _, err := repo.AddItem(42, 1, 3); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	released, err := repo.ReleaseExpired(time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("ReleaseExpired failed: %v", err)
	}
	if released != 0 {
		t.Fatalf("expected no released items, got %d", released)
	}
	mustStock(t, products, 1, 2)
}
