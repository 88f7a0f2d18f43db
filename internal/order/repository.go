package order

import (
	"sort"
	"sync"
	"time"

	"github.com/mstore/shop-backend/internal/cart"
	"github.com/mstore/shop-backend/internal/product"
)

// Repository persists orders. CreateFromCart and CancelAndRestock are
// atomic units spanning the order, its items and the affected product
// stock counters; a failure mid-way leaves no partial state.
type Repository interface {
	// CreateFromCart snapshots the user's cart into a pending order,
	// re-validating stock per item, and empties the cart without
	// restoring stock (the reservation is consumed by the order).
	CreateFromCart(userID int) (Order, error)
	GetByID(orderID int) (Order, error)
	ListByUser(userID int) ([]Order, error)
	// CancelAndRestock moves a pending order to cancelled and restores
	// the exact quantities captured in its items. Non-pending orders
	// fail with ErrInvalidTransition.
	CancelAndRestock(orderID int) (Order, error)
	// MarkPaid moves a pending order to paid; ErrInvalidTransition if a
	// concurrent transition won.
	MarkPaid(orderID int) error
}

// InMemoryRepository mirrors the Postgres semantics for tests. It shares
// the product and cart repositories so stock and cart state move together.
type InMemoryRepository struct {
	mu       sync.Mutex
	products *product.InMemoryRepository
	carts    *cart.InMemoryRepository
	orders   map[int]Order
	nextID   int
	nextItem int
}

func NewInMemoryRepository(products *product.InMemoryRepository, carts *cart.InMemoryRepository) *InMemoryRepository {
	return &InMemoryRepository{
		products: products,
		carts:    carts,
		orders:   make(map[int]Order),
		nextID:   1,
		nextItem: 1,
	}
}

func (r *InMemoryRepository) CreateFromCart(userID int) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, err := r.carts.Get(userID)
	if err != nil {
		return Order{}, err
	}
	if len(c.Items) == 0 {
		return Order{}, ErrEmptyCart
	}

	// re-validate stock before creating anything; one failure rejects all
	for _, it := range c.Items {
		p, err := r.products.GetByID(it.ProductID)
		if err != nil {
			return Order{}, err
		}
		if p.Stock < 0 {
			return Order{}, &StockError{ProductID: p.ID, ProductName: p.Name}
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	o := Order{
		ID:        r.nextID,
		UserID:    userID,
		CartID:    c.ID,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
		Items:     make([]OrderItem, 0, len(c.Items)),
	}
	r.nextID++

	for _, it := range c.Items {
		o.TotalCents += it.PriceCents * int64(it.Quantity)
		o.Items = append(o.Items, OrderItem{
			ID:          r.nextItem,
			OrderID:     o.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			PriceCents:  it.PriceCents,
		})
		r.nextItem++
	}

	r.carts.DropItems(userID)
	r.orders[o.ID] = o
	return o, nil
}

func (r *InMemoryRepository) GetByID(orderID int) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[orderID]
	if !ok {
		return Order{}, ErrNotFound
	}
	return o, nil
}

func (r *InMemoryRepository) ListByUser(userID int) ([]Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Order, 0)
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *InMemoryRepository) CancelAndRestock(orderID int) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[orderID]
	if !ok {
		return Order{}, ErrNotFound
	}
	if !o.Status.CanTransitionTo(StatusCancelled) {
		return Order{}, ErrInvalidTransition
	}

	for _, it := range o.Items {
		if err := r.products.AdjustStock(it.ProductID, it.Quantity); err != nil && err != product.ErrNotFound {
			return Order{}, err
		}
	}

	o.Status = StatusCancelled
	o.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	r.orders[orderID] = o
	return o, nil
}

func (r *InMemoryRepository) MarkPaid(orderID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	if !o.Status.CanTransitionTo(StatusPaid) {
		return ErrInvalidTransition
	}

	o.Status = StatusPaid
	o.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	r.orders[orderID] = o
	return nil
}
