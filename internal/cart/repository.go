package cart

import (
	"sort"
	"sync"
	"time"

	"github.com/mstore/shop-backend/internal/product"
)

// Repository provides cart persistence. Every mutation is a single atomic
// unit: the cart-item change and the matching stock adjustment either both
// happen or neither does. Stock is reserved the instant an item enters the
// cart and released when it leaves.
type Repository interface {
	AddItem(userID, productID, qty int) (CartItem, error)
	RemoveItem(userID, productID, qty int) error
	Get(userID int) (Cart, error)
	Clear(userID int) error
	ReleaseExpired(olderThan time.Time) (int, error)
}

type memItem struct {
	id        int
	productID int
	quantity  int
	updatedAt time.Time
}

// InMemoryRepository mirrors the Postgres semantics for tests and local
// scenarios. It shares a product repository so stock moves with the cart.
type InMemoryRepository struct {
	mu       sync.Mutex
	products *product.InMemoryRepository
	carts    map[int]int // userID -> cartID
	items    map[int][]memItem
	nextCart int
	nextItem int
}

func NewInMemoryRepository(products *product.InMemoryRepository) *InMemoryRepository {
	return &InMemoryRepository{
		products: products,
		carts:    make(map[int]int),
		items:    make(map[int][]memItem),
		nextCart: 1,
		nextItem: 1,
	}
}

func (r *InMemoryRepository) cartID(userID int) int {
	id, ok := r.carts[userID]
	if !ok {
		id = r.nextCart
		r.nextCart++
		r.carts[userID] = id
	}
	return id
}

func (r *InMemoryRepository) AddItem(userID, productID, qty int) (CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.products.GetByID(productID)
	if err != nil {
		return CartItem{}, err
	}
	if p.Stock == 0 {
		return CartItem{}, ErrOutOfStock
	}
	if qty > p.Stock {
		return CartItem{}, ErrInsufficientStock
	}

	cartID := r.cartID(userID)
	items := r.items[cartID]
	idx := -1
	for i := range items {
		if items[i].productID == productID {
			idx = i
			break
		}
	}
	if idx >= 0 {
		items[idx].quantity += qty
		items[idx].updatedAt = time.Now()
	} else {
		items = append(items, memItem{id: r.nextItem, productID: productID, quantity: qty, updatedAt: time.Now()})
		r.nextItem++
		idx = len(items) - 1
	}
	r.items[cartID] = items

	if err := r.products.AdjustStock(productID, -qty); err != nil {
		return CartItem{}, err
	}

	it := items[idx]
	return CartItem{
		ID:          it.id,
		ProductID:   productID,
		ProductName: p.Name,
		PriceCents:  p.PriceCents,
		Quantity:    it.quantity,
		TotalCents:  p.PriceCents * int64(it.quantity),
	}, nil
}

func (r *InMemoryRepository) RemoveItem(userID, productID, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.products.GetByID(productID); err != nil {
		return err
	}

	cartID := r.cartID(userID)
	items := r.items[cartID]
	idx := -1
	for i := range items {
		if items[i].productID == productID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrItemNotInCart
	}
	if qty > items[idx].quantity {
		return ErrExcessRemoval
	}

	items[idx].quantity -= qty
	items[idx].updatedAt = time.Now()
	if items[idx].quantity == 0 {
		items = append(items[:idx], items[idx+1:]...)
	}
	r.items[cartID] = items

	return r.products.AdjustStock(productID, qty)
}

func (r *InMemoryRepository) Get(userID int) (Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buildCart(userID)
}

func (r *InMemoryRepository) buildCart(userID int) (Cart, error) {
	cartID := r.cartID(userID)
	c := Cart{ID: cartID, UserID: userID, Items: make([]CartItem, 0)}
	items := r.items[cartID]
	sort.Slice(items, func(i, j int) bool { return items[i].productID < items[j].productID })
	for _, it := range items {
		p, err := r.products.GetByID(it.productID)
		if err != nil {
			continue
		}
		line := p.PriceCents * int64(it.quantity)
		c.Items = append(c.Items, CartItem{
			ID:          it.id,
			ProductID:   it.productID,
			ProductName: p.Name,
			PriceCents:  p.PriceCents,
			Quantity:    it.quantity,
			TotalCents:  line,
		})
		c.TotalCents += line
	}
	return c, nil
}

func (r *InMemoryRepository) Clear(userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cartID := r.cartID(userID)
	for _, it := range r.items[cartID] {
		if err := r.products.AdjustStock(it.productID, it.quantity); err != nil && err != product.ErrNotFound {
			return err
		}
	}
	r.items[cartID] = nil
	return nil
}

// DropItems empties the cart without restoring stock. Checkout uses this:
// the reservation is consumed by the order, not released.
func (r *InMemoryRepository) DropItems(userID int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[r.cartID(userID)] = nil
}

func (r *InMemoryRepository) ReleaseExpired(olderThan time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	released := 0
	for cartID, items := range r.items {
		kept := items[:0]
		for _, it := range items {
			if it.updatedAt.Before(olderThan) {
				if err := r.products.AdjustStock(it.productID, it.quantity); err == nil || err == product.ErrNotFound {
					released++
					continue
				}
			}
			kept = append(kept, it)
		}
		r.items[cartID] = kept
	}
	return released, nil
}
