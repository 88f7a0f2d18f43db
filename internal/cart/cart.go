package cart

import "errors"

// Cart is the per-user shopping cart. It is created lazily on first access
// and emptied, never deleted, after checkout.
type Cart struct {
	ID         int        `json:"cartId"`
	UserID     int        `json:"userId"`
	CreatedAt  string     `json:"createdAt,omitempty"`
	Items      []CartItem `json:"items"`
	TotalCents int64      `json:"totalCents"`
}

// CartItem holds a reserved quantity of one product. Adding a product that
// is already present increments the row instead of duplicating it.
type CartItem struct {
	ID          int    `json:"itemId"`
	ProductID   int    `json:"productID"`
	ProductName string `json:"productName"`
	PriceCents  int64  `json:"priceCents"`
	Quantity    int    `json:"quantity"`
	TotalCents  int64  `json:"totalCents"`
}

var (
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrOutOfStock        = errors.New("the product is out of stock")
	ErrInsufficientStock = errors.New("insufficient stock for the requested quantity")
	ErrItemNotInCart     = errors.New("the product is not in the cart")
	ErrExcessRemoval     = errors.New("the requested quantity exceeds the quantity in the cart")
)
