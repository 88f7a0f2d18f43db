package order

import (
	"errors"
	"fmt"
)

// Status is the order lifecycle state. pending may move to paid or
// cancelled; both of those are terminal.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further transition is permitted.
func (s Status) Terminal() bool {
	return s == StatusPaid || s == StatusCancelled
}

// CanTransitionTo reports whether the transition s -> next is allowed.
func (s Status) CanTransitionTo(next Status) bool {
	if s != StatusPending {
		return false
	}
	return next == StatusPaid || next == StatusCancelled
}

// Order is an immutable snapshot of a checkout. Only status may change
// after creation; totals and items are fixed at checkout time.
type Order struct {
	ID         int         `json:"orderID"`
	UserID     int         `json:"userId"`
	CartID     int         `json:"cartId,omitempty"`
	TotalCents int64       `json:"totalCents"`
	Status     Status      `json:"status"`
	CreatedAt  string      `json:"createdAt,omitempty"`
	UpdatedAt  string      `json:"updatedAt,omitempty"`
	Items      []OrderItem `json:"items"`
}

// OrderItem captures quantity and price at order-creation time, so
// historical orders are unaffected by later catalog changes.
type OrderItem struct {
	ID          int    `json:"itemId"`
	OrderID     int    `json:"orderID"`
	ProductID   int    `json:"productID"`
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
	PriceCents  int64  `json:"priceCents"`
}

var (
	ErrNotFound          = errors.New("order not found")
	ErrForbidden         = errors.New("you do not have permission to access this order")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrAlreadyCancelled  = errors.New("this order has already been cancelled")
	ErrCannotCancelPaid  = errors.New("a paid order cannot be cancelled")
	ErrAlreadyPaid       = errors.New("order is already paid")
	ErrInvalidTransition = errors.New("order is in a terminal state")
)

// StockError reports the product that failed the checkout stock re-check.
type StockError struct {
	ProductID   int
	ProductName string
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s", e.ProductName)
}
