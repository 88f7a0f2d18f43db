package product

// Product represents a catalog entry. Prices are integer cents so stock
// and money arithmetic stays exact. Stock is never negative; the cart and
// order repositories adjust it inside their own transactions.
type Product struct {
	ID          int    `json:"productID"`
	UserID      int    `json:"userId"`
	Name        string `json:"productName"`
	Description string `json:"productDesc,omitempty"`
	Stock       int    `json:"stock"`
	PriceCents  int64  `json:"priceCents"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

// InStock reports whether any units remain unreserved.
func (p Product) InStock() bool {
	return p.Stock > 0
}
