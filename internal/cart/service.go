package cart

import "github.com/mstore/shop-backend/internal/user"

// Service orchestrates cart operations.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) AddItem(userID, productID, qty int) (CartItem, error) {
	if userID <= 0 {
		return CartItem{}, user.ErrNotFound
	}
	if qty < 1 {
		return CartItem{}, ErrInvalidQuantity
	}
	return s.repo.AddItem(userID, productID, qty)
}

func (s *Service) RemoveItem(userID, productID, qty int) error {
	if userID <= 0 {
		return user.ErrNotFound
	}
	if qty < 1 {
		return ErrInvalidQuantity
	}
	return s.repo.RemoveItem(userID, productID, qty)
}

func (s *Service) Get(userID int) (Cart, error) {
	if userID <= 0 {
		return Cart{}, user.ErrNotFound
	}
	return s.repo.Get(userID)
}

func (s *Service) Clear(userID int) error {
	if userID <= 0 {
		return user.ErrNotFound
	}
	return s.repo.Clear(userID)
}
