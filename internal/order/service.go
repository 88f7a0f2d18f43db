package order

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mstore/shop-backend/internal/email"
	"github.com/mstore/shop-backend/internal/payment"
	"github.com/mstore/shop-backend/internal/user"
)

// EventPublisher emits order lifecycle events. Publishing is best-effort;
// failures never fail the parent operation.
type EventPublisher interface {
	OrderCreated(o Order) error
	OrderPaid(o Order) error
	OrderCancelled(o Order) error
}

// Service drives the order lifecycle: checkout, cancellation and payment.
type Service struct {
	repo     Repository
	users    user.ServiceInterface
	gateway  payment.Gateway
	sender   email.Sender
	events   EventPublisher
	log      *zap.Logger
	currency string
	timeout  time.Duration
}

func NewService(repo Repository, users user.ServiceInterface, gateway payment.Gateway,
	sender email.Sender, events EventPublisher, log *zap.Logger,
	currency string, paymentTimeout time.Duration) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if sender == nil {
		sender = email.NopSender{}
	}
	return &Service{
		repo:     repo,
		users:    users,
		gateway:  gateway,
		sender:   sender,
		events:   events,
		log:      log,
		currency: currency,
		timeout:  paymentTimeout,
	}
}

// Checkout snapshots the user's cart into a pending order.
func (s *Service) Checkout(userID int) (Order, error) {
	if userID <= 0 {
		return Order{}, user.ErrNotFound
	}

	o, err := s.repo.CreateFromCart(userID)
	if err != nil {
		return Order{}, err
	}

	s.publish(func() error { return s.events.OrderCreated(o) }, "order.created", o.ID)
	return o, nil
}

// Get returns one order; only its owner may see it.
func (s *Service) Get(orderID, userID int) (Order, error) {
	o, err := s.repo.GetByID(orderID)
	if err != nil {
		return Order{}, err
	}
	if !user.CanModify(userID, o.UserID) {
		return Order{}, ErrForbidden
	}
	return o, nil
}

func (s *Service) ListByUser(userID int) ([]Order, error) {
	return s.repo.ListByUser(userID)
}

// Cancel moves a pending order to cancelled and restores the stock
// captured in its item snapshots. Orders not owned by the caller are
// reported as absent.
func (s *Service) Cancel(orderID, userID int) (Order, error) {
	o, err := s.repo.GetByID(orderID)
	if err != nil {
		return Order{}, err
	}
	if !user.CanModify(userID, o.UserID) {
		return Order{}, ErrNotFound
	}
	switch o.Status {
	case StatusCancelled:
		return Order{}, ErrAlreadyCancelled
	case StatusPaid:
		return Order{}, ErrCannotCancelPaid
	}

	cancelled, err := s.repo.CancelAndRestock(orderID)
	if err != nil {
		return Order{}, err
	}

	s.publish(func() error { return s.events.OrderCancelled(cancelled) }, "order.cancelled", orderID)
	return cancelled, nil
}

// Pay validates the card, invokes the payment gateway and, on success,
// marks the order paid. A gateway failure leaves the order pending so the
// payment can be retried.
func (s *Service) Pay(orderID, userID int, card payment.Card) (Order, error) {
	o, err := s.repo.GetByID(orderID)
	if err != nil {
		return Order{}, err
	}
	if !user.CanModify(userID, o.UserID) {
		return Order{}, ErrNotFound
	}
	switch o.Status {
	case StatusPaid:
		return Order{}, ErrAlreadyPaid
	case StatusCancelled:
		return Order{}, ErrInvalidTransition
	}

	if err := card.Validate(); err != nil {
		return Order{}, err
	}

	// bounded, non-cancellable external call; on timeout the order stays
	// pending rather than guessing a paid state
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	intent, err := s.gateway.CreateIntent(ctx, o.TotalCents, s.currency)
	if err != nil {
		s.log.Warn("payment declined",
			zap.Int("order_id", orderID),
			zap.Error(err))
		return Order{}, fmt.Errorf("%w: %v", payment.ErrDeclined, err)
	}

	if err := s.repo.MarkPaid(orderID); err != nil {
		return Order{}, err
	}
	o.Status = StatusPaid

	s.log.Info("order paid",
		zap.Int("order_id", orderID),
		zap.String("intent_id", intent.ID),
		zap.Int64("amount_cents", o.TotalCents))

	s.sendConfirmation(o)
	s.publish(func() error { return s.events.OrderPaid(o) }, "order.paid", orderID)
	return o, nil
}

// sendConfirmation is best-effort: a failed notification is logged and
// swallowed, never rolling back the paid state.
func (s *Service) sendConfirmation(o Order) {
	if s.users == nil {
		return
	}
	u, err := s.users.GetByID(o.UserID)
	if err != nil {
		s.log.Warn("could not load user for confirmation email",
			zap.Int("order_id", o.ID), zap.Error(err))
		return
	}

	lines := make([]email.Line, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, email.Line{Name: it.ProductName, Quantity: it.Quantity})
	}

	if err := s.sender.SendOrderConfirmation(u.Email, u.FirstName, o.ID, lines, o.TotalCents, s.currency); err != nil {
		s.log.Warn("failed to send confirmation email",
			zap.Int("order_id", o.ID), zap.Error(err))
	}
}

func (s *Service) publish(fn func() error, event string, orderID int) {
	if s.events == nil {
		return
	}
	if err := fn(); err != nil {
		s.log.Warn("failed to publish event",
			zap.String("event", event),
			zap.Int("order_id", orderID),
			zap.Error(err))
	}
}
