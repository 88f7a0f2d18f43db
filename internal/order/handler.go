package order

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/mstore/shop-backend/internal/payment"
	"github.com/mstore/shop-backend/internal/user"
)

// Handler delegates order operations to the order service.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/orders", h.checkout)
	// register /all before /:id so the literal segment wins
	app.Get("/api/v1/orders/all", h.listOrders)
	app.Get("/api/v1/orders/:id<[0-9]+>", h.getOrder)
	app.Post("/api/v1/orders/:id<[0-9]+>/cancel", h.cancelOrder)
	app.Post("/api/v1/orders/:id<[0-9]+>/payment", h.payOrder)
}

func (h *Handler) checkout(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	created, err := h.service.Checkout(userID)
	if err != nil {
		return orderError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) getOrder(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	orderID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid order id"})
	}

	o, err := h.service.Get(orderID, userID)
	if err != nil {
		return orderError(c, err)
	}

	return c.JSON(o)
}

func (h *Handler) listOrders(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	orders, err := h.service.ListByUser(userID)
	if err != nil {
		return orderError(c, err)
	}

	return c.JSON(orders)
}

func (h *Handler) cancelOrder(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	orderID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid order id"})
	}

	cancelled, err := h.service.Cancel(orderID, userID)
	if err != nil {
		return orderError(c, err)
	}

	return c.JSON(cancelled)
}

func (h *Handler) payOrder(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	orderID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid order id"})
	}

	card := new(payment.Card)
	if err := c.BodyParser(card); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	paid, err := h.service.Pay(orderID, userID, *card)
	if err != nil {
		return orderError(c, err)
	}

	return c.JSON(fiber.Map{"message": "card payment success", "order": paid})
}

func orderError(c *fiber.Ctx, err error) error {
	var stockErr *StockError
	var cardErr *payment.CardError

	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, user.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "order not found"})
	case errors.Is(err, ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": err.Error()})
	case errors.As(err, &stockErr),
		errors.As(err, &cardErr),
		errors.Is(err, ErrEmptyCart),
		errors.Is(err, ErrAlreadyCancelled),
		errors.Is(err, ErrCannotCancelPaid),
		errors.Is(err, ErrAlreadyPaid),
		errors.Is(err, ErrInvalidTransition),
		errors.Is(err, payment.ErrDeclined):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "an unexpected error occurred"})
	}
}
