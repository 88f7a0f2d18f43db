package cart

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/mstore/shop-backend/internal/product"
	"github.com/mstore/shop-backend/internal/user"
)

// Handler delegates cart operations to the cart service.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/cart", h.getCart)
	app.Post("/api/v1/cart/add/:productID<[0-9]+>", h.addItem)
	app.Post("/api/v1/cart/remove/:productID<[0-9]+>", h.removeItem)
	app.Delete("/api/v1/cart", h.clearCart)
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) addItem(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	productID, err := strconv.Atoi(c.Params("productID"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}

	qty, err := parseQuantity(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	item, err := h.service.AddItem(userID, productID, qty)
	if err != nil {
		return cartError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(item)
}

func (h *Handler) removeItem(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	productID, err := strconv.Atoi(c.Params("productID"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}

	qty, err := parseQuantity(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	if err := h.service.RemoveItem(userID, productID, qty); err != nil {
		return cartError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) getCart(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	cart, err := h.service.Get(userID)
	if err != nil {
		return cartError(c, err)
	}

	return c.JSON(cart)
}

func (h *Handler) clearCart(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	if err := h.service.Clear(userID); err != nil {
		return cartError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// parseQuantity reads the optional body {"quantity": n}, defaulting to 1.
func parseQuantity(c *fiber.Ctx) (int, error) {
	if len(c.Body()) == 0 {
		return 1, nil
	}
	payload := new(quantityRequest)
	if err := c.BodyParser(payload); err != nil {
		return 0, err
	}
	if payload.Quantity == 0 {
		return 1, nil
	}
	return payload.Quantity, nil
}

func cartError(c *fiber.Ctx, err error) error {
	switch err {
	case product.ErrNotFound:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "the product does not exist"})
	case user.ErrNotFound:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "user not found"})
	case ErrInvalidQuantity, ErrOutOfStock, ErrInsufficientStock, ErrItemNotInCart, ErrExcessRemoval:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "an unexpected error occurred"})
	}
}
