package product

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/mstore/shop-backend/internal/user"
)

type Handler struct {
	service     *Service
	userService user.ServiceInterface
}

func NewHandler(s *Service, us user.ServiceInterface) *Handler {
	return &Handler{service: s, userService: us}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/v1/products", h.listProducts)
	app.Get("/api/v1/products/:id<[0-9]+>", h.getProduct)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/products", h.createProduct)
	app.Put("/api/v1/products/:id<[0-9]+>", h.updateProduct)
	app.Delete("/api/v1/products/:id<[0-9]+>", h.deleteProduct)
}

type productRequest struct {
	Name        string `json:"productName"`
	Description string `json:"productDesc"`
	Stock       int    `json:"stock"`
	PriceCents  int64  `json:"priceCents"`
}

func (h *Handler) listProducts(c *fiber.Ctx) error {
	products, err := h.service.List()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "could not list products"})
	}
	return c.JSON(products)
}

func (h *Handler) getProduct(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}

	p, err := h.service.GetByID(id)
	if err != nil {
		if err == ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "product not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "could not load product"})
	}
	return c.JSON(p)
}

func (h *Handler) createProduct(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	payload := new(productRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	created, err := h.service.Create(Product{
		UserID:      userID,
		Name:        payload.Name,
		Description: payload.Description,
		Stock:       payload.Stock,
		PriceCents:  payload.PriceCents,
	})
	if err != nil {
		if err == ErrInvalid {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "name is required and stock/price must be non-negative"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "could not create product"})
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) updateProduct(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}

	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	existing, err := h.service.GetByID(id)
	if err != nil {
		if err == ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "product not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "could not load product"})
	}

	if !h.canModify(userID, existing.UserID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "you do not have permission to update this product"})
	}

	payload := new(productRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	existing.Name = payload.Name
	existing.Description = payload.Description
	existing.Stock = payload.Stock
	existing.PriceCents = payload.PriceCents

	updated, err := h.service.Update(id, existing)
	if err != nil {
		if err == ErrInvalid {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "name is required and stock/price must be non-negative"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "could not update product"})
	}

	return c.JSON(updated)
}

// deleteProduct removes a product. Deletion is explicit and restricted to
// the owner or an admin; cart and order item rows cascade in the database.
func (h *Handler) deleteProduct(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}

	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	existing, err := h.service.GetByID(id)
	if err != nil {
		if err == ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "product not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "could not load product"})
	}

	if !h.canModify(userID, existing.UserID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "you do not have permission to delete this product"})
	}

	if err := h.service.Delete(id); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "could not delete product"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) canModify(userID, ownerID int) bool {
	if user.CanModify(userID, ownerID) {
		return true
	}
	if h.userService == nil {
		return false
	}
	u, err := h.userService.GetByID(userID)
	return err == nil && u.IsAdmin
}
