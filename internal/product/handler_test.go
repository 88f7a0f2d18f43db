package product

import (
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"github.com/mstore/shop-backend/internal/user"
)

// fakeAuth injects a parsed jwt token for the user named by the X-User-ID
// header, standing in for the jwt middleware.
func fakeAuth(c *fiber.Ctx) error {
	raw := c.Get("X-User-ID")
	if raw == "" {
		return c.Next()
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return c.Next()
	}
	c.Locals("user", &jwt.Token{Claims: jwt.MapClaims{"user_id": float64(id)}})
	return c.Next()
}

func makeProductApp() *fiber.App {
	products := NewInMemoryRepository([]Product{
		{ID: 1, UserID: 9, Name: "Collar", Stock: 5, PriceCents: 1000},
	})
	users := user.NewService(user.NewInMemoryRepository([]user.User{
		{ID: 9, Email: "owner@example.com"},
		{ID: 7, Email: "someone@example.com"},
		{ID: 1, Email: "admin@example.com", IsAdmin: true},
	}))

	app := fiber.New()
	app.Use(fakeAuth)
	h := NewHandler(NewService(products), users)
	h.RegisterPublicRoutes(app)
	h.RegisterProtectedRoutes(app)
	return app
}

func TestHandler_ListProducts(t *testing.T) {
	app := makeProductApp()

	res, err := app.Test(httptest.NewRequest("GET", "/api/v1/products", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected status 200, got %d", res.StatusCode)
	}

	var products []Product
	if err := json.NewDecoder(res.Body).Decode(&products); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(products) != 1 || products[0].Name != "Collar" {
		t.Fatalf("unexpected products: %+v", products)
	}
}

func TestHandler_GetProduct_NotFound(t *testing.T) {
	app := makeProductApp()

	res, err := app.Test(httptest.NewRequest("GET", "/api/v1/products/99", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected status 404, got %d", res.StatusCode)
	}
}

func TestHandler_CreateProduct(t *testing.T) {
	app := makeProductApp()

	body := `{"productName":"Leash","productDesc":"nylon","stock":3,"priceCents":250}`
	req := httptest.NewRequest("POST", "/api/v1/products", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "7")

	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected status 201, got %d", res.StatusCode)
	}

	var created Product
	if err := json.NewDecoder(res.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if created.UserID != 7 || created.Name != "Leash" {
		t.Fatalf("unexpected created product: %+v", created)
	}
}

func TestHandler_CreateProduct_Invalid(t *testing.T) {
	app := makeProductApp()

	body := `{"productName":"","stock":-1,"priceCents":250}`
	req := httptest.NewRequest("POST", "/api/v1/products", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "7")

	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", res.StatusCode)
	}
}

func TestHandler_UpdateProduct_NonOwner(t *testing.T) {
	app := makeProductApp()

	body := `{"productName":"Collar","stock":5,"priceCents":1000}`
	req := httptest.NewRequest("PUT", "/api/v1/products/1", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "7")

	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusForbidden {
		t.Fatalf("expected status 403, got %d", res.StatusCode)
	}
}

func TestHandler_DeleteProduct_Owner(t *testing.T) {
	app := makeProductApp()

	req := httptest.NewRequest("DELETE", "/api/v1/products/1", nil)
	req.Header.Set("X-User-ID", "9")

	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusNoContent {
		t.Fatalf("expected status 204, got %d", res.StatusCode)
	}
}

func TestHandler_DeleteProduct_Admin(t *testing.T) {
	app := makeProductApp()

	req := httptest.NewRequest("DELETE", "/api/v1/products/1", nil)
	req.Header.Set("X-User-ID", "1")

	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusNoContent {
		t.Fatalf("expected status 204, got %d", res.StatusCode)
	}
}

func TestHandler_DeleteProduct_NonOwner(t *testing.T) {
	app := makeProductApp()

	req := httptest.NewRequest("DELETE", "/api/v1/products/1", nil)
	req.Header.Set("X-User-ID", "7")

	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusForbidden {
		t.Fatalf("expected status 403, got %d", res.StatusCode)
	}
}
