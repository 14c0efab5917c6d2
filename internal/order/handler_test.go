package order

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

func newTestApp(userID uuid.UUID, repo *InMemoryRepository) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"user_id": userID.String(),
		}))
		return c.Next()
	})

	handler := NewHandler(NewService(repo, nil))
	handler.RegisterProtectedRoutes(app)
	// the admin gate is exercised in the user package; pass-through here
	handler.RegisterAdminRoutes(app, func(c *fiber.Ctx) error { return c.Next() })
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, payload any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request %s %s: %v", method, path, err)
	}
	return resp
}

func TestCheckoutEndpoint(t *testing.T) {
	userID := uuid.New()
	repo := NewInMemoryRepository(catalog())
	repo.PutCartLine(userID, 1, "M", 2)
	app := newTestApp(userID, repo)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/checkout", validRecipient())
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var ord Order
	if err := json.NewDecoder(resp.Body).Decode(&ord); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ord.Status != StatusProcessing || ord.TotalPrice != 240 {
		t.Fatalf("unexpected order %+v", ord)
	}
}

func TestCheckoutEndpointErrors(t *testing.T) {
	userID := uuid.New()
	repo := NewInMemoryRepository(catalog())
	app := newTestApp(userID, repo)

	// no cart yet
	if resp := doJSON(t, app, http.MethodPost, "/api/v1/checkout", validRecipient()); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("no cart: expected 404, got %d", resp.StatusCode)
	}

	// bad recipient
	bad := validRecipient()
	bad.Phone = "12345"
	repo.PutCartLine(userID, 1, "M", 1)
	if resp := doJSON(t, app, http.MethodPost, "/api/v1/checkout", bad); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad phone: expected 400, got %d", resp.StatusCode)
	}

	// drain the cart, then try again
	if resp := doJSON(t, app, http.MethodPost, "/api/v1/checkout", validRecipient()); resp.StatusCode != http.StatusCreated {
		t.Fatalf("checkout: expected 201, got %d", resp.StatusCode)
	}
	if resp := doJSON(t, app, http.MethodPost, "/api/v1/checkout", validRecipient()); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty cart: expected 400, got %d", resp.StatusCode)
	}
}

func TestGetMyOrdersOnlyReturnsOwn(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()
	repo := NewInMemoryRepository(catalog())

	service := NewService(repo, nil)
	repo.PutCartLine(bob, 1, "M", 1)
	if _, err := service.Checkout(bob, validRecipient()); err != nil {
		t.Fatalf("bob's checkout: %v", err)
	}

	app := newTestApp(alice, repo)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var orders []Order
	if err := json.NewDecoder(resp.Body).Decode(&orders); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(orders) != 0 {
		t.Fatalf("alice sees bob's orders: %+v", orders)
	}
}

func TestAdminOrdersListAndFilter(t *testing.T) {
	userID := uuid.New()
	repo := NewInMemoryRepository(catalog())
	service := NewService(repo, nil)
	app := newTestApp(userID, repo)

	for i := 0; i < 3; i++ {
		repo.PutCartLine(userID, 1, "M", 1)
		if _, err := service.Checkout(userID, validRecipient()); err != nil {
			t.Fatalf("checkout %d: %v", i, err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders?number=2", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var orders []Order
	if err := json.NewDecoder(resp.Body).Decode(&orders); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(orders) != 1 || orders[0].Number != 2 {
		t.Fatalf("expected only order number 2, got %+v", orders)
	}
}

func TestUpdateStatusEndpoint(t *testing.T) {
	userID := uuid.New()
	repo := NewInMemoryRepository(catalog())
	service := NewService(repo, nil)
	app := newTestApp(userID, repo)

	repo.PutCartLine(userID, 1, "M", 1)
	ord, err := service.Checkout(userID, validRecipient())
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	path := "/api/v1/admin/orders/" + ord.ID.String() + "/status"

	resp := doJSON(t, app, http.MethodPatch, path, statusRequest{Status: StatusShipped})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("ship: expected 200, got %d", resp.StatusCode)
	}

	// processing is behind shipped now; going back is refused
	resp = doJSON(t, app, http.MethodPatch, path, statusRequest{Status: StatusProcessing})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("backward transition: expected 422, got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, http.MethodPatch, path, statusRequest{Status: Status("lost")})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown status: expected 400, got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, http.MethodPatch, "/api/v1/admin/orders/"+uuid.NewString()+"/status", statusRequest{Status: StatusShipped})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown order: expected 404, got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, http.MethodPatch, "/api/v1/admin/orders/not-a-uuid/status", statusRequest{Status: StatusShipped})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad id: expected 400, got %d", resp.StatusCode)
	}
}
