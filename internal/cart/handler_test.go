package cart

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

func newTestApp(userID uuid.UUID) (*fiber.App, *Service) {
	service := NewService(NewInMemoryRepository(catalog()), nil)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"user_id": userID.String(),
		}))
		return c.Next()
	})
	NewHandler(service).RegisterProtectedRoutes(app)
	return app, service
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

func TestAddItem(t *testing.T) {
	app, _ := newTestApp(uuid.New())

	resp := doJSON(t, app, http.MethodPost, "/api/v1/cart/items", lineRequest{ProductID: 1, Size: "M"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var line Line
	if err := json.NewDecoder(resp.Body).Decode(&line); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if line.Quantity != 1 {
		t.Fatalf("expected defaulted quantity 1, got %d", line.Quantity)
	}
	if line.Product.Name != "Wool coat" {
		t.Fatalf("expected joined product data, got %+v", line.Product)
	}
}

func TestAddItemDuplicateConflicts(t *testing.T) {
	app, _ := newTestApp(uuid.New())
	payload := lineRequest{ProductID: 1, Size: "M", Quantity: 1}

	if resp := doJSON(t, app, http.MethodPost, "/api/v1/cart/items", payload); resp.StatusCode != http.StatusCreated {
		t.Fatalf("first add: expected 201, got %d", resp.StatusCode)
	}
	if resp := doJSON(t, app, http.MethodPost, "/api/v1/cart/items", payload); resp.StatusCode != http.StatusConflict {
		t.Fatalf("second add: expected 409, got %d", resp.StatusCode)
	}
}

func TestAddItemValidation(t *testing.T) {
	app, _ := newTestApp(uuid.New())

	tests := []struct {
		name    string
		payload lineRequest
		want    int
	}{
		{"missing product", lineRequest{Size: "M"}, http.StatusBadRequest},
		{"missing size", lineRequest{ProductID: 1}, http.StatusBadRequest},
		{"negative quantity", lineRequest{ProductID: 1, Size: "M", Quantity: -1}, http.StatusBadRequest},
		{"unknown product", lineRequest{ProductID: 99, Size: "M"}, http.StatusNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := doJSON(t, app, http.MethodPost, "/api/v1/cart/items", tc.payload)
			if resp.StatusCode != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, resp.StatusCode)
			}
		})
	}

	// an omitted (zero) quantity is not a validation error; it defaults to 1
	resp := doJSON(t, app, http.MethodPost, "/api/v1/cart/items", lineRequest{ProductID: 2, Size: "L"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("zero quantity: expected 201, got %d", resp.StatusCode)
	}
	var line Line
	if err := json.NewDecoder(resp.Body).Decode(&line); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if line.Quantity != 1 {
		t.Fatalf("expected defaulted quantity 1, got %d", line.Quantity)
	}
}

func TestRemoveItem(t *testing.T) {
	app, _ := newTestApp(uuid.New())

	if resp := doJSON(t, app, http.MethodPost, "/api/v1/cart/items", lineRequest{ProductID: 1, Size: "M"}); resp.StatusCode != http.StatusCreated {
		t.Fatalf("add: expected 201, got %d", resp.StatusCode)
	}

	resp := doJSON(t, app, http.MethodDelete, "/api/v1/cart/items", lineRequest{ProductID: 1, Size: "M"})
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("remove: expected 204, got %d", resp.StatusCode)
	}

	// removing an absent line still succeeds
	resp = doJSON(t, app, http.MethodDelete, "/api/v1/cart/items", lineRequest{ProductID: 1, Size: "M"})
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("second remove: expected 204, got %d", resp.StatusCode)
	}
}

func TestGetCart(t *testing.T) {
	app, _ := newTestApp(uuid.New())

	if resp := doJSON(t, app, http.MethodPost, "/api/v1/cart/items", lineRequest{ProductID: 2, Size: "L", Quantity: 3}); resp.StatusCode != http.StatusCreated {
		t.Fatalf("add: expected 201, got %d", resp.StatusCode)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var view View
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(view.Items) != 1 {
		t.Fatalf("expected 1 line, got %d", len(view.Items))
	}
	if want := 3 * 45.0; view.Subtotal != want {
		t.Fatalf("expected subtotal %.2f, got %.2f", want, view.Subtotal)
	}
}

func TestCartsAreIsolatedPerUser(t *testing.T) {
	appAlice, service := newTestApp(uuid.New())

	if resp := doJSON(t, appAlice, http.MethodPost, "/api/v1/cart/items", lineRequest{ProductID: 1, Size: "M"}); resp.StatusCode != http.StatusCreated {
		t.Fatalf("add: expected 201, got %d", resp.StatusCode)
	}

	other, err := service.List(uuid.New())
	if err != nil {
		t.Fatalf("list other user: %v", err)
	}
	if len(other.Items) != 0 {
		t.Fatalf("expected the other user's cart to be empty, got %d lines", len(other.Items))
	}
}
