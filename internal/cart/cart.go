package cart

import (
	"github.com/google/uuid"

	"github.com/velmore/clothes-shop-backend/internal/product"
)

// Cart is the per-user container row. It is created lazily on the first
// add-to-cart action and survives checkout (only its lines are consumed).
type Cart struct {
	ID     uuid.UUID `json:"cartId"`
	UserID uuid.UUID `json:"userId"`
}

// Line is one (product, size, quantity) entry, joined with the live product
// for display. The price seen here is the current catalog price; it is only
// frozen into an order at checkout time.
type Line struct {
	CartID    uuid.UUID       `json:"cartId"`
	ProductID int             `json:"productId"`
	Size      string          `json:"size"`
	Quantity  int             `json:"quantity"`
	Product   product.Product `json:"product"`
}

// View is the cart as returned to clients: all lines plus the subtotal
// computed from live prices. The subtotal is never persisted.
type View struct {
	Items    []Line  `json:"items"`
	Subtotal float64 `json:"subtotal"`
}
