package order

import (
	"github.com/google/uuid"

	"github.com/velmore/clothes-shop-backend/internal/product"
)

// Status is the order lifecycle state. New orders start as processing;
// delivered and cancelled are terminal.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// Valid reports whether s is one of the four lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// CanTransition enforces the forward-only graph:
// processing -> shipped -> delivered, with cancellation allowed from any
// non-terminal state. Terminal states accept nothing.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusProcessing:
		return to == StatusShipped || to == StatusCancelled
	case StatusShipped:
		return to == StatusDelivered || to == StatusCancelled
	}
	return false
}

// Recipient is the shipping snapshot denormalized onto the order row at
// checkout time.
type Recipient struct {
	FullName   string `json:"fullName"`
	Country    string `json:"country"`
	Address    string `json:"address"`
	PostalCode string `json:"postalCode"`
	Phone      string `json:"phone"`
}

// Item is one purchased line. Price is the product's price frozen at
// checkout, so later catalog edits never alter historical orders.
type Item struct {
	OrderID   uuid.UUID       `json:"orderId"`
	ProductID int             `json:"productId"`
	Size      string          `json:"size"`
	Quantity  int             `json:"quantity"`
	Price     float64         `json:"price"`
	Product   product.Product `json:"product,omitzero"`
}

// Order is immutable after creation except for Status. Number is the
// derived recency rank (oldest = 1) recomputed on every read; it is not a
// stored identifier and shifts if older orders are ever removed.
type Order struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"userId"`
	Recipient
	TotalPrice float64 `json:"totalPrice"`
	Status     Status  `json:"status"`
	CreatedAt  string  `json:"createdAt"`
	Number     int     `json:"orderNumber,omitempty"`
	Items      []Item  `json:"items"`
}
