package order

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/velmore/clothes-shop-backend/internal/product"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrCartNotFound      = errors.New("cart not found")
	ErrCartEmpty         = errors.New("cart is empty")
	ErrInvalidStatus     = errors.New("unknown order status")
	ErrInvalidTransition = errors.New("status transition not allowed")
)

// Repository defines persistence for orders. CreateFromCart is the
// dedicated order-creation operation: it snapshots the cart into an order
// and clears the cart as one atomic unit, so no partial order can be
// observed by other sessions.
type Repository interface {
	CreateFromCart(userID uuid.UUID, rec Recipient, createdAt string) (Order, error)
	ListByUser(userID uuid.UUID) ([]Order, error)
	ListAll() ([]Order, error)
	GetByID(id uuid.UUID) (Order, error)
	UpdateStatus(id uuid.UUID, status Status) (Order, error)
}

// InMemoryRepository is used for tests and local scenarios. It carries its
// own product catalog and cart lines so checkout can be exercised without
// a database.
type InMemoryRepository struct {
	mu       sync.RWMutex
	products map[int]product.Product
	carts    map[uuid.UUID][]cartLine
	orders   []Order
}

type cartLine struct {
	productID int
	size      string
	quantity  int
}

func NewInMemoryRepository(products []product.Product) *InMemoryRepository {
	r := &InMemoryRepository{
		products: make(map[int]product.Product, len(products)),
		carts:    make(map[uuid.UUID][]cartLine),
	}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

// PutCartLine seeds a cart line for the given user.
func (r *InMemoryRepository) PutCartLine(userID uuid.UUID, productID int, size string, quantity int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carts[userID] = append(r.carts[userID], cartLine{productID: productID, size: size, quantity: quantity})
}

// CartLineCount reports how many lines remain in the user's cart.
func (r *InMemoryRepository) CartLineCount(userID uuid.UUID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.carts[userID])
}

// RemoveOrder drops an order outright. Orders are never deleted by the
// application; this exists so tests can show that derived numbers shift.
func (r *InMemoryRepository) RemoveOrder(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.orders {
		if r.orders[i].ID == id {
			r.orders = append(r.orders[:i], r.orders[i+1:]...)
			return
		}
	}
}

func (r *InMemoryRepository) CreateFromCart(userID uuid.UUID, rec Recipient, createdAt string) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lines, ok := r.carts[userID]
	if !ok {
		return Order{}, ErrCartNotFound
	}
	if len(lines) == 0 {
		return Order{}, ErrCartEmpty
	}

	ord := Order{
		ID:        uuid.New(),
		UserID:    userID,
		Recipient: rec,
		Status:    StatusProcessing,
		CreatedAt: createdAt,
	}
	for _, l := range lines {
		p := r.products[l.productID]
		ord.Items = append(ord.Items, Item{
			OrderID:   ord.ID,
			ProductID: l.productID,
			Size:      l.size,
			Quantity:  l.quantity,
			Price:     p.Price,
			Product:   p,
		})
		ord.TotalPrice += float64(l.quantity) * p.Price
	}

	r.orders = append(r.orders, ord)
	r.carts[userID] = nil
	return ord, nil
}

func (r *InMemoryRepository) ListByUser(userID uuid.UUID) ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Order, 0)
	for i := len(r.orders) - 1; i >= 0; i-- {
		if r.orders[i].UserID == userID {
			out = append(out, r.orders[i])
		}
	}
	return out, nil
}

func (r *InMemoryRepository) ListAll() ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Order, 0, len(r.orders))
	for i := len(r.orders) - 1; i >= 0; i-- {
		out = append(out, r.orders[i])
	}
	return out, nil
}

func (r *InMemoryRepository) GetByID(id uuid.UUID) (Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, o := range r.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return Order{}, ErrNotFound
}

func (r *InMemoryRepository) UpdateStatus(id uuid.UUID, status Status) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.orders {
		if r.orders[i].ID == id {
			r.orders[i].Status = status
			return r.orders[i], nil
		}
	}
	return Order{}, ErrNotFound
}
