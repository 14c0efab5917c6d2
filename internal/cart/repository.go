package cart

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/velmore/clothes-shop-backend/internal/product"
)

var (
	ErrDuplicateLine   = errors.New("item already in cart")
	ErrCartNotFound    = errors.New("cart not found")
	ErrProductNotFound = errors.New("product not found")
)

type Repository interface {
	// GetOrCreateCart resolves the user's cart, creating the row lazily.
	GetOrCreateCart(userID uuid.UUID) (Cart, error)
	// GetCartByUser resolves an existing cart or returns ErrCartNotFound.
	GetCartByUser(userID uuid.UUID) (Cart, error)
	// AddLine inserts a new line; a line for the same (cart, product, size)
	// already existing yields ErrDuplicateLine.
	AddLine(cartID uuid.UUID, productID int, size string, quantity int) (Line, error)
	// RemoveLine deletes the matching line; absent lines are a no-op.
	RemoveLine(cartID uuid.UUID, productID int, size string) error
	// ListLines returns all lines joined with current product data.
	ListLines(cartID uuid.UUID) ([]Line, error)
}

// InMemoryRepository is used for tests and local scenarios. It is seeded
// with the products the joined reads resolve against.
type InMemoryRepository struct {
	mu       sync.RWMutex
	products map[int]product.Product
	carts    map[uuid.UUID]Cart
	lines    []Line
}

func NewInMemoryRepository(products []product.Product) *InMemoryRepository {
	r := &InMemoryRepository{
		products: make(map[int]product.Product, len(products)),
		carts:    make(map[uuid.UUID]Cart),
	}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *InMemoryRepository) GetOrCreateCart(userID uuid.UUID) (Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.carts[userID]; ok {
		return c, nil
	}
	c := Cart{ID: uuid.New(), UserID: userID}
	r.carts[userID] = c
	return c, nil
}

func (r *InMemoryRepository) GetCartByUser(userID uuid.UUID) (Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if c, ok := r.carts[userID]; ok {
		return c, nil
	}
	return Cart{}, ErrCartNotFound
}

func (r *InMemoryRepository) AddLine(cartID uuid.UUID, productID int, size string, quantity int) (Line, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[productID]
	if !ok {
		return Line{}, ErrProductNotFound
	}
	for _, l := range r.lines {
		if l.CartID == cartID && l.ProductID == productID && l.Size == size {
			return Line{}, ErrDuplicateLine
		}
	}
	line := Line{CartID: cartID, ProductID: productID, Size: size, Quantity: quantity, Product: p}
	r.lines = append(r.lines, line)
	return line, nil
}

func (r *InMemoryRepository) RemoveLine(cartID uuid.UUID, productID int, size string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, l := range r.lines {
		if l.CartID == cartID && l.ProductID == productID && l.Size == size {
			r.lines = append(r.lines[:i], r.lines[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *InMemoryRepository) ListLines(cartID uuid.UUID) ([]Line, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Line, 0)
	for _, l := range r.lines {
		if l.CartID == cartID {
			l.Product = r.products[l.ProductID]
			out = append(out, l)
		}
	}
	return out, nil
}
