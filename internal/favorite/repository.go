package favorite

import (
	"sync"

	"github.com/google/uuid"

	"github.com/velmore/clothes-shop-backend/internal/product"
)

type Repository interface {
	Exists(userID uuid.UUID, productID int) (bool, error)
	Add(userID uuid.UUID, productID int) error
	Remove(userID uuid.UUID, productID int) error
	List(userID uuid.UUID) ([]FavoriteProduct, error)
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu        sync.RWMutex
	products  map[int]product.Product
	favorites []Favorite
}

func NewInMemoryRepository(products []product.Product) *InMemoryRepository {
	r := &InMemoryRepository{products: make(map[int]product.Product, len(products))}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *InMemoryRepository) Exists(userID uuid.UUID, productID int) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, f := range r.favorites {
		if f.UserID == userID && f.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

func (r *InMemoryRepository) Add(userID uuid.UUID, productID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.favorites {
		if f.UserID == userID && f.ProductID == productID {
			return nil
		}
	}
	r.favorites = append(r.favorites, Favorite{UserID: userID, ProductID: productID})
	return nil
}

func (r *InMemoryRepository) Remove(userID uuid.UUID, productID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, f := range r.favorites {
		if f.UserID == userID && f.ProductID == productID {
			r.favorites = append(r.favorites[:i], r.favorites[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *InMemoryRepository) List(userID uuid.UUID) ([]FavoriteProduct, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]FavoriteProduct, 0)
	for _, f := range r.favorites {
		if f.UserID != userID {
			continue
		}
		p := r.products[f.ProductID]
		out = append(out, FavoriteProduct{
			ProductID: f.ProductID,
			Name:      p.Name,
			Price:     p.Price,
			ImageURL:  p.ImageURL,
		})
	}
	return out, nil
}
