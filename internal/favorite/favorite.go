package favorite

import "github.com/google/uuid"

// Favorite is one (user, product) pair in the `favourites` table. There is
// no quantity or size; the size picked on the product view is a UX gate on
// the client and never persisted.
type Favorite struct {
	UserID    uuid.UUID `json:"userId"`
	ProductID int       `json:"productId"`
}

// FavoriteProduct is a favourite joined with the product fields the
// favourites view displays.
type FavoriteProduct struct {
	ProductID int     `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	ImageURL  string  `json:"imageUrl"`
}
