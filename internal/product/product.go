package product

// Product represents a catalog item in the `products` table. Customers only
// ever read products; create/update/delete are admin operations.
type Product struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Price       float64  `json:"price"`
	ImageURL    string   `json:"imageUrl"`
	Sizes       []string `json:"sizes"`
	CreatedAt   string   `json:"createdAt,omitempty"`
}
