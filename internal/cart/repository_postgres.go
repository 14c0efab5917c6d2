package cart

import (
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	getCartByUserQuery = `SELECT id, user_id FROM carts WHERE user_id = $1`
	insertCartQuery    = `INSERT INTO carts (id, user_id) VALUES ($1, $2) RETURNING id`
	lineExistsQuery    = `SELECT 1 FROM cart_items WHERE cart_id = $1 AND product_id = $2 AND size = $3`
	insertLineQuery    = `
		INSERT INTO cart_items (cart_id, product_id, size, quantity)
		VALUES ($1, $2, $3, $4)
	`
	deleteLineQuery = `DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2 AND size = $3`
	listLinesQuery  = `
		SELECT ci.cart_id, ci.product_id, ci.size, ci.quantity,
		       p.id, p.name, p.description, p.category, p.price, p.image_url, p.sizes
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.product_id, ci.size
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetOrCreateCart(userID uuid.UUID) (Cart, error) {
	c, err := r.GetCartByUser(userID)
	if err == nil {
		return c, nil
	}
	if err != ErrCartNotFound {
		return Cart{}, err
	}

	c = Cart{ID: uuid.New(), UserID: userID}
	if err := r.db.QueryRow(insertCartQuery, c.ID, c.UserID).Scan(&c.ID); err != nil {
		// lost a create race with another session; the existing row wins
		if strings.Contains(err.Error(), "duplicate key") {
			return r.GetCartByUser(userID)
		}
		return Cart{}, err
	}
	return c, nil
}

func (r *PostgresRepository) GetCartByUser(userID uuid.UUID) (Cart, error) {
	var c Cart
	if err := r.db.QueryRow(getCartByUserQuery, userID).Scan(&c.ID, &c.UserID); err != nil {
		if err == sql.ErrNoRows {
			return Cart{}, ErrCartNotFound
		}
		return Cart{}, err
	}
	return c, nil
}

func (r *PostgresRepository) AddLine(cartID uuid.UUID, productID int, size string, quantity int) (Line, error) {
	var exists int
	err := r.db.QueryRow(lineExistsQuery, cartID, productID, size).Scan(&exists)
	if err == nil {
		return Line{}, ErrDuplicateLine
	}
	if err != sql.ErrNoRows {
		return Line{}, err
	}

	if _, err := r.db.Exec(insertLineQuery, cartID, productID, size, quantity); err != nil {
		// the unique constraint closes the check-then-insert race between
		// concurrent sessions; a foreign key failure means a bad product id
		if strings.Contains(err.Error(), "duplicate key") {
			return Line{}, ErrDuplicateLine
		}
		if strings.Contains(err.Error(), "foreign key") {
			return Line{}, ErrProductNotFound
		}
		return Line{}, err
	}
	return Line{CartID: cartID, ProductID: productID, Size: size, Quantity: quantity}, nil
}

func (r *PostgresRepository) RemoveLine(cartID uuid.UUID, productID int, size string) error {
	_, err := r.db.Exec(deleteLineQuery, cartID, productID, size)
	return err
}

func (r *PostgresRepository) ListLines(cartID uuid.UUID) ([]Line, error) {
	rows, err := r.db.Query(listLinesQuery, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Line, 0)
	for rows.Next() {
		var l Line
		if err := rows.Scan(
			&l.CartID, &l.ProductID, &l.Size, &l.Quantity,
			&l.Product.ID, &l.Product.Name, &l.Product.Description, &l.Product.Category,
			&l.Product.Price, &l.Product.ImageURL, pq.Array(&l.Product.Sizes),
		); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
