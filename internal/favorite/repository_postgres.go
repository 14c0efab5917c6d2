package favorite

import (
	"database/sql"

	"github.com/google/uuid"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	favoriteExistsQuery = `SELECT 1 FROM favourites WHERE user_id = $1 AND product_id = $2`
	insertFavoriteQuery = `
		INSERT INTO favourites (user_id, product_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, product_id) DO NOTHING
	`
	deleteFavoriteQuery = `DELETE FROM favourites WHERE user_id = $1 AND product_id = $2`
	listFavoritesQuery  = `
		SELECT p.id, p.name, p.price, p.image_url
		FROM favourites f
		JOIN products p ON p.id = f.product_id
		WHERE f.user_id = $1
		ORDER BY p.id
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Exists(userID uuid.UUID, productID int) (bool, error) {
	var one int
	err := r.db.QueryRow(favoriteExistsQuery, userID, productID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *PostgresRepository) Add(userID uuid.UUID, productID int) error {
	_, err := r.db.Exec(insertFavoriteQuery, userID, productID)
	return err
}

func (r *PostgresRepository) Remove(userID uuid.UUID, productID int) error {
	_, err := r.db.Exec(deleteFavoriteQuery, userID, productID)
	return err
}

func (r *PostgresRepository) List(userID uuid.UUID) ([]FavoriteProduct, error) {
	rows, err := r.db.Query(listFavoritesQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]FavoriteProduct, 0)
	for rows.Next() {
		var f FavoriteProduct
		if err := rows.Scan(&f.ProductID, &f.Name, &f.Price, &f.ImageURL); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
