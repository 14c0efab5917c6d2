package product

import (
	"database/sql"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	listProductsQuery = `
		SELECT id, name, description, category, price, image_url, sizes, created_at
		FROM products
		ORDER BY created_at DESC, id DESC
	`
	getProductByIDQuery = `
		SELECT id, name, description, category, price, image_url, sizes, created_at
		FROM products
		WHERE id = $1
	`
	insertProductQuery = `
		INSERT INTO products (name, description, category, price, image_url, sizes, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id
	`
	updateProductQuery = `
		UPDATE products
		SET name = $1,
			description = $2,
			category = $3,
			price = $4,
			image_url = $5,
			sizes = $6
		WHERE id = $7
	`
	deleteProductQuery = `DELETE FROM products WHERE id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List() ([]Product, error) {
	rows, err := r.db.Query(listProductsQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetByID(id int) (Product, error) {
	return scanProduct(r.db.QueryRow(getProductByIDQuery, id))
}

func (r *PostgresRepository) Create(p Product) (Product, error) {
	var id int
	err := r.db.QueryRow(
		insertProductQuery,
		p.Name,
		p.Description,
		p.Category,
		p.Price,
		p.ImageURL,
		pq.Array(p.Sizes),
		p.CreatedAt,
	).Scan(&id)
	if err != nil {
		return Product{}, err
	}
	p.ID = id
	return p, nil
}

func (r *PostgresRepository) Update(id int, p Product) (Product, error) {
	result, err := r.db.Exec(
		updateProductQuery,
		p.Name,
		p.Description,
		p.Category,
		p.Price,
		p.ImageURL,
		pq.Array(p.Sizes),
		id,
	)
	if err != nil {
		return Product{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return Product{}, err
	}
	if affected == 0 {
		return Product{}, ErrNotFound
	}
	return r.GetByID(id)
}

func (r *PostgresRepository) Delete(id int) error {
	result, err := r.db.Exec(deleteProductQuery, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(scanner rowScanner) (Product, error) {
	p := Product{}
	var createdAt sql.NullString
	if err := scanner.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Category,
		&p.Price,
		&p.ImageURL,
		pq.Array(&p.Sizes),
		&createdAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	if createdAt.Valid {
		p.CreatedAt = createdAt.String
	}
	return p, nil
}
