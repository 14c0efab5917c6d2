package user

import (
	"database/sql"
	"strings"

	"github.com/google/uuid"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	getUserByIDQuery = `
		SELECT id, email, password_hash, is_admin, created_at
		FROM users
		WHERE id = $1
	`
	getUserByEmailQuery = `
		SELECT id, email, password_hash, is_admin, created_at
		FROM users
		WHERE email = $1
	`
	insertUserQuery = `
		INSERT INTO users (id, email, password_hash, is_admin, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByID(id uuid.UUID) (User, error) {
	return scanUser(r.db.QueryRow(getUserByIDQuery, id))
}

func (r *PostgresRepository) GetByEmail(email string) (User, error) {
	return scanUser(r.db.QueryRow(getUserByEmailQuery, email))
}

func (r *PostgresRepository) Create(u User) (User, error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	err := r.db.QueryRow(insertUserQuery, u.ID, u.Email, u.Password, u.IsAdmin, u.CreatedAt).Scan(&u.ID)
	if err != nil {
		// unique violation on email surfaces as a duplicate key error
		if strings.Contains(err.Error(), "duplicate key") {
			return User{}, ErrEmailExists
		}
		return User{}, err
	}
	return u, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(scanner rowScanner) (User, error) {
	var u User
	var createdAt sql.NullString
	if err := scanner.Scan(&u.ID, &u.Email, &u.Password, &u.IsAdmin, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	if createdAt.Valid {
		u.CreatedAt = createdAt.String
	}
	return u, nil
}
