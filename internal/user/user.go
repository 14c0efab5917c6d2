package user

import "github.com/google/uuid"

// User represents an account row in the `users` table. Password always
// holds the bcrypt hash, never the plain text, and is blanked out by
// sanitizeUser before a user is written to a response.
type User struct {
	ID        uuid.UUID `json:"userId"`
	Email     string    `json:"email"`
	Password  string    `json:"password,omitempty"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt string    `json:"createdAt,omitempty"`
}
