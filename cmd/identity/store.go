package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User is a registered account. PasswordHash and Salt1 are the per-user
// half of the stored secret; the process-wide salt lives in configuration.
type User struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`

	PasswordHash string `json:"-"`
	Salt1        string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RegisterInput describes a user registration request.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// Store is the user persistence boundary.
//
// Lookups by email compare NormalizeEmail forms. Missing users are reported
// as NotFoundError; duplicate emails as ConflictError{Field: "email"}.
type Store interface {
	CreateUser(ctx context.Context, u User) error
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id uuid.UUID) (User, error)
}
