package user

import (
	"context"
	"errors"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// Repository handles user data persistence
type Repository interface {
	// NewID reserves an identifier in the backend's format so that images
	// can be uploaded under the user's folder before the record exists
	NewID() string
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByToken(ctx context.Context, token string) (*User, error)
	// GetByIDs returns the users found among ids, keyed by id. Unknown or
	// malformed ids are skipped.
	GetByIDs(ctx context.Context, ids []string) (map[string]*User, error)
	// Update persists email and account of an existing user
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id string) error
}
