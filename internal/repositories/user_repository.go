package repositories

import (
	"errors"

	"noteful/internal/models"
)

var (
	// ErrDuplicateKey is returned when an insert violates the unique username index.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
)

// UserRepository defines the interface for user data access.
// Implementations assign ID, CreatedAt and UpdatedAt on Create.
type UserRepository interface {
	Create(user *models.User) error
	GetByUsername(username string) (*models.User, error)
	GetByID(id string) (*models.User, error)
}
