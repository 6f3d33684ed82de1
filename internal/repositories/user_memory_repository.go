package repositories

import (
	"fmt"
	"sync"
	"time"

	"noteful/internal/models"

	"github.com/google/uuid"
)

// MemoryUserRepository is an in-memory implementation of UserRepository.
// It enforces the same username uniqueness as the database index.
type MemoryUserRepository struct {
	users      map[string]models.User
	byUsername map[string]string
	mu         sync.RWMutex
}

// NewMemoryUserRepository creates a new instance of MemoryUserRepository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users:      make(map[string]models.User),
		byUsername: make(map[string]string),
	}
}

// Create adds a new user.
func (r *MemoryUserRepository) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byUsername[user.Username]; taken {
		return fmt.Errorf("failed to create user %s: %w", user.Username, ErrDuplicateKey)
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	r.users[user.ID] = *user
	r.byUsername[user.Username] = user.ID
	return nil
}

// GetByUsername returns a user by their username.
func (r *MemoryUserRepository) GetByUsername(username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[username]
	if !ok {
		return nil, fmt.Errorf("user with username %s: %w", username, ErrNotFound)
	}
	user := r.users[id]
	return &user, nil
}

// GetByID returns a user by their ID.
func (r *MemoryUserRepository) GetByID(id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user with ID %s: %w", id, ErrNotFound)
	}
	return &user, nil
}
