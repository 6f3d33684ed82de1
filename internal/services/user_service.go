package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"noteful/internal/models"
	"noteful/internal/repositories"
	"noteful/internal/validation"
)

var (
	// ErrUsernameTaken is returned when the username is already registered.
	// The message is shown to API clients verbatim.
	ErrUsernameTaken = errors.New("The username already exists")
	// ErrUserNotFound is returned when no user has the requested ID.
	ErrUserNotFound = errors.New("user not found")
)

// UserCreatedRoutingKey is the routing key of the event published after a registration.
const UserCreatedRoutingKey = "user.created"

// EventPublisher delivers domain events to an external broker.
type EventPublisher interface {
	Publish(routingKey string, payload interface{}) error
}

// UserService handles business logic related to user accounts.
type UserService struct {
	repo      repositories.UserRepository
	hasher    PasswordHasher
	publisher EventPublisher
}

// NewUserService creates a new UserService. publisher may be nil.
func NewUserService(repo repositories.UserRepository, hasher PasswordHasher, publisher EventPublisher) *UserService {
	return &UserService{
		repo:      repo,
		hasher:    hasher,
		publisher: publisher,
	}
}

// CreateUser hashes the password of an already validated user and persists it.
// Uniqueness of the username is left to the repository.
func (s *UserService) CreateUser(input validation.NewUser) (*models.User, error) {
	digest, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: input.Username,
		Password: digest,
		Fullname: input.Fullname,
	}
	if err := s.repo.Create(user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.publishUserCreated(user)
	return user, nil
}

// GetUser retrieves a user by its ID.
func (s *UserService) GetUser(id string) (*models.User, error) {
	user, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) publishUserCreated(user *models.User) {
	if s.publisher == nil {
		return
	}
	event := map[string]interface{}{
		"userID":    user.ID,
		"username":  user.Username,
		"fullname":  user.Fullname,
		"createdAt": user.CreatedAt.Format(time.RFC3339),
	}
	if err := s.publisher.Publish(UserCreatedRoutingKey, event); err != nil {
		log.Printf("Warning: Failed to publish user created event for user %s: %v", user.ID, err)
	}
}
