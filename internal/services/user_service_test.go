package services_test

import (
	"errors"
	"fmt"
	"testing"

	"noteful/internal/models"
	"noteful/internal/repositories"
	"noteful/internal/services"
	"noteful/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var exampleInput = validation.NewUser{Username: "exampleUser", Password: "examplePass", Fullname: "example user"}

func TestUserService_CreateUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockHasher := new(MockHasher)
	mockPub := new(MockPublisher)
	service := services.NewUserService(mockRepo, mockHasher, mockPub)

	mockHasher.On("Hash", "examplePass").Return("digest", nil).Once()
	mockRepo.On("Create", mock.MatchedBy(func(u *models.User) bool {
		return u.Username == "exampleUser" && u.Password == "digest" && u.Fullname == "example user"
	})).Run(func(args mock.Arguments) {
		args.Get(0).(*models.User).ID = "user-123"
	}).Return(nil).Once()
	mockPub.On("Publish", services.UserCreatedRoutingKey, mock.MatchedBy(func(payload interface{}) bool {
		event := payload.(map[string]interface{})
		_, leaked := event["password"]
		return event["userID"] == "user-123" && event["username"] == "exampleUser" && !leaked
	})).Return(nil).Once()

	user, err := service.CreateUser(exampleInput)
	require.NoError(t, err)
	assert.Equal(t, "user-123", user.ID)
	assert.Equal(t, "digest", user.Password)
	mockRepo.AssertExpectations(t)
	mockHasher.AssertExpectations(t)
	mockPub.AssertExpectations(t)
}

func TestUserService_CreateUser_DuplicateUsername(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockHasher := new(MockHasher)
	mockPub := new(MockPublisher)
	service := services.NewUserService(mockRepo, mockHasher, mockPub)

	mockHasher.On("Hash", "examplePass").Return("digest", nil).Once()
	mockRepo.On("Create", mock.AnythingOfType("*models.User")).
		Return(fmt.Errorf("failed to create user exampleUser: %w", repositories.ErrDuplicateKey)).Once()

	user, err := service.CreateUser(exampleInput)
	assert.Nil(t, user)
	assert.ErrorIs(t, err, services.ErrUsernameTaken)
	assert.Equal(t, "The username already exists", err.Error())
	mockPub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestUserService_CreateUser_Failures(t *testing.T) {
	t.Run("hash failure skips persistence", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockHasher := new(MockHasher)
		service := services.NewUserService(mockRepo, mockHasher, nil)

		mockHasher.On("Hash", "examplePass").Return("", errors.New("entropy exhausted")).Once()

		_, err := service.CreateUser(exampleInput)
		assert.ErrorContains(t, err, "entropy exhausted")
		mockRepo.AssertNotCalled(t, "Create", mock.Anything)
	})

	t.Run("storage failure is propagated", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockHasher := new(MockHasher)
		service := services.NewUserService(mockRepo, mockHasher, nil)

		dbErr := errors.New("connection refused")
		mockHasher.On("Hash", "examplePass").Return("digest", nil).Once()
		mockRepo.On("Create", mock.AnythingOfType("*models.User")).Return(dbErr).Once()

		_, err := service.CreateUser(exampleInput)
		assert.ErrorIs(t, err, dbErr)
		assert.NotErrorIs(t, err, services.ErrUsernameTaken)
	})

	t.Run("publish failure does not fail registration", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockHasher := new(MockHasher)
		mockPub := new(MockPublisher)
		service := services.NewUserService(mockRepo, mockHasher, mockPub)

		mockHasher.On("Hash", "examplePass").Return("digest", nil).Once()
		mockRepo.On("Create", mock.AnythingOfType("*models.User")).Return(nil).Once()
		mockPub.On("Publish", services.UserCreatedRoutingKey, mock.Anything).Return(errors.New("broker down")).Once()

		user, err := service.CreateUser(exampleInput)
		assert.NoError(t, err)
		assert.NotNil(t, user)
	})
}

func TestUserService_CreateUser_BcryptDigest(t *testing.T) {
	repo := repositories.NewMemoryUserRepository()
	hasher := services.NewBcryptHasher(bcrypt.MinCost)
	service := services.NewUserService(repo, hasher, nil)

	user, err := service.CreateUser(exampleInput)
	require.NoError(t, err)

	stored, err := repo.GetByUsername("exampleUser")
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.ID)
	assert.NotEqual(t, "examplePass", stored.Password)
	assert.True(t, hasher.Verify("examplePass", stored.Password))
	assert.False(t, hasher.Verify("wrongPass", stored.Password))
}

func TestUserService_GetUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := services.NewUserService(mockRepo, new(MockHasher), nil)

	expected := &models.User{ID: "user-123", Username: "exampleUser"}
	mockRepo.On("GetByID", "user-123").Return(expected, nil).Once()
	user, err := service.GetUser("user-123")
	assert.NoError(t, err)
	assert.Equal(t, expected, user)

	mockRepo.On("GetByID", "missing").Return(nil, fmt.Errorf("user with ID missing: %w", repositories.ErrNotFound)).Once()
	_, err = service.GetUser("missing")
	assert.ErrorIs(t, err, services.ErrUserNotFound)
	mockRepo.AssertExpectations(t)
}
