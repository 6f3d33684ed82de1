package services_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"noteful/internal/models"
	"noteful/internal/repositories"
	"noteful/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test_jwt_secret"

func TestBcryptHasher(t *testing.T) {
	hasher := services.NewBcryptHasher(bcrypt.MinCost)

	digest, err := hasher.Hash("examplePass")
	require.NoError(t, err)
	assert.NotEqual(t, "examplePass", digest)
	assert.True(t, hasher.Verify("examplePass", digest))
	assert.False(t, hasher.Verify("examplePass ", digest))

	again, err := hasher.Hash("examplePass")
	require.NoError(t, err)
	assert.NotEqual(t, digest, again, "digests are salted")

	defaulted, err := services.NewBcryptHasher(0).Hash("x")
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(defaulted))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestAuthService_LoginUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockHasher := new(MockHasher)
	authService := services.NewAuthService(mockRepo, mockHasher, testJWTSecret, time.Hour)

	user := &models.User{ID: "user-123", Username: "testuser", Password: "digest"}

	// Successful login
	mockRepo.On("GetByUsername", "testuser").Return(user, nil).Once()
	mockHasher.On("Verify", "password123", "digest").Return(true).Once()

	token, err := authService.LoginUser("testuser", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	assert.True(t, ok)
	assert.Equal(t, user.ID, claims["user_id"])
	assert.Equal(t, user.Username, claims["username"])

	// Wrong password
	mockRepo.On("GetByUsername", "testuser").Return(user, nil).Once()
	mockHasher.On("Verify", "wrongpassword", "digest").Return(false).Once()
	_, err = authService.LoginUser("testuser", "wrongpassword")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	// Unknown user gets the same error
	mockRepo.On("GetByUsername", "nonexistentuser").
		Return(nil, fmt.Errorf("user with username nonexistentuser: %w", repositories.ErrNotFound)).Once()
	_, err = authService.LoginUser("nonexistentuser", "password123")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	// A failing store is not a credentials problem
	storeErr := errors.New("connection refused")
	mockRepo.On("GetByUsername", "testuser").
		Return(nil, fmt.Errorf("failed to get user by username testuser: %w", storeErr)).Once()
	_, err = authService.LoginUser("testuser", "password123")
	assert.ErrorIs(t, err, storeErr)
	assert.NotErrorIs(t, err, services.ErrInvalidCredentials)

	mockRepo.AssertExpectations(t)
	mockHasher.AssertExpectations(t)
}

func TestAuthService_ValidateToken(t *testing.T) {
	authService := services.NewAuthService(new(MockUserRepository), new(MockHasher), testJWTSecret, time.Hour)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  "user-123",
		"username": "testuser",
		"exp":      jwt.TimeFunc().Add(time.Hour).Unix(),
	})
	validTokenString, _ := token.SignedString([]byte(testJWTSecret))

	claims, err := authService.ValidateToken(validTokenString)
	assert.NoError(t, err)
	assert.Equal(t, "user-123", claims["user_id"])
	assert.Equal(t, "testuser", claims["username"])

	_, err = authService.ValidateToken("invalid.token.string")
	assert.ErrorContains(t, err, "invalid token")

	otherSecret, _ := token.SignedString([]byte("another_secret"))
	_, err = authService.ValidateToken(otherSecret)
	assert.ErrorContains(t, err, "invalid token")

	expiredToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  "user-123",
		"username": "testuser",
		"exp":      jwt.TimeFunc().Add(-time.Hour).Unix(),
	})
	expiredTokenString, _ := expiredToken.SignedString([]byte(testJWTSecret))
	_, err = authService.ValidateToken(expiredTokenString)
	assert.ErrorContains(t, err, "invalid token")
}
