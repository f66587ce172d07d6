package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"github.com/linemk/ecommerce-api/internal/domain/models"
	"github.com/linemk/ecommerce-api/internal/lib/logger"
	"github.com/linemk/ecommerce-api/internal/service"
)

func TestAuthService_Register(t *testing.T) {
	fakeRepo := newFakeUserRepo()
	authSvc := service.NewAuthService(logger.Discard(), fakeRepo, 60*time.Minute, "testsecret")
	ctx := context.Background()

	user, err := authSvc.Register(ctx, "alice", "Alice@Example.com", "password123")
	assert.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email, "email is normalized")
	assert.Equal(t, models.RoleUser, user.Role, "new users never get the admin role")
	assert.NoError(t, bcrypt.CompareHashAndPassword(user.PassHash, []byte("password123")))

	// Повторная регистрация с тем же email
	_, err = authSvc.Register(ctx, "alice2", "alice@example.com", "password123")
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestAuthService_Login_Success(t *testing.T) {
	fakeRepo := newFakeUserRepo()
	passHash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	assert.NoError(t, err)
	fakeRepo.users["admin@example.com"] = &models.User{ID: 1, Email: "admin@example.com", PassHash: passHash, Role: models.RoleAdmin}

	authSvc := service.NewAuthService(logger.Discard(), fakeRepo, 60*time.Minute, "testsecret")

	result, err := authSvc.Login(context.Background(), "admin@example.com", "password123")
	assert.NoError(t, err, "Expected no error on login")
	assert.Equal(t, models.RoleAdmin, result.Role)
	assert.Equal(t, int64(1), result.User.ID)

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(result.AccessToken, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte("testsecret"), nil
	})
	assert.NoError(t, err)
	assert.Equal(t, "1", claims["sub"])
	assert.Equal(t, "admin", claims["role"])
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	fakeRepo := newFakeUserRepo()
	passHash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	assert.NoError(t, err)
	fakeRepo.users["bob@example.com"] = &models.User{ID: 2, Email: "bob@example.com", PassHash: passHash, Role: models.RoleUser}

	authSvc := service.NewAuthService(logger.Discard(), fakeRepo, 60*time.Minute, "testsecret")
	ctx := context.Background()

	_, err = authSvc.Login(ctx, "bob@example.com", "wrongpassword")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials, "Expected error for wrong password")

	_, err = authSvc.Login(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials, "Unknown email must look like a wrong password")
}
