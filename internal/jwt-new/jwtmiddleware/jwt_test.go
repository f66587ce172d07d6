package jwtmiddleware_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"github.com/linemk/ecommerce-api/internal/domain/models"
	"github.com/linemk/ecommerce-api/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/ecommerce-api/internal/lib/logger"
)

const testSecret = "testsecret"

// createTestToken создаёт JWT-токен с заданным userID, ролью и секретом.
func createTestToken(userID int64, role string, secret string) (string, error) {
	claims := jwt.MapClaims{
		"sub": fmt.Sprintf("%d", userID),
	}
	if role != "" {
		claims["role"] = role
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func serve(h http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestJWTMiddleware_MissingAuthorization(t *testing.T) {
	handler := jwtmiddleware.NewJWTMiddleware(logger.Discard(), testSecret)(okHandler())

	rr := serve(handler, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code, "Expected unauthorized status when no token provided")
	assert.True(t, strings.Contains(rr.Body.String(), "missing token"))
	assert.True(t, strings.Contains(rr.Body.String(), `"success":false`))
}

func TestJWTMiddleware_InvalidAuthorizationFormat(t *testing.T) {
	handler := jwtmiddleware.NewJWTMiddleware(logger.Discard(), testSecret)(okHandler())

	rr := serve(handler, "InvalidFormat")
	assert.Equal(t, http.StatusUnauthorized, rr.Code, "Expected unauthorized status for invalid token format")
	assert.True(t, strings.Contains(rr.Body.String(), "invalid token format"))
}

func TestJWTMiddleware_WrongSecret(t *testing.T) {
	tokenStr, err := createTestToken(1, "user", "other-secret")
	assert.NoError(t, err)

	handler := jwtmiddleware.NewJWTMiddleware(logger.Discard(), testSecret)(okHandler())

	rr := serve(handler, "Bearer "+tokenStr)
	assert.Equal(t, http.StatusUnauthorized, rr.Code, "Expected unauthorized status for invalid token")
	assert.True(t, strings.Contains(rr.Body.String(), "invalid token"))
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	tokenStr, err := createTestToken(123, "admin", testSecret)
	assert.NoError(t, err)

	var gotID int64
	var gotRole models.Role
	handler := jwtmiddleware.NewJWTMiddleware(logger.Discard(), testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = jwtmiddleware.FromContext(r.Context())
		gotRole, _ = jwtmiddleware.RoleFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rr := serve(handler, "Bearer "+tokenStr)
	assert.Equal(t, http.StatusOK, rr.Code, "Expected OK status for valid token")
	assert.Equal(t, int64(123), gotID)
	assert.Equal(t, models.RoleAdmin, gotRole)
}

func TestJWTMiddleware_TokenWithoutRoleIsUser(t *testing.T) {
	tokenStr, err := createTestToken(7, "", testSecret)
	assert.NoError(t, err)

	var gotRole models.Role
	handler := jwtmiddleware.NewJWTMiddleware(logger.Discard(), testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRole, _ = jwtmiddleware.RoleFromContext(r.Context())
	}))

	serve(handler, "Bearer "+tokenStr)
	assert.Equal(t, models.RoleUser, gotRole)
}

func TestRequireRole(t *testing.T) {
	adminOnly := jwtmiddleware.RequireRole(logger.Discard(), models.RoleAdmin)(okHandler())

	withIdentity := func(role models.Role) *http.Request {
		ctx := context.WithValue(context.Background(), jwtmiddleware.UserIDKey, int64(1))
		ctx = context.WithValue(ctx, jwtmiddleware.RoleKey, role)
		return httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	}

	tests := []struct {
		name     string
		req      *http.Request
		expected int
	}{
		{"no identity", httptest.NewRequest(http.MethodGet, "/", nil), http.StatusUnauthorized},
		{"wrong role", withIdentity(models.RoleUser), http.StatusForbidden},
		{"allowed role", withIdentity(models.RoleAdmin), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			adminOnly.ServeHTTP(rr, tt.req)
			assert.Equal(t, tt.expected, rr.Code)
		})
	}
}

func TestFromContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), jwtmiddleware.UserIDKey, int64(456))
	userID, ok := jwtmiddleware.FromContext(ctx)
	assert.True(t, ok, "Expected to retrieve userID from context")
	assert.Equal(t, int64(456), userID, "Expected userID to match")

	_, ok = jwtmiddleware.RoleFromContext(ctx)
	assert.False(t, ok)
}
