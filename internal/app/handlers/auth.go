package handlers

import (
	"log/slog"
	"net/http"

	"github.com/linemk/ecommerce-api/internal/lib/api/response"
	"github.com/linemk/ecommerce-api/internal/service"
)

// RegisterRequest представляет структуру запроса регистрации с тегами валидации
type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest представляет структуру запроса для аутентификации
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterHandler обрабатывает запрос POST /v1/register
func RegisterHandler(log *slog.Logger, authService service.AuthServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.RegisterHandler"
		logger := log.With(slog.String("op", op))

		var req RegisterRequest
		if err := decodeAndValidate(r, &req); err != nil {
			writeError(w, logger, err, "", "")
			return
		}

		user, err := authService.Register(r.Context(), req.Username, req.Email, req.Password)
		if err != nil {
			writeError(w, logger, err, "", "Registration failed")
			return
		}

		response.WriteJSON(w, logger, http.StatusCreated,
			response.OK("User registered successfully", map[string]any{"user": user}))
	}
}

// LoginHandler – HTTP-обработчик для аутентификации, возвращает пользователя, роль и JWT-токен
func LoginHandler(log *slog.Logger, authService service.AuthServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.LoginHandler"
		logger := log.With(slog.String("op", op))

		var req LoginRequest
		if err := decodeAndValidate(r, &req); err != nil {
			writeError(w, logger, err, "", "")
			return
		}

		result, err := authService.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			writeError(w, logger, err, "", "Login failed")
			return
		}

		response.WriteJSON(w, logger, http.StatusOK, response.OK("Login successful", result))
	}
}
