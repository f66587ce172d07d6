package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/linemk/ecommerce-api/internal/domain/models"
	"github.com/linemk/ecommerce-api/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/ecommerce-api/internal/lib/api/response"
	"github.com/linemk/ecommerce-api/internal/service"
)

var validate = newValidator()

// в сообщениях об ошибках используются имена полей из json-тегов
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeAndValidate читает тело запроса в req. Битый JSON и нарушения тегов дают ValidationError.
func decodeAndValidate(r *http.Request, req any) error {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		return &service.ValidationError{Msg: "invalid request body"}
	}
	if err := validate.Struct(req); err != nil {
		return &service.ValidationError{Msg: validationMessage(err)}
	}
	return nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "validation error"
	}

	fe := verrs[0]
	field := fieldPath(fe)
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", field)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("The %s must be at least %s characters.", field, fe.Param())
		}
		return fmt.Sprintf("The %s must be at least %s.", field, fe.Param())
	case "max":
		return fmt.Sprintf("The %s must not be greater than %s characters.", field, fe.Param())
	case "gt":
		return fmt.Sprintf("The %s must be greater than %s.", field, fe.Param())
	}
	return fmt.Sprintf("The %s field is invalid.", field)
}

// fieldPath превращает "CheckoutRequest.cartItems[0].quantity" в "cartItems.0.quantity"
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	return strings.NewReplacer("[", ".", "]", "").Replace(ns)
}

// writeError переводит ошибку сервиса в HTTP-ответ. Текст внутренних ошибок клиенту не отдаётся.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error, notFoundMsg, failureMsg string) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		logger.Info("validation failed", slog.String("reason", ve.Msg))
		response.WriteJSON(w, logger, http.StatusUnprocessableEntity, response.Error(ve.Msg))
	case errors.Is(err, service.ErrValidation):
		logger.Info("validation failed", slog.Any("error", err))
		response.WriteJSON(w, logger, http.StatusUnprocessableEntity, response.Error("validation error"))
	case errors.Is(err, service.ErrNotFound):
		response.WriteJSON(w, logger, http.StatusNotFound, response.Error(notFoundMsg))
	case errors.Is(err, service.ErrForbidden):
		response.WriteJSON(w, logger, http.StatusForbidden, response.Error("Forbidden"))
	case errors.Is(err, service.ErrInvalidCredentials):
		response.WriteJSON(w, logger, http.StatusUnauthorized, response.Error("Invalid login details"))
	default:
		logger.Error("request failed", slog.Any("error", err))
		response.WriteJSON(w, logger, http.StatusInternalServerError, response.Error(failureMsg))
	}
}

// pathID разбирает числовой параметр пути; нечисловой или неположительный id считается ненайденным
func pathID(r *http.Request, name string) (int64, error) {
	id, err := rawPathID(r, name)
	if err != nil || id <= 0 {
		return 0, service.ErrNotFound
	}
	return id, nil
}

// rawPathID пропускает любое целое, в том числе 0 и отрицательные
func rawPathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, service.ErrNotFound
	}
	return id, nil
}

// actorFromRequest достаёт пользователя, положенного в контекст JWT middleware
func actorFromRequest(r *http.Request) (service.Actor, bool) {
	userID, ok := jwtmiddleware.FromContext(r.Context())
	if !ok {
		return service.Actor{}, false
	}
	role, ok := jwtmiddleware.RoleFromContext(r.Context())
	if !ok {
		role = models.RoleUser
	}
	return service.Actor{UserID: userID, Role: role}, true
}

func unauthorized(w http.ResponseWriter, logger *slog.Logger) {
	logger.Error("userID not found in context")
	response.WriteJSON(w, logger, http.StatusUnauthorized, response.Error("Unauthorized"))
}
