package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/linemk/ecommerce-api/internal/domain/models"
	"github.com/linemk/ecommerce-api/internal/events"
)

// Ошибки сервисного слоя, handlers переводят их в HTTP-статусы
var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError несёт сообщение, которое можно показать клиенту
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Unwrap() error { return ErrValidation }

func validationError(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// Actor - пользователь, от имени которого выполняется операция
type Actor struct {
	UserID int64
	Role   models.Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// publish отправляет событие; сбой брокера только логируется
func publish(ctx context.Context, log *slog.Logger, publisher events.Publisher, event events.Event) {
	if err := publisher.Publish(ctx, event); err != nil {
		log.Warn("failed to publish event", slog.String("type", event.Type), slog.Any("error", err))
	}
}
