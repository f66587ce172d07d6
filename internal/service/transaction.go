package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/linemk/ecommerce-api/internal/domain/models"
	"github.com/linemk/ecommerce-api/internal/events"
	"github.com/linemk/ecommerce-api/internal/storage"
)

// TransactionService - чтение и администрирование оформленных заказов.
type TransactionService interface {
	ListByUser(ctx context.Context, actor Actor, userID int64) ([]*models.Transaction, error)
	ListAll(ctx context.Context) ([]*models.Transaction, error)
	GetDetail(ctx context.Context, transactionID int64) ([]*models.TransactionItemDetail, error)
	Cancel(ctx context.Context, actor Actor, transactionID int64) error
	UpdateStatus(ctx context.Context, transactionID int64, status models.Status) error
	Delete(ctx context.Context, transactionID int64) error
}

type transactionService struct {
	log       *slog.Logger
	db        *sql.DB
	txRepo    storage.TransactionStorage
	itemRepo  storage.TransactionItemStorage
	publisher events.Publisher
}

func NewTransactionService(
	log *slog.Logger,
	db *sql.DB,
	txRepo storage.TransactionStorage,
	itemRepo storage.TransactionItemStorage,
	publisher events.Publisher,
) TransactionService {
	return &transactionService{
		log:       log,
		db:        db,
		txRepo:    txRepo,
		itemRepo:  itemRepo,
		publisher: publisher,
	}
}

func startSpan(ctx context.Context, name string, transactionID int64) (context.Context, trace.Span) {
	ctx, span := otel.Tracer("transaction-service").Start(ctx, name)
	span.SetAttributes(attribute.Int64("transaction.id", transactionID))
	return ctx, span
}

func failSpan(span trace.Span, err error, msg string) {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
}

func (s *transactionService) ListByUser(ctx context.Context, actor Actor, userID int64) ([]*models.Transaction, error) {
	const op = "service.TransactionService.ListByUser"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.Int64("actorID", actor.UserID))

	if !actor.IsAdmin() && actor.UserID != userID {
		logger.Warn("access to foreign transactions denied")
		return nil, fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	transactions, err := s.txRepo.GetTransactionsByUserID(ctx, userID)
	if err != nil {
		logger.Error("failed to get transactions", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get transactions: %w", op, err)
	}
	if transactions == nil {
		transactions = []*models.Transaction{}
	}
	return transactions, nil
}

func (s *transactionService) ListAll(ctx context.Context) ([]*models.Transaction, error) {
	const op = "service.TransactionService.ListAll"

	transactions, err := s.txRepo.GetAllTransactions(ctx)
	if err != nil {
		s.log.Error("failed to get transactions", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get transactions: %w", op, err)
	}
	if transactions == nil {
		transactions = []*models.Transaction{}
	}
	return transactions, nil
}

// GetDetail возвращает позиции заказа с текущими названиями товаров.
// Заказ без позиций считается ненайденным.
func (s *transactionService) GetDetail(ctx context.Context, transactionID int64) ([]*models.TransactionItemDetail, error) {
	const op = "service.TransactionService.GetDetail"
	logger := s.log.With(slog.String("op", op), slog.Int64("transactionID", transactionID))

	ctx, span := startSpan(ctx, "GetDetail", transactionID)
	defer span.End()

	items, err := s.itemRepo.GetItemDetailsByTransactionID(ctx, transactionID)
	if err != nil {
		failSpan(span, err, "items lookup failed")
		logger.Error("failed to get transaction items", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get transaction items: %w", op, err)
	}
	if len(items) == 0 {
		logger.Info("transaction has no items")
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return items, nil
}

// Cancel отменяет заказ. Повторная отмена не считается ошибкой.
func (s *transactionService) Cancel(ctx context.Context, actor Actor, transactionID int64) error {
	const op = "service.TransactionService.Cancel"
	logger := s.log.With(slog.String("op", op), slog.Int64("transactionID", transactionID), slog.Int64("actorID", actor.UserID))

	ctx, span := startSpan(ctx, "Cancel", transactionID)
	defer span.End()

	transaction, err := s.txRepo.GetTransactionByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, storage.ErrTransactionNotFound) {
			logger.Info("transaction not found")
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		failSpan(span, err, "transaction lookup failed")
		logger.Error("failed to get transaction", slog.Any("error", err))
		return fmt.Errorf("%s: failed to get transaction: %w", op, err)
	}

	if !actor.IsAdmin() && transaction.UserID != actor.UserID {
		logger.Warn("cancel of foreign transaction denied")
		return fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	if err := s.txRepo.CancelTransaction(ctx, transactionID); err != nil {
		if errors.Is(err, storage.ErrTransactionNotFound) {
			// заказ удалили между чтением и обновлением
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		failSpan(span, err, "cancel failed")
		logger.Error("failed to cancel transaction", slog.Any("error", err))
		return fmt.Errorf("%s: failed to cancel transaction: %w", op, err)
	}

	publish(ctx, logger, s.publisher, events.NewEvent(events.TransactionCancelled, transactionID, map[string]any{
		"user_id": transaction.UserID,
	}))
	logger.Info("transaction cancelled")
	return nil
}

// UpdateStatus меняет только статус; флаг cancelled остаётся прежним.
func (s *transactionService) UpdateStatus(ctx context.Context, transactionID int64, status models.Status) error {
	const op = "service.TransactionService.UpdateStatus"
	logger := s.log.With(slog.String("op", op), slog.Int64("transactionID", transactionID), slog.String("status", string(status)))

	ctx, span := startSpan(ctx, "UpdateStatus", transactionID)
	defer span.End()

	if _, err := s.txRepo.GetTransactionByID(ctx, transactionID); err != nil {
		if errors.Is(err, storage.ErrTransactionNotFound) {
			logger.Info("transaction not found")
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		failSpan(span, err, "transaction lookup failed")
		logger.Error("failed to get transaction", slog.Any("error", err))
		return fmt.Errorf("%s: failed to get transaction: %w", op, err)
	}

	if !status.Valid() {
		logger.Warn("invalid status")
		return fmt.Errorf("%s: %w", op, validationError("The selected status is invalid."))
	}

	if err := s.txRepo.UpdateTransactionStatus(ctx, transactionID, status); err != nil {
		if errors.Is(err, storage.ErrTransactionNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		failSpan(span, err, "status update failed")
		logger.Error("failed to update status", slog.Any("error", err))
		return fmt.Errorf("%s: failed to update status: %w", op, err)
	}

	publish(ctx, logger, s.publisher, events.NewEvent(events.TransactionStatusUpdated, transactionID, map[string]any{
		"status": status,
	}))
	logger.Info("transaction status updated")
	return nil
}

// Delete удаляет заказ и его позиции в одной транзакции БД.
// Несуществующий id удаляется без ошибки.
func (s *transactionService) Delete(ctx context.Context, transactionID int64) error {
	const op = "service.TransactionService.Delete"
	logger := s.log.With(slog.String("op", op), slog.Int64("transactionID", transactionID))

	ctx, span := startSpan(ctx, "Delete", transactionID)
	defer span.End()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		failSpan(span, err, "begin failed")
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	if err := s.txRepo.DeleteTransaction(ctx, tx, transactionID); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		failSpan(span, err, "delete failed")
		logger.Error("failed to delete transaction", slog.Any("error", err))
		return fmt.Errorf("%s: failed to delete transaction: %w", op, err)
	}

	if err := s.itemRepo.DeleteItemsByTransactionID(ctx, tx, transactionID); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		failSpan(span, err, "delete items failed")
		logger.Error("failed to delete transaction items", slog.Any("error", err))
		return fmt.Errorf("%s: failed to delete transaction items: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		failSpan(span, err, "commit failed")
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	publish(ctx, logger, s.publisher, events.NewEvent(events.TransactionDeleted, transactionID, nil))
	logger.Info("transaction deleted")
	return nil
}
