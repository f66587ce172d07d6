package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/linemk/ecommerce-api/internal/domain/models"
	"github.com/linemk/ecommerce-api/internal/events"
	"github.com/linemk/ecommerce-api/internal/lib/metrics"
	"github.com/linemk/ecommerce-api/internal/storage"
)

// CheckoutInput - содержимое корзины. TotalAmount задаёт клиент, по позициям он не пересчитывается.
type CheckoutInput struct {
	TotalAmount decimal.Decimal
	Items       []models.CartItem
}

type CheckoutService interface {
	Checkout(ctx context.Context, userID int64, in CheckoutInput) (int64, error)
}

type checkoutService struct {
	log         *slog.Logger
	db          *sql.DB
	productRepo storage.ProductStorage
	txRepo      storage.TransactionStorage
	itemRepo    storage.TransactionItemStorage
	publisher   events.Publisher
}

func NewCheckoutService(
	log *slog.Logger,
	db *sql.DB,
	productRepo storage.ProductStorage,
	txRepo storage.TransactionStorage,
	itemRepo storage.TransactionItemStorage,
	publisher events.Publisher,
) CheckoutService {
	return &checkoutService{
		log:         log,
		db:          db,
		productRepo: productRepo,
		txRepo:      txRepo,
		itemRepo:    itemRepo,
		publisher:   publisher,
	}
}

func validateCheckout(in CheckoutInput) error {
	if in.TotalAmount.IsNegative() {
		return validationError("The total amount must be at least 0.")
	}
	if len(in.Items) == 0 {
		return validationError("The cart items field is required.")
	}
	for i, item := range in.Items {
		if item.ProductID <= 0 {
			return validationError("The cartItems.%d.product_id field is required.", i)
		}
		if item.Quantity < 1 {
			return validationError("The cartItems.%d.quantity must be at least 1.", i)
		}
		if item.Price.IsNegative() {
			return validationError("The cartItems.%d.price must be at least 0.", i)
		}
	}
	return nil
}

// Checkout создаёт заказ и его позиции в одной транзакции БД.
// Каждый товар блокируется FOR SHARE, отсутствующий товар откатывает всё.
func (s *checkoutService) Checkout(ctx context.Context, userID int64, in CheckoutInput) (id int64, err error) {
	const op = "service.CheckoutService.Checkout"
	logger := s.log.With(
		slog.String("op", op),
		slog.Int64("userID", userID),
		slog.Int("items", len(in.Items)),
	)

	ctx, span := otel.Tracer("checkout-service").Start(ctx, "Checkout")
	defer span.End()
	span.SetAttributes(attribute.Int64("user.id", userID), attribute.Int("cart.items", len(in.Items)))

	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "checkout failed")
			metrics.Checkouts.WithLabelValues("failed").Inc()
			return
		}
		metrics.Checkouts.WithLabelValues("success").Inc()
	}()

	if err := validateCheckout(in); err != nil {
		logger.Warn("invalid cart", slog.Any("error", err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("starting checkout transaction")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	for i, item := range in.Items {
		if err := s.productRepo.LockProductByIDTx(ctx, tx, item.ProductID); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("transaction rollback failed", slog.Any("error", rbErr))
			}
			if errors.Is(err, storage.ErrProductNotFound) {
				logger.Warn("product not found", slog.Int64("productID", item.ProductID))
				return 0, fmt.Errorf("%s: %w", op, validationError("The selected cartItems.%d.product_id is invalid.", i))
			}
			logger.Error("failed to lock product", slog.Any("error", err))
			return 0, fmt.Errorf("%s: failed to lock product: %w", op, err)
		}
	}

	transactionID, err := s.txRepo.CreateTransaction(ctx, tx, userID, in.TotalAmount)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to create transaction", slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to create transaction: %w", op, err)
	}

	// Позиции пишутся в порядке корзины
	for _, item := range in.Items {
		if err := s.itemRepo.CreateTransactionItem(ctx, tx, transactionID, item); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("transaction rollback failed", slog.Any("error", rbErr))
			}
			logger.Error("failed to create transaction item", slog.Any("error", err))
			return 0, fmt.Errorf("%s: failed to create transaction item: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	span.SetAttributes(attribute.Int64("transaction.id", transactionID))
	publish(ctx, logger, s.publisher, events.NewEvent(events.TransactionCreated, transactionID, map[string]any{
		"user_id":      userID,
		"total_amount": in.TotalAmount,
		"items":        in.Items,
	}))

	logger.Info("checkout completed successfully", slog.Int64("transactionID", transactionID))
	return transactionID, nil
}
