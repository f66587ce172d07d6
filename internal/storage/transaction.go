package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/linemk/ecommerce-api/internal/domain/models"
)

var ErrTransactionNotFound = errors.New("transaction not found")

// TransactionStorage описывает методы для работы с заказами.
type TransactionStorage interface {
	// CreateTransaction вставляет заказ со статусом "on progress" внутри транзакции БД.
	CreateTransaction(ctx context.Context, tx *sql.Tx, userID int64, totalAmount decimal.Decimal) (int64, error)
	GetTransactionByID(ctx context.Context, id int64) (*models.Transaction, error)
	GetTransactionsByUserID(ctx context.Context, userID int64) ([]*models.Transaction, error)
	GetAllTransactions(ctx context.Context) ([]*models.Transaction, error)
	// CancelTransaction выставляет статус cancelled и флаг cancelled.
	CancelTransaction(ctx context.Context, id int64) error
	// UpdateTransactionStatus меняет только статус, флаг cancelled не трогает.
	UpdateTransactionStatus(ctx context.Context, id int64, status models.Status) error
	DeleteTransaction(ctx context.Context, tx *sql.Tx, id int64) error
}

type transactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) TransactionStorage {
	return &transactionRepository{db: db}
}

const transactionColumns = "id, user_id, total_amount, status, cancelled, created_at, updated_at"

func scanTransaction(row interface{ Scan(dest ...any) error }) (*models.Transaction, error) {
	t := &models.Transaction{}
	if err := row.Scan(&t.ID, &t.UserID, &t.TotalAmount, &t.Status, &t.Cancelled, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *transactionRepository) CreateTransaction(ctx context.Context, tx *sql.Tx, userID int64, totalAmount decimal.Decimal) (int64, error) {
	query := `INSERT INTO transactions (user_id, total_amount, status, cancelled, created_at, updated_at)
	          VALUES ($1, $2, $3, FALSE, NOW(), NOW())
	          RETURNING id`
	var id int64
	if err := tx.QueryRowContext(ctx, query, userID, totalAmount, models.StatusOnProgress).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to create transaction: %w", err)
	}
	return id, nil
}

func (r *transactionRepository) GetTransactionByID(ctx context.Context, id int64) (*models.Transaction, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+transactionColumns+" FROM transactions WHERE id = $1", id)
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *transactionRepository) GetTransactionsByUserID(ctx context.Context, userID int64) ([]*models.Transaction, error) {
	return r.list(ctx, "SELECT "+transactionColumns+" FROM transactions WHERE user_id = $1 ORDER BY id", userID)
}

func (r *transactionRepository) GetAllTransactions(ctx context.Context) ([]*models.Transaction, error) {
	return r.list(ctx, "SELECT "+transactionColumns+" FROM transactions ORDER BY id")
}

func (r *transactionRepository) list(ctx context.Context, query string, args ...any) ([]*models.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	transactions := make([]*models.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return transactions, nil
}

func (r *transactionRepository) CancelTransaction(ctx context.Context, id int64) error {
	query := `UPDATE transactions SET status = $1, cancelled = TRUE, updated_at = NOW() WHERE id = $2`
	return r.exec(ctx, query, models.StatusCancelled, id)
}

func (r *transactionRepository) UpdateTransactionStatus(ctx context.Context, id int64, status models.Status) error {
	query := `UPDATE transactions SET status = $1, updated_at = NOW() WHERE id = $2`
	return r.exec(ctx, query, status, id)
}

func (r *transactionRepository) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

// DeleteTransaction удаляет строку заказа; отсутствие строки ошибкой не считается.
func (r *transactionRepository) DeleteTransaction(ctx context.Context, tx *sql.Tx, id int64) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM transactions WHERE id = $1", id); err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return nil
}
