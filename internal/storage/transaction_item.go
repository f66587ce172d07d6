package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/linemk/ecommerce-api/internal/domain/models"
)

// TransactionItemStorage описывает методы для работы со строками заказа.
type TransactionItemStorage interface {
	// CreateTransactionItem вставляет строку заказа с использованием транзакции.
	CreateTransactionItem(ctx context.Context, tx *sql.Tx, transactionID int64, item models.CartItem) error
	// GetItemDetailsByTransactionID возвращает строки заказа с JOIN для получения текущего названия товара.
	GetItemDetailsByTransactionID(ctx context.Context, transactionID int64) ([]*models.TransactionItemDetail, error)
	DeleteItemsByTransactionID(ctx context.Context, tx *sql.Tx, transactionID int64) error
}

type transactionItemRepository struct {
	db *sql.DB
}

func NewTransactionItemRepository(db *sql.DB) TransactionItemStorage {
	return &transactionItemRepository{db: db}
}

func (r *transactionItemRepository) CreateTransactionItem(ctx context.Context, tx *sql.Tx, transactionID int64, item models.CartItem) error {
	query := `INSERT INTO transaction_items (transaction_id, product_id, quantity, price, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, NOW(), NOW())`
	_, err := tx.ExecContext(ctx, query, transactionID, item.ProductID, item.Quantity, item.Price)
	if err != nil {
		return fmt.Errorf("failed to create transaction item: %w", err)
	}
	return nil
}

func (r *transactionItemRepository) GetItemDetailsByTransactionID(ctx context.Context, transactionID int64) ([]*models.TransactionItemDetail, error) {
	query := `
		SELECT p.name, ti.quantity, ti.price
		FROM transaction_items ti
		JOIN products p ON ti.product_id = p.id
		WHERE ti.transaction_id = $1
		ORDER BY ti.id`
	rows, err := r.db.QueryContext(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction items: %w", err)
	}
	defer rows.Close()

	items := make([]*models.TransactionItemDetail, 0)
	for rows.Next() {
		item := &models.TransactionItemDetail{}
		if err := rows.Scan(&item.ProductName, &item.Quantity, &item.Price); err != nil {
			return nil, fmt.Errorf("failed to scan transaction item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *transactionItemRepository) DeleteItemsByTransactionID(ctx context.Context, tx *sql.Tx, transactionID int64) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM transaction_items WHERE transaction_id = $1", transactionID); err != nil {
		return fmt.Errorf("failed to delete transaction items: %w", err)
	}
	return nil
}
