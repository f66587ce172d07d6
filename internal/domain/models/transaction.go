package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status - статус заказа. Переходы между статусами не ограничены.
type Status string

const (
	StatusOnProgress Status = "on progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Valid сообщает, входит ли статус в допустимый набор
func (s Status) Valid() bool {
	switch s {
	case StatusOnProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Transaction представляет заказ покупателя.
// Cancelled дублирует статус и может с ним расходиться: UpdateStatus флаг не трогает.
type Transaction struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      Status          `json:"status"`
	Cancelled   bool            `json:"cancelled"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TransactionItem - строка заказа, цена фиксируется на момент покупки
type TransactionItem struct {
	ID            int64           `json:"id"`
	TransactionID int64           `json:"transaction_id"`
	ProductID     int64           `json:"product_id"`
	Quantity      int             `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
}

// TransactionItemDetail - строка заказа с текущим названием товара; заполняется через JOIN с products
type TransactionItemDetail struct {
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}
