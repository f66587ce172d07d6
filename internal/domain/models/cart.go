package models

import "github.com/shopspring/decimal"

// CartItem - позиция корзины, переданная при оформлении заказа
type CartItem struct {
	ProductID int64
	Quantity  int
	Price     decimal.Decimal
}
