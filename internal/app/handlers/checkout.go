package handlers

import (
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/linemk/ecommerce-api/internal/domain/models"
	"github.com/linemk/ecommerce-api/internal/lib/api/response"
	"github.com/linemk/ecommerce-api/internal/service"
)

// CartItemRequest - позиция корзины во входном JSON
type CartItemRequest struct {
	ProductID int64            `json:"product_id" validate:"required,gt=0"`
	Quantity  int              `json:"quantity" validate:"required,min=1"`
	Price     *decimal.Decimal `json:"price" validate:"required"`
}

// CheckoutRequest представляет входной JSON для оформления заказа.
type CheckoutRequest struct {
	TotalAmount *decimal.Decimal  `json:"totalAmount" validate:"required"`
	CartItems   []CartItemRequest `json:"cartItems" validate:"required,min=1,dive"`
}

func (r CheckoutRequest) input() service.CheckoutInput {
	items := make([]models.CartItem, 0, len(r.CartItems))
	for _, it := range r.CartItems {
		items = append(items, models.CartItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     *it.Price,
		})
	}
	return service.CheckoutInput{TotalAmount: *r.TotalAmount, Items: items}
}

// CheckoutHandler обрабатывает запрос POST /v1/checkout
func CheckoutHandler(log *slog.Logger, checkoutService service.CheckoutService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CheckoutHandler"
		logger := log.With(slog.String("op", op))

		// Извлекаем userID из контекста (установленный JWT middleware)
		actor, ok := actorFromRequest(r)
		if !ok {
			unauthorized(w, logger)
			return
		}

		var req CheckoutRequest
		if err := decodeAndValidate(r, &req); err != nil {
			writeError(w, logger, err, "", "")
			return
		}

		transactionID, err := checkoutService.Checkout(r.Context(), actor.UserID, req.input())
		if err != nil {
			writeError(w, logger, err, "", "Checkout failed")
			return
		}

		response.WriteJSON(w, logger, http.StatusOK,
			response.OK("Checkout successful", map[string]any{"transaction_id": transactionID}))
	}
}
