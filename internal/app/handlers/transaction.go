package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/linemk/ecommerce-api/internal/domain/models"
	"github.com/linemk/ecommerce-api/internal/lib/api/response"
	"github.com/linemk/ecommerce-api/internal/service"
)

// UpdateStatusRequest - новый статус заказа. Допустимость статуса проверяет сервис,
// после проверки существования заказа.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

const transactionNotFound = "Transaction not found"

// ListUserTransactionsHandler обрабатывает запрос GET /v1/transactions/{userId}
func ListUserTransactionsHandler(log *slog.Logger, txService service.TransactionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListUserTransactionsHandler"
		logger := log.With(slog.String("op", op))

		actor, ok := actorFromRequest(r)
		if !ok {
			unauthorized(w, logger)
			return
		}

		userID, err := pathID(r, "userId")
		if err != nil {
			writeError(w, logger, err, "User not found", "")
			return
		}

		transactions, err := txService.ListByUser(r.Context(), actor, userID)
		if err != nil {
			writeError(w, logger, err, "User not found", "Error fetching transactions")
			return
		}

		response.WriteJSON(w, logger, http.StatusOK,
			response.OK("", map[string]any{"transactions": transactions}))
	}
}

// ListTransactionsHandler обрабатывает запрос GET /v1/transactions
func ListTransactionsHandler(log *slog.Logger, txService service.TransactionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListTransactionsHandler"
		logger := log.With(slog.String("op", op))

		transactions, err := txService.ListAll(r.Context())
		if err != nil {
			writeError(w, logger, err, "", "Error fetching transactions")
			return
		}

		response.WriteJSON(w, logger, http.StatusOK,
			response.OK("", map[string]any{"transactions": transactions}))
	}
}

// TransactionDetailHandler обрабатывает запрос GET /v1/transactions/detail/{transactionId}
func TransactionDetailHandler(log *slog.Logger, txService service.TransactionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.TransactionDetailHandler"
		logger := log.With(slog.String("op", op))

		id, err := pathID(r, "transactionId")
		if err != nil {
			writeError(w, logger, err, "Transaction items not found", "")
			return
		}

		items, err := txService.GetDetail(r.Context(), id)
		if err != nil {
			writeError(w, logger, err, "Transaction items not found", "Error fetching transaction items")
			return
		}

		response.WriteJSON(w, logger, http.StatusOK,
			response.OK("", map[string]any{"transaction_items": items}))
	}
}

// CancelTransactionHandler обрабатывает запрос PUT /v1/transactions/cancel/{transactionId}
func CancelTransactionHandler(log *slog.Logger, txService service.TransactionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CancelTransactionHandler"
		logger := log.With(slog.String("op", op))

		actor, ok := actorFromRequest(r)
		if !ok {
			unauthorized(w, logger)
			return
		}

		id, err := pathID(r, "transactionId")
		if err != nil {
			writeError(w, logger, err, transactionNotFound, "")
			return
		}

		if err := txService.Cancel(r.Context(), actor, id); err != nil {
			writeError(w, logger, err, transactionNotFound, "Error cancelling transaction")
			return
		}

		response.WriteJSON(w, logger, http.StatusOK, response.OK("Transaction cancelled successfully", nil))
	}
}

// UpdateTransactionStatusHandler обрабатывает запрос PUT /v1/transactions/update_status/{transactionId}
func UpdateTransactionStatusHandler(log *slog.Logger, txService service.TransactionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateTransactionStatusHandler"
		logger := log.With(slog.String("op", op))

		id, err := pathID(r, "transactionId")
		if err != nil {
			writeError(w, logger, err, transactionNotFound, "")
			return
		}

		// нечитаемое тело даёт пустой статус, который сервис отклонит после проверки заказа
		var req UpdateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Debug("failed to decode body", slog.Any("error", err))
		}

		if err := txService.UpdateStatus(r.Context(), id, models.Status(req.Status)); err != nil {
			writeError(w, logger, err, transactionNotFound, "Error updating transaction status")
			return
		}

		response.WriteJSON(w, logger, http.StatusOK, response.OK("Transaction status updated successfully", nil))
	}
}

// DeleteTransactionHandler обрабатывает запрос DELETE /v1/transactions/{transactionId}
func DeleteTransactionHandler(log *slog.Logger, txService service.TransactionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DeleteTransactionHandler"
		logger := log.With(slog.String("op", op))

		// удаление несуществующего заказа успешно, даже если id не может существовать
		id, err := rawPathID(r, "transactionId")
		if err != nil {
			writeError(w, logger, err, transactionNotFound, "")
			return
		}

		if err := txService.Delete(r.Context(), id); err != nil {
			writeError(w, logger, err, transactionNotFound, "Error deleting transaction")
			return
		}

		response.WriteJSON(w, logger, http.StatusOK,
			response.OK("Transaction and transaction items deleted successfully", nil))
	}
}
