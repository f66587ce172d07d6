package response

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Response - общий конверт для всех ответов API.
// Отсутствующее сообщение кодируется как null.
type Response struct {
	Success bool    `json:"success"`
	Message *string `json:"message"`
	Data    any     `json:"data"`
}

func OK(message string, data any) Response {
	return Response{Success: true, Message: messagePtr(message), Data: data}
}

func Error(message string) Response {
	return Response{Success: false, Message: messagePtr(message)}
}

func messagePtr(message string) *string {
	if message == "" {
		return nil
	}
	return &message
}

// WriteJSON пишет конверт с заданным статусом
func WriteJSON(w http.ResponseWriter, log *slog.Logger, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error("failed to encode response", slog.Any("error", err))
	}
}
