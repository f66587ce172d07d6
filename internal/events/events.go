package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Типы событий
const (
	TransactionCreated       = "transaction_created"
	TransactionCancelled     = "transaction_cancelled"
	TransactionStatusUpdated = "transaction_status_updated"
	TransactionDeleted       = "transaction_deleted"

	ProductCreated = "product_created"
	ProductUpdated = "product_updated"
	ProductDeleted = "product_deleted"
)

// Event - сообщение, уходящее в брокер после успешного изменения данных
type Event struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	AggregateID int64     `json:"aggregate_id"`
	Payload     any       `json:"payload,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func NewEvent(eventType string, aggregateID int64, payload any) Event {
	return Event{
		ID:          uuid.NewString(),
		Type:        eventType,
		AggregateID: aggregateID,
		Payload:     payload,
		OccurredAt:  time.Now().UTC(),
	}
}

// Publisher отправляет события. Ошибка публикации не должна откатывать бизнес-операцию.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher используется, когда брокер не настроен
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

func (NopPublisher) Close() error { return nil }
