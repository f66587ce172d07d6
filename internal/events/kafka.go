package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher пишет события заказов и товаров в разные топики
type KafkaPublisher struct {
	log              *slog.Logger
	writer           messageWriter
	transactionTopic string
	productTopic     string
}

// batchTimeout ограничивает, сколько сообщение ждёт попутчиков в пачке
const batchTimeout = 10 * time.Millisecond

// NewKafkaPublisher создаёт асинхронного издателя: Publish не ждёт ответа брокера,
// ошибки доставки только логируются.
func NewKafkaPublisher(log *slog.Logger, brokers []string, transactionTopic, productTopic string) *KafkaPublisher {
	return newKafkaPublisher(log, newKafkaWriter(log, brokers), transactionTopic, productTopic)
}

func newKafkaWriter(log *slog.Logger, brokers []string) *kafka.Writer {
	const op = "events.KafkaPublisher.deliver"

	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.LeastBytes{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		Async:                  true,
		BatchTimeout:           batchTimeout,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				log.Error("failed to deliver kafka messages",
					slog.String("op", op),
					slog.Int("count", len(messages)),
					slog.Any("error", err),
				)
			}
		},
	}
}

func newKafkaPublisher(log *slog.Logger, writer messageWriter, transactionTopic, productTopic string) *KafkaPublisher {
	return &KafkaPublisher{
		log:              log,
		writer:           writer,
		transactionTopic: transactionTopic,
		productTopic:     productTopic,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	const op = "events.KafkaPublisher.Publish"

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%s: failed to marshal event: %w", op, err)
	}

	topic := p.topicFor(event.Type)
	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(strconv.FormatInt(event.AggregateID, 10)),
		Value: value,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Error("failed to enqueue kafka message", slog.String("op", op), slog.String("topic", topic), slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	p.log.Debug("kafka message enqueued", slog.String("op", op), slog.String("topic", topic), slog.String("type", event.Type))
	return nil
}

func (p *KafkaPublisher) topicFor(eventType string) string {
	if strings.HasPrefix(eventType, "product_") {
		return p.productTopic
	}
	return p.transactionTopic
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
