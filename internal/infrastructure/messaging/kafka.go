// Package messaging delivers outbox events to Kafka.
package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"slice/internal/infrastructure/storage/postgres"
	"slice/pkg/logger"
)

// Message headers set on every published event.
const (
	HeaderEventType     = "event_type"
	HeaderAggregateType = "aggregate_type"
	HeaderMessageID     = "message_id"
)

// MessageWriter is the part of kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConfig configures the producer.
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
}

// NewWriter creates a synchronous writer. Messages with the same key land on
// the same partition, which keeps events of one aggregate ordered.
func NewWriter(cfg KafkaConfig) *kafka.Writer {
	timeout := cfg.WriteTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		WriteTimeout:           timeout,
		AllowAutoTopicCreation: true,
	}
}

// Publisher implements postgres.OutboxHandler over Kafka.
type Publisher struct {
	writer MessageWriter
}

var _ postgres.OutboxHandler = (*Publisher)(nil)

// NewPublisher creates a publisher over writer.
func NewPublisher(writer MessageWriter) *Publisher {
	return &Publisher{writer: writer}
}

// Handle publishes one outbox message. The key is the aggregate id.
func (p *Publisher) Handle(ctx context.Context, msg *postgres.OutboxMessage) error {
	err := p.writer.WriteMessages(ctx, toKafka(msg))
	if err != nil {
		return fmt.Errorf("publish %s %s: %w", msg.EventType, msg.ID, err)
	}
	logger.Debug(ctx, "event published",
		"event_type", msg.EventType,
		"aggregate_id", msg.AggregateID,
	)
	return nil
}

// Close flushes and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

func toKafka(msg *postgres.OutboxMessage) kafka.Message {
	return kafka.Message{
		Key:   []byte(msg.AggregateID.String()),
		Value: msg.Payload,
		Time:  msg.CreatedAt,
		Headers: []kafka.Header{
			{Key: HeaderEventType, Value: []byte(msg.EventType)},
			{Key: HeaderAggregateType, Value: []byte(msg.AggregateType)},
			{Key: HeaderMessageID, Value: []byte(msg.ID.String())},
		},
	}
}

// LogHandler writes events to the log instead of a broker.
// Used when Kafka is disabled so the outbox still drains.
type LogHandler struct{}

var _ postgres.OutboxHandler = LogHandler{}

// Handle logs the event.
func (LogHandler) Handle(ctx context.Context, msg *postgres.OutboxMessage) error {
	logger.Info(ctx, "event",
		"event_type", msg.EventType,
		"aggregate_type", msg.AggregateType,
		"aggregate_id", msg.AggregateID,
		"payload", string(msg.Payload),
	)
	return nil
}
