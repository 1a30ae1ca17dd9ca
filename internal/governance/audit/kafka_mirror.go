package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"landledger.io/registry/internal/config"
	"landledger.io/registry/internal/domain"
	"landledger.io/registry/internal/pkg/logger"
)

// messageWriter is the subset of *kafka.Writer the mirror needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaMirror copies committed domain events to a Kafka topic. The audit
// table stays the source of truth; a failed publish is logged, not retried.
type KafkaMirror struct {
	writer messageWriter
	topic  string
}

// NewKafkaMirror creates an async mirror for cfg.
func NewKafkaMirror(cfg config.KafkaConfig) (*KafkaMirror, error) {
	if !cfg.Enabled() {
		return nil, errors.New("kafka audit mirror configuration incomplete: both brokers and topic are required")
	}

	batchTimeout := cfg.BatchTimeout
	if batchTimeout == 0 {
		batchTimeout = 100 * time.Millisecond
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = 5 * time.Second
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: batchTimeout,
		WriteTimeout: writeTimeout,
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Warn("Kafka audit mirror error", zap.String("detail", fmt.Sprintf(msg, args...)))
		}),
	}

	logger.Info("Kafka audit mirror created",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("topic", cfg.Topic),
	)
	return newKafkaMirror(w, cfg.Topic), nil
}

func newKafkaMirror(w messageWriter, topic string) *KafkaMirror {
	return &KafkaMirror{writer: w, topic: topic}
}

// Handle is a domain.EventHandler. Events for the same aggregate share a
// partition key, so per-deed ordering is kept.
func (m *KafkaMirror) Handle(ctx context.Context, event *domain.DomainEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("serialize event %s: %w", event.EventID, err)
	}

	msg := kafka.Message{
		Key:   []byte(event.AggregateType + ":" + event.AggregateID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "event_id", Value: []byte(event.EventID)},
		},
	}
	if err := m.writer.WriteMessages(ctx, msg); err != nil {
		logger.FromContext(ctx).Warn("Failed to mirror audit event to Kafka",
			zap.String("event_id", event.EventID),
			zap.String("topic", m.topic),
			zap.Error(err),
		)
		return fmt.Errorf("write event %s to kafka: %w", event.EventID, err)
	}
	return nil
}

// Close flushes buffered messages.
func (m *KafkaMirror) Close() error {
	logger.Info("Closing Kafka audit mirror", zap.String("topic", m.topic))
	return m.writer.Close()
}
