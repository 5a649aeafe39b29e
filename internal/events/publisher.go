package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// PaymentEvent is emitted after a payment record's status is written.
type PaymentEvent struct {
	Shop              string    `json:"shop"`
	MerchantReference string    `json:"merchant_reference"`
	StryveOrderID     string    `json:"stryve_order_id,omitempty"`
	Status            string    `json:"status"`
	PreviousStatus    string    `json:"previous_status,omitempty"`
	Verified          bool      `json:"verified"`
	OccurredAt        time.Time `json:"occurred_at"`
}

type Publisher interface {
	PublishPaymentEvent(ctx context.Context, event PaymentEvent) error
	Close() error
}

// NewPublisher returns a kafka-backed publisher, or a no-op one when no
// brokers are configured.
func NewPublisher(brokers []string, topic string, logger *zap.Logger) Publisher {
	if len(brokers) == 0 {
		return NopPublisher{}
	}
	return NewKafkaPublisher(brokers, topic, logger)
}

type KafkaPublisher struct {
	writer *kafka.Writer
	logger *zap.Logger
}

// NewKafkaPublisher builds an async writer: PublishPaymentEvent only enqueues,
// and delivery results are reported to the logger by the completion hook.
func NewKafkaPublisher(brokers []string, topic string, logger *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			WriteTimeout: 10 * time.Second,
			RequiredAcks: kafka.RequireAll,
			MaxAttempts:  3,
			Async:        true,
			Completion:   completionLogger(topic, logger),
			ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
				logger.Error(fmt.Sprintf(msg, args...))
			}),
		},
		logger: logger,
	}
}

func completionLogger(topic string, logger *zap.Logger) func([]kafka.Message, error) {
	return func(messages []kafka.Message, err error) {
		if err != nil {
			for _, m := range messages {
				logger.Error("failed to publish payment event",
					zap.String("topic", topic),
					zap.String("merchant_reference", string(m.Key)),
					zap.Error(err),
				)
			}
			return
		}
		logger.Debug("payment events published",
			zap.String("topic", topic),
			zap.Int("count", len(messages)),
		)
	}
}

func (p *KafkaPublisher) PublishPaymentEvent(ctx context.Context, event PaymentEvent) error {
	msg, err := encode(event)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to enqueue payment event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer: %w", err)
	}
	return nil
}

// Messages are keyed by merchant reference so every event for one checkout
// lands on the same partition.
func encode(event PaymentEvent) (kafka.Message, error) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal payment event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(event.MerchantReference),
		Value: value,
		Time:  event.OccurredAt,
	}, nil
}

type NopPublisher struct{}

func (NopPublisher) PublishPaymentEvent(context.Context, PaymentEvent) error { return nil }
func (NopPublisher) Close() error                                            { return nil }
