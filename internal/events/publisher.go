package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/paycore/payment-processor/internal/models"
)

// Topic carries one event per payment status transition.
const Topic = "payment.status.changed"

type transitionEvent struct {
	TransactionID  string    `json:"transaction_id"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previous_status"`
	Timestamp      time.Time `json:"timestamp"`
}

// KafkaPublisher emits status-transition events to Kafka for downstream
// consumers (notifications, reconciliation, reporting).
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers),
			Topic:    Topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

func (p *KafkaPublisher) PublishTransition(ctx context.Context, transactionID string, from, to models.PaymentStatus) error {
	payload, err := json.Marshal(transitionEvent{
		TransactionID:  transactionID,
		Status:         string(to),
		PreviousStatus: string(from),
		Timestamp:      time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(transactionID),
		Value: payload,
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher discards transition events. Used in tests and when no
// broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishTransition(context.Context, string, models.PaymentStatus, models.PaymentStatus) error {
	return nil
}
