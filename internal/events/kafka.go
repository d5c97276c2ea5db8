package events

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/business-nexus/nexus/internal/domain"
)

// KafkaPublisher writes transaction events to a Kafka topic.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher returns a publisher writing to the given brokers.
func NewKafkaPublisher(brokers []string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    TopicTransactionCompleted,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

// Publish writes the transaction keyed by its owning account so per-account
// ordering survives partitioning.
func (p *KafkaPublisher) Publish(ctx context.Context, transaction domain.Transaction) error {
	data, err := json.Marshal(transaction)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(transaction.AccountID),
		Value: data,
	})
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
