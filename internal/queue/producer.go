package queue

import (
	"context"
	"encoding/json"
	"time"

	"storefront/internal/model"

	"github.com/segmentio/kafka-go"
)

// Producer writes catalog events to Kafka.
type Producer struct {
	w *kafka.Writer
}

// NewProducer keys messages by product name, so every event for one name lands on the same
// partition and stays ordered. Writes wait for all in-sync replicas.
func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			MaxAttempts:  5,
			WriteTimeout: 5 * time.Second,
			ReadTimeout:  5 * time.Second,
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

func (p *Producer) Close() error { return p.w.Close() }

// Publish synchronously writes one event.
func (p *Producer) Publish(ctx context.Context, event model.CatalogEvent) error {
	msg, err := encodeMessage(event)
	if err != nil {
		return err
	}
	return p.w.WriteMessages(ctx, msg)
}

func encodeMessage(event model.CatalogEvent) (kafka.Message, error) {
	b, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(partitionKey(event.Name)),
		Value: b,
	}, nil
}
