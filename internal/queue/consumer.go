package queue

import (
	"context"
	"encoding/json"
	"log/slog"

	"storefront/internal/model"

	"github.com/segmentio/kafka-go"
)

// Consumer reads catalog events from Kafka and hands each valid one to a callback.
type Consumer struct {
	r      *kafka.Reader
	logger *slog.Logger
}

func NewConsumer(brokers []string, topic, groupID string, logger *slog.Logger) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{
		r: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  groupID,
			MinBytes: 1,
			MaxBytes: 1e6,
		}),
		logger: logger,
	}
}

func (c *Consumer) Close() error { return c.r.Close() }

// Run blocks until ctx is cancelled or the reader fails.
func (c *Consumer) Run(ctx context.Context, handle func(model.CatalogEvent)) {
	for {
		m, err := c.r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() == nil {
				c.logger.Error("consumer read", "err", err)
			}
			return
		}
		event, err := decodeMessage(m)
		if err != nil {
			c.logger.Warn("consumer skipping message", "offset", m.Offset, "err", err)
			continue
		}
		handle(event)
	}
}

func decodeMessage(m kafka.Message) (model.CatalogEvent, error) {
	var event model.CatalogEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		return model.CatalogEvent{}, err
	}
	if err := event.Validate(); err != nil {
		return model.CatalogEvent{}, err
	}
	return event, nil
}
