package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"

	"barangay-events/internal/logger"
	"barangay-events/internal/models"
)

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Consumer reads event changes published by Producer.
type Consumer struct {
	reader messageReader
	log    *logger.Logger
}

// NewConsumer creates a consumer for topic in the given consumer group.
func NewConsumer(brokers []string, topic, groupID string, log *logger.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{reader: reader, log: log}
}

// Start hands every decoded change to handler until ctx is done. Messages
// that fail to decode are logged and skipped.
func (c *Consumer) Start(ctx context.Context, handler func(models.EventChange)) error {
	c.log.Info("KAFKA", "🔄 Event change consumer started")

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("read message: %w", err)
		}

		var change models.EventChange
		if err := json.Unmarshal(msg.Value, &change); err != nil {
			c.log.Warn("KAFKA", fmt.Sprintf("⚠️ Failed to unmarshal message at offset %d: %v", msg.Offset, err))
			continue
		}

		handler(change)
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
