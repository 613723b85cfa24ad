package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"barangay-events/internal/logger"
	"barangay-events/internal/models"
)

const changeTypeHeader = "change-type"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer streams event changes to a Kafka topic. Messages are keyed by
// event id so the changes of one event stay in order on one partition.
type Producer struct {
	Writer messageWriter
	Topic  string
	log    *logger.Logger
}

func NewProducer(brokers []string, topic string, log *logger.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
	return &Producer{Writer: writer, Topic: topic, log: log}
}

func (p *Producer) Notify(ctx context.Context, change models.EventChange) error {
	msgBytes, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("marshal event change: %w", err)
	}

	if p.log != nil {
		p.log.Debug("KAFKA", fmt.Sprintf("Publishing to %s [%s]: event %d", p.Topic, change.Type, change.EventID))
	}

	return p.Writer.WriteMessages(ctx,
		kafka.Message{
			Key:   []byte(strconv.FormatInt(change.EventID, 10)),
			Value: msgBytes,
			Headers: []kafka.Header{
				{Key: changeTypeHeader, Value: []byte(change.Type)},
			},
			Time: change.OccurredAt,
		},
	)
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}
