package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barangay-events/internal/logger"
	"barangay-events/internal/models"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

type fakeReader struct {
	messages []kafka.Message
	err      error
}

func (r *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.messages) == 0 {
		if r.err != nil {
			return kafka.Message{}, r.err
		}
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	msg := r.messages[0]
	r.messages = r.messages[1:]
	return msg, nil
}

func (r *fakeReader) Close() error { return nil }

func TestProducerNotify(t *testing.T) {
	writer := &fakeWriter{}
	producer := &Producer{Writer: writer, Topic: "barangay.events", log: logger.Discard()}

	change := models.NewEventChange(models.EventUpdated, 42, &models.Event{ID: 42, Title: "Fiesta"}, time.Now())
	require.NoError(t, producer.Notify(context.Background(), change))

	require.Len(t, writer.messages, 1)
	msg := writer.messages[0]
	assert.Equal(t, "42", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, changeTypeHeader, msg.Headers[0].Key)
	assert.Equal(t, "updated", string(msg.Headers[0].Value))

	var decoded models.EventChange
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, change.ID, decoded.ID)
	assert.Equal(t, "Fiesta", decoded.Event.Title)

	require.NoError(t, producer.Close())
	assert.True(t, writer.closed)
}

func TestProducerNotifyError(t *testing.T) {
	producer := &Producer{Writer: &fakeWriter{err: errors.New("leader not available")}}

	err := producer.Notify(context.Background(), models.NewEventChange(models.EventDeleted, 1, nil, time.Now()))
	assert.EqualError(t, err, "leader not available")
}

func TestConsumerStart(t *testing.T) {
	first := models.NewEventChange(models.EventCreated, 1, &models.Event{ID: 1}, time.Now())
	second := models.NewEventChange(models.EventDeleted, 1, nil, time.Now())
	firstBytes, _ := json.Marshal(first)
	secondBytes, _ := json.Marshal(second)

	reader := &fakeReader{
		messages: []kafka.Message{
			{Value: firstBytes},
			{Value: []byte("not json")},
			{Value: secondBytes},
		},
		err: io.EOF,
	}
	consumer := &Consumer{reader: reader, log: logger.Discard()}

	var got []models.EventChange
	err := consumer.Start(context.Background(), func(c models.EventChange) {
		got = append(got, c)
	})
	assert.ErrorIs(t, err, io.EOF)
	require.Len(t, got, 2)
	assert.Equal(t, first.ID, got[0].ID)
	assert.Equal(t, models.EventDeleted, got[1].Type)
}

func TestConsumerStopsOnCancel(t *testing.T) {
	consumer := &Consumer{reader: &fakeReader{}, log: logger.Discard()}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.NoError(t, consumer.Start(ctx, func(models.EventChange) {}))
}
