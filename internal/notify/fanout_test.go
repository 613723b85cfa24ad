package notify_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"barangay-events/internal/models"
	"barangay-events/internal/notify"
)

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, change models.EventChange) error {
	return m.Called(ctx, change).Error(0)
}

func TestFanoutDeliversToAll(t *testing.T) {
	first, second := new(MockNotifier), new(MockNotifier)
	change := models.NewEventChange(models.EventCreated, 1, nil, time.Now())

	first.On("Notify", mock.Anything, change).Return(nil)
	second.On("Notify", mock.Anything, change).Return(nil)

	fanout := notify.NewFanout().Add("first", first).Add("second", second)
	assert.Equal(t, 2, fanout.Len())
	assert.NoError(t, fanout.Notify(context.Background(), change))

	first.AssertExpectations(t)
	second.AssertExpectations(t)
}

func TestFanoutContinuesAfterFailure(t *testing.T) {
	broken, healthy := new(MockNotifier), new(MockNotifier)
	change := models.NewEventChange(models.EventDeleted, 2, nil, time.Now())
	brokerDown := errors.New("broker down")

	broken.On("Notify", mock.Anything, change).Return(brokerDown)
	healthy.On("Notify", mock.Anything, change).Return(nil)

	err := notify.NewFanout().Add("kafka", broken).Add("sse", healthy).Notify(context.Background(), change)
	assert.ErrorIs(t, err, brokerDown)
	assert.Contains(t, err.Error(), "kafka: broker down")
	healthy.AssertExpectations(t)
}

func TestEmptyFanout(t *testing.T) {
	assert.NoError(t, notify.NewFanout().Notify(context.Background(), models.EventChange{}))
}

// blockingNotifier holds every delivery until its context is done.
type blockingNotifier struct {
	started chan struct{}
}

func (b *blockingNotifier) Notify(ctx context.Context, _ models.EventChange) error {
	close(b.started)
	<-ctx.Done()
	return ctx.Err()
}

func TestAsyncNotifierDoesNotBlockCaller(t *testing.T) {
	stuck := &blockingNotifier{started: make(chan struct{})}
	inline := new(MockNotifier)
	change := models.NewEventChange(models.EventCreated, 3, nil, time.Now())
	inline.On("Notify", mock.Anything, change).Return(nil)

	failures := make(chan string, 1)
	fanout := notify.NewFanout().
		AddAsync("kafka", stuck).
		Add("sse", inline).
		WithAsyncTimeout(50 * time.Millisecond).
		OnError(func(name string, err error) {
			assert.ErrorIs(t, err, context.DeadlineExceeded)
			failures <- name
		})

	ctx, cancel := context.WithCancel(context.Background())
	start := time.Now()
	assert.NoError(t, fanout.Notify(ctx, change))
	cancel()
	assert.Less(t, time.Since(start), 40*time.Millisecond)
	inline.AssertExpectations(t)

	select {
	case <-stuck.started:
	case <-time.After(time.Second):
		t.Fatal("async notifier was never called")
	}

	fanout.Wait()
	select {
	case name := <-failures:
		assert.Equal(t, "kafka", name)
	default:
		t.Fatal("async failure was not reported")
	}
}

func TestAsyncNotifierOutlivesCallerContext(t *testing.T) {
	async := new(MockNotifier)
	change := models.NewEventChange(models.EventUpdated, 4, nil, time.Now())
	async.On("Notify", mock.MatchedBy(func(ctx context.Context) bool {
		return ctx.Err() == nil
	}), change).Return(nil)

	fanout := notify.NewFanout().AddAsync("redis", async)

	ctx, cancel := context.WithCancel(context.Background())
	assert.NoError(t, fanout.Notify(ctx, change))
	cancel()
	fanout.Wait()

	async.AssertExpectations(t)
}
