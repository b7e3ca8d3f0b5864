package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive[T any](t *testing.T, ch <-chan Event[T]) Event[T] {
	t.Helper()
	select {
	case event, ok := <-ch:
		require.True(t, ok, "channel closed before event arrived")
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event[T]{}
	}
}

func TestBrokerDeliversToAllSubscribers(t *testing.T) {
	broker := NewBroker[string]()
	defer broker.Shutdown()

	ctx := context.Background()
	first := broker.Subscribe(ctx)
	second := broker.Subscribe(ctx)
	assert.Equal(t, 2, broker.SubscriberCount())

	broker.Publish(QuestionCreatedEvent, "payload")

	for _, ch := range []<-chan Event[string]{first, second} {
		event := receive(t, ch)
		assert.Equal(t, QuestionCreatedEvent, event.Type)
		assert.Equal(t, "payload", event.Payload)
	}
}

func TestBrokerContextCancelUnsubscribes(t *testing.T) {
	broker := NewBroker[string]()
	defer broker.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	sub := broker.Subscribe(ctx)
	require.Equal(t, 1, broker.SubscriberCount())

	cancel()

	assert.Eventually(t, func() bool {
		return broker.SubscriberCount() == 0
	}, time.Second, 5*time.Millisecond)

	// The channel drains and closes.
	for range sub {
	}
}

func TestBrokerShutdownClosesSubscribers(t *testing.T) {
	broker := NewBroker[string]()

	sub := broker.Subscribe(context.Background())
	broker.Shutdown()

	_, ok := <-sub
	assert.False(t, ok)
	assert.Zero(t, broker.SubscriberCount())

	// Publishing after shutdown is a no-op, and repeated shutdowns are safe.
	broker.Publish(AnswerCreatedEvent, "late")
	broker.Shutdown()
}

func TestBrokerSubscribeAfterShutdown(t *testing.T) {
	broker := NewBroker[string]()
	broker.Shutdown()

	sub := broker.Subscribe(context.Background())
	_, ok := <-sub
	assert.False(t, ok)
}

func TestBrokerSlowSubscriberDropsEvents(t *testing.T) {
	broker := NewBroker[int]()
	defer broker.Shutdown()

	sub := broker.Subscribe(context.Background())

	// Nobody reads; the buffer fills and further publishes must not block.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < bufferSize*2; i++ {
			broker.Publish(QuestionCreatedEvent, i)
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}

	assert.Len(t, sub, bufferSize)
}
