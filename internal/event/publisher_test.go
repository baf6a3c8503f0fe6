package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"gameswap-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingPublisher struct {
	release  chan struct{}
	received chan model.Event
	err      error
}

func (p *blockingPublisher) Publish(_ context.Context, _ string, evt model.Event) error {
	<-p.release
	p.received <- evt
	return p.err
}

func (p *blockingPublisher) Close() error { return nil }

func TestAsync_PublishDoesNotBlock(t *testing.T) {
	inner := &blockingPublisher{
		release:  make(chan struct{}),
		received: make(chan model.Event, 1),
	}
	async := NewAsync(inner)

	done := make(chan error, 1)
	go func() {
		done <- async.Publish(context.Background(), TopicOfferEvents, model.NewEvent(model.EventOfferCreated))
	}()

	// The caller returns while the inner publisher is still blocked.
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on the inner publisher")
	}

	close(inner.release)
	select {
	case evt := <-inner.received:
		assert.Equal(t, model.EventOfferCreated, evt.EventType)
	case <-time.After(time.Second):
		t.Fatal("event never reached the inner publisher")
	}
}

func TestAsync_PublishSwallowsErrors(t *testing.T) {
	inner := &blockingPublisher{
		release:  make(chan struct{}),
		received: make(chan model.Event, 1),
		err:      errors.New("broker down"),
	}
	close(inner.release)
	async := NewAsync(inner)

	err := async.Publish(context.Background(), TopicUserEvents, model.NewEvent(model.EventPasswordChanged))
	assert.NoError(t, err, "publish failures are logged, not returned")

	select {
	case <-inner.received:
	case <-time.After(time.Second):
		t.Fatal("event never reached the inner publisher")
	}
}

func TestTopics(t *testing.T) {
	require.Equal(t, []string{"user-events", "game-events", "offer-events"}, Topics())
}
