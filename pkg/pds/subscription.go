package pds

import (
	"context"
	"errors"
	"sync"

	"github.com/atdock/atdock.go/pkg/constants"
	"github.com/atdock/atdock.go/pkg/models"
)

// Subscription is a live stream of repository events. Receive from
// Events until the channel closes, then check Err for why the stream
// ended. Both engines deliver through the same bounded channel, so a
// slow consumer applies backpressure to the producer instead of growing
// memory without limit.
type Subscription struct {
	events chan models.RepoEvent
	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	err error
}

func newSubscription(cancel context.CancelFunc) *Subscription {
	return &Subscription{
		events: make(chan models.RepoEvent, constants.FirehoseBufferSize),
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Events returns the stream channel. It closes when the subscription
// ends, whether by Close, context cancellation, or a stream error.
func (s *Subscription) Events() <-chan models.RepoEvent {
	return s.events
}

// Err reports why the stream ended. It is nil while the stream is live
// and stays nil after a clean close.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close stops the subscription and waits for its producer to finish.
func (s *Subscription) Close() error {
	s.cancel()
	<-s.done
	return nil
}

// deliver hands ev to the consumer, giving up when ctx ends.
func (s *Subscription) deliver(ctx context.Context, ev models.RepoEvent) bool {
	select {
	case s.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// finish records the terminal error and closes the stream. Cancellation
// counts as a clean end.
func (s *Subscription) finish(err error) {
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	close(s.events)
	close(s.done)
}
