package feed

import (
	"context"
	"sync"
)

// Loader reads the current state of a collection.
type Loader[T any] func(ctx context.Context) (T, error)

// Subscription is a live stream of immutable snapshots of one collection. The first
// snapshot is the state at subscribe time; each change signal yields a fresh one.
// Delivery is latest-wins: a slow consumer skips intermediate snapshots.
type Subscription[T any] struct {
	ch     chan T
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Subscribe starts a snapshot stream for collection. The stream ends when ctx ends or
// Close is called; the Snapshots channel is closed afterwards. A failed load keeps the
// previous snapshot and waits for the next change.
func Subscribe[T any](ctx context.Context, hub *Hub, collection string, load Loader[T]) *Subscription[T] {
	ctx, cancel := context.WithCancel(ctx)
	s := &Subscription[T]{
		ch:     make(chan T, 1),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	signals, unwatch := hub.watch(collection)
	log := hub.logger.WithField("collection", collection)

	go func() {
		defer close(s.done)
		defer close(s.ch)
		defer unwatch()

		for {
			snap, err := load(ctx)
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				log.WithError(err).Warn("feed: reload failed")
			} else {
				s.offer(snap)
			}
			select {
			case <-ctx.Done():
				return
			case <-signals:
			}
		}
	}()
	return s
}

// offer replaces any undelivered snapshot. Only the stream goroutine sends, so the
// send after draining never blocks.
func (s *Subscription[T]) offer(v T) {
	select {
	case <-s.ch:
	default:
	}
	s.ch <- v
}

// Snapshots returns the stream. It is closed when the subscription ends.
func (s *Subscription[T]) Snapshots() <-chan T {
	return s.ch
}

// Close stops delivery and waits for the stream goroutine to exit.
func (s *Subscription[T]) Close() {
	s.once.Do(s.cancel)
	<-s.done
}
