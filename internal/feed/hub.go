// Package feed turns Postgres change notifications into per-collection snapshot
// streams. Triggers on the store tables send the table name on a NOTIFY channel;
// the Hub fans those signals out and each Subscription reloads its collection.
package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// Notifier yields change notifications. *pgx.Conn satisfies it.
type Notifier interface {
	WaitForNotification(ctx context.Context) (*pgconn.Notification, error)
}

// Hub fans collection change signals out to watchers.
type Hub struct {
	mu       sync.Mutex
	watchers map[string]map[chan struct{}]struct{}
	logger   logrus.FieldLogger

	listening atomic.Bool
}

func NewHub(logger logrus.FieldLogger) *Hub {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Hub{
		watchers: make(map[string]map[chan struct{}]struct{}),
		logger:   logger.WithField("component", "feed"),
	}
}

// Publish signals every watcher of collection. Signals coalesce: a watcher that has
// not consumed the previous one sees a single pending change.
func (h *Hub) Publish(collection string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.watchers[collection] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// PublishAll signals every watched collection.
func (h *Hub) PublishAll() {
	h.mu.Lock()
	names := make([]string, 0, len(h.watchers))
	for name := range h.watchers {
		names = append(names, name)
	}
	h.mu.Unlock()
	for _, name := range names {
		h.Publish(name)
	}
}

func (h *Hub) watch(collection string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	h.mu.Lock()
	if h.watchers[collection] == nil {
		h.watchers[collection] = make(map[chan struct{}]struct{})
	}
	h.watchers[collection][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.watchers[collection], ch)
			if len(h.watchers[collection]) == 0 {
				delete(h.watchers, collection)
			}
			h.mu.Unlock()
		})
	}
}

// Watchers reports how many watchers are registered for collection.
func (h *Hub) Watchers(collection string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.watchers[collection])
}

// Connected reports whether Serve currently holds a listening connection.
func (h *Hub) Connected() bool {
	return h.listening.Load()
}

// Run publishes every notification received from n until ctx ends or n fails.
// The notification payload is the collection name.
func (h *Hub) Run(ctx context.Context, n Notifier) error {
	for {
		note, err := n.WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("wait for notification: %w", err)
		}
		h.logger.WithFields(logrus.Fields{"channel": note.Channel, "collection": note.Payload}).Debug("feed: change")
		h.Publish(note.Payload)
	}
}

// Serve holds one pooled connection on LISTEN channel and feeds the hub until ctx
// ends. A dropped connection is re-acquired after a pause; watchers are signalled on
// every (re)connect since changes may have been missed in between.
func (h *Hub) Serve(ctx context.Context, pool *pgxpool.Pool, channel string) error {
	const pause = 2 * time.Second
	for {
		err := h.listenOnce(ctx, pool, channel)
		if ctx.Err() != nil {
			return nil
		}
		h.logger.WithError(err).WithField("channel", channel).Warn("feed: listener stopped, reconnecting")
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(pause):
		}
	}
}

func (h *Hub) listenOnce(ctx context.Context, pool *pgxpool.Pool, channel string) error {
	pooled, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire listen conn: %w", err)
	}
	// A conn left in LISTEN state must not go back to the pool.
	conn := pooled.Hijack()
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{channel}.Sanitize()); err != nil {
		return fmt.Errorf("listen %s: %w", channel, err)
	}
	h.logger.WithField("channel", channel).Info("feed: listening")
	h.listening.Store(true)
	defer h.listening.Store(false)
	h.PublishAll()

	err = h.Run(ctx, conn)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}
