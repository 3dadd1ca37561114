package feed

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	notes chan *pgconn.Notification
}

func (f *fakeNotifier) WaitForNotification(ctx context.Context) (*pgconn.Notification, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case n, ok := <-f.notes:
		if !ok {
			return nil, errors.New("connection closed")
		}
		return n, nil
	}
}

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "stream closed")
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
	var zero T
	return zero
}

func TestSubscribe_InitialSnapshotThenReloadOnChange(t *testing.T) {
	hub := NewHub(nil)
	var version atomic.Int32
	load := func(context.Context) (int32, error) { return version.Load(), nil }

	sub := Subscribe(context.Background(), hub, "products", load)
	defer sub.Close()

	assert.Equal(t, int32(0), receive(t, sub.Snapshots()))

	version.Store(1)
	hub.Publish("products")
	assert.Equal(t, int32(1), receive(t, sub.Snapshots()))
}

func TestSubscribe_IgnoresOtherCollections(t *testing.T) {
	hub := NewHub(nil)
	var loads atomic.Int32
	sub := Subscribe(context.Background(), hub, "products", func(context.Context) (int32, error) {
		return loads.Add(1), nil
	})
	defer sub.Close()

	receive(t, sub.Snapshots())
	hub.Publish("orders")

	select {
	case v := <-sub.Snapshots():
		t.Fatalf("unexpected snapshot %d", v)
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, int32(1), loads.Load())
}

func TestSubscribe_LatestWins(t *testing.T) {
	hub := NewHub(nil)
	var version atomic.Int32
	reloaded := make(chan struct{}, 16)
	sub := Subscribe(context.Background(), hub, "products", func(context.Context) (int32, error) {
		defer func() { reloaded <- struct{}{} }()
		return version.Load(), nil
	})
	defer sub.Close()
	<-reloaded

	for i := int32(1); i <= 3; i++ {
		version.Store(i)
		hub.Publish("products")
		<-reloaded
	}
	// Snapshots 0 and 1 were replaced before anyone read them.
	first := receive(t, sub.Snapshots())
	assert.GreaterOrEqual(t, first, int32(2))
	if first != 3 {
		assert.Equal(t, int32(3), receive(t, sub.Snapshots()))
	}
}

func TestSubscribe_LoadErrorKeepsStreamAlive(t *testing.T) {
	hub := NewHub(nil)
	var calls atomic.Int32
	sub := Subscribe(context.Background(), hub, "categories", func(context.Context) (string, error) {
		if calls.Add(1) == 1 {
			return "", errors.New("db down")
		}
		return "fresh", nil
	})
	defer sub.Close()

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	hub.Publish("categories")
	assert.Equal(t, "fresh", receive(t, sub.Snapshots()))
}

func TestSubscription_CloseReleasesWatcher(t *testing.T) {
	hub := NewHub(nil)
	sub := Subscribe(context.Background(), hub, "products", func(context.Context) (int, error) { return 1, nil })
	receive(t, sub.Snapshots())
	assert.Equal(t, 1, hub.Watchers("products"))

	sub.Close()
	sub.Close()
	assert.Equal(t, 0, hub.Watchers("products"))
	_, ok := <-sub.Snapshots()
	assert.False(t, ok)
}

func TestSubscribe_ContextCancelEndsStream(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	sub := Subscribe(ctx, hub, "products", func(context.Context) (int, error) { return 1, nil })
	receive(t, sub.Snapshots())

	cancel()
	require.Eventually(t, func() bool { return hub.Watchers("products") == 0 }, time.Second, 5*time.Millisecond)
}

func TestHubRun_PublishesPayloadAsCollection(t *testing.T) {
	hub := NewHub(nil)
	n := &fakeNotifier{notes: make(chan *pgconn.Notification, 1)}
	var version atomic.Int32
	sub := Subscribe(context.Background(), hub, "admins", func(context.Context) (int32, error) { return version.Load(), nil })
	defer sub.Close()
	receive(t, sub.Snapshots())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- hub.Run(ctx, n) }()

	version.Store(7)
	n.notes <- &pgconn.Notification{Channel: "collection_changes", Payload: "admins"}
	assert.Equal(t, int32(7), receive(t, sub.Snapshots()))

	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)
}

func TestHubRun_ReturnsTransportError(t *testing.T) {
	hub := NewHub(nil)
	n := &fakeNotifier{notes: make(chan *pgconn.Notification)}
	close(n.notes)
	err := hub.Run(context.Background(), n)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection closed")
}

func TestHubNotConnectedBeforeServe(t *testing.T) {
	hub := NewHub(nil)
	assert.False(t, hub.Connected())
	hub.PublishAll()
	assert.False(t, hub.Connected())
}
