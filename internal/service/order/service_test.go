package order

import (
	"context"
	"testing"

	"omcis-store/internal/domain"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	orders   map[string]domain.Order
	listedBy []domain.OrderStatus
}

func (r *stubRepo) PlaceBatch(_ context.Context, o domain.Order) (*domain.Order, error) {
	r.orders[o.ID] = o
	return &o, nil
}

func (r *stubRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &o, nil
}

func (r *stubRepo) List(_ context.Context, statuses []domain.OrderStatus) ([]domain.Order, error) {
	r.listedBy = statuses
	return nil, nil
}

func (r *stubRepo) UpdateStatus(_ context.Context, id string, from, to domain.OrderStatus) (*domain.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if o.Status != from {
		return nil, domain.ErrInvalidStatusTransition
	}
	o.Status = to
	r.orders[id] = o
	return &o, nil
}

func TestParseStatusFilter(t *testing.T) {
	got, err := ParseStatusFilter(nil)
	require.NoError(t, err)
	assert.Equal(t, []domain.OrderStatus{domain.OrderPaid, domain.OrderShipped}, got)

	got, err = ParseStatusFilter([]string{"all"})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatuses, got)

	got, err = ParseStatusFilter([]string{"delivered,shipped", "delivered"})
	require.NoError(t, err)
	assert.Equal(t, []domain.OrderStatus{domain.OrderDelivered, domain.OrderShipped}, got)

	_, err = ParseStatusFilter([]string{"cancelled"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestParseStatusFilterDoesNotAliasDefaults(t *testing.T) {
	got, _ := ParseStatusFilter(nil)
	got[0] = domain.OrderDelivered
	assert.Equal(t, domain.OrderPaid, DefaultStatuses[0])
}

func TestAdvance(t *testing.T) {
	repo := &stubRepo{orders: map[string]domain.Order{"o1": {ID: "o1", Status: domain.OrderPaid}}}
	logger, hook := logtest.NewNullLogger()
	svc := New(repo, logger)
	ctx := context.Background()

	o, err := svc.Advance(ctx, "o1", domain.OrderShipped)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderShipped, o.Status)
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "o1", entry.Data["order_id"])
	assert.Equal(t, domain.OrderShipped, entry.Data["to"])

	_, err = svc.Advance(ctx, "o1", domain.OrderPaid)
	assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
	_, err = svc.Advance(ctx, "o1", domain.OrderShipped)
	assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)

	o, err = svc.Advance(ctx, "o1", domain.OrderDelivered)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderDelivered, o.Status)

	_, err = svc.Advance(ctx, "missing", domain.OrderShipped)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListPassesStatuses(t *testing.T) {
	repo := &stubRepo{orders: map[string]domain.Order{}}
	_, err := New(repo, nil).List(context.Background(), []domain.OrderStatus{domain.OrderDelivered})
	require.NoError(t, err)
	assert.Equal(t, []domain.OrderStatus{domain.OrderDelivered}, repo.listedBy)
}
