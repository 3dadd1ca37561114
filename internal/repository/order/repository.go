package order

import (
	"context"

	"omcis-store/internal/domain"
)

type Repository interface {
	// PlaceBatch writes the order, its lines and every stock decrement as one
	// all-or-nothing unit.
	PlaceBatch(ctx context.Context, o domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, statuses []domain.OrderStatus) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus) (*domain.Order, error)
}
