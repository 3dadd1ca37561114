package user

import (
	"context"

	"omcis-store/internal/domain"
)

// Repository persists and fetches authentication accounts.
type Repository interface {
	Create(ctx context.Context, email, passwordHash string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUID(ctx context.Context, uid string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}
