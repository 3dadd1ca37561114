package admin

import (
	"context"

	"omcis-store/internal/domain"
)

// Repository stores administrator role assignments, keyed by user uid.
type Repository interface {
	GetByUID(ctx context.Context, uid string) (*domain.AdminRecord, error)
	List(ctx context.Context) ([]domain.AdminRecord, error)
	Create(ctx context.Context, rec domain.AdminRecord) (*domain.AdminRecord, error)
	UpdateRole(ctx context.Context, uid string, role domain.Role) (*domain.AdminRecord, error)
	Delete(ctx context.Context, uid string) error
}
