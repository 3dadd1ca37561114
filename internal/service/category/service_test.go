package category

import (
	"context"
	"testing"

	"omcis-store/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	items []domain.Category
}

func (r *stubRepo) List(context.Context) ([]domain.Category, error) {
	return append([]domain.Category(nil), r.items...), nil
}

func (r *stubRepo) Create(_ context.Context, name string) (*domain.Category, error) {
	for _, c := range r.items {
		if c.Name == name {
			return nil, domain.ErrAlreadyExists
		}
	}
	c := domain.Category{ID: name, Name: name}
	r.items = append(r.items, c)
	return &c, nil
}

func (r *stubRepo) Rename(_ context.Context, id, name string) (*domain.Category, error) {
	for i := range r.items {
		if r.items[i].ID == id {
			r.items[i].Name = name
			c := r.items[i]
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *stubRepo) Delete(_ context.Context, id string) error {
	for i := range r.items {
		if r.items[i].ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func TestCategoryService(t *testing.T) {
	svc := New(&stubRepo{})
	ctx := context.Background()

	_, err := svc.Create(ctx, "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	c, err := svc.Create(ctx, " Camisas ")
	require.NoError(t, err)
	assert.Equal(t, "Camisas", c.Name)
	_, err = svc.Create(ctx, "Camisas")
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	_, _ = svc.Create(ctx, "Bonés")

	found, err := svc.List(ctx, "cam")
	require.NoError(t, err)
	require.Len(t, found, 1)

	renamed, err := svc.Rename(ctx, c.ID, "Camisetas")
	require.NoError(t, err)
	assert.Equal(t, "Camisetas", renamed.Name)
	_, err = svc.Rename(ctx, c.ID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	require.NoError(t, svc.Delete(ctx, c.ID))
	all, _ := svc.List(ctx, "")
	assert.Len(t, all, 1)
}
