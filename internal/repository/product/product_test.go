package product

import (
	"context"
	"testing"

	"omcis-store/internal/db/dbtest"
	"omcis-store/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgres_CreateListGet(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(t)
	repo := NewPostgres(pool, nil)

	created, err := repo.Create(ctx, domain.Product{
		Name:          "Mouse",
		Category:      "perifericos",
		Price:         decimal.RequireFromString("49.90"),
		StockQuantity: 5,
		Active:        true,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, []string{}, created.Sizes)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("49.9")))
	assert.Equal(t, 5, got.StockQuantity)
}

func TestPostgres_GetMissing(t *testing.T) {
	pool := dbtest.Pool(t)
	repo := NewPostgres(pool, nil)

	_, err := repo.GetByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = repo.GetByID(context.Background(), "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPostgres_UpdateUpsertDelete(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(t)
	repo := NewPostgres(pool, nil)

	p, err := repo.Upsert(ctx, domain.Product{Name: "Teclado", Price: decimal.NewFromInt(100), StockQuantity: 1})
	require.NoError(t, err)

	p.StockQuantity = 7
	p.Sizes = []string{"P", "M"}
	updated, err := repo.Update(ctx, *p)
	require.NoError(t, err)
	assert.Equal(t, 7, updated.StockQuantity)
	assert.Equal(t, []string{"P", "M"}, updated.Sizes)

	p.Name = "Teclado mecanico"
	again, err := repo.Upsert(ctx, *p)
	require.NoError(t, err)
	assert.Equal(t, p.ID, again.ID)
	assert.Equal(t, "Teclado mecanico", again.Name)

	require.NoError(t, repo.Delete(ctx, p.ID))
	assert.ErrorIs(t, repo.Delete(ctx, p.ID), domain.ErrNotFound)
}
