package user

import (
	"context"
	"testing"

	"omcis-store/internal/db/dbtest"
	"omcis-store/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgres_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(t)
	repo := NewPostgres(pool, nil)

	u, err := repo.Create(ctx, "Ana@Example.com", "hash")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", u.Email)

	_, err = repo.Create(ctx, "ana@example.com", "hash")
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	byEmail, err := repo.GetByEmail(ctx, "ANA@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.UID, byEmail.UID)

	byUID, err := repo.GetByUID(ctx, u.UID)
	require.NoError(t, err)
	assert.Equal(t, "hash", byUID.PasswordHash)

	_, err = repo.GetByUID(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
