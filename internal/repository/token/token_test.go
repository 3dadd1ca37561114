package token

import (
	"context"
	"testing"
	"time"

	"omcis-store/internal/db/dbtest"
	"omcis-store/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgres_TokenLifecycle(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(t)
	uid := dbtest.InsertUser(t, pool, "tok@example.com")
	repo := NewPostgres(pool, nil)

	tok := Token{Token: "abc", UserUID: uid, ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, repo.Create(ctx, tok))
	assert.ErrorIs(t, repo.Create(ctx, tok), domain.ErrAlreadyExists)

	got, err := repo.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, uid, got.UserUID)
	assert.False(t, got.Expired(time.Now()))

	require.NoError(t, repo.Delete(ctx, "abc"))
	_, err = repo.Get(ctx, "abc")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "abc"), domain.ErrNotFound)
}

func TestPostgres_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(t)
	uid := dbtest.InsertUser(t, pool, "old@example.com")
	repo := NewPostgres(pool, nil)

	now := time.Now()
	require.NoError(t, repo.Create(ctx, Token{Token: "old", UserUID: uid, ExpiresAt: now.Add(-time.Minute)}))
	require.NoError(t, repo.Create(ctx, Token{Token: "live", UserUID: uid, ExpiresAt: now.Add(time.Hour)}))

	n, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.Get(ctx, "old")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = repo.Get(ctx, "live")
	assert.NoError(t, err)
}

func TestTokenExpired(t *testing.T) {
	now := time.Now()
	assert.True(t, Token{ExpiresAt: now}.Expired(now))
	assert.False(t, Token{ExpiresAt: now.Add(time.Second)}.Expired(now))
}
