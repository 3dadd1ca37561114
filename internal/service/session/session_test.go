package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"omcis-store/internal/domain"
	"omcis-store/internal/service/cart"
	"omcis-store/internal/service/checkout"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResolver struct {
	release   chan struct{}
	principal *domain.Principal
	err       error
}

func (r *stubResolver) LookupByToken(ctx context.Context, token string) (*domain.Principal, error) {
	if r.release != nil {
		select {
		case <-r.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return r.principal, r.err
}

func TestCreateWithoutTokenResolvesSignedOut(t *testing.T) {
	m := NewManager(time.Hour, nil, nil)
	s, err := m.Create("")
	require.NoError(t, err)

	st, err := s.AwaitAuth(context.Background())
	require.NoError(t, err)
	assert.True(t, st.Resolved)
	assert.Nil(t, st.Principal)
}

func TestCreateWithTokenStaysPendingUntilRestored(t *testing.T) {
	res := &stubResolver{release: make(chan struct{}), principal: &domain.Principal{UID: "u1", Email: "a@b.com"}}
	m := NewManager(time.Hour, res, nil)
	s, err := m.Create("tok")
	require.NoError(t, err)

	assert.False(t, s.AuthState().Resolved)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = s.AwaitAuth(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(res.release)
	m.Wait()
	st, err := s.AwaitAuth(context.Background())
	require.NoError(t, err)
	require.NotNil(t, st.Principal)
	assert.Equal(t, "u1", st.Principal.UID)
	assert.Equal(t, "tok", s.AuthToken())
}

func TestCreateWithBadTokenResolvesSignedOut(t *testing.T) {
	m := NewManager(time.Hour, &stubResolver{err: errors.New("invalid token")}, nil)
	s, err := m.Create("expired")
	require.NoError(t, err)
	m.Wait()

	st := s.AuthState()
	assert.True(t, st.Resolved)
	assert.Nil(t, st.Principal)
	assert.Empty(t, s.AuthToken())
}

func TestRestoreDoesNotOverrideSignIn(t *testing.T) {
	res := &stubResolver{release: make(chan struct{}), err: errors.New("invalid token")}
	m := NewManager(time.Hour, res, nil)
	s, err := m.Create("stale")
	require.NoError(t, err)

	s.ResolveAuth(&domain.Principal{UID: "u-new"}, "fresh-token")
	close(res.release)
	m.Wait()

	p := s.Principal()
	require.NotNil(t, p)
	assert.Equal(t, "u-new", p.UID)
	assert.Equal(t, "fresh-token", s.AuthToken())
}

func TestRestoreDoesNotOverrideSignOut(t *testing.T) {
	res := &stubResolver{release: make(chan struct{}), principal: &domain.Principal{UID: "u-old"}}
	m := NewManager(time.Hour, res, nil)
	s, err := m.Create("old-token")
	require.NoError(t, err)

	var (
		mu   sync.Mutex
		seen []domain.AuthState
	)
	unsubscribe := s.OnAuthStateChange(func(st domain.AuthState) {
		mu.Lock()
		seen = append(seen, st)
		mu.Unlock()
	})
	defer unsubscribe()

	s.ResolveAuth(nil, "")
	close(res.release)
	m.Wait()

	assert.Nil(t, s.Principal())
	assert.Empty(t, s.AuthToken())
	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, seen, 2, "pending, then signed out; the late restore notifies nobody")
}

func TestResolveAuthIfPending(t *testing.T) {
	s := newSession("s1")
	assert.True(t, s.ResolveAuthIfPending(&domain.Principal{UID: "a"}, "t1"))
	assert.False(t, s.ResolveAuthIfPending(&domain.Principal{UID: "b"}, "t2"))
	assert.Equal(t, "a", s.Principal().UID)
	assert.Equal(t, "t1", s.AuthToken())
}

func TestOnAuthStateChange(t *testing.T) {
	s := newSession("s1")
	var mu sync.Mutex
	var seen []domain.AuthState
	unsubscribe := s.OnAuthStateChange(func(st domain.AuthState) {
		mu.Lock()
		seen = append(seen, st)
		mu.Unlock()
	})

	s.ResolveAuth(&domain.Principal{UID: "u1"}, "t1")
	s.ResolveAuth(nil, "ignored")
	unsubscribe()
	unsubscribe()
	s.ResolveAuth(&domain.Principal{UID: "u2"}, "t2")

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 3)
	assert.False(t, seen[0].Resolved, "current state is delivered on subscribe")
	assert.Equal(t, "u1", seen[1].Principal.UID)
	assert.True(t, seen[2].Resolved)
	assert.Nil(t, seen[2].Principal)
}

func TestDoSerialisesCartAccess(t *testing.T) {
	s := newSession("s1")
	p := domain.Product{ID: "a", Name: "A", Price: decimal.NewFromInt(1), StockQuantity: 1000, Active: true}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Do(func(c *cart.Cart, _ *checkout.Wizard) error {
				c.Add(p)
				return nil
			})
		}()
	}
	wg.Wait()

	_ = s.Do(func(c *cart.Cart, _ *checkout.Wizard) error {
		assert.Equal(t, 50, c.Lines()[0].Quantity)
		return nil
	})
}

func TestGetExpiresAndSlides(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewManager(time.Hour, nil, nil)
	m.now = func() time.Time { return now }

	s, err := m.Create("")
	require.NoError(t, err)

	now = now.Add(50 * time.Minute)
	_, err = m.Get(s.ID)
	require.NoError(t, err)

	now = now.Add(50 * time.Minute)
	_, err = m.Get(s.ID)
	require.NoError(t, err, "Get extends expiry")

	now = now.Add(61 * time.Minute)
	_, err = m.Get(s.ID)
	assert.ErrorIs(t, err, ErrInvalidSession)
	assert.Equal(t, 0, m.Len())

	_, err = m.Get("nope")
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSweep(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewManager(time.Minute, nil, nil)
	m.now = func() time.Time { return now }
	_, _ = m.Create("")
	_, _ = m.Create("")

	now = now.Add(2 * time.Minute)
	live, _ := m.Create("")
	assert.Equal(t, 2, m.Sweep())
	assert.Equal(t, 1, m.Len())
	_, err := m.Get(live.ID)
	assert.NoError(t, err)
}
