// Package session keeps the per-browser state of the storefront: cart, checkout
// wizard and authentication state, addressed by an opaque handle.
package session

import (
	"context"
	"sync"
	"time"

	"omcis-store/internal/domain"
	"omcis-store/internal/service/cart"
	"omcis-store/internal/service/checkout"
)

// Session is one client's state. Cart and wizard are only reachable through Do, which
// serialises them; the auth state has its own lock and observer list.
type Session struct {
	ID string

	mu     sync.Mutex
	cart   *cart.Cart
	wizard *checkout.Wizard

	// notifyMu orders state changes with their observer callbacks.
	notifyMu  sync.Mutex
	authMu    sync.RWMutex
	auth      domain.AuthState
	authToken string
	observers map[int]func(domain.AuthState)
	nextObs   int
	resolved  chan struct{}

	expiresAt time.Time
}

func newSession(id string) *Session {
	return &Session{
		ID:        id,
		cart:      cart.New(),
		wizard:    checkout.NewWizard(),
		observers: make(map[int]func(domain.AuthState)),
		resolved:  make(chan struct{}),
	}
}

// Do runs fn with exclusive access to the cart and wizard.
func (s *Session) Do(fn func(c *cart.Cart, w *checkout.Wizard) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.cart, s.wizard)
}

func (s *Session) AuthState() domain.AuthState {
	s.authMu.RLock()
	defer s.authMu.RUnlock()
	return s.auth
}

// Principal is the signed-in principal, nil while pending or signed out.
func (s *Session) Principal() *domain.Principal {
	return s.AuthState().Principal
}

// AuthToken is the auth token backing the current principal, if any.
func (s *Session) AuthToken() string {
	s.authMu.RLock()
	defer s.authMu.RUnlock()
	return s.authToken
}

// ResolveAuth sets the authentication state and notifies observers. A nil principal
// means signed out.
func (s *Session) ResolveAuth(p *domain.Principal, token string) {
	s.resolve(p, token, false)
}

// ResolveAuthIfPending sets the authentication state only if it has never been
// resolved, and reports whether it did. A sign-in or sign-out that already happened
// wins over a late background restore.
func (s *Session) ResolveAuthIfPending(p *domain.Principal, token string) bool {
	return s.resolve(p, token, true)
}

func (s *Session) resolve(p *domain.Principal, token string, onlyIfPending bool) bool {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	var principal *domain.Principal
	if p != nil {
		clone := *p
		principal = &clone
	} else {
		token = ""
	}
	state := domain.AuthState{Resolved: true, Principal: principal}

	s.authMu.Lock()
	first := !s.auth.Resolved
	if onlyIfPending && !first {
		s.authMu.Unlock()
		return false
	}
	s.auth = state
	s.authToken = token
	fns := make([]func(domain.AuthState), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.authMu.Unlock()

	if first {
		close(s.resolved)
	}
	for _, fn := range fns {
		fn(state)
	}
	return true
}

// OnAuthStateChange registers fn and calls it right away with the current state, then
// on every change. fn must not block or call back into ResolveAuth.
func (s *Session) OnAuthStateChange(fn func(domain.AuthState)) (unsubscribe func()) {
	s.notifyMu.Lock()
	s.authMu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	state := s.auth
	s.authMu.Unlock()
	fn(state)
	s.notifyMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.authMu.Lock()
			delete(s.observers, id)
			s.authMu.Unlock()
		})
	}
}

// AwaitAuth blocks until the auth state has resolved at least once.
func (s *Session) AwaitAuth(ctx context.Context) (domain.AuthState, error) {
	select {
	case <-s.resolved:
		return s.AuthState(), nil
	case <-ctx.Done():
		return domain.AuthState{}, ctx.Err()
	}
}
