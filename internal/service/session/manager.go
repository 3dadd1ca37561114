package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"sync"
	"time"

	"omcis-store/internal/domain"

	"github.com/sirupsen/logrus"
)

var ErrInvalidSession = errors.New("invalid session")

// TokenResolver maps an auth token to its principal.
type TokenResolver interface {
	LookupByToken(ctx context.Context, token string) (*domain.Principal, error)
}

// Manager issues sessions and expires them after a period of inactivity.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	resolver TokenResolver
	logger   logrus.FieldLogger
	now      func() time.Time
	wg       sync.WaitGroup
}

func NewManager(ttl time.Duration, resolver TokenResolver, logger logrus.FieldLogger) *Manager {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Manager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		resolver: resolver,
		logger:   logger.WithField("component", "session"),
		now:      time.Now,
	}
}

// Create opens a session. With an auth token the principal is restored in the
// background and the session stays pending until that lookup ends; without one it
// resolves as signed out immediately.
func (m *Manager) Create(authToken string) (*Session, error) {
	id, err := randomToken()
	if err != nil {
		return nil, err
	}
	s := newSession(id)
	s.expiresAt = m.now().Add(m.ttl)

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	if authToken == "" || m.resolver == nil {
		s.ResolveAuth(nil, "")
		return s, nil
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log := m.logger.WithField("session", shortID(id))
		p, err := m.resolver.LookupByToken(ctx, authToken)
		if err != nil {
			log.WithError(err).Debug("session: auth restore failed")
			p, authToken = nil, ""
		}
		if !s.ResolveAuthIfPending(p, authToken) {
			log.Debug("session: auth changed during restore, restore result dropped")
		}
	}()
	return s, nil
}

// Get returns a live session and extends its expiry.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrInvalidSession
	}
	now := m.now()
	if now.After(s.expiresAt) {
		delete(m.sessions, id)
		return nil, ErrInvalidSession
	}
	s.expiresAt = now.Add(m.ttl)
	return s, nil
}

func (m *Manager) Delete(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep drops expired sessions and reports how many were removed.
func (m *Manager) Sweep() int {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		if now.After(s.expiresAt) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps on every tick until ctx ends.
func (m *Manager) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				m.logger.WithField("removed", n).Debug("session: swept expired")
			}
		}
	}
}

// Wait blocks until pending auth restores finish.
func (m *Manager) Wait() {
	m.wg.Wait()
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
