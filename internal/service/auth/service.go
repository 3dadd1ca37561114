// Package auth implements e-mail/password accounts with opaque bearer tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"strings"
	"time"

	"omcis-store/internal/domain"
	tokenrepo "omcis-store/internal/repository/token"
	userrepo "omcis-store/internal/repository/user"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned when email/password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken indicates the provided token could not be validated.
	ErrInvalidToken = errors.New("invalid token")
	ErrInvalidEmail = errors.New("invalid email")
	ErrWeakPassword = errors.New("weak password")
	// ErrEmailInUse is returned by SignUp for an already registered address.
	ErrEmailInUse = errors.New("email already in use")
)

// Service handles sign up, sign in and token lookups.
type Service struct {
	users       userrepo.Repository
	tokens      *tokenManager
	tokenTTL    time.Duration
	passwordMin int
	logger      logrus.FieldLogger
}

func New(users userrepo.Repository, tokens tokenrepo.Repository, tokenTTL time.Duration, logger logrus.FieldLogger) *Service {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	if tokenTTL <= 0 {
		tokenTTL = 30 * 24 * time.Hour
	}
	return &Service{
		users:       users,
		tokens:      newTokenManager(tokens),
		tokenTTL:    tokenTTL,
		passwordMin: 6,
		logger:      logger.WithField("service", "auth"),
	}
}

// SignUp registers a new account and signs it in.
func (s *Service) SignUp(ctx context.Context, email, password string) (*domain.Principal, string, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, "", err
	}
	if len(password) < s.passwordMin {
		return nil, "", fmt.Errorf("%w: password must be at least %d characters", ErrWeakPassword, s.passwordMin)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}
	u, err := s.users.Create(ctx, email, string(hashed))
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, "", ErrEmailInUse
		}
		return nil, "", err
	}
	token, err := s.tokens.Issue(ctx, u.UID, s.tokenTTL)
	if err != nil {
		return nil, "", err
	}
	s.logger.WithField("user_uid", u.UID).Info("auth: account created")
	p := u.Principal()
	return &p, token, nil
}

// SignIn validates credentials and issues a token.
func (s *Service) SignIn(ctx context.Context, email, password string) (*domain.Principal, string, error) {
	u, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(ctx, u.UID, s.tokenTTL)
	if err != nil {
		return nil, "", err
	}
	p := u.Principal()
	return &p, token, nil
}

// SignOut revokes token. Unknown tokens are not an error.
func (s *Service) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.tokens.Revoke(ctx, token)
}

// RunTokenPurge deletes expired tokens on every tick until ctx ends. Lookups already
// reject expired tokens; this keeps tokens that are never presented again from piling up.
func (s *Service) RunTokenPurge(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.tokens.Purge(ctx); err != nil && ctx.Err() == nil {
				s.logger.WithError(err).Warn("auth: purge expired tokens failed")
			}
		}
	}
}

// LookupByToken returns the principal bound to a valid token.
func (s *Service) LookupByToken(ctx context.Context, token string) (*domain.Principal, error) {
	uid, ok := s.tokens.Validate(ctx, token)
	if !ok {
		return nil, ErrInvalidToken
	}
	u, err := s.users.GetByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	p := u.Principal()
	return &p, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", fmt.Errorf("%w: email required", ErrInvalidEmail)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: %s", ErrInvalidEmail, raw)
	}
	return email, nil
}
