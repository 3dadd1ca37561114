// Package admin manages administrator roles.
package admin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"omcis-store/internal/domain"
	adminrepo "omcis-store/internal/repository/admin"
	userrepo "omcis-store/internal/repository/user"

	"github.com/sirupsen/logrus"
)

// ErrMasterImmutable is returned for any change that would touch the master record
// or hand out the master role.
var ErrMasterImmutable = errors.New("master admin cannot be changed")

type Service struct {
	admins adminrepo.Repository
	users  userrepo.Repository
	logger logrus.FieldLogger
}

func New(admins adminrepo.Repository, users userrepo.Repository, logger logrus.FieldLogger) *Service {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Service{admins: admins, users: users, logger: logger.WithField("service", "admin")}
}

// Overview is the admin management listing. The master never appears in it.
type Overview struct {
	Admins []domain.AdminRecord `json:"admins"`
	Users  []domain.User        `json:"users"`
}

// Overview lists non-master admins and users without an admin role whose e-mail
// contains search.
func (s *Service) Overview(ctx context.Context, search string) (*Overview, error) {
	records, err := s.admins.List(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(search))
	match := func(email string) bool {
		return q == "" || strings.Contains(strings.ToLower(email), q)
	}

	out := &Overview{Admins: []domain.AdminRecord{}, Users: []domain.User{}}
	isAdmin := make(map[string]bool, len(records))
	for _, rec := range records {
		isAdmin[rec.UID] = true
		if rec.Role == domain.RoleMaster || !match(rec.Email) {
			continue
		}
		out.Admins = append(out.Admins, rec)
	}
	for _, u := range users {
		if isAdmin[u.UID] || !match(u.Email) {
			continue
		}
		out.Users = append(out.Users, u)
	}
	return out, nil
}

// Promote gives a user the vendedor role.
func (s *Service) Promote(ctx context.Context, uid string) (*domain.AdminRecord, error) {
	u, err := s.users.GetByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	rec, err := s.admins.Create(ctx, domain.AdminRecord{UID: u.UID, Email: u.Email, Role: domain.RoleVendedor})
	if err != nil {
		return nil, err
	}
	s.logger.WithField("uid", uid).Info("admin: promoted")
	return rec, nil
}

// Demote removes a non-master admin record.
func (s *Service) Demote(ctx context.Context, uid string) error {
	if err := s.guardMaster(ctx, uid); err != nil {
		return err
	}
	if err := s.admins.Delete(ctx, uid); err != nil {
		return err
	}
	s.logger.WithField("uid", uid).Info("admin: demoted")
	return nil
}

// ChangeRole switches a non-master admin between vendedor and estoque.
func (s *Service) ChangeRole(ctx context.Context, uid, rawRole string) (*domain.AdminRecord, error) {
	role, ok := domain.ParseRole(strings.ToLower(strings.TrimSpace(rawRole)))
	if !ok {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, rawRole)
	}
	if role == domain.RoleMaster {
		return nil, ErrMasterImmutable
	}
	if err := s.guardMaster(ctx, uid); err != nil {
		return nil, err
	}
	return s.admins.UpdateRole(ctx, uid, role)
}

// GrantMaster makes the user with email the master admin. Only one master may exist.
func (s *Service) GrantMaster(ctx context.Context, email string) (*domain.AdminRecord, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	existing, err := s.admins.GetByUID(ctx, u.UID)
	switch {
	case err == nil && existing.Role == domain.RoleMaster:
		return existing, nil
	case err == nil:
		return s.admins.UpdateRole(ctx, u.UID, domain.RoleMaster)
	case errors.Is(err, domain.ErrNotFound):
		return s.admins.Create(ctx, domain.AdminRecord{UID: u.UID, Email: u.Email, Role: domain.RoleMaster})
	default:
		return nil, err
	}
}

func (s *Service) guardMaster(ctx context.Context, uid string) error {
	rec, err := s.admins.GetByUID(ctx, uid)
	if err != nil {
		return err
	}
	if rec.Role == domain.RoleMaster {
		return ErrMasterImmutable
	}
	return nil
}
