package admin

import (
	"context"
	"testing"

	"omcis-store/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryAdmins struct {
	records map[string]domain.AdminRecord
	order   []string
}

func (r *memoryAdmins) GetByUID(_ context.Context, uid string) (*domain.AdminRecord, error) {
	rec, ok := r.records[uid]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rec, nil
}

func (r *memoryAdmins) List(context.Context) ([]domain.AdminRecord, error) {
	var out []domain.AdminRecord
	for _, uid := range r.order {
		if rec, ok := r.records[uid]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *memoryAdmins) Create(_ context.Context, rec domain.AdminRecord) (*domain.AdminRecord, error) {
	if _, ok := r.records[rec.UID]; ok {
		return nil, domain.ErrAlreadyExists
	}
	if rec.Role == domain.RoleMaster {
		for _, other := range r.records {
			if other.Role == domain.RoleMaster {
				return nil, domain.ErrAlreadyExists
			}
		}
	}
	r.records[rec.UID] = rec
	r.order = append(r.order, rec.UID)
	return &rec, nil
}

func (r *memoryAdmins) UpdateRole(_ context.Context, uid string, role domain.Role) (*domain.AdminRecord, error) {
	rec, ok := r.records[uid]
	if !ok {
		return nil, domain.ErrNotFound
	}
	rec.Role = role
	r.records[uid] = rec
	return &rec, nil
}

func (r *memoryAdmins) Delete(_ context.Context, uid string) error {
	if _, ok := r.records[uid]; !ok {
		return domain.ErrNotFound
	}
	delete(r.records, uid)
	return nil
}

type memoryUsers struct {
	users []domain.User
}

func (r *memoryUsers) Create(_ context.Context, email, hash string) (*domain.User, error) {
	u := domain.User{UID: "uid-" + email, Email: email, PasswordHash: hash}
	r.users = append(r.users, u)
	return &u, nil
}

func (r *memoryUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memoryUsers) GetByUID(_ context.Context, uid string) (*domain.User, error) {
	for _, u := range r.users {
		if u.UID == uid {
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memoryUsers) List(context.Context) ([]domain.User, error) {
	return append([]domain.User(nil), r.users...), nil
}

func fixture(t *testing.T) (*Service, context.Context) {
	t.Helper()
	users := &memoryUsers{}
	ctx := context.Background()
	for _, email := range []string{"boss@loja.com", "ana@loja.com", "bia@loja.com", "caio@cliente.com"} {
		_, _ = users.Create(ctx, email, "x")
	}
	svc := New(&memoryAdmins{records: make(map[string]domain.AdminRecord)}, users, nil)
	_, err := svc.GrantMaster(ctx, "boss@loja.com")
	require.NoError(t, err)
	return svc, ctx
}

func TestOverviewExcludesMaster(t *testing.T) {
	svc, ctx := fixture(t)
	_, err := svc.Promote(ctx, "uid-ana@loja.com")
	require.NoError(t, err)

	ov, err := svc.Overview(ctx, "")
	require.NoError(t, err)
	require.Len(t, ov.Admins, 1)
	assert.Equal(t, "ana@loja.com", ov.Admins[0].Email)
	assert.Equal(t, domain.RoleVendedor, ov.Admins[0].Role)

	var emails []string
	for _, u := range ov.Users {
		emails = append(emails, u.Email)
	}
	assert.ElementsMatch(t, []string{"bia@loja.com", "caio@cliente.com"}, emails)

	ov, err = svc.Overview(ctx, "LOJA")
	require.NoError(t, err)
	assert.Len(t, ov.Admins, 1)
	assert.Len(t, ov.Users, 1)
}

func TestPromoteChangeDemote(t *testing.T) {
	svc, ctx := fixture(t)
	uid := "uid-bia@loja.com"

	_, err := svc.Promote(ctx, uid)
	require.NoError(t, err)
	_, err = svc.Promote(ctx, uid)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	rec, err := svc.ChangeRole(ctx, uid, "estoque")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleEstoque, rec.Role)

	rec, err = svc.ChangeRole(ctx, uid, " Vendedor ")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleVendedor, rec.Role)

	_, err = svc.ChangeRole(ctx, uid, "gerente")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = svc.ChangeRole(ctx, uid, "master")
	assert.ErrorIs(t, err, ErrMasterImmutable)

	require.NoError(t, svc.Demote(ctx, uid))
	assert.ErrorIs(t, svc.Demote(ctx, uid), domain.ErrNotFound)

	_, err = svc.Promote(ctx, "uid-nobody")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMasterIsImmutable(t *testing.T) {
	svc, ctx := fixture(t)
	master := "uid-boss@loja.com"

	assert.ErrorIs(t, svc.Demote(ctx, master), ErrMasterImmutable)
	_, err := svc.ChangeRole(ctx, master, "vendedor")
	assert.ErrorIs(t, err, ErrMasterImmutable)

	again, err := svc.GrantMaster(ctx, "boss@loja.com")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleMaster, again.Role)

	_, err = svc.GrantMaster(ctx, "ana@loja.com")
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}
