package admin

import (
	"context"
	"errors"
	"io"

	"omcis-store/internal/db"
	"omcis-store/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger logrus.FieldLogger
}

func NewPostgres(pool *pgxpool.Pool, logger logrus.FieldLogger) Repository {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &postgresRepo{pool: pool, logger: logger.WithField("repo", "admin")}
}

func (r *postgresRepo) GetByUID(ctx context.Context, uid string) (*domain.AdminRecord, error) {
	const q = `
SELECT uid::text, email, role, created_at
FROM admins
WHERE uid = $1
`
	rec, err := scanAdmin(r.pool.QueryRow(ctx, q, uid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || db.IsInvalidInput(err) {
			return nil, domain.ErrNotFound
		}
		r.logger.WithError(err).WithField("uid", uid).Error("get admin")
		return nil, err
	}
	return rec, nil
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.AdminRecord, error) {
	rows, err := r.pool.Query(ctx, `SELECT uid::text, email, role, created_at FROM admins ORDER BY email ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AdminRecord
	for rows.Next() {
		rec, err := scanAdmin(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (r *postgresRepo) Create(ctx context.Context, rec domain.AdminRecord) (*domain.AdminRecord, error) {
	const q = `
INSERT INTO admins (uid, email, role)
VALUES ($1, $2, $3)
RETURNING uid::text, email, role, created_at
`
	out, err := scanAdmin(r.pool.QueryRow(ctx, q, rec.UID, rec.Email, string(rec.Role)))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.WithError(err).WithField("uid", rec.UID).Error("create admin")
		return nil, err
	}
	r.logger.WithFields(logrus.Fields{"uid": out.UID, "role": out.Role}).Info("created admin")
	return out, nil
}

func (r *postgresRepo) UpdateRole(ctx context.Context, uid string, role domain.Role) (*domain.AdminRecord, error) {
	const q = `
UPDATE admins
SET role = $2
WHERE uid = $1
RETURNING uid::text, email, role, created_at
`
	out, err := scanAdmin(r.pool.QueryRow(ctx, q, uid, string(role)))
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows), db.IsInvalidInput(err):
			return nil, domain.ErrNotFound
		case db.IsUniqueViolation(err):
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	r.logger.WithFields(logrus.Fields{"uid": uid, "role": role}).Info("updated admin role")
	return out, nil
}

func (r *postgresRepo) Delete(ctx context.Context, uid string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM admins WHERE uid = $1`, uid)
	if err != nil {
		if db.IsInvalidInput(err) {
			return domain.ErrNotFound
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.WithField("uid", uid).Info("deleted admin")
	return nil
}

func scanAdmin(row pgx.Row) (*domain.AdminRecord, error) {
	var rec domain.AdminRecord
	var role string
	if err := row.Scan(&rec.UID, &rec.Email, &role, &rec.CreatedAt); err != nil {
		return nil, err
	}
	// Stored verbatim; callers validate with domain.ParseRole.
	rec.Role = domain.Role(role)
	return &rec, nil
}
