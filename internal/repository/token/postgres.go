package token

import (
	"context"
	"errors"
	"io"
	"time"

	"omcis-store/internal/db"
	"omcis-store/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// Token values are credentials; only the owning uid goes into logs.
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
	return &postgresRepo{pool: pool, logger: logger.WithField("repo", "token")}
}

func (r *postgresRepo) Create(ctx context.Context, t Token) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO tokens (token, user_uid, expires_at) VALUES ($1, $2, $3)`,
		t.Token, t.UserUID, t.ExpiresAt,
	)
	switch {
	case err == nil:
		return nil
	case db.IsUniqueViolation(err):
		return domain.ErrAlreadyExists
	case db.IsInvalidInput(err):
		return domain.ErrNotFound
	default:
		r.logger.WithError(err).WithField("user_uid", t.UserUID).Error("token: create failed")
		return err
	}
}

func (r *postgresRepo) Get(ctx context.Context, token string) (*Token, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT token, user_uid::text, expires_at, created_at FROM tokens WHERE token = $1`,
		token,
	)
	var out Token
	err := row.Scan(&out.Token, &out.UserUID, &out.ExpiresAt, &out.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *postgresRepo) Delete(ctx context.Context, token string) error {
	var uid string
	err := r.pool.QueryRow(ctx, `DELETE FROM tokens WHERE token = $1 RETURNING user_uid::text`, token).Scan(&uid)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return err
	}
	r.logger.WithField("user_uid", uid).Debug("token: revoked")
	return nil
}

func (r *postgresRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tokens WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	if n := cmd.RowsAffected(); n > 0 {
		r.logger.WithField("count", n).Info("token: purged expired")
	}
	return cmd.RowsAffected(), nil
}
