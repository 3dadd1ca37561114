package product

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

const productColumns = `id::text, name, category, price, cost, stock_quantity, min_stock, sizes, image, active, created_at`

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
	return &postgresRepo{pool: pool, logger: logger.WithField("repo", "product")}
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Product, error) {
	const q = `
SELECT ` + productColumns + `
FROM products
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.WithError(err).Error("list products")
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		r.logger.WithError(err).Error("list products rows")
		return nil, err
	}
	r.logger.WithField("count", len(result)).Debug("listed products")
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	const q = `
SELECT ` + productColumns + `
FROM products
WHERE id = $1
`
	p, err := scanProduct(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || db.IsInvalidInput(err) {
			return nil, domain.ErrNotFound
		}
		r.logger.WithError(err).WithField("id", id).Error("get product")
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (name, category, price, cost, stock_quantity, min_stock, sizes, image, active)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + productColumns
	out, err := scanProduct(r.pool.QueryRow(ctx, q,
		p.Name, p.Category, p.Price, p.Cost, p.StockQuantity, p.MinStock, sizesOrEmpty(p.Sizes), p.Image, p.Active,
	))
	if err != nil {
		r.logger.WithError(err).WithField("name", p.Name).Error("create product")
		return nil, err
	}
	r.logger.WithFields(logrus.Fields{"id": out.ID, "name": out.Name}).Info("created product")
	return out, nil
}

func (r *postgresRepo) Update(ctx context.Context, p domain.Product) (*domain.Product, error) {
	const q = `
UPDATE products
SET name = $2,
    category = $3,
    price = $4,
    cost = $5,
    stock_quantity = $6,
    min_stock = $7,
    sizes = $8,
    image = $9,
    active = $10
WHERE id = $1
RETURNING ` + productColumns
	out, err := scanProduct(r.pool.QueryRow(ctx, q,
		p.ID, p.Name, p.Category, p.Price, p.Cost, p.StockQuantity, p.MinStock, sizesOrEmpty(p.Sizes), p.Image, p.Active,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || db.IsInvalidInput(err) {
			return nil, domain.ErrNotFound
		}
		r.logger.WithError(err).WithField("id", p.ID).Error("update product")
		return nil, err
	}
	r.logger.WithField("id", out.ID).Info("updated product")
	return out, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, p domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (id, name, category, price, cost, stock_quantity, min_stock, sizes, image, active)
VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    category = EXCLUDED.category,
    price = EXCLUDED.price,
    cost = EXCLUDED.cost,
    stock_quantity = EXCLUDED.stock_quantity,
    min_stock = EXCLUDED.min_stock,
    sizes = EXCLUDED.sizes,
    image = EXCLUDED.image,
    active = EXCLUDED.active
RETURNING ` + productColumns
	out, err := scanProduct(r.pool.QueryRow(ctx, q,
		p.ID, p.Name, p.Category, p.Price, p.Cost, p.StockQuantity, p.MinStock, sizesOrEmpty(p.Sizes), p.Image, p.Active,
	))
	if err != nil {
		r.logger.WithError(err).WithField("name", p.Name).Error("upsert product")
		return nil, err
	}
	r.logger.WithFields(logrus.Fields{"id": out.ID, "name": out.Name}).Info("upserted product")
	return out, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if db.IsInvalidInput(err) {
			return domain.ErrNotFound
		}
		r.logger.WithError(err).WithField("id", id).Error("delete product")
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.WithField("id", id).Info("deleted product")
	return nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Category,
		&p.Price,
		&p.Cost,
		&p.StockQuantity,
		&p.MinStock,
		&p.Sizes,
		&p.Image,
		&p.Active,
		&p.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

func sizesOrEmpty(sizes []string) []string {
	if sizes == nil {
		return []string{}
	}
	return sizes
}
