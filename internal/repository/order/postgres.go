package order

import (
	"context"
	"errors"
	"fmt"
	"io"

	"omcis-store/internal/db"
	"omcis-store/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

const orderColumns = `id::text, user_uid::text, user_email, total_amount, phone, postal_code, city, street, number, complement, status, created_at`

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
	return &postgresRepo{pool: pool, logger: logger.WithField("repo", "order")}
}

func (r *postgresRepo) PlaceBatch(ctx context.Context, o domain.Order) (*domain.Order, error) {
	log := r.logger.WithFields(logrus.Fields{"order_id": o.ID, "user_uid": o.UserID, "lines": len(o.Lines)})

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const insertOrder = `
INSERT INTO orders (id, user_uid, user_email, total_amount, phone, postal_code, city, street, number, complement, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING created_at
`
	a := o.ShippingAddress
	if err := tx.QueryRow(ctx, insertOrder,
		o.ID, o.UserID, o.UserEmail, o.TotalAmount,
		a.Phone, a.PostalCode, a.City, a.Street, a.Number, a.Complement,
		string(o.Status),
	).Scan(&o.CreatedAt); err != nil {
		log.WithError(err).Error("insert order")
		return nil, err
	}

	batch := &pgx.Batch{}
	for i, l := range o.Lines {
		batch.Queue(`
INSERT INTO order_lines (order_id, position, product_id, name, image, quantity, unit_price)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`, o.ID, i, l.ProductID, l.Name, l.Image, l.Quantity, l.UnitPrice)
	}
	decrements := o.Decrements()
	for _, d := range decrements {
		// Conditional decrement: a line that would drive stock negative matches no row.
		batch.Queue(`
UPDATE products
SET stock_quantity = stock_quantity - $2
WHERE id = $1 AND stock_quantity >= $2
`, d.ProductID, d.Quantity)
	}

	br := tx.SendBatch(ctx, batch)
	if err := drainBatch(br, len(o.Lines), decrements); err != nil {
		br.Close()
		log.WithError(err).Warn("order batch aborted")
		return nil, err
	}
	if err := br.Close(); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		log.WithError(err).Error("commit order batch")
		return nil, err
	}
	log.WithField("total", o.TotalAmount.StringFixed(2)).Info("order placed")
	return &o, nil
}

func drainBatch(br pgx.BatchResults, lines int, decrements []domain.StockDecrement) error {
	for i := 0; i < lines; i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert order line %d: %w", i, err)
		}
	}
	for _, d := range decrements {
		cmd, err := br.Exec()
		if err != nil {
			if db.IsInvalidInput(err) {
				return &domain.StockShortfallError{ProductID: d.ProductID, Requested: d.Quantity}
			}
			return fmt.Errorf("decrement stock %s: %w", d.ProductID, err)
		}
		if cmd.RowsAffected() == 0 {
			return &domain.StockShortfallError{ProductID: d.ProductID, Requested: d.Quantity}
		}
	}
	return nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	const q = `
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1
`
	o, err := scanOrder(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || db.IsInvalidInput(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	orders := []domain.Order{*o}
	if err := r.attachLines(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (r *postgresRepo) List(ctx context.Context, statuses []domain.OrderStatus) ([]domain.Order, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	filter := make([]string, 0, len(statuses))
	for _, s := range statuses {
		filter = append(filter, string(s))
	}
	const q = `
SELECT ` + orderColumns + `
FROM orders
WHERE status = ANY($1)
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, q, filter)
	if err != nil {
		r.logger.WithError(err).Error("list orders")
		return nil, err
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachLines(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus) (*domain.Order, error) {
	cmd, err := r.pool.Exec(ctx, `UPDATE orders SET status = $3 WHERE id = $1 AND status = $2`, id, string(from), string(to))
	if err != nil {
		if db.IsInvalidInput(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		// Either gone or moved on concurrently.
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, domain.ErrInvalidStatusTransition
	}
	r.logger.WithFields(logrus.Fields{"order_id": id, "from": from, "to": to}).Info("order status updated")
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) attachLines(ctx context.Context, orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, 0, len(orders))
	index := make(map[string]int, len(orders))
	for i, o := range orders {
		ids = append(ids, o.ID)
		index[o.ID] = i
	}
	const q = `
SELECT order_id::text, product_id::text, name, image, quantity, unit_price
FROM order_lines
WHERE order_id = ANY($1::uuid[])
ORDER BY order_id, position ASC
`
	rows, err := r.pool.Query(ctx, q, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var orderID string
		var l domain.OrderLine
		if err := rows.Scan(&orderID, &l.ProductID, &l.Name, &l.Image, &l.Quantity, &l.UnitPrice); err != nil {
			return err
		}
		if i, ok := index[orderID]; ok {
			orders[i].Lines = append(orders[i].Lines, l)
		}
	}
	return rows.Err()
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	var status string
	a := &o.ShippingAddress
	if err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.UserEmail,
		&o.TotalAmount,
		&a.Phone,
		&a.PostalCode,
		&a.City,
		&a.Street,
		&a.Number,
		&a.Complement,
		&status,
		&o.CreatedAt,
	); err != nil {
		return nil, err
	}
	o.Status = domain.OrderStatus(status)
	return &o, nil
}
