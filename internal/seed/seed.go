package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type productSeed struct {
	ID       string
	Name     string
	Category string
	Price    string
	Cost     string
	Stock    int
	MinStock int
	Sizes    []string
}

var categories = []string{"Camisas", "Calças", "Acessórios"}

var products = []productSeed{
	{ID: "6f1c1c8e-0d7a-4c55-9a55-2f3f6f1b0a01", Name: "Camisa Polo", Category: "Camisas", Price: "89.90", Cost: "42.00", Stock: 15, MinStock: 3, Sizes: []string{"P", "M", "G"}},
	{ID: "6f1c1c8e-0d7a-4c55-9a55-2f3f6f1b0a02", Name: "Camiseta Básica", Category: "Camisas", Price: "49.90", Cost: "18.50", Stock: 2, MinStock: 5, Sizes: []string{"M", "G"}},
	{ID: "6f1c1c8e-0d7a-4c55-9a55-2f3f6f1b0a03", Name: "Calça Jeans", Category: "Calças", Price: "159.00", Cost: "80.00", Stock: 8, MinStock: 2, Sizes: []string{"38", "40", "42"}},
	{ID: "6f1c1c8e-0d7a-4c55-9a55-2f3f6f1b0a04", Name: "Boné", Category: "Acessórios", Price: "35.00", Cost: "12.00", Stock: 0, MinStock: 1},
}

// Apply inserts basic seed data for manual testing. It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	batch := &pgx.Batch{}
	for _, name := range categories {
		batch.Queue(`INSERT INTO categories (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name)
	}
	for _, p := range products {
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return fmt.Errorf("product %s price: %w", p.Name, err)
		}
		cost, err := decimal.NewFromString(p.Cost)
		if err != nil {
			cost = decimal.Zero
		}
		sizes := p.Sizes
		if sizes == nil {
			sizes = []string{}
		}
		batch.Queue(`
INSERT INTO products (id, name, category, price, cost, stock_quantity, min_stock, sizes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE
SET name = EXCLUDED.name,
    category = EXCLUDED.category,
    price = EXCLUDED.price,
    cost = EXCLUDED.cost,
    stock_quantity = EXCLUDED.stock_quantity,
    min_stock = EXCLUDED.min_stock,
    sizes = EXCLUDED.sizes
`, p.ID, p.Name, p.Category, price, cost, p.Stock, p.MinStock, sizes)
	}

	if err := pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("seed batch: %w", err)
	}
	return nil
}
