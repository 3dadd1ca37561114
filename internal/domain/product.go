package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	Price         decimal.Decimal `json:"price"`
	Cost          decimal.Decimal `json:"cost"`
	StockQuantity int             `json:"stockQuantity"`
	MinStock      int             `json:"minStock"`
	Sizes         []string        `json:"sizes,omitempty"`
	Image         string          `json:"image,omitempty"`
	Active        bool            `json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// Purchasable reports whether the storefront may offer the product.
func (p Product) Purchasable() bool {
	return p.Active && p.StockQuantity > 0
}

// LowStock reports whether the stock reached the configured minimum.
func (p Product) LowStock() bool {
	return p.StockQuantity <= p.MinStock
}

// StockDecrement is one per-line stock reservation inside an order batch.
type StockDecrement struct {
	ProductID string
	Quantity  int
}

// StockShortfallError reports the product whose stock could not cover a decrement.
type StockShortfallError struct {
	ProductID string
	Requested int
}

func (e *StockShortfallError) Error() string {
	return "insufficient stock for product " + e.ProductID
}

func (e *StockShortfallError) Is(target error) bool {
	return target == ErrStockExceeded
}
