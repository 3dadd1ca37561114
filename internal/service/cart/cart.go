// Package cart holds the in-memory shopping cart of one session. A Cart is not safe
// for concurrent use; the owning session serialises access.
package cart

import (
	"fmt"

	"omcis-store/internal/domain"

	"github.com/shopspring/decimal"
)

// Line is one product in the cart. Quantity never exceeds AvailableStock.
type Line struct {
	ProductID      string          `json:"productId"`
	Name           string          `json:"name"`
	Image          string          `json:"image,omitempty"`
	UnitPrice      decimal.Decimal `json:"unitPrice"`
	Quantity       int             `json:"quantity"`
	AvailableStock int             `json:"availableStock"`
}

// Subtotal is UnitPrice × Quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type NoticeKind string

const (
	NoticeStockExceeded NoticeKind = "stock_exceeded"
	NoticeOutOfStock    NoticeKind = "out_of_stock"
	NoticeAdjusted      NoticeKind = "adjusted"
	NoticeRemoved       NoticeKind = "removed"
)

// Notice is a user-facing message produced by a guarded cart mutation.
type Notice struct {
	Kind      NoticeKind `json:"kind"`
	ProductID string     `json:"productId"`
	Message   string     `json:"message"`
}

type Cart struct {
	lines []Line
}

func New() *Cart {
	return &Cart{}
}

func (c *Cart) index(productID string) int {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Has reports whether productID has a line in the cart.
func (c *Cart) Has(productID string) bool {
	return c.index(productID) >= 0
}

// Add puts one unit of p in the cart. When the extra unit would exceed p's stock the
// cart is left as is and a notice is returned.
func (c *Cart) Add(p domain.Product) *Notice {
	i := c.index(p.ID)
	if i < 0 {
		if !p.Purchasable() {
			return &Notice{Kind: NoticeOutOfStock, ProductID: p.ID, Message: fmt.Sprintf("%s está fora de estoque", p.Name)}
		}
		c.lines = append(c.lines, Line{
			ProductID:      p.ID,
			Name:           p.Name,
			Image:          p.Image,
			UnitPrice:      p.Price,
			Quantity:       1,
			AvailableStock: p.StockQuantity,
		})
		return nil
	}

	l := &c.lines[i]
	l.AvailableStock = p.StockQuantity
	if l.Quantity > l.AvailableStock {
		// Stock shrank since the line was added.
		if l.AvailableStock <= 0 {
			c.Remove(p.ID)
			return &Notice{Kind: NoticeOutOfStock, ProductID: p.ID, Message: fmt.Sprintf("%s está fora de estoque", p.Name)}
		}
		l.Quantity = l.AvailableStock
		return stockExceeded(*l)
	}
	if l.Quantity+1 > l.AvailableStock {
		return stockExceeded(*l)
	}
	l.Quantity++
	return nil
}

// UpdateQuantity sets the quantity of an existing line. n <= 0 removes the line; n
// above the available stock is refused with a notice. Unknown products are ignored.
func (c *Cart) UpdateQuantity(productID string, n int) *Notice {
	i := c.index(productID)
	if i < 0 {
		return nil
	}
	if n <= 0 {
		c.Remove(productID)
		return nil
	}
	if n > c.lines[i].AvailableStock {
		return stockExceeded(c.lines[i])
	}
	c.lines[i].Quantity = n
	return nil
}

// Remove deletes the line for productID, if any.
func (c *Cart) Remove(productID string) {
	i := c.index(productID)
	if i < 0 {
		return
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
}

// Total is the sum of every line subtotal.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Lines returns a copy of the cart lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Len() int {
	return len(c.lines)
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

func (c *Cart) Clear() {
	c.lines = nil
}

// Lookup returns the current state of a product; ok is false when it no longer exists.
type Lookup func(productID string) (p domain.Product, ok bool)

// Reconcile re-validates every line against current product data. Lines whose product
// vanished, was deactivated or ran out are dropped; quantities above the new stock are
// lowered. Prices and names follow the product.
func (c *Cart) Reconcile(lookup Lookup) []Notice {
	var notices []Notice
	kept := c.lines[:0]
	for _, l := range c.lines {
		p, ok := lookup(l.ProductID)
		if !ok || !p.Purchasable() {
			notices = append(notices, Notice{Kind: NoticeRemoved, ProductID: l.ProductID, Message: fmt.Sprintf("%s não está mais disponível", l.Name)})
			continue
		}
		l.Name = p.Name
		l.Image = p.Image
		l.UnitPrice = p.Price
		l.AvailableStock = p.StockQuantity
		if l.Quantity > l.AvailableStock {
			l.Quantity = l.AvailableStock
			notices = append(notices, Notice{Kind: NoticeAdjusted, ProductID: l.ProductID, Message: fmt.Sprintf("Quantidade de %s ajustada para %d", l.Name, l.Quantity)})
		}
		kept = append(kept, l)
	}
	c.lines = kept
	return notices
}

// Snapshot is an immutable view of the cart.
type Snapshot struct {
	Lines []Line          `json:"lines"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

func (c *Cart) Snapshot() Snapshot {
	count := 0
	for _, l := range c.lines {
		count += l.Quantity
	}
	return Snapshot{Lines: c.Lines(), Total: c.Total(), Count: count}
}

func stockExceeded(l Line) *Notice {
	return &Notice{
		Kind:      NoticeStockExceeded,
		ProductID: l.ProductID,
		Message:   fmt.Sprintf("Estoque insuficiente para %s: máximo %d", l.Name, l.AvailableStock),
	}
}
