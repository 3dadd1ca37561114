package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderPaid      OrderStatus = "paid"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
)

// ErrInvalidStatusTransition is returned for non-forward status changes.
var ErrInvalidStatusTransition = errors.New("invalid order status transition")

// OrderStatuses lists every status in fulfilment order.
var OrderStatuses = []OrderStatus{OrderPaid, OrderShipped, OrderDelivered}

// ParseOrderStatus maps a case-insensitive string to a known status.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(strings.ToLower(strings.TrimSpace(s))) {
	case OrderPaid:
		return OrderPaid, true
	case OrderShipped:
		return OrderShipped, true
	case OrderDelivered:
		return OrderDelivered, true
	}
	return "", false
}

func (s OrderStatus) rank() int {
	switch s {
	case OrderPaid:
		return 1
	case OrderShipped:
		return 2
	case OrderDelivered:
		return 3
	}
	return 0
}

// CanAdvanceTo reports whether next lies strictly after s.
func (s OrderStatus) CanAdvanceTo(next OrderStatus) bool {
	return s.rank() > 0 && next.rank() > s.rank()
}

// ShippingAddress is where an order is delivered.
type ShippingAddress struct {
	Phone      string `json:"phone"`
	PostalCode string `json:"postalCode"`
	City       string `json:"city"`
	Street     string `json:"street"`
	Number     string `json:"number"`
	Complement string `json:"complement,omitempty"`
}

// Missing returns the names of required fields left blank.
func (a ShippingAddress) Missing() []string {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"phone", a.Phone},
		{"postalCode", a.PostalCode},
		{"city", a.City},
		{"street", a.Street},
		{"number", a.Number},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

type OrderLine struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	UserEmail       string          `json:"userEmail"`
	Lines           []OrderLine     `json:"lines"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	Status          OrderStatus     `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// Decrements returns the stock reservation for every order line.
func (o Order) Decrements() []StockDecrement {
	out := make([]StockDecrement, 0, len(o.Lines))
	for _, l := range o.Lines {
		out = append(out, StockDecrement{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return out
}
