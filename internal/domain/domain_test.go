package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusCanAdvanceTo(t *testing.T) {
	assert.True(t, OrderPaid.CanAdvanceTo(OrderShipped))
	assert.True(t, OrderPaid.CanAdvanceTo(OrderDelivered))
	assert.True(t, OrderShipped.CanAdvanceTo(OrderDelivered))

	assert.False(t, OrderShipped.CanAdvanceTo(OrderPaid))
	assert.False(t, OrderDelivered.CanAdvanceTo(OrderShipped))
	assert.False(t, OrderShipped.CanAdvanceTo(OrderShipped))
	assert.False(t, OrderStatus("lost").CanAdvanceTo(OrderDelivered))
	assert.False(t, OrderPaid.CanAdvanceTo(OrderStatus("lost")))
}

func TestParseOrderStatus(t *testing.T) {
	s, ok := ParseOrderStatus(" Shipped ")
	assert.True(t, ok)
	assert.Equal(t, OrderShipped, s)

	_, ok = ParseOrderStatus("pago")
	assert.False(t, ok)
}

func TestParseRoleRejectsUnknown(t *testing.T) {
	for _, raw := range []string{"", "admin", "Master", "gerente", "master ", " estoque", "VENDEDOR"} {
		_, ok := ParseRole(raw)
		assert.False(t, ok, raw)
	}
	r, ok := ParseRole("estoque")
	assert.True(t, ok)
	assert.Equal(t, RoleEstoque, r)
}

func TestShippingAddressMissing(t *testing.T) {
	addr := ShippingAddress{Phone: "1", PostalCode: " ", City: "Recife", Number: "10"}
	assert.Equal(t, []string{"postalCode", "street"}, addr.Missing())

	addr.PostalCode = "50000-000"
	addr.Street = "Rua A"
	assert.Empty(t, addr.Missing())
}

func TestStockShortfallMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("commit: %w", &StockShortfallError{ProductID: "p1", Requested: 3})
	assert.True(t, errors.Is(err, ErrStockExceeded))

	var shortfall *StockShortfallError
	assert.True(t, errors.As(err, &shortfall))
	assert.Equal(t, "p1", shortfall.ProductID)
}

func TestProductFlags(t *testing.T) {
	p := Product{Active: true, StockQuantity: 2, MinStock: 2}
	assert.True(t, p.Purchasable())
	assert.True(t, p.LowStock())

	p.Active = false
	assert.False(t, p.Purchasable())
}

func TestOrderDecrements(t *testing.T) {
	o := Order{Lines: []OrderLine{{ProductID: "a", Quantity: 2}, {ProductID: "b", Quantity: 1}}}
	assert.Equal(t, []StockDecrement{{"a", 2}, {"b", 1}}, o.Decrements())
}
