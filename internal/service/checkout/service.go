// Package checkout turns a session cart into an order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"io"

	"omcis-store/internal/domain"
	"omcis-store/internal/service/cart"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrEmptyCart       = errors.New("cart is empty")
	// ErrCheckoutFailed wraps every failure of the order batch. A stock shortfall at
	// commit also matches domain.ErrStockExceeded.
	ErrCheckoutFailed = errors.New("checkout failed")
)

type batchWriter interface {
	PlaceBatch(ctx context.Context, o domain.Order) (*domain.Order, error)
}

type Service struct {
	orders batchWriter
	logger logrus.FieldLogger
	newID  func() string
}

func New(orders batchWriter, logger logrus.FieldLogger) *Service {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Service{orders: orders, logger: logger.WithField("service", "checkout"), newID: uuid.NewString}
}

// PlaceOrder writes the cart as a paid order together with the stock decrements in a
// single batch. On success the cart is cleared and the order id returned; on failure
// the cart is left untouched.
func (s *Service) PlaceOrder(ctx context.Context, principal *domain.Principal, c *cart.Cart, addr domain.ShippingAddress) (string, error) {
	if principal == nil {
		return "", ErrUnauthenticated
	}
	if c == nil || c.IsEmpty() {
		return "", ErrEmptyCart
	}

	o := BuildOrder(s.newID(), *principal, c, addr)
	log := s.logger.WithFields(logrus.Fields{"order_id": o.ID, "user_uid": principal.UID})

	placed, err := s.orders.PlaceBatch(ctx, o)
	if err != nil {
		log.WithError(err).Warn("checkout: place order failed")
		return "", fmt.Errorf("%w: %w", ErrCheckoutFailed, err)
	}

	c.Clear()
	log.WithField("total", placed.TotalAmount.StringFixed(2)).Info("checkout: order placed")
	return placed.ID, nil
}

// BuildOrder snapshots the cart into a new paid order.
func BuildOrder(id string, principal domain.Principal, c *cart.Cart, addr domain.ShippingAddress) domain.Order {
	lines := c.Lines()
	out := make([]domain.OrderLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, domain.OrderLine{
			ProductID: l.ProductID,
			Name:      l.Name,
			Image:     l.Image,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}
	return domain.Order{
		ID:              id,
		UserID:          principal.UID,
		UserEmail:       principal.Email,
		Lines:           out,
		TotalAmount:     c.Total(),
		ShippingAddress: addr,
		Status:          domain.OrderPaid,
	}
}
