// Package catalog serves the storefront view of the product collection, kept current
// by the change feed.
package catalog

import (
	"context"
	"errors"
	"io"
	"sync/atomic"

	"omcis-store/internal/domain"
	"omcis-store/internal/feed"

	"github.com/sirupsen/logrus"
)

// Collection is the feed collection (table) holding products.
const Collection = "products"

type productReader interface {
	List(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type Service struct {
	products productReader
	hub      *feed.Hub
	snapshot atomic.Pointer[[]domain.Product]
	logger   logrus.FieldLogger
}

func New(products productReader, hub *feed.Hub, logger logrus.FieldLogger) *Service {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Service{products: products, hub: hub, logger: logger.WithField("service", "catalog")}
}

// Run keeps the in-memory product snapshot in sync with the store until ctx ends.
func (s *Service) Run(ctx context.Context) {
	sub := feed.Subscribe(ctx, s.hub, Collection, s.products.List)
	defer sub.Close()
	for products := range sub.Snapshots() {
		snap := products
		s.snapshot.Store(&snap)
		s.logger.WithField("products", len(snap)).Debug("catalog: snapshot refreshed")
	}
}

// Products returns the latest snapshot, reading the store when none is held yet.
func (s *Service) Products(ctx context.Context) ([]domain.Product, error) {
	if snap := s.snapshot.Load(); snap != nil {
		return *snap, nil
	}
	return s.products.List(ctx)
}

// Browse lists purchasable products matching f.
func (s *Service) Browse(ctx context.Context, f Filter) ([]domain.Product, error) {
	products, err := s.Products(ctx)
	if err != nil {
		return nil, err
	}
	return Visible(products, f), nil
}

// Categories lists the categories that have at least one purchasable product.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	products, err := s.Browse(ctx, Filter{})
	if err != nil {
		return nil, err
	}
	return CategoriesOf(products), nil
}

// Lookup returns the current state of one product.
func (s *Service) Lookup(ctx context.Context, id string) (domain.Product, bool, error) {
	if snap := s.snapshot.Load(); snap != nil {
		for _, p := range *snap {
			if p.ID == id {
				return p, true, nil
			}
		}
		return domain.Product{}, false, nil
	}
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Product{}, false, nil
		}
		return domain.Product{}, false, err
	}
	return *p, true, nil
}

// Fresh reads products straight from the store, bypassing the snapshot. Used where a
// stale stock figure would be wrong, such as cart reconciliation after a failed order.
func (s *Service) Fresh(ctx context.Context) (map[string]domain.Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID, nil
}

// Stream subscribes to the filtered storefront listing.
func (s *Service) Stream(ctx context.Context, f Filter) *feed.Subscription[[]domain.Product] {
	return feed.Subscribe(ctx, s.hub, Collection, func(ctx context.Context) ([]domain.Product, error) {
		products, err := s.products.List(ctx)
		if err != nil {
			return nil, err
		}
		return Visible(products, f), nil
	})
}
