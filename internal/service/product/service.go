package product

import (
	"context"
	"fmt"
	"strings"

	"omcis-store/internal/domain"
	productrepo "omcis-store/internal/repository/product"

	"github.com/shopspring/decimal"
)

type Service struct {
	repo productrepo.Repository
}

func New(repo productrepo.Repository) *Service {
	return &Service{repo: repo}
}

// Input is the editable part of a product.
type Input struct {
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	Price         decimal.Decimal `json:"price"`
	Cost          decimal.Decimal `json:"cost"`
	StockQuantity int             `json:"stockQuantity"`
	MinStock      int             `json:"minStock"`
	Sizes         []string        `json:"sizes"`
	Image         string          `json:"image"`
	Active        *bool           `json:"status"`
}

// Listing is a product as shown in the back office.
type Listing struct {
	domain.Product
	LowStock bool `json:"lowStock"`
}

// List returns every product whose name contains search (case-insensitive).
func (s *Service) List(ctx context.Context, search string) ([]Listing, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(search))
	out := make([]Listing, 0, len(products))
	for _, p := range products {
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) {
			continue
		}
		out = append(out, Listing{Product: p, LowStock: p.LowStock()})
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, in Input) (*domain.Product, error) {
	p, err := in.product()
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) Update(ctx context.Context, id string, in Input) (*domain.Product, error) {
	p, err := in.product()
	if err != nil {
		return nil, err
	}
	p.ID = id
	return s.repo.Update(ctx, p)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (in Input) product() (domain.Product, error) {
	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		return domain.Product{}, fmt.Errorf("%w: name required", domain.ErrInvalidInput)
	case in.Price.IsNegative():
		return domain.Product{}, fmt.Errorf("%w: price must not be negative", domain.ErrInvalidInput)
	case in.Cost.IsNegative():
		return domain.Product{}, fmt.Errorf("%w: cost must not be negative", domain.ErrInvalidInput)
	case in.StockQuantity < 0 || in.MinStock < 0:
		return domain.Product{}, fmt.Errorf("%w: stock must not be negative", domain.ErrInvalidInput)
	}
	active := true
	if in.Active != nil {
		active = *in.Active
	}
	sizes := make([]string, 0, len(in.Sizes))
	for _, sz := range in.Sizes {
		if sz = strings.TrimSpace(sz); sz != "" {
			sizes = append(sizes, sz)
		}
	}
	return domain.Product{
		Name:          name,
		Category:      strings.TrimSpace(in.Category),
		Price:         in.Price,
		Cost:          in.Cost,
		StockQuantity: in.StockQuantity,
		MinStock:      in.MinStock,
		Sizes:         sizes,
		Image:         strings.TrimSpace(in.Image),
		Active:        active,
	}, nil
}
