package category

import (
	"context"
	"fmt"
	"strings"

	"omcis-store/internal/domain"
	"omcis-store/internal/repository/category"
)

type Service struct {
	repo category.Repository
}

func New(repo category.Repository) *Service {
	return &Service{repo: repo}
}

// List returns categories whose name contains search (case-insensitive).
func (s *Service) List(ctx context.Context, search string) ([]domain.Category, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(search))
	if q == "" {
		return all, nil
	}
	out := make([]domain.Category, 0, len(all))
	for _, c := range all {
		if strings.Contains(strings.ToLower(c.Name), q) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, name string) (*domain.Category, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, name)
}

func (s *Service) Rename(ctx context.Context, id, name string) (*domain.Category, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	return s.repo.Rename(ctx, id, name)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: category name required", domain.ErrInvalidInput)
	}
	return name, nil
}
