package order

import (
	"context"
	"fmt"
	"io"
	"strings"

	"omcis-store/internal/domain"
	orderrepo "omcis-store/internal/repository/order"

	"github.com/sirupsen/logrus"
)

// DefaultStatuses is the back-office filter when none is given: orders still to act on.
var DefaultStatuses = []domain.OrderStatus{domain.OrderPaid, domain.OrderShipped}

type Service struct {
	repo   orderrepo.Repository
	logger logrus.FieldLogger
}

func New(repo orderrepo.Repository, logger logrus.FieldLogger) *Service {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Service{repo: repo, logger: logger.WithField("service", "order")}
}

// ParseStatusFilter turns query values into a status set. No values means
// DefaultStatuses; "all" means every status.
func ParseStatusFilter(raw []string) ([]domain.OrderStatus, error) {
	var out []domain.OrderStatus
	seen := make(map[domain.OrderStatus]bool)
	for _, value := range raw {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if strings.EqualFold(part, "all") {
				return append([]domain.OrderStatus(nil), domain.OrderStatuses...), nil
			}
			st, ok := domain.ParseOrderStatus(part)
			if !ok {
				return nil, fmt.Errorf("%w: unknown order status %q", domain.ErrInvalidInput, part)
			}
			if !seen[st] {
				seen[st] = true
				out = append(out, st)
			}
		}
	}
	if len(out) == 0 {
		return append([]domain.OrderStatus(nil), DefaultStatuses...), nil
	}
	return out, nil
}

// List returns orders in statuses, newest first.
func (s *Service) List(ctx context.Context, statuses []domain.OrderStatus) ([]domain.Order, error) {
	return s.repo.List(ctx, statuses)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	return s.repo.GetByID(ctx, id)
}

// Advance moves an order forward to status to. Backward or repeated moves fail with
// domain.ErrInvalidStatusTransition.
func (s *Service) Advance(ctx context.Context, id string, to domain.OrderStatus) (*domain.Order, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	log := s.logger.WithFields(logrus.Fields{"order_id": id, "from": current.Status, "to": to})
	if !current.Status.CanAdvanceTo(to) {
		log.Warn("order: status change refused")
		return nil, fmt.Errorf("%w: %s to %s", domain.ErrInvalidStatusTransition, current.Status, to)
	}
	updated, err := s.repo.UpdateStatus(ctx, id, current.Status, to)
	if err != nil {
		log.WithError(err).Warn("order: status change failed")
		return nil, err
	}
	log.Info("order: status advanced")
	return updated, nil
}
