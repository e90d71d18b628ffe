// Package catalog serves read-only views of rate plans, locations and the
// user's orders.
package catalog

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/hostline/hostbot/core/logger"
	"github.com/hostline/hostbot/internal/domain"
)

// Store is the read surface the catalog needs.
type Store interface {
	ActivePlans(ctx context.Context) ([]domain.RatePlan, error)
	ActivePlanByID(ctx context.Context, id int64) (domain.RatePlan, error)
	ActiveLocations(ctx context.Context) ([]domain.Location, error)
	OrdersByUser(ctx context.Context, userID int64) ([]domain.OrderWithLocation, error)
}

// Service exposes catalog reads to the bot.
type Service struct {
	store Store
}

// New constructs the catalog service.
func New(store Store) *Service {
	return &Service{store: store}
}

// ActivePlans lists purchasable rate plans.
func (s *Service) ActivePlans(ctx context.Context) ([]domain.RatePlan, error) {
	plans, err := s.store.ActivePlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("active plans: %w", err)
	}
	logger.Debug(ctx, "service.catalog", "plans.listed", slog.Int("count", len(plans)))
	return plans, nil
}

// PlanByID returns one active plan. Inactive or unknown ids return
// storage.ErrNotFound.
func (s *Service) PlanByID(ctx context.Context, id int64) (domain.RatePlan, error) {
	plan, err := s.store.ActivePlanByID(ctx, id)
	if err != nil {
		return domain.RatePlan{}, fmt.Errorf("plan %d: %w", id, err)
	}
	return plan, nil
}

// ActiveLocations lists locations currently accepting servers.
func (s *Service) ActiveLocations(ctx context.Context) ([]domain.Location, error) {
	locs, err := s.store.ActiveLocations(ctx)
	if err != nil {
		return nil, fmt.Errorf("active locations: %w", err)
	}
	return locs, nil
}

// UserOrders lists the user's orders joined with location data, newest first.
func (s *Service) UserOrders(ctx context.Context, userID int64) ([]domain.OrderWithLocation, error) {
	list, err := s.store.OrdersByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("orders of user %d: %w", userID, err)
	}
	logger.Debug(ctx, "service.catalog", "orders.listed",
		slog.Int64("user_id", userID),
		slog.Int("count", len(list)),
	)
	return list, nil
}
