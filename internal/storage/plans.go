package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hostline/hostbot/internal/domain"
)

const planColumns = `id, name, code, min_slots, max_slots, min_port, max_port, price_per_slot, active`

// ActivePlans returns all purchasable rate plans ordered by id.
func (s *Store) ActivePlans(ctx context.Context) ([]domain.RatePlan, error) {
	var plans []domain.RatePlan
	err := s.db.SelectContext(ctx, &plans,
		`SELECT `+planColumns+` FROM rate_plans WHERE active ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select active plans: %w", err)
	}
	return plans, nil
}

// ActivePlanByID returns one active plan or ErrNotFound.
func (s *Store) ActivePlanByID(ctx context.Context, id int64) (domain.RatePlan, error) {
	var plan domain.RatePlan
	err := s.db.GetContext(ctx, &plan,
		`SELECT `+planColumns+` FROM rate_plans WHERE active AND id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.RatePlan{}, ErrNotFound
	}
	if err != nil {
		return domain.RatePlan{}, fmt.Errorf("select plan %d: %w", id, err)
	}
	return plan, nil
}
