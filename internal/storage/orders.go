package storage

import (
	"context"
	"fmt"

	"github.com/hostline/hostbot/internal/domain"
)

// OrdersByUser returns the user's orders joined with their locations,
// newest first.
func (s *Store) OrdersByUser(ctx context.Context, userID int64) ([]domain.OrderWithLocation, error) {
	var orders []domain.OrderWithLocation
	err := s.db.SelectContext(ctx, &orders, `
		SELECT o.id, o.user_id, o.plan_id, o.location_id, o.slots, o.port,
		       o.password, o.status, o.version, o.created_at, o.expires_at,
		       l.name AS location_name, l.ip AS location_ip
		FROM orders o
		JOIN locations l ON l.id = o.location_id
		WHERE o.user_id = $1
		ORDER BY o.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("select orders for user %d: %w", userID, err)
	}
	return orders, nil
}

// TakenPorts returns the ports already bound to orders within [minPort, maxPort].
func (t *Tx) TakenPorts(ctx context.Context, minPort, maxPort int) ([]int, error) {
	var ports []int
	err := t.tx.SelectContext(ctx, &ports,
		`SELECT port FROM orders WHERE port BETWEEN $1 AND $2 ORDER BY port`,
		minPort, maxPort)
	if err != nil {
		return nil, fmt.Errorf("select taken ports: %w", err)
	}
	return ports, nil
}

// InsertOrder persists a new order and returns its id. A concurrent
// confirmation that grabbed the same port surfaces as ErrPortTaken.
func (t *Tx) InsertOrder(ctx context.Context, o *domain.Order) (int64, error) {
	var id int64
	err := t.tx.GetContext(ctx, &id, `
		INSERT INTO orders (user_id, plan_id, location_id, slots, port, password, status, version, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		o.UserID, o.PlanID, o.LocationID, o.Slots, o.Port,
		o.Password, o.Status, o.Version, o.CreatedAt, o.ExpiresAt)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrPortTaken
		}
		return 0, fmt.Errorf("insert order: %w", err)
	}
	return id, nil
}
