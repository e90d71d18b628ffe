package storage

import (
	"context"
	"fmt"

	"github.com/hostline/hostbot/internal/domain"
)

const locationColumns = `id, name, ip, cpu_load, ram_load, disk_load, allowed_plans, active, updated_at`

// ActiveLocations returns all active datacenter locations.
func (s *Store) ActiveLocations(ctx context.Context) ([]domain.Location, error) {
	var locations []domain.Location
	err := s.db.SelectContext(ctx, &locations,
		`SELECT `+locationColumns+` FROM locations WHERE active ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select active locations: %w", err)
	}
	return locations, nil
}

// ActiveLocations lists active locations inside the confirmation transaction.
func (t *Tx) ActiveLocations(ctx context.Context) ([]domain.Location, error) {
	var locations []domain.Location
	err := t.tx.SelectContext(ctx, &locations,
		`SELECT `+locationColumns+` FROM locations WHERE active ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select active locations: %w", err)
	}
	return locations, nil
}
