package app

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/hostline/hostbot/core/logger"
)

// SeedDemoData loads a small catalog for local development: three rate plans
// and two locations. Inserts are idempotent by unique code/name.
func SeedDemoData(ctx context.Context, db *sqlx.DB) error {
	plans := []struct {
		name, code         string
		minSlots, maxSlots int
		minPort, maxPort   int
		price              int64
	}{
		{"Counter-Strike 1.6", "cs16", 4, 32, 27000, 27100, 10},
		{"CS:GO", "csgo", 8, 64, 28000, 28100, 15},
		{"Minecraft", "minecraft", 2, 100, 25500, 25600, 8},
	}
	for _, p := range plans {
		_, err := db.ExecContext(ctx, `
			INSERT INTO rate_plans (name, code, min_slots, max_slots, min_port, max_port, price_per_slot, active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE)
			ON CONFLICT (code) DO NOTHING`,
			p.name, p.code, p.minSlots, p.maxSlots, p.minPort, p.maxPort, p.price,
		)
		if err != nil {
			return fmt.Errorf("seed plan %s: %w", p.code, err)
		}
	}

	locations := []struct {
		name, ip, allowed string
	}{
		{"Moscow-1", "185.10.10.1", "1 2 3"},
		{"Frankfurt-1", "185.10.20.1", "1 2"},
	}
	for _, l := range locations {
		_, err := db.ExecContext(ctx, `
			INSERT INTO locations (name, ip, cpu_load, ram_load, disk_load, allowed_plans, active)
			VALUES ($1, $2, 0, 0, 0, $3, TRUE)
			ON CONFLICT (name) DO NOTHING`,
			l.name, l.ip, l.allowed,
		)
		if err != nil {
			return fmt.Errorf("seed location %s: %w", l.name, err)
		}
	}

	logger.SEED.Info("demo data seeded",
		slog.String("event", "seed"),
		slog.Int("plans", len(plans)),
		slog.Int("locations", len(locations)),
	)
	return nil
}
