// Package storage implements the Postgres persistence layer: one repository
// file per collection plus the transactional surface the order workflow needs.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when a single-row lookup matches nothing.
	ErrNotFound = errors.New("storage: not found")
	// ErrPortTaken signals a unique violation on the order port column.
	ErrPortTaken = errors.New("storage: port already taken")
)

// Store wraps the shared database handle.
type Store struct {
	db *sqlx.DB
}

// New constructs a Store over an established connection pool.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Tx groups the statements that must commit atomically during an order
// confirmation.
type Tx struct {
	tx *sqlx.Tx
}

// WithinTx runs fn inside a transaction, committing on nil and rolling back
// on error or panic.
func (s *Store) WithinTx(ctx context.Context, fn func(*Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&Tx{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint error.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
