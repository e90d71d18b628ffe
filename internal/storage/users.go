package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hostline/hostbot/internal/domain"
)

const userColumns = `id, telegram_id, username, password_hash, first_name, last_name, balance, active, created_at`

// UserByTelegramID returns the user registered for the given Telegram id.
func (s *Store) UserByTelegramID(ctx context.Context, tgID int64) (domain.User, error) {
	var u domain.User
	err := s.db.GetContext(ctx, &u,
		`SELECT `+userColumns+` FROM users WHERE telegram_id = $1`, tgID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, ErrNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("select user by telegram id: %w", err)
	}
	return u, nil
}

// UsernameTaken reports whether a different account already owns the username.
func (s *Store) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var taken bool
	err := s.db.GetContext(ctx, &taken,
		`SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username)
	if err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return taken, nil
}

// CreateUser inserts a new user keyed by Telegram id. The insert is a single
// idempotent upsert: when the caller raced another registration the existing
// row is returned and created is false.
func (s *Store) CreateUser(ctx context.Context, u domain.User) (domain.User, bool, error) {
	var out domain.User
	err := s.db.GetContext(ctx, &out, `
		INSERT INTO users (telegram_id, username, password_hash, first_name, last_name, balance, active)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE)
		ON CONFLICT (telegram_id) DO NOTHING
		RETURNING `+userColumns,
		u.TelegramID, u.Username, u.PasswordHash, u.FirstName, u.LastName, u.Balance)
	if errors.Is(err, sql.ErrNoRows) {
		existing, lookupErr := s.UserByTelegramID(ctx, u.TelegramID)
		if lookupErr != nil {
			return domain.User{}, false, lookupErr
		}
		return existing, false, nil
	}
	if err != nil {
		return domain.User{}, false, fmt.Errorf("insert user: %w", err)
	}
	return out, true, nil
}

// DebitBalance subtracts amount from the user's balance only when covered.
// It reports false when the balance was insufficient; no row is changed then.
func (t *Tx) DebitBalance(ctx context.Context, userID, amount int64) (bool, error) {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE users SET balance = balance - $1 WHERE id = $2 AND balance >= $1`,
		amount, userID)
	if err != nil {
		return false, fmt.Errorf("debit balance: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("debit balance rows: %w", err)
	}
	return n == 1, nil
}

// Balance reads the current balance inside the transaction.
func (t *Tx) Balance(ctx context.Context, userID int64) (int64, error) {
	var balance int64
	err := t.tx.GetContext(ctx, &balance,
		`SELECT balance FROM users WHERE id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("select balance: %w", err)
	}
	return balance, nil
}
