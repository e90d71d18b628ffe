// Package accounts registers Telegram users as hosting customers.
package accounts

import (
	"context"
	"fmt"
	"strconv"

	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/hostline/hostbot/core/logger"
	"github.com/hostline/hostbot/internal/domain"
	"github.com/hostline/hostbot/internal/password"
)

const bcryptCost = 10

// Store is the user storage surface the service needs.
type Store interface {
	UserByTelegramID(ctx context.Context, tgID int64) (domain.User, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
	CreateUser(ctx context.Context, u domain.User) (domain.User, bool, error)
}

// Registration is the outcome of EnsureRegistered. Password is set only when
// the account was created in this call; it is shown to the user once and only
// its hash is stored.
type Registration struct {
	User     domain.User
	Created  bool
	Password string
}

// Service registers and resolves customer accounts.
type Service struct {
	store Store
}

// New constructs the accounts service.
func New(store Store) *Service {
	return &Service{store: store}
}

// ByTelegramID resolves an existing customer.
func (s *Service) ByTelegramID(ctx context.Context, tgID int64) (domain.User, error) {
	return s.store.UserByTelegramID(ctx, tgID)
}

// EnsureRegistered returns the customer for the Telegram user, creating the
// account on first contact. Creation is a single idempotent upsert, so two
// concurrent first messages produce one account. The Telegram handle becomes
// the username unless it is absent or already claimed by another customer, in
// which case the numeric Telegram id is used.
func (s *Service) EnsureRegistered(ctx context.Context, tgID int64, username, name string) (Registration, error) {
	if u, err := s.store.UserByTelegramID(ctx, tgID); err == nil {
		return Registration{User: u}, nil
	}

	login := username
	if login == "" {
		login = strconv.FormatInt(tgID, 10)
	} else {
		taken, err := s.store.UsernameTaken(ctx, login)
		if err != nil {
			return Registration{}, fmt.Errorf("username check: %w", err)
		}
		if taken {
			login = strconv.FormatInt(tgID, 10)
		}
	}

	plain := password.Generate(password.DefaultLength)
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return Registration{}, fmt.Errorf("hash password: %w", err)
	}

	first, last := splitName(name)
	user := domain.User{
		TelegramID:   tgID,
		Username:     login,
		PasswordHash: string(hash),
		FirstName:    first,
		LastName:     last,
		Active:       true,
	}
	stored, created, err := s.store.CreateUser(ctx, user)
	if err != nil {
		return Registration{}, fmt.Errorf("create user: %w", err)
	}

	reg := Registration{User: stored, Created: created}
	if created {
		reg.Password = plain
		logger.Info(ctx, "service.accounts", "registered",
			slog.Int64("user_id", stored.ID),
			slog.String("username", logger.SanitizeLimit(stored.Username, 64)),
		)
	}
	return reg, nil
}

func splitName(name string) (string, string) {
	for i := 0; i < len(name); i++ {
		if name[i] == ' ' {
			return name[:i], name[i+1:]
		}
	}
	return name, ""
}
