// Package payments issues top-up payment references. Actual gateway
// integration lives outside the bot; this package only creates the reference
// the user quotes when paying.
package payments

import (
	"context"

	"log/slog"

	"github.com/google/uuid"

	"github.com/hostline/hostbot/core/logger"
)

// MaxTopUpAmount bounds a single top-up request.
const MaxTopUpAmount = 100000

// Form is a pending top-up reference handed to the user.
type Form struct {
	Reference string
	UserID    int64
	Amount    int64
}

// FormGenerator creates payment forms for valid top-up amounts.
type FormGenerator interface {
	NewForm(ctx context.Context, userID, amount int64) (Form, error)
}

// ReferenceGenerator issues uuid-based references with no gateway behind them.
type ReferenceGenerator struct{}

// NewForm returns a fresh payment reference for the amount.
func (ReferenceGenerator) NewForm(ctx context.Context, userID, amount int64) (Form, error) {
	form := Form{
		Reference: uuid.NewString(),
		UserID:    userID,
		Amount:    amount,
	}
	logger.Debug(ctx, "service.accounts", "topup.form",
		slog.Int64("user_id", userID),
		slog.Int64("amount", amount),
	)
	return form, nil
}

// ValidAmount reports whether the amount may be submitted for payment.
func ValidAmount(amount int64) bool {
	return amount >= 0 && amount <= MaxTopUpAmount
}
