package orders

import (
	"errors"
	"fmt"
)

var (
	// ErrNoLocation means no active location may host the chosen plan.
	ErrNoLocation = errors.New("orders: no eligible location")
	// ErrNoFreePort means the plan's port range is exhausted.
	ErrNoFreePort = errors.New("orders: no free port in plan range")
)

// InsufficientBalanceError is returned when the user cannot afford the order.
type InsufficientBalanceError struct {
	Price   int64
	Balance int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("orders: insufficient balance: price %d, balance %d", e.Price, e.Balance)
}

// Code is picked up by the transport layer for error summary lines.
func (e *InsufficientBalanceError) Code() string { return "INSUFFICIENT_BALANCE" }

// Shortfall returns how much the user is missing.
func (e *InsufficientBalanceError) Shortfall() int64 {
	return e.Price - e.Balance
}
