// Package orders runs the purchase confirmation workflow: debit, placement,
// port allocation and order insert in one database transaction.
package orders

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"log/slog"

	"github.com/hostline/hostbot/core/logger"
	"github.com/hostline/hostbot/internal/domain"
	"github.com/hostline/hostbot/internal/events"
	"github.com/hostline/hostbot/internal/password"
	"github.com/hostline/hostbot/internal/storage"
)

// OrderValidity is how long a freshly placed order runs before expiry.
const OrderValidity = 31 * 24 * time.Hour

// portConflictRetries bounds whole-confirmation retries after a concurrent
// insert claimed the same port.
const portConflictRetries = 3

// Tx is the transactional storage surface the workflow needs.
type Tx interface {
	DebitBalance(ctx context.Context, userID, amount int64) (bool, error)
	Balance(ctx context.Context, userID int64) (int64, error)
	ActiveLocations(ctx context.Context) ([]domain.Location, error)
	TakenPorts(ctx context.Context, minPort, maxPort int) ([]int, error)
	InsertOrder(ctx context.Context, o *domain.Order) (int64, error)
}

// Store opens transactions for the workflow.
type Store interface {
	WithinTx(ctx context.Context, fn func(Tx) error) error
}

// Service confirms purchase drafts.
type Service struct {
	store  Store
	events events.Publisher

	randIntN func(int) int
	now      func() time.Time
}

// New constructs the workflow service. A nil publisher disables event hand-off.
func New(store Store, pub events.Publisher) *Service {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &Service{
		store:    store,
		events:   pub,
		randIntN: rand.IntN,
		now:      time.Now,
	}
}

// Confirm places an order for the drafted plan and slot count. The debit,
// location pick, port allocation and insert all happen in one transaction, so
// a failure at any step leaves the balance untouched. A lost port race is
// retried from the top a bounded number of times.
func (s *Service) Confirm(ctx context.Context, user domain.User, plan domain.RatePlan, slots int) (domain.Order, error) {
	price := plan.Price(slots)

	var order domain.Order
	for attempt := 1; ; attempt++ {
		err := s.store.WithinTx(ctx, func(tx Tx) error {
			debited, err := tx.DebitBalance(ctx, user.ID, price)
			if err != nil {
				return fmt.Errorf("debit: %w", err)
			}
			if !debited {
				balance, err := tx.Balance(ctx, user.ID)
				if err != nil {
					return fmt.Errorf("balance lookup: %w", err)
				}
				return &InsufficientBalanceError{Price: price, Balance: balance}
			}

			locations, err := tx.ActiveLocations(ctx)
			if err != nil {
				return fmt.Errorf("locations: %w", err)
			}
			eligible := EligibleLocations(locations, plan.ID)
			if len(eligible) == 0 {
				return ErrNoLocation
			}
			loc := eligible[s.randIntN(len(eligible))]

			taken, err := tx.TakenPorts(ctx, plan.MinPort, plan.MaxPort)
			if err != nil {
				return fmt.Errorf("taken ports: %w", err)
			}
			port, err := FreePort(taken, plan.MinPort, plan.MaxPort)
			if err != nil {
				return err
			}

			now := s.now()
			order = domain.Order{
				UserID:     user.ID,
				PlanID:     plan.ID,
				LocationID: loc.ID,
				Slots:      slots,
				Port:       port,
				Password:   password.Generate(password.DefaultLength),
				Status:     domain.StatusProvisioning,
				Version:    domain.OrderSchemaVersion,
				CreatedAt:  now,
				ExpiresAt:  now.Add(OrderValidity),
			}
			id, err := tx.InsertOrder(ctx, &order)
			if err != nil {
				return err
			}
			order.ID = id
			return nil
		})

		if err == nil {
			break
		}
		if errors.Is(err, storage.ErrPortTaken) && attempt <= portConflictRetries {
			logger.Warn(ctx, "service.orders", "confirm.port_conflict",
				slog.Int64("plan_id", plan.ID),
				slog.Int("attempts", attempt),
			)
			continue
		}
		s.logConfirmFailure(ctx, user, plan, slots, price, err)
		return domain.Order{}, err
	}

	logger.Info(ctx, "service.orders", "confirm.ok",
		slog.Int64("order_id", order.ID),
		slog.Int64("plan_id", plan.ID),
		slog.Int("slots", slots),
		slog.Int64("price", price),
		slog.Int64("location_id", order.LocationID),
		slog.Int("port", order.Port),
	)

	s.publish(ctx, order)
	return order, nil
}

// publish hands the order to the provisioning pipeline. Failures are logged
// and swallowed: the order is already committed.
func (s *Service) publish(ctx context.Context, order domain.Order) {
	evt := events.OrderCreated{
		OrderID:    order.ID,
		UserID:     order.UserID,
		PlanID:     order.PlanID,
		LocationID: order.LocationID,
		Slots:      order.Slots,
		Port:       order.Port,
		Status:     string(order.Status),
		CreatedAt:  order.CreatedAt,
		ExpiresAt:  order.ExpiresAt,
	}
	if err := s.events.PublishOrderCreated(ctx, evt); err != nil {
		logger.Warn(ctx, "service.orders", "confirm.publish_failed",
			slog.Int64("order_id", order.ID),
			slog.String("err", err.Error()),
		)
	}
}

func (s *Service) logConfirmFailure(ctx context.Context, user domain.User, plan domain.RatePlan, slots int, price int64, err error) {
	attrs := []slog.Attr{
		slog.Int64("plan_id", plan.ID),
		slog.Int("slots", slots),
		slog.Int64("price", price),
		slog.String("err", err.Error()),
	}
	var insuff *InsufficientBalanceError
	if errors.As(err, &insuff) {
		attrs = append(attrs,
			slog.Int64("balance", insuff.Balance),
			slog.Int64("shortfall", insuff.Shortfall()),
		)
		logger.Info(ctx, "service.orders", "confirm.rejected", attrs...)
		return
	}
	if errors.Is(err, ErrNoLocation) || errors.Is(err, ErrNoFreePort) {
		logger.Warn(ctx, "service.orders", "confirm.exhausted", attrs...)
		return
	}
	logger.Error(ctx, "service.orders", "confirm.failed", attrs...)
}
