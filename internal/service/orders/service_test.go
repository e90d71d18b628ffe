package orders

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hostline/hostbot/internal/domain"
	"github.com/hostline/hostbot/internal/events"
	"github.com/hostline/hostbot/internal/storage"
)

type fakeStore struct {
	mu        sync.Mutex
	balance   int64
	locations []domain.Location
	taken     []int

	insertErrs []error
	orders     []domain.Order
	txCount    int
}

func (s *fakeStore) WithinTx(ctx context.Context, fn func(Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txCount++
	tx := &fakeTx{store: s, balance: s.balance}
	if err := fn(tx); err != nil {
		// Rollback: pending writes are dropped.
		return err
	}
	s.balance = tx.balance
	s.orders = append(s.orders, tx.inserted...)
	return nil
}

type fakeTx struct {
	store    *fakeStore
	balance  int64
	inserted []domain.Order
}

func (t *fakeTx) DebitBalance(_ context.Context, _ int64, amount int64) (bool, error) {
	if t.balance < amount {
		return false, nil
	}
	t.balance -= amount
	return true, nil
}

func (t *fakeTx) Balance(context.Context, int64) (int64, error) {
	return t.balance, nil
}

func (t *fakeTx) ActiveLocations(context.Context) ([]domain.Location, error) {
	return t.store.locations, nil
}

func (t *fakeTx) TakenPorts(context.Context, int, int) ([]int, error) {
	return t.store.taken, nil
}

func (t *fakeTx) InsertOrder(_ context.Context, o *domain.Order) (int64, error) {
	if len(t.store.insertErrs) > 0 {
		err := t.store.insertErrs[0]
		t.store.insertErrs = t.store.insertErrs[1:]
		if err != nil {
			return 0, err
		}
	}
	t.inserted = append(t.inserted, *o)
	return int64(len(t.store.orders) + len(t.inserted)), nil
}

type recordingPublisher struct {
	events []events.OrderCreated
	err    error
}

func (p *recordingPublisher) PublishOrderCreated(_ context.Context, evt events.OrderCreated) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, evt)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

var (
	testUser = domain.User{ID: 7, TelegramID: 100500}
	testPlan = domain.RatePlan{
		ID:           3,
		Name:         "Counter-Strike 1.6",
		MinSlots:     4,
		MaxSlots:     32,
		MinPort:      27000,
		MaxPort:      27100,
		PricePerSlot: 10,
		Active:       true,
	}
)

func newTestService(store *fakeStore, pub events.Publisher) (*Service, time.Time) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := New(store, pub)
	svc.randIntN = func(int) int { return 0 }
	svc.now = func() time.Time { return now }
	return svc, now
}

func TestConfirmSuccess(t *testing.T) {
	store := &fakeStore{
		balance: 200,
		locations: []domain.Location{
			{ID: 1, Name: "Moscow-1", IP: "10.0.0.1", AllowedPlans: "1 2 3", Active: true},
		},
		taken: []int{27000},
	}
	pub := &recordingPublisher{}
	svc, now := newTestService(store, pub)

	order, err := svc.Confirm(context.Background(), testUser, testPlan, 10)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	if store.balance != 100 {
		t.Errorf("balance = %d, want 100", store.balance)
	}
	if order.ID == 0 {
		t.Error("order id is zero")
	}
	if order.UserID != testUser.ID || order.PlanID != testPlan.ID {
		t.Errorf("order bound to user %d plan %d", order.UserID, order.PlanID)
	}
	if order.LocationID != 1 {
		t.Errorf("location_id = %d, want 1", order.LocationID)
	}
	if order.Port != 27002 {
		t.Errorf("port = %d, want 27002", order.Port)
	}
	if order.Status != domain.StatusProvisioning {
		t.Errorf("status = %q, want %q", order.Status, domain.StatusProvisioning)
	}
	if order.Version != domain.OrderSchemaVersion {
		t.Errorf("version = %d, want %d", order.Version, domain.OrderSchemaVersion)
	}
	if order.Password == "" {
		t.Error("password is empty")
	}
	if !order.ExpiresAt.Equal(now.Add(OrderValidity)) {
		t.Errorf("expires_at = %v, want %v", order.ExpiresAt, now.Add(OrderValidity))
	}

	if len(store.orders) != 1 {
		t.Fatalf("stored orders = %d, want 1", len(store.orders))
	}
	if len(pub.events) != 1 {
		t.Fatalf("published events = %d, want 1", len(pub.events))
	}
	evt := pub.events[0]
	if evt.OrderID != order.ID || evt.Port != order.Port || evt.Status != string(domain.StatusProvisioning) {
		t.Errorf("event = %+v", evt)
	}
}

func TestConfirmInsufficientBalance(t *testing.T) {
	store := &fakeStore{
		balance: 30,
		locations: []domain.Location{
			{ID: 1, AllowedPlans: "3", Active: true},
		},
	}
	svc, _ := newTestService(store, nil)

	_, err := svc.Confirm(context.Background(), testUser, testPlan, 10)
	var insuff *InsufficientBalanceError
	if !errors.As(err, &insuff) {
		t.Fatalf("err = %v, want InsufficientBalanceError", err)
	}
	if insuff.Price != 100 || insuff.Balance != 30 {
		t.Errorf("price/balance = %d/%d, want 100/30", insuff.Price, insuff.Balance)
	}
	if insuff.Shortfall() != 70 {
		t.Errorf("shortfall = %d, want 70", insuff.Shortfall())
	}
	if store.balance != 30 {
		t.Errorf("balance = %d, want untouched 30", store.balance)
	}
	if len(store.orders) != 0 {
		t.Errorf("stored orders = %d, want 0", len(store.orders))
	}
}

func TestConfirmNoLocation(t *testing.T) {
	store := &fakeStore{
		balance: 200,
		locations: []domain.Location{
			{ID: 1, AllowedPlans: "1 2", Active: true},
			{ID: 2, AllowedPlans: "3", Active: false},
		},
	}
	svc, _ := newTestService(store, nil)

	_, err := svc.Confirm(context.Background(), testUser, testPlan, 10)
	if !errors.Is(err, ErrNoLocation) {
		t.Fatalf("err = %v, want ErrNoLocation", err)
	}
	if store.balance != 200 {
		t.Errorf("balance = %d, want untouched 200 after rollback", store.balance)
	}
}

func TestConfirmNoFreePort(t *testing.T) {
	plan := testPlan
	plan.MinPort = 27000
	plan.MaxPort = 27002

	store := &fakeStore{
		balance: 200,
		locations: []domain.Location{
			{ID: 1, AllowedPlans: "3", Active: true},
		},
		taken: []int{27000, 27002},
	}
	svc, _ := newTestService(store, nil)

	_, err := svc.Confirm(context.Background(), testUser, plan, 10)
	if !errors.Is(err, ErrNoFreePort) {
		t.Fatalf("err = %v, want ErrNoFreePort", err)
	}
	if store.balance != 200 {
		t.Errorf("balance = %d, want untouched 200 after rollback", store.balance)
	}
	if len(store.orders) != 0 {
		t.Errorf("stored orders = %d, want 0", len(store.orders))
	}
}

func TestConfirmRetriesLostPortRace(t *testing.T) {
	store := &fakeStore{
		balance: 200,
		locations: []domain.Location{
			{ID: 1, AllowedPlans: "3", Active: true},
		},
		insertErrs: []error{storage.ErrPortTaken},
	}
	svc, _ := newTestService(store, nil)

	order, err := svc.Confirm(context.Background(), testUser, testPlan, 10)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if store.txCount != 2 {
		t.Errorf("tx attempts = %d, want 2", store.txCount)
	}
	if store.balance != 100 {
		t.Errorf("balance = %d, want debited once to 100", store.balance)
	}
	if len(store.orders) != 1 {
		t.Fatalf("stored orders = %d, want 1", len(store.orders))
	}
	if order.ID == 0 {
		t.Error("order id is zero")
	}
}

func TestConfirmGivesUpAfterRepeatedPortRaces(t *testing.T) {
	store := &fakeStore{
		balance: 200,
		locations: []domain.Location{
			{ID: 1, AllowedPlans: "3", Active: true},
		},
		insertErrs: []error{
			storage.ErrPortTaken, storage.ErrPortTaken,
			storage.ErrPortTaken, storage.ErrPortTaken,
			storage.ErrPortTaken,
		},
	}
	svc, _ := newTestService(store, nil)

	_, err := svc.Confirm(context.Background(), testUser, testPlan, 10)
	if !errors.Is(err, storage.ErrPortTaken) {
		t.Fatalf("err = %v, want ErrPortTaken", err)
	}
	if store.balance != 200 {
		t.Errorf("balance = %d, want untouched 200", store.balance)
	}
	if len(store.orders) != 0 {
		t.Errorf("stored orders = %d, want 0", len(store.orders))
	}
}

func TestConfirmConcurrentSingleSuccess(t *testing.T) {
	// Balance covers exactly one order; two simultaneous confirms must
	// produce one success and one insufficient-balance refusal.
	store := &fakeStore{
		balance: 100,
		locations: []domain.Location{
			{ID: 1, AllowedPlans: "3", Active: true},
		},
	}
	pub := &recordingPublisher{}
	svc, _ := newTestService(store, pub)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Confirm(context.Background(), testUser, testPlan, 10)
		}(i)
	}
	wg.Wait()

	var succeeded, refused int
	for _, err := range errs {
		var insufficient *InsufficientBalanceError
		switch {
		case err == nil:
			succeeded++
		case errors.As(err, &insufficient):
			refused++
			if got := insufficient.Shortfall(); got != 100 {
				t.Errorf("shortfall = %d, want 100", got)
			}
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 || refused != 1 {
		t.Fatalf("outcomes = %d success / %d refused, want exactly one of each", succeeded, refused)
	}
	if store.balance != 0 {
		t.Errorf("balance = %d, want 0 after a single debit", store.balance)
	}
	if len(store.orders) != 1 {
		t.Errorf("stored orders = %d, want 1", len(store.orders))
	}
	if len(pub.events) != 1 {
		t.Errorf("published events = %d, want 1", len(pub.events))
	}
}

func TestConfirmPublishFailureIsNotFatal(t *testing.T) {
	store := &fakeStore{
		balance: 200,
		locations: []domain.Location{
			{ID: 1, AllowedPlans: "3", Active: true},
		},
	}
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc, _ := newTestService(store, pub)

	if _, err := svc.Confirm(context.Background(), testUser, testPlan, 10); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if len(store.orders) != 1 {
		t.Fatalf("stored orders = %d, want 1", len(store.orders))
	}
}
