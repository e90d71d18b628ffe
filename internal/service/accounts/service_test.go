package accounts

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/hostline/hostbot/internal/domain"
	"github.com/hostline/hostbot/internal/storage"
)

type fakeUserStore struct {
	byTelegramID map[int64]domain.User
	takenNames   map[string]bool

	// missLookup makes UserByTelegramID report not-found even when the row
	// exists, imitating a row inserted between lookup and upsert.
	missLookup bool

	created []domain.User
	nextID  int64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		byTelegramID: make(map[int64]domain.User),
		takenNames:   make(map[string]bool),
		nextID:       1,
	}
}

func (s *fakeUserStore) UserByTelegramID(_ context.Context, tgID int64) (domain.User, error) {
	if u, ok := s.byTelegramID[tgID]; ok && !s.missLookup {
		return u, nil
	}
	return domain.User{}, storage.ErrNotFound
}

func (s *fakeUserStore) UsernameTaken(_ context.Context, username string) (bool, error) {
	return s.takenNames[username], nil
}

func (s *fakeUserStore) CreateUser(_ context.Context, u domain.User) (domain.User, bool, error) {
	if existing, ok := s.byTelegramID[u.TelegramID]; ok {
		return existing, false, nil
	}
	u.ID = s.nextID
	s.nextID++
	s.byTelegramID[u.TelegramID] = u
	s.created = append(s.created, u)
	return u, true, nil
}

func TestEnsureRegisteredExisting(t *testing.T) {
	store := newFakeUserStore()
	store.byTelegramID[100] = domain.User{ID: 5, TelegramID: 100, Username: "gamer"}
	svc := New(store)

	reg, err := svc.EnsureRegistered(context.Background(), 100, "gamer", "Some Name")
	if err != nil {
		t.Fatalf("EnsureRegistered: %v", err)
	}
	if reg.Created {
		t.Error("Created = true for existing user")
	}
	if reg.Password != "" {
		t.Error("password leaked for existing user")
	}
	if reg.User.ID != 5 {
		t.Errorf("user id = %d, want 5", reg.User.ID)
	}
	if len(store.created) != 0 {
		t.Errorf("created %d users, want 0", len(store.created))
	}
}

func TestEnsureRegisteredCreates(t *testing.T) {
	store := newFakeUserStore()
	svc := New(store)

	reg, err := svc.EnsureRegistered(context.Background(), 100, "gamer", "Ivan Petrov")
	if err != nil {
		t.Fatalf("EnsureRegistered: %v", err)
	}
	if !reg.Created {
		t.Fatal("Created = false for new user")
	}
	if reg.Password == "" {
		t.Fatal("no one-time password for new user")
	}
	u := reg.User
	if u.Username != "gamer" {
		t.Errorf("username = %q, want gamer", u.Username)
	}
	if u.FirstName != "Ivan" || u.LastName != "Petrov" {
		t.Errorf("name split = %q/%q", u.FirstName, u.LastName)
	}
	if !u.Active {
		t.Error("new user is inactive")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(reg.Password)); err != nil {
		t.Errorf("stored hash does not match returned password: %v", err)
	}
}

func TestEnsureRegisteredUsernameFallback(t *testing.T) {
	store := newFakeUserStore()
	store.takenNames["gamer"] = true
	svc := New(store)

	reg, err := svc.EnsureRegistered(context.Background(), 100500, "gamer", "")
	if err != nil {
		t.Fatalf("EnsureRegistered: %v", err)
	}
	if reg.User.Username != "100500" {
		t.Errorf("username = %q, want telegram id fallback", reg.User.Username)
	}
}

func TestEnsureRegisteredEmptyUsername(t *testing.T) {
	store := newFakeUserStore()
	svc := New(store)

	reg, err := svc.EnsureRegistered(context.Background(), 42, "", "Solo")
	if err != nil {
		t.Fatalf("EnsureRegistered: %v", err)
	}
	if reg.User.Username != "42" {
		t.Errorf("username = %q, want \"42\"", reg.User.Username)
	}
	if reg.User.FirstName != "Solo" || reg.User.LastName != "" {
		t.Errorf("name split = %q/%q", reg.User.FirstName, reg.User.LastName)
	}
}

func TestEnsureRegisteredUpsertRace(t *testing.T) {
	store := newFakeUserStore()
	svc := New(store)

	first, err := svc.EnsureRegistered(context.Background(), 7, "dup", "")
	if err != nil {
		t.Fatalf("first EnsureRegistered: %v", err)
	}

	// The row lands between lookup and upsert: the upsert must return the
	// existing account without creating a second one.
	store.missLookup = true
	second, err := svc.EnsureRegistered(context.Background(), 7, "dup", "")
	if err != nil {
		t.Fatalf("second EnsureRegistered: %v", err)
	}
	if second.Created {
		t.Error("Created = true on second registration")
	}
	if second.User.ID != first.User.ID {
		t.Errorf("second id = %d, want %d", second.User.ID, first.User.ID)
	}
}
