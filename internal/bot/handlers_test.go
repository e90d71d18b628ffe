package bot

import (
	"context"
	"fmt"
	"strings"
	"testing"

	tele "gopkg.in/telebot.v4"

	"github.com/hostline/hostbot/internal/bot/session"
	"github.com/hostline/hostbot/internal/domain"
	"github.com/hostline/hostbot/internal/payments"
	"github.com/hostline/hostbot/internal/service/accounts"
	"github.com/hostline/hostbot/internal/service/catalog"
	"github.com/hostline/hostbot/internal/storage"
)

const testTelegramID int64 = 42

var testDialogPlan = domain.RatePlan{
	ID:           3,
	Name:         "Standard",
	MinSlots:     4,
	MaxSlots:     32,
	PricePerSlot: 10,
	Active:       true,
}

// fakeContext covers the slice of tele.Context the dialog handlers touch:
// sender identity, incoming text and outgoing sends.
type fakeContext struct {
	tele.Context

	text   string
	sender *tele.User
	store  map[string]interface{}

	sent []string
}

func newTextContext(text string) *fakeContext {
	return &fakeContext{
		text:   text,
		sender: &tele.User{ID: testTelegramID, FirstName: "Test"},
		store:  map[string]interface{}{},
	}
}

func (f *fakeContext) Update() tele.Update {
	return tele.Update{ID: 1, Message: &tele.Message{Text: f.text}}
}

func (f *fakeContext) Sender() *tele.User { return f.sender }
func (f *fakeContext) Chat() *tele.Chat   { return &tele.Chat{ID: f.sender.ID} }
func (f *fakeContext) Text() string       { return f.text }

func (f *fakeContext) Get(key string) interface{} { return f.store[key] }

func (f *fakeContext) Set(key string, val interface{}) { f.store[key] = val }

func (f *fakeContext) Send(what interface{}, _ ...interface{}) error {
	f.sent = append(f.sent, fmt.Sprint(what))
	return nil
}

type stubCatalogStore struct {
	plan domain.RatePlan
}

func (s stubCatalogStore) ActivePlans(context.Context) ([]domain.RatePlan, error) {
	return []domain.RatePlan{s.plan}, nil
}

func (s stubCatalogStore) ActivePlanByID(_ context.Context, id int64) (domain.RatePlan, error) {
	if id == s.plan.ID {
		return s.plan, nil
	}
	return domain.RatePlan{}, storage.ErrNotFound
}

func (s stubCatalogStore) ActiveLocations(context.Context) ([]domain.Location, error) {
	return nil, nil
}

func (s stubCatalogStore) OrdersByUser(context.Context, int64) ([]domain.OrderWithLocation, error) {
	return nil, nil
}

type stubUserStore struct{}

func (stubUserStore) UserByTelegramID(_ context.Context, tgID int64) (domain.User, error) {
	return domain.User{ID: 9, TelegramID: tgID, FirstName: "Test", Balance: 1000, Active: true}, nil
}

func (stubUserStore) UsernameTaken(context.Context, string) (bool, error) { return false, nil }

func (stubUserStore) CreateUser(_ context.Context, u domain.User) (domain.User, bool, error) {
	return u, true, nil
}

func newTestBot() (*Bot, session.Manager) {
	sessions := session.NewMemoryManager(0, 0)
	b := New(
		sessions,
		accounts.New(stubUserStore{}),
		catalog.New(stubCatalogStore{plan: testDialogPlan}),
		nil,
		payments.ReferenceGenerator{},
		"",
	)
	return b, sessions
}

func dispatch(b *Bot, c tele.Context) error {
	return stageRouter{bot: b}.ManagerHandler(c)
}

func TestDispatchInvalidSlotsKeepsAwaitingSlots(t *testing.T) {
	for _, input := range []string{"abc", "3", "33", "0", "-1", ""} {
		t.Run(fmt.Sprintf("input %q", input), func(t *testing.T) {
			b, sessions := newTestBot()
			ctx := context.Background()
			if err := sessions.SetDraft(ctx, testTelegramID, testDialogPlan.ID); err != nil {
				t.Fatalf("seed draft: %v", err)
			}

			c := newTextContext(input)
			if err := dispatch(b, c); err != nil {
				t.Fatalf("dispatch: %v", err)
			}

			s, err := sessions.Get(ctx, testTelegramID)
			if err != nil {
				t.Fatalf("get session: %v", err)
			}
			if s.Stage != session.StageAwaitSlots {
				t.Fatalf("stage = %q, want %q", s.Stage, session.StageAwaitSlots)
			}
			if s.PlanID != testDialogPlan.ID || s.Slots != 0 {
				t.Fatalf("draft changed: plan=%d slots=%d", s.PlanID, s.Slots)
			}
			if len(c.sent) != 1 || !strings.Contains(c.sent[0], "number of slots") {
				t.Fatalf("reply = %v, want one slot re-prompt", c.sent)
			}
		})
	}
}

func TestDispatchValidSlotsAsksConfirmation(t *testing.T) {
	b, sessions := newTestBot()
	ctx := context.Background()
	if err := sessions.SetDraft(ctx, testTelegramID, testDialogPlan.ID); err != nil {
		t.Fatalf("seed draft: %v", err)
	}

	c := newTextContext("16")
	if err := dispatch(b, c); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	s, err := sessions.Get(ctx, testTelegramID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if s.Stage != session.StageAwaitSlots || s.Slots != 16 {
		t.Fatalf("session = %+v, want 16 slots recorded in %q", s, session.StageAwaitSlots)
	}
	if len(c.sent) != 1 || !strings.Contains(c.sent[0], "Confirm the order?") {
		t.Fatalf("reply = %v, want a confirmation prompt", c.sent)
	}
	if !strings.Contains(c.sent[0], "160 RUB") {
		t.Fatalf("reply %q lacks the 160 RUB total", c.sent[0])
	}
}

func TestDispatchInvalidTopUpKeepsAwaitingAmount(t *testing.T) {
	for _, input := range []string{"abc", "-5", "100001", "12.5"} {
		t.Run(fmt.Sprintf("input %q", input), func(t *testing.T) {
			b, sessions := newTestBot()
			ctx := context.Background()
			if err := sessions.SetStage(ctx, testTelegramID, session.StageAwaitTopUpAmount); err != nil {
				t.Fatalf("seed stage: %v", err)
			}

			c := newTextContext(input)
			if err := dispatch(b, c); err != nil {
				t.Fatalf("dispatch: %v", err)
			}

			s, err := sessions.Get(ctx, testTelegramID)
			if err != nil {
				t.Fatalf("get session: %v", err)
			}
			if s.Stage != session.StageAwaitTopUpAmount {
				t.Fatalf("stage = %q, want %q", s.Stage, session.StageAwaitTopUpAmount)
			}
			if len(c.sent) != 1 || !strings.Contains(c.sent[0], "top-up amount") {
				t.Fatalf("reply = %v, want one amount re-prompt", c.sent)
			}
		})
	}
}

func TestDispatchValidTopUpIssuesFormAndResets(t *testing.T) {
	b, sessions := newTestBot()
	ctx := context.Background()
	if err := sessions.SetStage(ctx, testTelegramID, session.StageAwaitTopUpAmount); err != nil {
		t.Fatalf("seed stage: %v", err)
	}

	c := newTextContext("500")
	if err := dispatch(b, c); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	if len(c.sent) != 1 || !strings.Contains(c.sent[0], "Payment reference") {
		t.Fatalf("reply = %v, want the payment form", c.sent)
	}
	if !strings.Contains(c.sent[0], "500 RUB") {
		t.Fatalf("reply %q lacks the amount", c.sent[0])
	}
	if sessions.InProgress(ctx, testTelegramID) {
		t.Fatal("dialog still in progress after issuing the form")
	}
}

func TestDispatchIdleTextRendersMenu(t *testing.T) {
	b, _ := newTestBot()

	c := newTextContext("hello")
	if err := dispatch(b, c); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	if len(c.sent) != 1 || !strings.Contains(c.sent[0], "What would you like to do?") {
		t.Fatalf("reply = %v, want the main menu", c.sent)
	}
}
