package router

import (
	"fmt"
	"strings"
	"testing"

	tg "github.com/hostline/hostbot/core/telegram"

	tele "gopkg.in/telebot.v4"
)

// fakeContext implements the slice of tele.Context the callback route and the
// registry fallback touch. Everything else panics via the embedded nil
// interface, which is what we want in a test.
type fakeContext struct {
	tele.Context

	updateID int
	callback *tele.Callback
	sender   *tele.User
	store    map[string]interface{}

	sent     []string
	responds int
}

func newFakeCallbackContext(updateID int, cb *tele.Callback) *fakeContext {
	return &fakeContext{
		updateID: updateID,
		callback: cb,
		sender:   &tele.User{ID: 42},
		store:    map[string]interface{}{},
	}
}

func (f *fakeContext) Update() tele.Update {
	return tele.Update{ID: f.updateID, Callback: f.callback}
}

func (f *fakeContext) Callback() *tele.Callback { return f.callback }
func (f *fakeContext) Sender() *tele.User       { return f.sender }
func (f *fakeContext) Chat() *tele.Chat         { return &tele.Chat{ID: f.sender.ID} }
func (f *fakeContext) Text() string             { return "" }

func (f *fakeContext) Get(key string) interface{} { return f.store[key] }

func (f *fakeContext) Set(key string, val interface{}) { f.store[key] = val }

func (f *fakeContext) Send(what interface{}, _ ...interface{}) error {
	f.sent = append(f.sent, fmt.Sprint(what))
	return nil
}

func (f *fakeContext) Respond(_ ...*tele.CallbackResponse) error {
	f.responds++
	return nil
}

func TestCallbackRouteKnownActionAcksOnce(t *testing.T) {
	reg := tg.NewRegistry()
	handled := false
	if err := reg.RegisterCallback("confirm", func(c tele.Context) error {
		handled = true
		return nil
	}); err != nil {
		t.Fatalf("register callback: %v", err)
	}

	route := CallbackRoute(reg, CallbackOptions{})
	c := newFakeCallbackContext(100, &tele.Callback{Unique: "confirm"})

	if err := route.Handler(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if !handled {
		t.Fatal("registered handler was not dispatched")
	}
	if c.responds != 1 {
		t.Fatalf("callback answered %d times, want exactly 1", c.responds)
	}
	if len(c.sent) != 0 {
		t.Fatalf("unexpected messages sent: %v", c.sent)
	}
}

func TestCallbackRouteUnknownActionAcksOnceAndReplies(t *testing.T) {
	reg := tg.NewRegistry()

	route := CallbackRoute(reg, CallbackOptions{})
	c := newFakeCallbackContext(101, &tele.Callback{Unique: "launch_rockets"})

	if err := route.Handler(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if c.responds != 1 {
		t.Fatalf("callback answered %d times, want exactly 1", c.responds)
	}
	if len(c.sent) != 1 || !strings.Contains(c.sent[0], "Unsupported action") {
		t.Fatalf("fallback reply = %v, want one unsupported-action message", c.sent)
	}
}

func TestCallbackRouteIgnoresNonCallbackUpdate(t *testing.T) {
	reg := tg.NewRegistry()

	route := CallbackRoute(reg, CallbackOptions{})
	c := newFakeCallbackContext(102, nil)

	if err := route.Handler(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if c.responds != 0 {
		t.Fatalf("answered %d times for a non-callback update, want 0", c.responds)
	}
}
