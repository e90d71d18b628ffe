package session

import (
	"context"
	"testing"
	"time"
)

func newClockedManager(t *testing.T, ttl time.Duration, max int) (*memoryManager, *time.Time) {
	t.Helper()
	m, ok := NewMemoryManager(ttl, max).(*memoryManager)
	if !ok {
		t.Fatal("NewMemoryManager did not return *memoryManager")
	}
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	return m, &now
}

func TestMemoryGetAbsentReturnsIdle(t *testing.T) {
	m, _ := newClockedManager(t, 0, 0)
	ctx := context.Background()

	s, err := m.Get(ctx, 42)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if s.TelegramID != 42 || s.Stage != StageIdle {
		t.Fatalf("session = %+v, want idle for 42", s)
	}
	if m.InProgress(ctx, 42) {
		t.Error("InProgress = true for absent session")
	}
}

func TestMemoryDraftFlow(t *testing.T) {
	m, _ := newClockedManager(t, 0, 0)
	ctx := context.Background()

	if err := m.SetDraft(ctx, 42, 3); err != nil {
		t.Fatalf("SetDraft: %v", err)
	}
	s, _ := m.Get(ctx, 42)
	if s.Stage != StageAwaitSlots || s.PlanID != 3 || s.Slots != 0 {
		t.Fatalf("after SetDraft: %+v", s)
	}
	if !m.InProgress(ctx, 42) {
		t.Error("InProgress = false with draft in progress")
	}

	if err := m.SetSlots(ctx, 42, 16); err != nil {
		t.Fatalf("SetSlots: %v", err)
	}
	s, _ = m.Get(ctx, 42)
	if s.Slots != 16 || s.PlanID != 3 {
		t.Fatalf("after SetSlots: %+v", s)
	}

	if err := m.Reset(ctx, 42); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	s, _ = m.Get(ctx, 42)
	if s.Stage != StageIdle || s.PlanID != 0 || s.Slots != 0 {
		t.Fatalf("after Reset: %+v", s)
	}
	if m.InProgress(ctx, 42) {
		t.Error("InProgress = true after Reset")
	}
}

func TestMemoryTTLExpiry(t *testing.T) {
	m, now := newClockedManager(t, 10*time.Minute, 0)
	ctx := context.Background()

	if err := m.SetStage(ctx, 42, StageAwaitTopUpAmount); err != nil {
		t.Fatalf("SetStage: %v", err)
	}
	*now = now.Add(11 * time.Minute)

	s, _ := m.Get(ctx, 42)
	if s.Stage != StageIdle {
		t.Fatalf("stage = %q, want idle after TTL", s.Stage)
	}
	if m.InProgress(ctx, 42) {
		t.Error("InProgress = true after TTL")
	}
	if n, _ := m.Len(ctx); n != 0 {
		t.Errorf("Len = %d, want 0", n)
	}
}

func TestMemoryCapacityEvictsOldest(t *testing.T) {
	m, now := newClockedManager(t, time.Hour, 2)
	ctx := context.Background()

	if err := m.Put(ctx, Session{TelegramID: 1, Stage: StageAwaitSlots}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	*now = now.Add(time.Minute)
	if err := m.Put(ctx, Session{TelegramID: 2, Stage: StageAwaitSlots}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	*now = now.Add(time.Minute)
	if err := m.Put(ctx, Session{TelegramID: 3, Stage: StageAwaitSlots}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	if n, _ := m.Len(ctx); n != 2 {
		t.Fatalf("Len = %d, want 2", n)
	}
	if m.InProgress(ctx, 1) {
		t.Error("oldest session survived capacity eviction")
	}
	if !m.InProgress(ctx, 2) || !m.InProgress(ctx, 3) {
		t.Error("recent sessions evicted")
	}
}

func TestMemoryPutOverwriteKeepsCapacity(t *testing.T) {
	m, _ := newClockedManager(t, time.Hour, 2)
	ctx := context.Background()

	_ = m.Put(ctx, Session{TelegramID: 1, Stage: StageAwaitSlots})
	_ = m.Put(ctx, Session{TelegramID: 2, Stage: StageAwaitSlots})
	// Overwriting an existing id must not evict anyone.
	_ = m.Put(ctx, Session{TelegramID: 2, Stage: StageAwaitTopUpAmount})

	if n, _ := m.Len(ctx); n != 2 {
		t.Fatalf("Len = %d, want 2", n)
	}
	s, _ := m.Get(ctx, 2)
	if s.Stage != StageAwaitTopUpAmount {
		t.Fatalf("stage = %q, want overwritten value", s.Stage)
	}
}
