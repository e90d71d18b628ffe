package session

import (
	"context"
	"sync"
	"time"
)

const (
	// DefaultTTL is how long an untouched session survives.
	DefaultTTL = 30 * time.Minute
	// DefaultMaxSessions caps the in-memory session map.
	DefaultMaxSessions = 10000
)

type memoryEntry struct {
	sess    Session
	touched time.Time
}

type memoryManager struct {
	mu      sync.Mutex
	entries map[int64]*memoryEntry
	ttl     time.Duration
	max     int
	now     func() time.Time
}

// NewMemoryManager constructs an in-memory Manager bounded by TTL and capacity.
// Zero values select DefaultTTL and DefaultMaxSessions.
func NewMemoryManager(ttl time.Duration, maxSessions int) Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	return &memoryManager{
		entries: make(map[int64]*memoryEntry),
		ttl:     ttl,
		max:     maxSessions,
		now:     time.Now,
	}
}

// evictLocked drops expired entries and, if still at capacity, the least
// recently touched one. Callers must hold mu.
func (m *memoryManager) evictLocked(now time.Time) {
	for id, e := range m.entries {
		if now.Sub(e.touched) > m.ttl {
			delete(m.entries, id)
		}
	}
	for len(m.entries) >= m.max {
		var (
			oldestID int64
			oldestAt time.Time
			found    bool
		)
		for id, e := range m.entries {
			if !found || e.touched.Before(oldestAt) {
				oldestID = id
				oldestAt = e.touched
				found = true
			}
		}
		if !found {
			return
		}
		delete(m.entries, oldestID)
	}
}

func (m *memoryManager) getLocked(tgID int64, now time.Time) *memoryEntry {
	if e, ok := m.entries[tgID]; ok && now.Sub(e.touched) <= m.ttl {
		return e
	}
	return nil
}

func (m *memoryManager) Get(_ context.Context, tgID int64) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e := m.getLocked(tgID, m.now()); e != nil {
		return e.sess, nil
	}
	return Session{TelegramID: tgID, Stage: StageIdle}, nil
}

func (m *memoryManager) Put(_ context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if _, ok := m.entries[s.TelegramID]; !ok {
		m.evictLocked(now)
	}
	m.entries[s.TelegramID] = &memoryEntry{sess: s, touched: now}
	return nil
}

func (m *memoryManager) update(tgID int64, fn func(*Session)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	e := m.getLocked(tgID, now)
	if e == nil {
		m.evictLocked(now)
		e = &memoryEntry{sess: Session{TelegramID: tgID, Stage: StageIdle}}
		m.entries[tgID] = e
	}
	fn(&e.sess)
	e.touched = now
	return nil
}

func (m *memoryManager) SetStage(_ context.Context, tgID int64, st Stage) error {
	return m.update(tgID, func(s *Session) { s.Stage = st })
}

func (m *memoryManager) SetDraft(_ context.Context, tgID int64, planID int64) error {
	return m.update(tgID, func(s *Session) {
		s.PlanID = planID
		s.Slots = 0
		s.Stage = StageAwaitSlots
	})
}

func (m *memoryManager) SetSlots(_ context.Context, tgID int64, slots int) error {
	return m.update(tgID, func(s *Session) { s.Slots = slots })
}

func (m *memoryManager) Reset(_ context.Context, tgID int64) error {
	return m.update(tgID, func(s *Session) {
		s.Stage = StageIdle
		s.PlanID = 0
		s.Slots = 0
	})
}

func (m *memoryManager) InProgress(_ context.Context, tgID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.getLocked(tgID, m.now())
	return e != nil && e.sess.Stage != StageIdle
}

func (m *memoryManager) Len(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	n := 0
	for _, e := range m.entries {
		if now.Sub(e.touched) <= m.ttl {
			n++
		}
	}
	return n, nil
}
