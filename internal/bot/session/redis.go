package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "session:"

type redisManager struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisManager constructs a Manager backed by Redis. Sessions are stored as
// JSON under "session:<tgID>" with a TTL refreshed on every write.
func NewRedisManager(client *redis.Client, ttl time.Duration) Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &redisManager{client: client, ttl: ttl}
}

func redisKey(tgID int64) string {
	return redisKeyPrefix + strconv.FormatInt(tgID, 10)
}

func (m *redisManager) Get(ctx context.Context, tgID int64) (Session, error) {
	raw, err := m.client.Get(ctx, redisKey(tgID)).Result()
	if errors.Is(err, redis.Nil) {
		return Session{TelegramID: tgID, Stage: StageIdle}, nil
	}
	if err != nil {
		return Session{}, fmt.Errorf("session get: %w", err)
	}
	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		// Corrupt entry: treat as absent rather than wedging the dialog.
		return Session{TelegramID: tgID, Stage: StageIdle}, nil
	}
	return s, nil
}

func (m *redisManager) Put(ctx context.Context, s Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("session marshal: %w", err)
	}
	if err := m.client.Set(ctx, redisKey(s.TelegramID), raw, m.ttl).Err(); err != nil {
		return fmt.Errorf("session put: %w", err)
	}
	return nil
}

func (m *redisManager) update(ctx context.Context, tgID int64, fn func(*Session)) error {
	s, err := m.Get(ctx, tgID)
	if err != nil {
		return err
	}
	fn(&s)
	return m.Put(ctx, s)
}

func (m *redisManager) SetStage(ctx context.Context, tgID int64, st Stage) error {
	return m.update(ctx, tgID, func(s *Session) { s.Stage = st })
}

func (m *redisManager) SetDraft(ctx context.Context, tgID int64, planID int64) error {
	return m.update(ctx, tgID, func(s *Session) {
		s.PlanID = planID
		s.Slots = 0
		s.Stage = StageAwaitSlots
	})
}

func (m *redisManager) SetSlots(ctx context.Context, tgID int64, slots int) error {
	return m.update(ctx, tgID, func(s *Session) { s.Slots = slots })
}

func (m *redisManager) Reset(ctx context.Context, tgID int64) error {
	return m.update(ctx, tgID, func(s *Session) {
		s.Stage = StageIdle
		s.PlanID = 0
		s.Slots = 0
	})
}

func (m *redisManager) InProgress(ctx context.Context, tgID int64) bool {
	s, err := m.Get(ctx, tgID)
	if err != nil {
		return false
	}
	return s.Stage != StageIdle
}

func (m *redisManager) Len(ctx context.Context) (int, error) {
	var (
		cursor uint64
		total  int
	)
	for {
		keys, next, err := m.client.Scan(ctx, cursor, redisKeyPrefix+"*", 200).Result()
		if err != nil {
			return 0, fmt.Errorf("session scan: %w", err)
		}
		total += len(keys)
		if next == 0 {
			return total, nil
		}
		cursor = next
	}
}
