// Package session keeps per-user conversation state for the bot.
//
// A session tracks which stage of a dialog the user is in plus the purchase
// draft collected so far. Two backends exist: an in-memory map bounded by TTL
// and capacity, and a Redis store that survives restarts.
package session

import "context"

// Stage identifies a step of the conversation state machine.
type Stage string

const (
	// StageIdle means no dialog is in progress; free text renders the menu.
	StageIdle Stage = "idle"
	// StageAwaitSlots means the bot is waiting for a slot count for the drafted plan.
	StageAwaitSlots Stage = "await_slots"
	// StageAwaitTopUpAmount means the bot is waiting for a top-up amount.
	StageAwaitTopUpAmount Stage = "await_topup_amount"
)

// Session stores conversation stage and the purchase draft for one user.
type Session struct {
	Name       string `json:"name,omitempty"`
	TelegramID int64  `json:"telegram_id"`
	Stage      Stage  `json:"stage"`
	PlanID     int64  `json:"plan_id,omitempty"`
	Slots      int    `json:"slots,omitempty"`
}

// Manager orchestrates user sessions and stage transitions.
type Manager interface {
	// Get returns the stored session or a fresh idle one when absent.
	Get(ctx context.Context, tgID int64) (Session, error)
	// Put stores the session as-is.
	Put(ctx context.Context, s Session) error
	// SetStage updates only the stage, keeping the draft.
	SetStage(ctx context.Context, tgID int64, st Stage) error
	// SetDraft records the chosen plan and moves the user to StageAwaitSlots.
	SetDraft(ctx context.Context, tgID int64, planID int64) error
	// SetSlots records the validated slot count for the drafted plan.
	SetSlots(ctx context.Context, tgID int64, slots int) error
	// Reset clears the draft and returns the user to StageIdle.
	Reset(ctx context.Context, tgID int64) error
	// InProgress reports whether the user has an active non-idle stage.
	InProgress(ctx context.Context, tgID int64) bool
	// Len returns the number of live sessions.
	Len(ctx context.Context) (int, error)
}
