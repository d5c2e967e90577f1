package domain

import (
	"time"

	"github.com/google/uuid"
)

// SessionMode distinguishes assessed reviews from rehearsal.
// Only ModeNormal feeds the schedule engine; practice and cram reviews are
// recorded as history but never overwrite a card's schedule state.
type SessionMode string

const (
	ModeNormal   SessionMode = "normal"
	ModePractice SessionMode = "practice"
	ModeCram     SessionMode = "cram"
)

func (m SessionMode) Valid() bool {
	switch m {
	case ModeNormal, ModePractice, ModeCram:
		return true
	}
	return false
}

// ReviewEvent is an append-only record of a single review. It is never
// updated or deleted, except when its card's deck is deleted as a whole.
type ReviewEvent struct {
	ID     string      `json:"id"`
	CardID string      `json:"card_id"`
	Rating int         `json:"rating"`
	Mode   SessionMode `json:"mode"`

	StateBefore ScheduleState `json:"state_before"`
	StateAfter  ScheduleState `json:"state_after"`

	ReviewedAt time.Time `json:"reviewed_at"`
}

func NewReviewEvent(cardID string, rating int, mode SessionMode, before, after ScheduleState, now time.Time) *ReviewEvent {
	return &ReviewEvent{
		ID:          uuid.NewString(),
		CardID:      cardID,
		Rating:      rating,
		Mode:        mode,
		StateBefore: before,
		StateAfter:  after,
		ReviewedAt:  now.UTC(),
	}
}
