package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrCardPromptEmpty  = errors.New("card prompt cannot be empty")
	ErrCardAnswerEmpty  = errors.New("card answer cannot be empty")
	ErrCardPromptLong   = errors.New("card prompt is too long (max 2000 chars)")
	ErrCardAnswerLong   = errors.New("card answer is too long (max 5000 chars)")
	ErrCardInvalidDeck  = errors.New("invalid deck id")
	ErrInvalidSchedule  = errors.New("invalid schedule state")
)

const (
	StatusNew      = "new"
	StatusLearning = "learning"
	StatusReview   = "review"
	StatusMastered = "mastered"

	InitialEaseFactor = 2.5
	MinEaseFactor     = 1.3

	MaxPromptLen = 2000
	MaxAnswerLen = 5000
)

// ScheduleState is the spaced-repetition memory state of a card.
// It is mutated exclusively by the schedule engine, via the review service.
type ScheduleState struct {
	EaseFactor   float64   `json:"ease_factor" db:"ease_factor"`
	IntervalDays int       `json:"interval_days" db:"interval_days"`
	Repetitions  int       `json:"repetitions" db:"repetitions"`
	NextReviewAt time.Time `json:"next_review_at" db:"next_review_at"`
	Status       string    `json:"status" db:"status"`
}

// Validate checks the structural invariants of a schedule state.
func (s ScheduleState) Validate() error {
	if s.EaseFactor < MinEaseFactor {
		return ErrInvalidSchedule
	}
	if s.IntervalDays < 0 || s.Repetitions < 0 {
		return ErrInvalidSchedule
	}
	if s.Repetitions == 0 && s.Status != StatusNew && s.Status != StatusLearning {
		return ErrInvalidSchedule
	}
	switch s.Status {
	case StatusNew, StatusLearning, StatusReview, StatusMastered:
		return nil
	default:
		return ErrInvalidSchedule
	}
}

type Card struct {
	ID     string `json:"id" db:"id"`
	DeckID string `json:"deck_id" db:"deck_id"`
	Prompt string `json:"prompt" db:"prompt"`
	Answer string `json:"answer" db:"answer"`

	ScheduleState

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func validateContent(prompt, answer string) (string, string, error) {
	trimmedPrompt := strings.TrimSpace(prompt)
	trimmedAnswer := strings.TrimSpace(answer)

	if trimmedPrompt == "" {
		return "", "", ErrCardPromptEmpty
	}
	if trimmedAnswer == "" {
		return "", "", ErrCardAnswerEmpty
	}
	if len(trimmedPrompt) > MaxPromptLen {
		return "", "", ErrCardPromptLong
	}
	if len(trimmedAnswer) > MaxAnswerLen {
		return "", "", ErrCardAnswerLong
	}

	return trimmedPrompt, trimmedAnswer, nil
}

// NewCard creates a card in its initial, never-reviewed schedule state.
func NewCard(deckID, prompt, answer string, now time.Time) (*Card, error) {
	if strings.TrimSpace(deckID) == "" {
		return nil, ErrCardInvalidDeck
	}

	cleanPrompt, cleanAnswer, err := validateContent(prompt, answer)
	if err != nil {
		return nil, err
	}

	now = now.UTC()

	return &Card{
		ID:     uuid.NewString(),
		DeckID: deckID,
		Prompt: cleanPrompt,
		Answer: cleanAnswer,
		ScheduleState: ScheduleState{
			EaseFactor:   InitialEaseFactor,
			IntervalDays: 0,
			Repetitions:  0,
			NextReviewAt: now,
			Status:       StatusNew,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// EditContent replaces the prompt and answer. Schedule state is untouched:
// rewording a card does not change what the learner knows about it.
func (c *Card) EditContent(prompt, answer string, now time.Time) error {
	cleanPrompt, cleanAnswer, err := validateContent(prompt, answer)
	if err != nil {
		return err
	}

	c.Prompt = cleanPrompt
	c.Answer = cleanAnswer
	c.UpdatedAt = now.UTC()
	return nil
}

// ApplySchedule installs a new schedule state produced by the engine.
func (c *Card) ApplySchedule(state ScheduleState, now time.Time) error {
	if err := state.Validate(); err != nil {
		return err
	}

	c.ScheduleState = state
	c.UpdatedAt = now.UTC()
	return nil
}

// IsDue reports whether the card is scheduled for review at the given time.
// New cards are not due: they enter a session through the new-card budget.
func (c *Card) IsDue(now time.Time) bool {
	return c.Status != StatusNew && !c.NextReviewAt.After(now)
}
