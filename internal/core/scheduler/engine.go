// Package scheduler implements the SM-2 family spaced-repetition algorithm.
// The engine is a pure function over schedule states: no I/O, no shared
// state, and deterministic for a given clock value.
package scheduler

import (
	"math"
	"time"

	"github.com/quizlight/recall-sync-engine/internal/core/domain"
)

// Rating is the learner's self-reported recall quality.
type Rating int

const (
	Again Rating = 1
	Hard  Rating = 2
	Good  Rating = 3
	Easy  Rating = 4
)

func (r Rating) Valid() bool {
	return r >= Again && r <= Easy
}

// Correct reports whether the rating counts as a successful recall.
// Anything below Good is a lapse and resets repetition progress.
func (r Rating) Correct() bool {
	return r >= Good
}

// Config tunes the engine. Zero values are replaced by the defaults.
type Config struct {
	// MasteryIntervalDays is the minimum interval for a card to count as
	// mastered.
	MasteryIntervalDays int
	// MasteryRepetitions is the minimum successful-review streak for
	// mastery.
	MasteryRepetitions int
	// MaxIntervalDays caps interval growth so a card is never scheduled
	// absurdly far out.
	MaxIntervalDays int
}

func DefaultConfig() Config {
	return Config{
		MasteryIntervalDays: 21,
		MasteryRepetitions:  5,
		MaxIntervalDays:     365,
	}
}

type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.MasteryIntervalDays <= 0 {
		cfg.MasteryIntervalDays = def.MasteryIntervalDays
	}
	if cfg.MasteryRepetitions <= 0 {
		cfg.MasteryRepetitions = def.MasteryRepetitions
	}
	if cfg.MaxIntervalDays <= 0 {
		cfg.MaxIntervalDays = def.MaxIntervalDays
	}
	return &Engine{cfg: cfg}
}

// Apply computes the next schedule state for a card given a rating. It is
// total: every input produces a valid state, there are no failure modes.
func (e *Engine) Apply(state domain.ScheduleState, rating Rating, now time.Time) domain.ScheduleState {
	now = now.UTC()

	ease := state.EaseFactor
	if ease < domain.MinEaseFactor {
		// Never-reviewed cards carry the initial ease; anything below the
		// floor is a corrupt record and is healed here.
		ease = domain.InitialEaseFactor
	}

	if !rating.Correct() {
		return domain.ScheduleState{
			EaseFactor:   math.Max(domain.MinEaseFactor, ease-0.2),
			IntervalDays: 1,
			Repetitions:  0,
			NextReviewAt: now.AddDate(0, 0, 1),
			Status:       domain.StatusLearning,
		}
	}

	reps := state.Repetitions + 1

	q := float64(4 - rating)
	ease = math.Max(domain.MinEaseFactor, ease+(0.1-q*(0.08+q*0.02)))

	var interval int
	switch reps {
	case 1:
		interval = 1
	case 2:
		interval = 6
	default:
		interval = int(math.Round(float64(state.IntervalDays) * ease))
	}
	if interval > e.cfg.MaxIntervalDays {
		interval = e.cfg.MaxIntervalDays
	}

	status := domain.StatusReview
	if reps >= e.cfg.MasteryRepetitions && interval >= e.cfg.MasteryIntervalDays {
		status = domain.StatusMastered
	}

	return domain.ScheduleState{
		EaseFactor:   ease,
		IntervalDays: interval,
		Repetitions:  reps,
		NextReviewAt: now.AddDate(0, 0, interval),
		Status:       status,
	}
}
