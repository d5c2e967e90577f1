package scheduler_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizlight/recall-sync-engine/internal/core/domain"
	"github.com/quizlight/recall-sync-engine/internal/core/scheduler"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func TestEngine_Apply_CorrectRecall(t *testing.T) {
	engine := scheduler.NewEngine(scheduler.DefaultConfig())

	t.Run("Success: Good on a mature card grows the interval by the ease factor", func(t *testing.T) {
		state := domain.ScheduleState{
			EaseFactor:   2.5,
			IntervalDays: 6,
			Repetitions:  2,
			Status:       domain.StatusReview,
		}

		next := engine.Apply(state, scheduler.Good, testNow)

		assert.InDelta(t, 2.5, next.EaseFactor, 0.0001)
		assert.Equal(t, 15, next.IntervalDays)
		assert.Equal(t, 3, next.Repetitions)
		assert.Equal(t, domain.StatusReview, next.Status)
		assert.Equal(t, testNow.AddDate(0, 0, 15), next.NextReviewAt)
	})

	t.Run("Success: first correct review of a new card schedules one day out", func(t *testing.T) {
		state := domain.ScheduleState{
			EaseFactor:   domain.InitialEaseFactor,
			IntervalDays: 0,
			Repetitions:  0,
			Status:       domain.StatusNew,
		}

		next := engine.Apply(state, scheduler.Good, testNow)

		assert.Equal(t, 1, next.Repetitions)
		assert.Equal(t, 1, next.IntervalDays)
		assert.Equal(t, domain.StatusReview, next.Status)
	})

	t.Run("Success: second correct review schedules six days out", func(t *testing.T) {
		state := domain.ScheduleState{
			EaseFactor:   domain.InitialEaseFactor,
			IntervalDays: 1,
			Repetitions:  1,
			Status:       domain.StatusReview,
		}

		next := engine.Apply(state, scheduler.Easy, testNow)

		assert.Equal(t, 2, next.Repetitions)
		assert.Equal(t, 6, next.IntervalDays)
	})

	t.Run("Success: Easy raises the ease factor", func(t *testing.T) {
		state := domain.ScheduleState{
			EaseFactor:   2.5,
			IntervalDays: 6,
			Repetitions:  2,
			Status:       domain.StatusReview,
		}

		easy := engine.Apply(state, scheduler.Easy, testNow)

		assert.InDelta(t, 2.6, easy.EaseFactor, 0.0001)
	})

	t.Run("Success: long streak with a long interval reaches mastered", func(t *testing.T) {
		state := domain.ScheduleState{
			EaseFactor:   2.5,
			IntervalDays: 15,
			Repetitions:  4,
			Status:       domain.StatusReview,
		}

		next := engine.Apply(state, scheduler.Good, testNow)

		require.GreaterOrEqual(t, next.Repetitions, 5)
		require.GreaterOrEqual(t, next.IntervalDays, 21)
		assert.Equal(t, domain.StatusMastered, next.Status)
	})

	t.Run("Success: interval growth is capped at the configured maximum", func(t *testing.T) {
		capped := scheduler.NewEngine(scheduler.Config{MaxIntervalDays: 30})

		state := domain.ScheduleState{
			EaseFactor:   2.5,
			IntervalDays: 25,
			Repetitions:  6,
			Status:       domain.StatusReview,
		}

		next := capped.Apply(state, scheduler.Good, testNow)

		assert.Equal(t, 30, next.IntervalDays)
	})
}

func TestEngine_Apply_Lapse(t *testing.T) {
	engine := scheduler.NewEngine(scheduler.DefaultConfig())

	t.Run("Success: Again resets progress and lowers the ease factor", func(t *testing.T) {
		state := domain.ScheduleState{
			EaseFactor:   2.0,
			IntervalDays: 30,
			Repetitions:  5,
			Status:       domain.StatusMastered,
		}

		next := engine.Apply(state, scheduler.Again, testNow)

		assert.InDelta(t, 1.8, next.EaseFactor, 0.0001)
		assert.Equal(t, 1, next.IntervalDays)
		assert.Equal(t, 0, next.Repetitions)
		assert.Equal(t, domain.StatusLearning, next.Status)
		assert.Equal(t, testNow.AddDate(0, 0, 1), next.NextReviewAt)
	})

	t.Run("Success: Hard counts as a lapse", func(t *testing.T) {
		state := domain.ScheduleState{
			EaseFactor:   2.5,
			IntervalDays: 6,
			Repetitions:  2,
			Status:       domain.StatusReview,
		}

		next := engine.Apply(state, scheduler.Hard, testNow)

		assert.InDelta(t, 2.3, next.EaseFactor, 0.0001)
		assert.Equal(t, 1, next.IntervalDays)
		assert.Equal(t, 0, next.Repetitions)
		assert.Equal(t, domain.StatusLearning, next.Status)
	})

	t.Run("Success: ease factor never drops below the floor", func(t *testing.T) {
		state := domain.ScheduleState{
			EaseFactor:   1.35,
			IntervalDays: 4,
			Repetitions:  2,
			Status:       domain.StatusReview,
		}

		next := engine.Apply(state, scheduler.Again, testNow)

		assert.InDelta(t, domain.MinEaseFactor, next.EaseFactor, 0.0001)
	})
}

func TestEngine_Apply_Properties(t *testing.T) {
	engine := scheduler.NewEngine(scheduler.DefaultConfig())

	states := []domain.ScheduleState{
		{EaseFactor: 2.5, IntervalDays: 0, Repetitions: 0, Status: domain.StatusNew},
		{EaseFactor: 1.3, IntervalDays: 1, Repetitions: 0, Status: domain.StatusLearning},
		{EaseFactor: 1.7, IntervalDays: 6, Repetitions: 2, Status: domain.StatusReview},
		{EaseFactor: 2.2, IntervalDays: 40, Repetitions: 7, Status: domain.StatusMastered},
		{EaseFactor: 3.0, IntervalDays: 180, Repetitions: 12, Status: domain.StatusMastered},
	}

	for _, state := range states {
		for rating := scheduler.Again; rating <= scheduler.Easy; rating++ {
			next := engine.Apply(state, rating, testNow)

			require.NoError(t, next.Validate(), "state %+v rating %d", state, rating)
			assert.GreaterOrEqual(t, next.EaseFactor, domain.MinEaseFactor)

			if rating.Correct() {
				assert.Equal(t, state.Repetitions+1, next.Repetitions)
			} else {
				assert.Equal(t, 0, next.Repetitions)
				assert.Equal(t, 1, next.IntervalDays)
				assert.Equal(t, domain.StatusLearning, next.Status)
			}
		}
	}
}

func TestEngine_Apply_Deterministic(t *testing.T) {
	engine := scheduler.NewEngine(scheduler.DefaultConfig())

	state := domain.ScheduleState{
		EaseFactor:   2.5,
		IntervalDays: 6,
		Repetitions:  2,
		Status:       domain.StatusReview,
	}

	first := engine.Apply(state, scheduler.Good, testNow)
	second := engine.Apply(state, scheduler.Good, testNow)

	assert.Equal(t, first, second)
}
