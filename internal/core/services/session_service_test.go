package services_test

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizlight/recall-sync-engine/internal/adapters/repository"
	"github.com/quizlight/recall-sync-engine/internal/core/domain"
	"github.com/quizlight/recall-sync-engine/internal/core/services"
)

type sessionFixture struct {
	cards   *repository.InMemoryCardRepository
	decks   *repository.InMemoryDeckRepository
	clock   *testClock
	service *services.SessionService
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()

	clock := &testClock{t: baseTime}
	cards := repository.NewInMemoryCardRepository()
	decks := repository.NewInMemoryDeckRepository()
	suppression := services.NewSuppressionService(decks, clock.Now)

	return &sessionFixture{
		cards:   cards,
		decks:   decks,
		clock:   clock,
		service: services.NewSessionService(cards, suppression, clock.Now, rand.New(rand.NewSource(1))),
	}
}

// seedCard inserts a card with a controlled schedule. createdOffset spreads
// creation times so ordering assertions are deterministic.
func (f *sessionFixture) seedCard(t *testing.T, deckID, status string, due time.Time, createdOffset time.Duration) *domain.Card {
	t.Helper()

	card, err := domain.NewCard(deckID, fmt.Sprintf("prompt %s", uniqueSuffix()), "answer", baseTime.Add(createdOffset))
	require.NoError(t, err)

	card.Status = status
	card.NextReviewAt = due
	if status != domain.StatusNew {
		card.Repetitions = 1
	}

	require.NoError(t, f.cards.Create(context.Background(), card))
	return card
}

var suffixCounter int

func uniqueSuffix() string {
	suffixCounter++
	return fmt.Sprintf("%d", suffixCounter)
}

func TestSessionService_Normal(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: due before new, most overdue first, caps respected", func(t *testing.T) {
		f := newSessionFixture(t)
		deck := seedDeck(t, f.decks, "Spanish")

		late := f.seedCard(t, deck.ID, domain.StatusReview, baseTime.Add(-72*time.Hour), time.Minute)
		later := f.seedCard(t, deck.ID, domain.StatusReview, baseTime.Add(-24*time.Hour), 2*time.Minute)
		f.seedCard(t, deck.ID, domain.StatusReview, baseTime.Add(48*time.Hour), 3*time.Minute) // not due
		first := f.seedCard(t, deck.ID, domain.StatusNew, baseTime, 4*time.Minute)
		second := f.seedCard(t, deck.ID, domain.StatusNew, baseTime, 5*time.Minute)

		selected, err := f.service.Select(ctx, domain.ModeNormal, services.SessionCaps{MaxDue: 10, MaxNew: 10})
		require.NoError(t, err)

		require.Len(t, selected, 4)
		assert.Equal(t, late.ID, selected[0].ID)
		assert.Equal(t, later.ID, selected[1].ID)
		assert.Equal(t, first.ID, selected[2].ID)
		assert.Equal(t, second.ID, selected[3].ID)
	})

	t.Run("Success: never more than maxDue due nor maxNew new cards", func(t *testing.T) {
		f := newSessionFixture(t)
		deck := seedDeck(t, f.decks, "Kanji")

		for i := 0; i < 8; i++ {
			f.seedCard(t, deck.ID, domain.StatusReview, baseTime.Add(-time.Hour), time.Duration(i)*time.Minute)
		}
		for i := 0; i < 8; i++ {
			f.seedCard(t, deck.ID, domain.StatusNew, baseTime, time.Duration(100+i)*time.Minute)
		}

		selected, err := f.service.Select(ctx, domain.ModeNormal, services.SessionCaps{MaxDue: 3, MaxNew: 2})
		require.NoError(t, err)

		require.Len(t, selected, 5)
		var due, fresh int
		for _, card := range selected {
			if card.Status == domain.StatusNew {
				fresh++
			} else {
				due++
			}
		}
		assert.Equal(t, 3, due)
		assert.Equal(t, 2, fresh)
	})

	t.Run("Success: permanently suppressed deck contributes nothing regardless of caps", func(t *testing.T) {
		f := newSessionFixture(t)
		active := seedDeck(t, f.decks, "Active")
		muted := seedDeck(t, f.decks, "Muted")

		kept := f.seedCard(t, active.ID, domain.StatusReview, baseTime.Add(-time.Hour), time.Minute)
		f.seedCard(t, muted.ID, domain.StatusReview, baseTime.Add(-time.Hour), 2*time.Minute)
		f.seedCard(t, muted.ID, domain.StatusNew, baseTime, 3*time.Minute)

		suppression := services.NewSuppressionService(f.decks, f.clock.Now)
		require.NoError(t, suppression.SuppressPermanently(ctx, muted.ID))

		for _, mode := range []domain.SessionMode{domain.ModeNormal, domain.ModePractice} {
			selected, err := f.service.Select(ctx, mode, services.SessionCaps{MaxDue: 100, MaxNew: 100, PracticeSize: 100})
			require.NoError(t, err)
			require.Len(t, selected, 1, "mode %s", mode)
			assert.Equal(t, kept.ID, selected[0].ID)
		}
	})

	t.Run("Success: due cards reappear once a temporary window lapses", func(t *testing.T) {
		f := newSessionFixture(t)
		deck := seedDeck(t, f.decks, "Chemistry")
		f.seedCard(t, deck.ID, domain.StatusReview, baseTime.Add(-time.Hour), time.Minute)

		suppression := services.NewSuppressionService(f.decks, f.clock.Now)
		require.NoError(t, suppression.SuppressUntil(ctx, deck.ID, baseTime.Add(24*time.Hour)))

		selected, err := f.service.Select(ctx, domain.ModeNormal, services.SessionCaps{MaxDue: 10, MaxNew: 10})
		require.NoError(t, err)
		assert.Empty(t, selected)

		f.clock.Advance(25 * time.Hour)

		selected, err = f.service.Select(ctx, domain.ModeNormal, services.SessionCaps{MaxDue: 10, MaxNew: 10})
		require.NoError(t, err)
		assert.Len(t, selected, 1)
	})
}

func TestSessionService_Practice(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: sample ignores daily caps but honors its own size", func(t *testing.T) {
		f := newSessionFixture(t)
		deck := seedDeck(t, f.decks, "Spanish")

		for i := 0; i < 6; i++ {
			f.seedCard(t, deck.ID, domain.StatusReview, baseTime.Add(-time.Hour), time.Duration(i)*time.Minute)
		}
		for i := 0; i < 6; i++ {
			f.seedCard(t, deck.ID, domain.StatusNew, baseTime, time.Duration(100+i)*time.Minute)
		}

		selected, err := f.service.Select(ctx, domain.ModePractice, services.SessionCaps{MaxDue: 1, MaxNew: 1, PracticeSize: 8})
		require.NoError(t, err)
		assert.Len(t, selected, 8)
	})
}

func TestSessionService_Cram(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: ignores suppression, status and due dates", func(t *testing.T) {
		f := newSessionFixture(t)
		deck := seedDeck(t, f.decks, "Muted")

		f.seedCard(t, deck.ID, domain.StatusReview, baseTime.Add(72*time.Hour), time.Minute) // not due
		f.seedCard(t, deck.ID, domain.StatusNew, baseTime, 2*time.Minute)
		f.seedCard(t, deck.ID, domain.StatusMastered, baseTime.Add(-time.Hour), 3*time.Minute)

		suppression := services.NewSuppressionService(f.decks, f.clock.Now)
		require.NoError(t, suppression.SuppressPermanently(ctx, deck.ID))

		selected, err := f.service.Select(ctx, domain.ModeCram, services.SessionCaps{MaxDue: 1, MaxNew: 1})
		require.NoError(t, err)
		assert.Len(t, selected, 3)
	})
}

func TestSessionService_Forced(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: forced selection relaxes caps, caller opt-in only", func(t *testing.T) {
		f := newSessionFixture(t)
		deck := seedDeck(t, f.decks, "Spanish")

		for i := 0; i < 5; i++ {
			f.seedCard(t, deck.ID, domain.StatusReview, baseTime.Add(-time.Hour), time.Duration(i)*time.Minute)
		}

		// A zero-cap normal session is empty; Select never falls back on
		// its own.
		selected, err := f.service.Select(ctx, domain.ModeNormal, services.SessionCaps{})
		require.NoError(t, err)
		assert.Empty(t, selected)

		forced, err := f.service.SelectForced(ctx)
		require.NoError(t, err)
		assert.Len(t, forced, 5)
	})
}
