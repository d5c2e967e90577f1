package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizlight/recall-sync-engine/internal/adapters/repository"
	"github.com/quizlight/recall-sync-engine/internal/core/domain"
	"github.com/quizlight/recall-sync-engine/internal/core/services"
)

type deckFixture struct {
	decks   *repository.InMemoryDeckRepository
	cards   *repository.InMemoryCardRepository
	events  *repository.InMemoryReviewEventRepository
	queue   *capturingQueue
	service *services.DeckService
}

func newDeckFixture(t *testing.T) *deckFixture {
	t.Helper()

	f := &deckFixture{
		decks:  repository.NewInMemoryDeckRepository(),
		cards:  repository.NewInMemoryCardRepository(),
		events: repository.NewInMemoryReviewEventRepository(),
		queue:  &capturingQueue{},
	}
	clock := &testClock{t: baseTime}
	f.service = services.NewDeckService(f.decks, f.cards, f.events, f.queue, clock.Now)
	return f
}

func TestDeckService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: persists the deck and enqueues a create", func(t *testing.T) {
		f := newDeckFixture(t)

		deck, err := f.service.Create(ctx, "Spanish")
		require.NoError(t, err)
		assert.NotEmpty(t, deck.ID)
		assert.Equal(t, domain.SuppressionActive, deck.Suppression)

		stored, err := f.decks.GetByID(ctx, deck.ID)
		require.NoError(t, err)
		assert.Equal(t, "Spanish", stored.Name)

		require.Len(t, f.queue.ops, 1)
		assert.Equal(t, domain.OpCreate, f.queue.ops[0].Kind)
		assert.Equal(t, domain.EntityDeck, f.queue.ops[0].EntityType)
	})

	t.Run("Error: empty name", func(t *testing.T) {
		f := newDeckFixture(t)

		_, err := f.service.Create(ctx, "  ")
		assert.ErrorIs(t, err, domain.ErrDeckNameEmpty)
		assert.Empty(t, f.queue.ops)
	})
}

func TestDeckService_Rename(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: updates the name and enqueues an update", func(t *testing.T) {
		f := newDeckFixture(t)
		deck := seedDeck(t, f.decks, "Spansh")

		renamed, err := f.service.Rename(ctx, deck.ID, "Spanish")
		require.NoError(t, err)
		assert.Equal(t, "Spanish", renamed.Name)

		require.Len(t, f.queue.ops, 1)
		assert.Equal(t, domain.OpUpdate, f.queue.ops[0].Kind)
	})

	t.Run("Error: unknown deck", func(t *testing.T) {
		f := newDeckFixture(t)

		_, err := f.service.Rename(ctx, "missing", "Spanish")
		assert.ErrorIs(t, err, domain.ErrDeckNotFound)
	})
}

func TestDeckService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: cascades to cards and history, enqueues one deck delete", func(t *testing.T) {
		f := newDeckFixture(t)
		deck := seedDeck(t, f.decks, "Spanish")

		card, err := domain.NewCard(deck.ID, "la manzana", "the apple", baseTime)
		require.NoError(t, err)
		require.NoError(t, f.cards.Create(ctx, card))

		event := domain.NewReviewEvent(card.ID, 3, domain.ModeNormal, card.ScheduleState, card.ScheduleState, baseTime.Add(time.Hour))
		require.NoError(t, f.events.Append(ctx, event))

		require.NoError(t, f.service.Delete(ctx, deck.ID))

		_, err = f.decks.GetByID(ctx, deck.ID)
		assert.ErrorIs(t, err, domain.ErrDeckNotFound)
		_, err = f.cards.GetByID(ctx, card.ID)
		assert.ErrorIs(t, err, domain.ErrCardNotFound)

		history, err := f.events.ListByCardID(ctx, card.ID)
		require.NoError(t, err)
		assert.Empty(t, history)

		require.Len(t, f.queue.ops, 1)
		assert.Equal(t, domain.OpDelete, f.queue.ops[0].Kind)
		assert.Equal(t, domain.EntityDeck, f.queue.ops[0].EntityType)
		assert.Equal(t, deck.ID, f.queue.ops[0].EntityID)
	})

	t.Run("Error: unknown deck", func(t *testing.T) {
		f := newDeckFixture(t)

		err := f.service.Delete(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrDeckNotFound)
		assert.Empty(t, f.queue.ops)
	})
}

func TestDeckService_List(t *testing.T) {
	t.Run("Success: returns every deck", func(t *testing.T) {
		f := newDeckFixture(t)
		seedDeck(t, f.decks, "Spanish")
		seedDeck(t, f.decks, "Kanji")

		decks, err := f.service.List(context.Background())
		require.NoError(t, err)
		assert.Len(t, decks, 2)
	})
}
