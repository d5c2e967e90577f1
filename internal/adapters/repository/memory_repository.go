package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/quizlight/recall-sync-engine/internal/core/domain"
)

// In-memory repositories backing tests and ephemeral runs. Values are
// copied on the way in and out so callers cannot mutate stored state
// without going through Update, matching how the sqlite adapters behave.

type InMemoryDeckRepository struct {
	store map[string]domain.Deck

	mu sync.RWMutex
}

func NewInMemoryDeckRepository() *InMemoryDeckRepository {
	return &InMemoryDeckRepository{
		store: make(map[string]domain.Deck),
	}
}

func (r *InMemoryDeckRepository) Create(ctx context.Context, deck *domain.Deck) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.store[deck.ID] = *deck
	return nil
}

func (r *InMemoryDeckRepository) GetByID(ctx context.Context, id string) (*domain.Deck, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	deck, ok := r.store[id]
	if !ok {
		return nil, domain.ErrDeckNotFound
	}
	return &deck, nil
}

func (r *InMemoryDeckRepository) List(ctx context.Context) ([]*domain.Deck, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var decks []*domain.Deck
	for _, d := range r.store {
		deck := d
		decks = append(decks, &deck)
	}

	sort.Slice(decks, func(i, j int) bool {
		return decks[i].CreatedAt.Before(decks[j].CreatedAt)
	})

	return decks, nil
}

func (r *InMemoryDeckRepository) Update(ctx context.Context, deck *domain.Deck) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[deck.ID]; !ok {
		return domain.ErrDeckNotFound
	}

	r.store[deck.ID] = *deck
	return nil
}

func (r *InMemoryDeckRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[id]; !ok {
		return domain.ErrDeckNotFound
	}

	delete(r.store, id)
	return nil
}

type InMemoryCardRepository struct {
	store map[string]domain.Card

	mu sync.RWMutex
}

func NewInMemoryCardRepository() *InMemoryCardRepository {
	return &InMemoryCardRepository{
		store: make(map[string]domain.Card),
	}
}

func (r *InMemoryCardRepository) Create(ctx context.Context, card *domain.Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.store[card.ID] = *card
	return nil
}

func (r *InMemoryCardRepository) GetByID(ctx context.Context, id string) (*domain.Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	card, ok := r.store[id]
	if !ok {
		return nil, domain.ErrCardNotFound
	}
	return &card, nil
}

func (r *InMemoryCardRepository) List(ctx context.Context) ([]*domain.Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(domain.Card) bool { return true }), nil
}

func (r *InMemoryCardRepository) ListByDeckID(ctx context.Context, deckID string) ([]*domain.Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(c domain.Card) bool { return c.DeckID == deckID }), nil
}

func (r *InMemoryCardRepository) Update(ctx context.Context, card *domain.Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[card.ID]; !ok {
		return domain.ErrCardNotFound
	}

	r.store[card.ID] = *card
	return nil
}

func (r *InMemoryCardRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[id]; !ok {
		return domain.ErrCardNotFound
	}

	delete(r.store, id)
	return nil
}

func (r *InMemoryCardRepository) DeleteByDeckID(ctx context.Context, deckID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, card := range r.store {
		if card.DeckID == deckID {
			delete(r.store, id)
		}
	}
	return nil
}

func (r *InMemoryCardRepository) collect(keep func(domain.Card) bool) []*domain.Card {
	var cards []*domain.Card
	for _, c := range r.store {
		if keep(c) {
			card := c
			cards = append(cards, &card)
		}
	}

	sort.Slice(cards, func(i, j int) bool {
		return cards[i].CreatedAt.Before(cards[j].CreatedAt)
	})

	return cards
}

type InMemoryReviewEventRepository struct {
	events []domain.ReviewEvent

	mu sync.RWMutex
}

func NewInMemoryReviewEventRepository() *InMemoryReviewEventRepository {
	return &InMemoryReviewEventRepository{}
}

func (r *InMemoryReviewEventRepository) Append(ctx context.Context, event *domain.ReviewEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, *event)
	return nil
}

func (r *InMemoryReviewEventRepository) ListByCardID(ctx context.Context, cardID string) ([]*domain.ReviewEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.ReviewEvent
	for _, e := range r.events {
		if e.CardID == cardID {
			event := e
			out = append(out, &event)
		}
	}
	return out, nil
}

func (r *InMemoryReviewEventRepository) DeleteByCardID(ctx context.Context, cardID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var kept []domain.ReviewEvent
	for _, e := range r.events {
		if e.CardID != cardID {
			kept = append(kept, e)
		}
	}
	r.events = kept
	return nil
}

type InMemorySyncOperationRepository struct {
	ops map[string]domain.SyncOperation

	mu sync.RWMutex
}

func NewInMemorySyncOperationRepository() *InMemorySyncOperationRepository {
	return &InMemorySyncOperationRepository{
		ops: make(map[string]domain.SyncOperation),
	}
}

func (r *InMemorySyncOperationRepository) Save(ctx context.Context, op *domain.SyncOperation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ops[op.Key] = *op
	return nil
}

func (r *InMemorySyncOperationRepository) Update(ctx context.Context, op *domain.SyncOperation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.ops[op.Key]; !ok {
		return domain.ErrOperationNotFound
	}

	r.ops[op.Key] = *op
	return nil
}

func (r *InMemorySyncOperationRepository) Delete(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.ops[key]; !ok {
		return domain.ErrOperationNotFound
	}

	delete(r.ops, key)
	return nil
}

func (r *InMemorySyncOperationRepository) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ops = make(map[string]domain.SyncOperation)
	return nil
}

func (r *InMemorySyncOperationRepository) List(ctx context.Context) ([]*domain.SyncOperation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.SyncOperation
	for _, op := range r.ops {
		clone := op
		out = append(out, &clone)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })

	return out, nil
}
