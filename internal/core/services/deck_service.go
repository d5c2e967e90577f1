package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/quizlight/recall-sync-engine/internal/core/domain"
)

// DeckService owns deck content lifecycle: create, rename, delete with
// cascade. Schedule state never flows through here.
type DeckService struct {
	decks  domain.DeckRepository
	cards  domain.CardRepository
	events domain.ReviewEventRepository
	queue  Enqueuer
	now    func() time.Time
}

func NewDeckService(decks domain.DeckRepository, cards domain.CardRepository, events domain.ReviewEventRepository, queue Enqueuer, now func() time.Time) *DeckService {
	if now == nil {
		now = time.Now
	}
	return &DeckService{
		decks:  decks,
		cards:  cards,
		events: events,
		queue:  queue,
		now:    now,
	}
}

func (s *DeckService) Create(ctx context.Context, name string) (*domain.Deck, error) {
	deck, err := domain.NewDeck(name, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.decks.Create(ctx, deck); err != nil {
		return nil, fmt.Errorf("%w: create deck: %v", domain.ErrStorage, err)
	}

	s.enqueue(ctx, domain.EntityDeck, deck.ID, domain.OpCreate, deck)

	return deck, nil
}

func (s *DeckService) Rename(ctx context.Context, id, name string) (*domain.Deck, error) {
	deck, err := s.decks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := deck.Rename(name, s.now()); err != nil {
		return nil, err
	}

	if err := s.decks.Update(ctx, deck); err != nil {
		return nil, fmt.Errorf("%w: rename deck %s: %v", domain.ErrStorage, id, err)
	}

	s.enqueue(ctx, domain.EntityDeck, deck.ID, domain.OpUpdate, deck)

	return deck, nil
}

// Delete removes a deck together with its cards and their review history.
// The deck is the owning parent; nothing it owned survives it. The remote
// receives a single deck delete and cascades on its side.
func (s *DeckService) Delete(ctx context.Context, id string) error {
	if _, err := s.decks.GetByID(ctx, id); err != nil {
		return err
	}

	cards, err := s.cards.ListByDeckID(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: list cards for deck %s: %v", domain.ErrStorage, id, err)
	}

	for _, card := range cards {
		if err := s.events.DeleteByCardID(ctx, card.ID); err != nil {
			return fmt.Errorf("%w: delete history for card %s: %v", domain.ErrStorage, card.ID, err)
		}
	}

	if err := s.cards.DeleteByDeckID(ctx, id); err != nil {
		return fmt.Errorf("%w: delete cards for deck %s: %v", domain.ErrStorage, id, err)
	}

	if err := s.decks.Delete(ctx, id); err != nil {
		return fmt.Errorf("%w: delete deck %s: %v", domain.ErrStorage, id, err)
	}

	s.enqueue(ctx, domain.EntityDeck, id, domain.OpDelete, nil)

	return nil
}

func (s *DeckService) List(ctx context.Context) ([]*domain.Deck, error) {
	return s.decks.List(ctx)
}

func (s *DeckService) GetByID(ctx context.Context, id string) (*domain.Deck, error) {
	return s.decks.GetByID(ctx, id)
}

func (s *DeckService) enqueue(ctx context.Context, entityType, entityID string, kind domain.OpKind, body any) {
	var payload json.RawMessage
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			log.Printf("[Deck] Failed to encode %s %s: %v", entityType, entityID, err)
			return
		}
		payload = encoded
	}

	op := domain.NewSyncOperation(entityType, entityID, kind, payload, domain.PriorityNormal, s.now())
	if err := s.queue.Enqueue(ctx, op); err != nil {
		log.Printf("[Deck] Failed to enqueue %s for %s %s: %v", kind, entityType, entityID, err)
	}
}
