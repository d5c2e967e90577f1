package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/quizlight/recall-sync-engine/internal/core/domain"
)

// CardService owns card content lifecycle. It writes prompt and answer
// only; schedule state belongs to the review service.
type CardService struct {
	cards  domain.CardRepository
	decks  domain.DeckRepository
	events domain.ReviewEventRepository
	queue  Enqueuer
	now    func() time.Time
}

func NewCardService(cards domain.CardRepository, decks domain.DeckRepository, events domain.ReviewEventRepository, queue Enqueuer, now func() time.Time) *CardService {
	if now == nil {
		now = time.Now
	}
	return &CardService{
		cards:  cards,
		decks:  decks,
		events: events,
		queue:  queue,
		now:    now,
	}
}

func (s *CardService) Create(ctx context.Context, deckID, prompt, answer string) (*domain.Card, error) {
	if _, err := s.decks.GetByID(ctx, deckID); err != nil {
		return nil, err
	}

	card, err := domain.NewCard(deckID, prompt, answer, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.cards.Create(ctx, card); err != nil {
		return nil, fmt.Errorf("%w: create card: %v", domain.ErrStorage, err)
	}

	s.enqueue(ctx, card.ID, domain.OpCreate, card)

	return card, nil
}

func (s *CardService) EditContent(ctx context.Context, id, prompt, answer string) (*domain.Card, error) {
	card, err := s.cards.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := card.EditContent(prompt, answer, s.now()); err != nil {
		return nil, err
	}

	if err := s.cards.Update(ctx, card); err != nil {
		return nil, fmt.Errorf("%w: update card %s: %v", domain.ErrStorage, id, err)
	}

	s.enqueue(ctx, card.ID, domain.OpUpdate, card)

	return card, nil
}

// Delete removes a card and its review history.
func (s *CardService) Delete(ctx context.Context, id string) error {
	if _, err := s.cards.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.events.DeleteByCardID(ctx, id); err != nil {
		return fmt.Errorf("%w: delete history for card %s: %v", domain.ErrStorage, id, err)
	}

	if err := s.cards.Delete(ctx, id); err != nil {
		return fmt.Errorf("%w: delete card %s: %v", domain.ErrStorage, id, err)
	}

	s.enqueue(ctx, id, domain.OpDelete, nil)

	return nil
}

func (s *CardService) GetByID(ctx context.Context, id string) (*domain.Card, error) {
	return s.cards.GetByID(ctx, id)
}

func (s *CardService) ListByDeckID(ctx context.Context, deckID string) ([]*domain.Card, error) {
	if _, err := s.decks.GetByID(ctx, deckID); err != nil {
		return nil, err
	}
	return s.cards.ListByDeckID(ctx, deckID)
}

func (s *CardService) enqueue(ctx context.Context, cardID string, kind domain.OpKind, body any) {
	var payload json.RawMessage
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			log.Printf("[Card] Failed to encode card %s: %v", cardID, err)
			return
		}
		payload = encoded
	}

	op := domain.NewSyncOperation(domain.EntityCard, cardID, kind, payload, domain.PriorityNormal, s.now())
	if err := s.queue.Enqueue(ctx, op); err != nil {
		log.Printf("[Card] Failed to enqueue %s for card %s: %v", kind, cardID, err)
	}
}
