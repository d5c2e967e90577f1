package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/quizlight/recall-sync-engine/internal/core/domain"
)

// SuppressionService decides whether a deck is currently excluded from
// session selection. Temporary windows lapse lazily: the transition back to
// active is discovered on read, which always happens before any selection
// decision that depends on it. No timers run.
type SuppressionService struct {
	decks domain.DeckRepository
	now   func() time.Time
}

func NewSuppressionService(decks domain.DeckRepository, now func() time.Time) *SuppressionService {
	if now == nil {
		now = time.Now
	}
	return &SuppressionService{
		decks: decks,
		now:   now,
	}
}

// IsSuppressed reports the deck's effective suppression state and persists a
// lapsed temporary window. A failed bookkeeping write does not change the
// verdict: the deck is active either way, only the stored record is stale.
func (s *SuppressionService) IsSuppressed(ctx context.Context, deckID string) (bool, error) {
	deck, err := s.decks.GetByID(ctx, deckID)
	if err != nil {
		return false, err
	}

	suppressed, lapsed := deck.ResolveSuppression(s.now())
	if lapsed {
		if err := s.decks.Update(ctx, deck); err != nil {
			log.Printf("[Suppression] Failed to persist lapse for deck %s: %v", deckID, err)
		}
	}

	return suppressed, nil
}

func (s *SuppressionService) SuppressPermanently(ctx context.Context, deckID string) error {
	deck, err := s.decks.GetByID(ctx, deckID)
	if err != nil {
		return err
	}

	deck.SuppressPermanently(s.now())

	if err := s.decks.Update(ctx, deck); err != nil {
		return fmt.Errorf("%w: suppress deck %s: %v", domain.ErrStorage, deckID, err)
	}
	return nil
}

// SuppressUntil time-boxes the deck's exclusion. The window must end in the
// future.
func (s *SuppressionService) SuppressUntil(ctx context.Context, deckID string, until time.Time) error {
	deck, err := s.decks.GetByID(ctx, deckID)
	if err != nil {
		return err
	}

	if err := deck.SuppressUntil(until, s.now()); err != nil {
		return err
	}

	if err := s.decks.Update(ctx, deck); err != nil {
		return fmt.Errorf("%w: suppress deck %s: %v", domain.ErrStorage, deckID, err)
	}
	return nil
}

func (s *SuppressionService) Lift(ctx context.Context, deckID string) error {
	deck, err := s.decks.GetByID(ctx, deckID)
	if err != nil {
		return err
	}

	deck.LiftSuppression(s.now())

	if err := s.decks.Update(ctx, deck); err != nil {
		return fmt.Errorf("%w: lift suppression for deck %s: %v", domain.ErrStorage, deckID, err)
	}
	return nil
}
