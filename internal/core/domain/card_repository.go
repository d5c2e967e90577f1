package domain

import (
	"context"
	"errors"
)

var (
	ErrCardNotFound = errors.New("card not found")

	// ErrStorage marks a local persistence failure. Callers treat it as
	// fatal to the triggering call; nothing is enqueued for sync on top of
	// a write that did not land.
	ErrStorage = errors.New("local storage failure")
)

type CardRepository interface {
	// Create persists a newly authored card.
	Create(ctx context.Context, card *Card) error

	// GetByID retrieves a card by its unique identifier.
	GetByID(ctx context.Context, id string) (*Card, error)

	// List returns a snapshot of every card, the candidate pool for
	// session selection. Readable while the device is offline.
	List(ctx context.Context) ([]*Card, error)

	// ListByDeckID returns the cards owned by a deck.
	ListByDeckID(ctx context.Context, deckID string) ([]*Card, error)

	// Update persists content or schedule changes for an existing card.
	Update(ctx context.Context, card *Card) error

	// Delete removes a card.
	Delete(ctx context.Context, id string) error

	// DeleteByDeckID removes every card owned by a deck (cascade path).
	DeleteByDeckID(ctx context.Context, deckID string) error
}
