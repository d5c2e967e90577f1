package domain

import (
	"context"
	"errors"
)

var (
	ErrDeckNotFound = errors.New("deck not found")
)

type DeckRepository interface {
	// Create persists a new deck.
	Create(ctx context.Context, deck *Deck) error

	// GetByID retrieves a deck by its unique identifier.
	GetByID(ctx context.Context, id string) (*Deck, error)

	// List returns all decks.
	List(ctx context.Context) ([]*Deck, error)

	// Update persists name or suppression changes, including the lazy
	// temporary-suppression lapse discovered on read.
	Update(ctx context.Context, deck *Deck) error

	// Delete removes a deck. Owned cards and their history are removed by
	// the deck service before this is called.
	Delete(ctx context.Context, id string) error
}
