package domain

import "context"

type ReviewEventRepository interface {
	// Append persists a review event. Events are immutable once written.
	Append(ctx context.Context, event *ReviewEvent) error

	// ListByCardID returns a card's review history, oldest first.
	ListByCardID(ctx context.Context, cardID string) ([]*ReviewEvent, error)

	// DeleteByCardID removes a card's history. Only the deck/card cascade
	// delete path uses this; nothing else deletes history.
	DeleteByCardID(ctx context.Context, cardID string) error
}
