package domain

import (
	"context"
	"errors"
)

var (
	ErrOperationNotFound = errors.New("sync operation not found")
)

// SyncOperationRepository is the durable op log. The mutation queue is its
// only writer; no other component touches these records.
type SyncOperationRepository interface {
	// Save persists a newly enqueued operation.
	Save(ctx context.Context, op *SyncOperation) error

	// Update persists retry bookkeeping, coalesced payloads, or a terminal
	// failure mark.
	Update(ctx context.Context, op *SyncOperation) error

	// Delete removes an acknowledged or discarded operation by its key.
	Delete(ctx context.Context, key string) error

	// DeleteAll clears the log (sign-out).
	DeleteAll(ctx context.Context) error

	// List returns every logged operation ordered by enqueue sequence,
	// pending and terminally failed alike. Called once at startup to
	// rebuild the in-memory ordering.
	List(ctx context.Context) ([]*SyncOperation, error)
}
