package queue

import (
	"context"
	"errors"
	"log"

	"github.com/quizlight/recall-sync-engine/internal/core/domain"
)

// Transport delivers one operation to the remote system of record. The
// operation's idempotency key travels with every attempt, so redelivery
// after a crash or timeout has no duplicate effect remotely. Outcomes are
// reported through the sentinel errors below, matched with errors.Is.
type Transport interface {
	Send(ctx context.Context, op *domain.SyncOperation) error
}

// SessionProvider answers whether a network-authenticated session is
// currently usable, and signals when one becomes usable again after the
// remote rejected our credentials.
type SessionProvider interface {
	IsAuthenticated() bool
	Resumed() <-chan struct{}
}

// ErrorSink receives operations that failed terminally, for user and
// developer visibility. It must not block.
type ErrorSink interface {
	ReportFailed(op *domain.SyncOperation, cause error)
}

var (
	// ErrNetwork covers unreachable networks, 5xx-class responses and
	// timeouts. Retryable with backoff.
	ErrNetwork = errors.New("network unreachable or transient remote failure")

	// ErrValidationRejected means the remote rejected the payload shape or
	// content. Terminal: retrying the same bytes cannot succeed.
	ErrValidationRejected = errors.New("remote rejected operation payload")

	// ErrAuthRequired means the session is no longer usable. The drain
	// loop pauses until the session provider signals resumption.
	ErrAuthRequired = errors.New("authenticated session required")

	// ErrConflictRejected means remote state diverged. Policy: remote
	// wins; the local value is overwritten by the remote-confirmed one on
	// the next fetch, and the operation is dropped.
	ErrConflictRejected = errors.New("remote state diverged")
)

// LoggingSink is the default ErrorSink: terminal failures go to the log.
type LoggingSink struct{}

func (LoggingSink) ReportFailed(op *domain.SyncOperation, cause error) {
	log.Printf("[SyncQueue] Operation %s (%s %s) failed terminally: %v", op.Key, op.Kind, op.EntityKey(), cause)
}
