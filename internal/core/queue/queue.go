// Package queue implements the offline-first mutation queue: a durable,
// priority-aware, causally ordered log of pending remote operations drained
// by a single background worker.
package queue

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/quizlight/recall-sync-engine/internal/core/domain"
)

type Config struct {
	// BaseDelay seeds the per-operation exponential backoff.
	BaseDelay time.Duration
	// MaxDelay caps the backoff.
	MaxDelay time.Duration
	// SendTimeout bounds one delivery attempt; expiry counts as a
	// retryable network failure.
	SendTimeout time.Duration
	// PollInterval paces the drain loop while every pending operation is
	// waiting out its backoff.
	PollInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		BaseDelay:    2 * time.Second,
		MaxDelay:     5 * time.Minute,
		SendTimeout:  15 * time.Second,
		PollInterval: time.Second,
	}
}

// Queue owns the durable op log exclusively. Enqueue is safe from any
// goroutine and interleaves with the drain loop; the mutex guards log
// mutation only and is never held across network I/O. Only one operation is
// ever in flight, which is what makes per-entity causal order free.
type Queue struct {
	oplog     domain.SyncOperationRepository
	transport Transport
	session   SessionProvider
	sink      ErrorSink
	cfg       Config
	now       func() time.Time

	mu       sync.Mutex
	pending  []*domain.SyncOperation // enqueue-sequence order
	failed   []*domain.SyncOperation
	seq      int64
	inFlight string
	paused   bool

	wake chan struct{}
}

func New(oplog domain.SyncOperationRepository, transport Transport, session SessionProvider, sink ErrorSink, cfg Config, now func() time.Time) *Queue {
	def := DefaultConfig()
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = def.BaseDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = def.MaxDelay
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = def.SendTimeout
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if sink == nil {
		sink = LoggingSink{}
	}
	if now == nil {
		now = time.Now
	}

	return &Queue{
		oplog:     oplog,
		transport: transport,
		session:   session,
		sink:      sink,
		cfg:       cfg,
		now:       now,
		wake:      make(chan struct{}, 1),
	}
}

// Load restores the queue from the durable log. Call once before Start;
// operations survive process restarts and resume in their original order.
func (q *Queue) Load(ctx context.Context) error {
	ops, err := q.oplog.List(ctx)
	if err != nil {
		return fmt.Errorf("load op log: %w", err)
	}

	sort.Slice(ops, func(i, j int) bool { return ops[i].Seq < ops[j].Seq })

	q.mu.Lock()
	defer q.mu.Unlock()

	q.pending = nil
	q.failed = nil
	for _, op := range ops {
		if op.Seq > q.seq {
			q.seq = op.Seq
		}
		if op.Status == domain.OpStatusFailed {
			q.failed = append(q.failed, op)
		} else {
			q.pending = append(q.pending, op)
		}
	}

	if len(q.pending) > 0 {
		log.Printf("[SyncQueue] Restored %d pending operations from the log", len(q.pending))
	}
	return nil
}

// Enqueue appends an operation to the durable log. It never blocks on
// delivery; failures past this point are observable only through
// PendingCount, ListFailed and the error sink.
//
// Coalescing happens here, and only against operations the remote has not
// seen yet: a new Update merges into a pending unsent Update for the same
// entity (last value wins), and a Delete for an entity whose Create is
// still unsent discards every queued operation for that entity, including
// itself.
func (q *Queue) Enqueue(ctx context.Context, op *domain.SyncOperation) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	switch op.Kind {
	case domain.OpUpdate:
		if prev := q.lastPendingFor(op.EntityKey()); prev != nil && q.unsent(prev) && prev.Kind == domain.OpUpdate {
			prev.Payload = op.Payload
			if op.Priority > prev.Priority {
				prev.Priority = op.Priority
			}
			if err := q.oplog.Update(ctx, prev); err != nil {
				return fmt.Errorf("coalesce operation %s: %w", prev.Key, err)
			}
			q.signal()
			return nil
		}

	case domain.OpDelete:
		if first := q.firstPendingFor(op.EntityKey()); first != nil && q.unsent(first) && first.Kind == domain.OpCreate {
			q.discardEntity(ctx, op.EntityKey())
			return nil
		}
	}

	q.seq++
	op.Seq = q.seq
	op.Status = domain.OpStatusPending

	if err := q.oplog.Save(ctx, op); err != nil {
		return fmt.Errorf("enqueue operation %s: %w", op.Key, err)
	}

	q.pending = append(q.pending, op)
	q.signal()
	return nil
}

// PendingCount reports how many operations await delivery, including one
// currently in flight.
func (q *Queue) PendingCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// ListFailed returns copies of the terminally failed operations.
func (q *Queue) ListFailed() []*domain.SyncOperation {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]*domain.SyncOperation, 0, len(q.failed))
	for _, op := range q.failed {
		clone := *op
		out = append(out, &clone)
	}
	return out
}

// RetryFailed moves every terminally failed operation back into the active
// ordering with a fresh attempt budget. Returns how many were revived.
func (q *Queue) RetryFailed(ctx context.Context) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	revived := 0
	var remaining []*domain.SyncOperation
	for _, op := range q.failed {
		op.Status = domain.OpStatusPending
		op.Attempts = 0
		op.EligibleAt = q.now().UTC()
		op.LastError = ""

		if err := q.oplog.Update(ctx, op); err != nil {
			log.Printf("[SyncQueue] Failed to revive operation %s: %v", op.Key, err)
			op.Status = domain.OpStatusFailed
			remaining = append(remaining, op)
			continue
		}

		q.pending = append(q.pending, op)
		revived++
	}
	q.failed = remaining

	if revived > 0 {
		sort.Slice(q.pending, func(i, j int) bool { return q.pending[i].Seq < q.pending[j].Seq })
		q.signal()
		log.Printf("[SyncQueue] Revived %d failed operations", revived)
	}
	return revived
}

// Clear discards every queued operation, pending and failed. Used on
// sign-out: the operations are scoped to the authenticated identity and
// mean nothing without it.
func (q *Queue) Clear(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if err := q.oplog.DeleteAll(ctx); err != nil {
		return fmt.Errorf("clear op log: %w", err)
	}

	cleared := len(q.pending) + len(q.failed)
	q.pending = nil
	q.failed = nil

	log.Printf("[SyncQueue] Cleared %d operations on sign-out", cleared)
	return nil
}

// lastPendingFor returns the newest pending operation for an entity.
func (q *Queue) lastPendingFor(entityKey string) *domain.SyncOperation {
	for i := len(q.pending) - 1; i >= 0; i-- {
		if q.pending[i].EntityKey() == entityKey {
			return q.pending[i]
		}
	}
	return nil
}

// firstPendingFor returns the oldest pending operation for an entity.
func (q *Queue) firstPendingFor(entityKey string) *domain.SyncOperation {
	for _, op := range q.pending {
		if op.EntityKey() == entityKey {
			return op
		}
	}
	return nil
}

// unsent reports whether the remote has had no chance to see the op.
func (q *Queue) unsent(op *domain.SyncOperation) bool {
	return op.Attempts == 0 && op.Key != q.inFlight
}

// discardEntity drops every pending operation for an entity. Best effort on
// the durable side: a record whose delete failed stays queued rather than
// risking a log/memory mismatch.
func (q *Queue) discardEntity(ctx context.Context, entityKey string) {
	var kept []*domain.SyncOperation
	for _, op := range q.pending {
		if op.EntityKey() != entityKey {
			kept = append(kept, op)
			continue
		}
		if err := q.oplog.Delete(ctx, op.Key); err != nil {
			log.Printf("[SyncQueue] Failed to discard operation %s: %v", op.Key, err)
			kept = append(kept, op)
			continue
		}
		log.Printf("[SyncQueue] Discarded %s %s: entity never reached the remote", op.Kind, entityKey)
	}
	q.pending = kept
}

// nextEligible picks the operation to send: highest priority first, then
// oldest, but only ever the oldest pending operation of any given entity.
// An entity whose head operation is waiting out a backoff is skipped
// entirely, without blocking unrelated entities. Callers hold q.mu.
func (q *Queue) nextEligible(now time.Time) *domain.SyncOperation {
	seen := make(map[string]bool)

	var best *domain.SyncOperation
	for _, op := range q.pending {
		key := op.EntityKey()
		if seen[key] {
			continue
		}
		seen[key] = true

		if op.EligibleAt.After(now) {
			continue
		}
		if best == nil || op.Priority > best.Priority {
			best = op
		}
	}
	return best
}

func (q *Queue) backoff(attempts int) time.Duration {
	if attempts > 30 {
		return q.cfg.MaxDelay
	}
	delay := q.cfg.BaseDelay << uint(attempts)
	if delay <= 0 || delay > q.cfg.MaxDelay {
		return q.cfg.MaxDelay
	}
	return delay
}

func (q *Queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *Queue) contains(op *domain.SyncOperation) bool {
	for _, p := range q.pending {
		if p == op {
			return true
		}
	}
	return false
}
