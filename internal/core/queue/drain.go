package queue

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/quizlight/recall-sync-engine/internal/core/domain"
)

// Start launches the single background drain worker. One operation is in
// flight at a time; cancel the context to stop. A send cancelled mid-flight
// leaves its operation exactly as not yet confirmed: eligible for retry,
// never duplicated, never dropped.
func (q *Queue) Start(ctx context.Context) {
	go func() {
		log.Println("[SyncQueue] Drain loop started")
		for {
			if ctx.Err() != nil {
				log.Println("[SyncQueue] Drain loop stopped")
				return
			}

			if !q.canSend() {
				select {
				case <-q.session.Resumed():
					q.resume()
				case <-ctx.Done():
					log.Println("[SyncQueue] Drain loop stopped")
					return
				}
				continue
			}

			if !q.drainOnce(ctx) {
				select {
				case <-q.wake:
				case <-time.After(q.cfg.PollInterval):
				case <-ctx.Done():
				}
			}
		}
	}()
}

// drainOnce attempts delivery of the next eligible operation. Returns false
// when nothing was eligible, so the loop can wait instead of spinning.
func (q *Queue) drainOnce(ctx context.Context) bool {
	q.mu.Lock()
	op := q.nextEligible(q.now())
	if op == nil {
		q.mu.Unlock()
		return false
	}
	q.inFlight = op.Key
	attempt := *op
	q.mu.Unlock()

	sendCtx, cancel := context.WithTimeout(ctx, q.cfg.SendTimeout)
	err := q.transport.Send(sendCtx, &attempt)
	cancel()

	q.mu.Lock()
	defer q.mu.Unlock()
	q.inFlight = ""

	if ctx.Err() != nil {
		// Shutdown or sign-out raced the send. Whatever the transport
		// reported, the op stays pending; the idempotency key makes an
		// eventual redelivery harmless.
		return false
	}
	if !q.contains(op) {
		// Cleared while in flight.
		return true
	}

	now := q.now().UTC()

	switch {
	case err == nil:
		q.removePending(op)
		if derr := q.oplog.Delete(context.Background(), op.Key); derr != nil {
			log.Printf("[SyncQueue] Failed to remove acknowledged operation %s: %v", op.Key, derr)
		}
		log.Printf("[SyncQueue] Delivered %s %s (attempt %d)", op.Kind, op.EntityKey(), op.Attempts+1)

	case errors.Is(err, ErrConflictRejected):
		// Remote wins. The local record is refreshed from the remote on
		// the next fetch; nothing to retry.
		q.removePending(op)
		if derr := q.oplog.Delete(context.Background(), op.Key); derr != nil {
			log.Printf("[SyncQueue] Failed to remove conflicted operation %s: %v", op.Key, derr)
		}
		log.Printf("[SyncQueue] Dropped %s %s: %v", op.Kind, op.EntityKey(), err)

	case errors.Is(err, ErrValidationRejected):
		q.removePending(op)
		op.Status = domain.OpStatusFailed
		op.LastError = err.Error()
		q.failed = append(q.failed, op)
		if uerr := q.oplog.Update(context.Background(), op); uerr != nil {
			log.Printf("[SyncQueue] Failed to mark operation %s failed: %v", op.Key, uerr)
		}
		q.sink.ReportFailed(op, err)

	case errors.Is(err, ErrAuthRequired):
		// Pause the whole loop; the op stays at its position and the
		// queue resumes from right here once a session is restored.
		q.paused = true
		log.Printf("[SyncQueue] Paused: %v", err)

	default:
		// ErrNetwork, attempt timeouts, and anything unclassified are
		// treated as transient. Backoff accrues on this operation only.
		op.Attempts++
		op.LastError = err.Error()
		op.EligibleAt = now.Add(q.backoff(op.Attempts))
		if uerr := q.oplog.Update(context.Background(), op); uerr != nil {
			log.Printf("[SyncQueue] Failed to record retry for operation %s: %v", op.Key, uerr)
		}
		log.Printf("[SyncQueue] Retrying %s %s after %v (attempt %d): %v",
			op.Kind, op.EntityKey(), q.backoff(op.Attempts), op.Attempts, err)
	}

	return true
}

func (q *Queue) canSend() bool {
	q.mu.Lock()
	paused := q.paused
	q.mu.Unlock()

	return !paused && q.session.IsAuthenticated()
}

func (q *Queue) resume() {
	q.mu.Lock()
	q.paused = false
	q.mu.Unlock()
	log.Println("[SyncQueue] Session restored, resuming")
}

// removePending drops the operation from the active ordering. Callers hold
// q.mu.
func (q *Queue) removePending(op *domain.SyncOperation) {
	for i, p := range q.pending {
		if p == op {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return
		}
	}
}
