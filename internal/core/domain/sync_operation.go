package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// OpKind is the kind of remote mutation carried by a sync operation.
type OpKind string

const (
	OpCreate       OpKind = "create"
	OpUpdate       OpKind = "update"
	OpDelete       OpKind = "delete"
	OpAppendReview OpKind = "append_review"
)

// Priority orders operations across the queue. Higher drains first, but
// never ahead of an earlier operation targeting the same entity.
type Priority int

const (
	PriorityLow    Priority = 0
	PriorityNormal Priority = 1
	PriorityHigh   Priority = 2
)

const (
	EntityDeck        = "deck"
	EntityCard        = "card"
	EntityReviewEvent = "review_event"
)

const (
	OpStatusPending = "pending"
	OpStatusFailed  = "failed"
)

// SyncOperation is one pending remote mutation in the durable op log.
// The idempotency key is generated once at enqueue time and reused across
// every delivery attempt, so a crash mid-flight cannot duplicate the remote
// effect. Seq records enqueue order and anchors per-entity causal ordering.
type SyncOperation struct {
	Key        string          `json:"key" db:"key"`
	EntityType string          `json:"entity_type" db:"entity_type"`
	EntityID   string          `json:"entity_id" db:"entity_id"`
	Kind       OpKind          `json:"kind" db:"kind"`
	Payload    json.RawMessage `json:"payload" db:"payload"`
	Priority   Priority        `json:"priority" db:"priority"`

	Seq        int64     `json:"seq" db:"seq"`
	Status     string    `json:"status" db:"status"`
	Attempts   int       `json:"attempts" db:"attempts"`
	EnqueuedAt time.Time `json:"enqueued_at" db:"enqueued_at"`
	EligibleAt time.Time `json:"eligible_at" db:"eligible_at"`
	LastError  string    `json:"last_error,omitempty" db:"last_error"`
}

func NewSyncOperation(entityType, entityID string, kind OpKind, payload json.RawMessage, priority Priority, now time.Time) *SyncOperation {
	now = now.UTC()

	// Review history is the learner's irreplaceable data; it always jumps
	// the line over content edits.
	if kind == OpAppendReview {
		priority = PriorityHigh
	}

	return &SyncOperation{
		Key:        uuid.NewString(),
		EntityType: entityType,
		EntityID:   entityID,
		Kind:       kind,
		Payload:    payload,
		Priority:   priority,
		Status:     OpStatusPending,
		EnqueuedAt: now,
		EligibleAt: now,
	}
}

// EntityKey identifies the target entity for causal ordering and coalescing.
func (op *SyncOperation) EntityKey() string {
	return op.EntityType + "/" + op.EntityID
}
