package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/quizlight/recall-sync-engine/internal/core/domain"
)

type SQLiteReviewEventRepository struct {
	db *sqlx.DB
}

func NewSQLiteReviewEventRepository(db *sqlx.DB) *SQLiteReviewEventRepository {
	return &SQLiteReviewEventRepository{db: db}
}

// reviewEventRow is the storage shape of a review event. The before and
// after schedule states are stored as JSON documents.
type reviewEventRow struct {
	ID          string    `db:"id"`
	CardID      string    `db:"card_id"`
	Rating      int       `db:"rating"`
	Mode        string    `db:"mode"`
	StateBefore []byte    `db:"state_before"`
	StateAfter  []byte    `db:"state_after"`
	ReviewedAt  time.Time `db:"reviewed_at"`
}

func (row *reviewEventRow) toDomain() (*domain.ReviewEvent, error) {
	event := &domain.ReviewEvent{
		ID:         row.ID,
		CardID:     row.CardID,
		Rating:     row.Rating,
		Mode:       domain.SessionMode(row.Mode),
		ReviewedAt: row.ReviewedAt,
	}

	if err := json.Unmarshal(row.StateBefore, &event.StateBefore); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state_before: %w", err)
	}
	if err := json.Unmarshal(row.StateAfter, &event.StateAfter); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state_after: %w", err)
	}
	return event, nil
}

func (r *SQLiteReviewEventRepository) Append(ctx context.Context, event *domain.ReviewEvent) error {
	before, err := json.Marshal(event.StateBefore)
	if err != nil {
		return fmt.Errorf("failed to marshal state_before: %w", err)
	}
	after, err := json.Marshal(event.StateAfter)
	if err != nil {
		return fmt.Errorf("failed to marshal state_after: %w", err)
	}

	query := `
        INSERT INTO review_events (id, card_id, rating, mode, state_before, state_after, reviewed_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, query,
		event.ID, event.CardID, event.Rating, string(event.Mode),
		before, after, event.ReviewedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert review event: %w", err)
	}
	return nil
}

func (r *SQLiteReviewEventRepository) ListByCardID(ctx context.Context, cardID string) ([]*domain.ReviewEvent, error) {
	query := `SELECT * FROM review_events WHERE card_id = ? ORDER BY reviewed_at ASC`

	var rows []reviewEventRow
	if err := r.db.SelectContext(ctx, &rows, query, cardID); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}

	events := make([]*domain.ReviewEvent, 0, len(rows))
	for i := range rows {
		event, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

func (r *SQLiteReviewEventRepository) DeleteByCardID(ctx context.Context, cardID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM review_events WHERE card_id = ?`, cardID); err != nil {
		return fmt.Errorf("delete query failed: %w", err)
	}
	return nil
}
