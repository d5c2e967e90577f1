package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/quizlight/recall-sync-engine/internal/core/domain"
)

// SQLiteSyncOperationRepository is the durable op log. Operations survive
// process restarts; the queue replays them from here on startup.
type SQLiteSyncOperationRepository struct {
	db *sqlx.DB
}

func NewSQLiteSyncOperationRepository(db *sqlx.DB) *SQLiteSyncOperationRepository {
	return &SQLiteSyncOperationRepository{db: db}
}

func (r *SQLiteSyncOperationRepository) Save(ctx context.Context, op *domain.SyncOperation) error {
	query := `
        INSERT INTO sync_operations (
            key, entity_type, entity_id, kind, payload, priority,
            seq, status, attempts, enqueued_at, eligible_at, last_error
        ) VALUES (
            :key, :entity_type, :entity_id, :kind, :payload, :priority,
            :seq, :status, :attempts, :enqueued_at, :eligible_at, :last_error
        )`

	if _, err := r.db.NamedExecContext(ctx, query, op); err != nil {
		return fmt.Errorf("failed to insert sync operation: %w", err)
	}
	return nil
}

func (r *SQLiteSyncOperationRepository) Update(ctx context.Context, op *domain.SyncOperation) error {
	query := `
        UPDATE sync_operations SET
            payload = :payload,
            priority = :priority,
            status = :status,
            attempts = :attempts,
            eligible_at = :eligible_at,
            last_error = :last_error
        WHERE key = :key`

	res, err := r.db.NamedExecContext(ctx, query, op)
	if err != nil {
		return fmt.Errorf("update query failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrOperationNotFound
	}
	return nil
}

func (r *SQLiteSyncOperationRepository) Delete(ctx context.Context, key string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sync_operations WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("delete query failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrOperationNotFound
	}
	return nil
}

func (r *SQLiteSyncOperationRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sync_operations`); err != nil {
		return fmt.Errorf("delete query failed: %w", err)
	}
	return nil
}

func (r *SQLiteSyncOperationRepository) List(ctx context.Context) ([]*domain.SyncOperation, error) {
	query := `SELECT * FROM sync_operations ORDER BY seq ASC`

	var ops []*domain.SyncOperation
	if err := r.db.SelectContext(ctx, &ops, query); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	return ops, nil
}
