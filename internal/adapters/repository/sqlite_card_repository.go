package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/quizlight/recall-sync-engine/internal/core/domain"
)

type SQLiteCardRepository struct {
	db *sqlx.DB
}

func NewSQLiteCardRepository(db *sqlx.DB) *SQLiteCardRepository {
	return &SQLiteCardRepository{db: db}
}

func (r *SQLiteCardRepository) Create(ctx context.Context, card *domain.Card) error {
	query := `
        INSERT INTO cards (
            id, deck_id, prompt, answer,
            ease_factor, interval_days, repetitions, next_review_at, status,
            created_at, updated_at
        ) VALUES (
            :id, :deck_id, :prompt, :answer,
            :ease_factor, :interval_days, :repetitions, :next_review_at, :status,
            :created_at, :updated_at
        )`

	if _, err := r.db.NamedExecContext(ctx, query, card); err != nil {
		return fmt.Errorf("failed to insert card: %w", err)
	}
	return nil
}

func (r *SQLiteCardRepository) GetByID(ctx context.Context, id string) (*domain.Card, error) {
	query := `SELECT * FROM cards WHERE id = ?`

	var card domain.Card
	if err := r.db.GetContext(ctx, &card, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCardNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}
	return &card, nil
}

func (r *SQLiteCardRepository) List(ctx context.Context) ([]*domain.Card, error) {
	query := `SELECT * FROM cards ORDER BY created_at ASC`

	var cards []*domain.Card
	if err := r.db.SelectContext(ctx, &cards, query); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	return cards, nil
}

func (r *SQLiteCardRepository) ListByDeckID(ctx context.Context, deckID string) ([]*domain.Card, error) {
	query := `SELECT * FROM cards WHERE deck_id = ? ORDER BY created_at ASC`

	var cards []*domain.Card
	if err := r.db.SelectContext(ctx, &cards, query, deckID); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	return cards, nil
}

func (r *SQLiteCardRepository) Update(ctx context.Context, card *domain.Card) error {
	query := `
        UPDATE cards SET
            prompt = :prompt,
            answer = :answer,
            ease_factor = :ease_factor,
            interval_days = :interval_days,
            repetitions = :repetitions,
            next_review_at = :next_review_at,
            status = :status,
            updated_at = :updated_at
        WHERE id = :id`

	res, err := r.db.NamedExecContext(ctx, query, card)
	if err != nil {
		return fmt.Errorf("update query failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrCardNotFound
	}
	return nil
}

func (r *SQLiteCardRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete query failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrCardNotFound
	}
	return nil
}

func (r *SQLiteCardRepository) DeleteByDeckID(ctx context.Context, deckID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cards WHERE deck_id = ?`, deckID); err != nil {
		return fmt.Errorf("delete query failed: %w", err)
	}
	return nil
}
