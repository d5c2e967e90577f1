package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/quizlight/recall-sync-engine/internal/core/domain"
)

type SQLiteDeckRepository struct {
	db *sqlx.DB
}

func NewSQLiteDeckRepository(db *sqlx.DB) *SQLiteDeckRepository {
	return &SQLiteDeckRepository{db: db}
}

func (r *SQLiteDeckRepository) Create(ctx context.Context, deck *domain.Deck) error {
	query := `
        INSERT INTO decks (id, name, suppression, suppressed_until, created_at, updated_at)
        VALUES (:id, :name, :suppression, :suppressed_until, :created_at, :updated_at)`

	if _, err := r.db.NamedExecContext(ctx, query, deck); err != nil {
		return fmt.Errorf("failed to insert deck: %w", err)
	}
	return nil
}

func (r *SQLiteDeckRepository) GetByID(ctx context.Context, id string) (*domain.Deck, error) {
	query := `SELECT * FROM decks WHERE id = ?`

	var deck domain.Deck
	if err := r.db.GetContext(ctx, &deck, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDeckNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}
	return &deck, nil
}

func (r *SQLiteDeckRepository) List(ctx context.Context) ([]*domain.Deck, error) {
	query := `SELECT * FROM decks ORDER BY created_at ASC`

	var decks []*domain.Deck
	if err := r.db.SelectContext(ctx, &decks, query); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	return decks, nil
}

func (r *SQLiteDeckRepository) Update(ctx context.Context, deck *domain.Deck) error {
	query := `
        UPDATE decks SET
            name = :name,
            suppression = :suppression,
            suppressed_until = :suppressed_until,
            updated_at = :updated_at
        WHERE id = :id`

	res, err := r.db.NamedExecContext(ctx, query, deck)
	if err != nil {
		return fmt.Errorf("update query failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrDeckNotFound
	}
	return nil
}

func (r *SQLiteDeckRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM decks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete query failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrDeckNotFound
	}
	return nil
}
