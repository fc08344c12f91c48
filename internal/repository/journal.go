package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"matchday-bot/internal/model"
)

// JournalRepository stores the history of charges and payments.
type JournalRepository struct {
	pool *pgxpool.Pool
}

// NewJournalRepository creates a new JournalRepository instance.
func NewJournalRepository(pool *pgxpool.Pool) *JournalRepository {
	return &JournalRepository{pool: pool}
}

// Record inserts entries in one batch.
func (r *JournalRepository) Record(ctx context.Context, entries ...model.JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}

	const query = `
		INSERT INTO journal_entries (handle, round, amount, kind, description, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin journal transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range entries {
		if _, err := tx.Exec(ctx, query, e.Handle, e.Round, e.Amount, e.Kind, e.Description); err != nil {
			return fmt.Errorf("failed to record journal entry: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit journal entries: %w", err)
	}
	return nil
}

// GetByHandle retrieves a participant's entries, newest first.
func (r *JournalRepository) GetByHandle(ctx context.Context, handle string, limit int) ([]*model.JournalEntry, error) {
	const query = `
		SELECT id, handle, round, amount, kind, description, created_at
		FROM journal_entries
		WHERE handle = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, handle, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get journal entries: %w", err)
	}
	defer rows.Close()

	var entries []*model.JournalEntry
	for rows.Next() {
		var e model.JournalEntry
		err := rows.Scan(
			&e.ID,
			&e.Handle,
			&e.Round,
			&e.Amount,
			&e.Kind,
			&e.Description,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal entries: %w", err)
	}

	return entries, nil
}

// TotalsByKind sums a participant's entries per kind.
func (r *JournalRepository) TotalsByKind(ctx context.Context, handle string) (map[string]int64, error) {
	const query = `
		SELECT kind, COALESCE(SUM(amount), 0)::BIGINT
		FROM journal_entries
		WHERE handle = $1
		GROUP BY kind
	`

	rows, err := r.pool.Query(ctx, query, handle)
	if err != nil {
		return nil, fmt.Errorf("failed to get journal totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]int64)
	for rows.Next() {
		var kind string
		var sum int64
		if err := rows.Scan(&kind, &sum); err != nil {
			return nil, fmt.Errorf("failed to scan journal total: %w", err)
		}
		totals[kind] = sum
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal totals: %w", err)
	}
	return totals, nil
}
