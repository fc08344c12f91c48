package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"matchday-bot/internal/model"
)

// DefaultStateKey is the row used when a single game runs per database.
const DefaultStateKey = "default"

// PostgresStore keeps the game document as a JSONB row.
type PostgresStore struct {
	pool *pgxpool.Pool
	key  string
}

// NewPostgresStore creates a PostgresStore storing the document under key.
func NewPostgresStore(pool *pgxpool.Pool, key string) *PostgresStore {
	if key == "" {
		key = DefaultStateKey
	}
	return &PostgresStore{pool: pool, key: key}
}

// Load reads the document. A missing row yields an empty document.
func (s *PostgresStore) Load(ctx context.Context) (*model.Document, error) {
	const query = `SELECT document FROM game_state WHERE key = $1`

	var raw []byte
	err := s.pool.QueryRow(ctx, query, s.key).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.NewDocument(), nil
		}
		return nil, fmt.Errorf("failed to load game state: %w", err)
	}
	return decodeDocument(raw)
}

// Save upserts the document.
func (s *PostgresStore) Save(ctx context.Context, doc *model.Document) error {
	const query = `
		INSERT INTO game_state (key, document, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE
		SET document = EXCLUDED.document, updated_at = NOW()
	`

	raw, err := encodeDocument(doc)
	if err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, query, s.key, raw); err != nil {
		return fmt.Errorf("failed to save game state: %w", err)
	}
	return nil
}
