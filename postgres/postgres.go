package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meikuraledutech/storytree"
)

// PGStore implements storytree.KV using PostgreSQL via pgx.
type PGStore struct {
	db *pgxpool.Pool
}

var _ storytree.KV = (*PGStore)(nil)

// New creates a new PGStore backed by the given pgx connection pool.
func New(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

// Load returns the value stored under key.
// Returns nil, nil if the key does not exist.
func (s *PGStore) Load(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow(ctx,
		`SELECT value FROM storytree_kv WHERE key = $1`, key,
	).Scan(&value)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("storytree: load %q: %w", key, err)
	}
	return value, nil
}

// Save inserts or replaces the value stored under key.
func (s *PGStore) Save(ctx context.Context, key string, value []byte) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO storytree_kv (key, value, updated_at) VALUES ($1, $2, NOW())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("storytree: save %q: %w", key, err)
	}
	return nil
}

// Delete removes key. No error if the key doesn't exist.
func (s *PGStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM storytree_kv WHERE key = $1`, key); err != nil {
		return fmt.Errorf("storytree: delete %q: %w", key, err)
	}
	return nil
}

// isNoRows checks if the error is a "no rows" error from pgx.
func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
