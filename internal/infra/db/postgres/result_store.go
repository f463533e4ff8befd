package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	domain "github.com/bryanwahyu/chat-pattern-explorer/internal/domain/analysis"
	"github.com/bryanwahyu/chat-pattern-explorer/internal/infra/storage"
)

type ResultStore struct {
	db  *sql.DB
	key string
}

func NewResultStore(db *sql.DB, key string) *ResultStore {
	if strings.TrimSpace(key) == "" {
		key = storage.DefaultKey
	}
	return &ResultStore{db: db, key: key}
}

func (r *ResultStore) EnsureSchema(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS saved_results (
  store_key  TEXT        PRIMARY KEY,
  payload    JSONB       NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL
);
`
	_, err := r.db.ExecContext(ctx, q)
	return err
}

// Load reads the saved list; a missing row is an empty list.
func (r *ResultStore) Load(ctx context.Context) ([]domain.SavedEntry, error) {
	const q = `SELECT payload FROM saved_results WHERE store_key=$1 LIMIT 1;`

	var payload []byte
	err := r.db.QueryRowContext(ctx, q, r.key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return []domain.SavedEntry{}, nil
	}
	if err != nil {
		return nil, err
	}
	return storage.DecodeEntries(payload)
}

// Replace inserts or updates the full list
func (r *ResultStore) Replace(ctx context.Context, entries []domain.SavedEntry) error {
	const q = `
INSERT INTO saved_results
  (store_key, payload, updated_at)
VALUES ($1,$2,$3)
ON CONFLICT (store_key) DO UPDATE SET
  payload=EXCLUDED.payload,
  updated_at=EXCLUDED.updated_at;
`
	b, err := storage.EncodeEntries(entries)
	if err != nil {
		return err
	}
	// jsonb wants text, lib/pq would send []byte as bytea
	_, err = r.db.ExecContext(ctx, q, r.key, string(b), time.Now().UTC())
	return err
}

func (r *ResultStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return r.db.PingContext(ctx)
}
