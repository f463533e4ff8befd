package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	domain "github.com/bryanwahyu/chat-pattern-explorer/internal/domain/analysis"
	"github.com/bryanwahyu/chat-pattern-explorer/internal/infra/storage"
)

// ResultStore keeps the whole saved list in one row of saved_results.
type ResultStore struct {
	db  *sql.DB
	key string
}

func NewResultStore(db *sql.DB, key string) *ResultStore {
	return &ResultStore{db: db, key: keyOrDefault(key)}
}

// EnsureSchema creates the saved_results table when missing.
func (r *ResultStore) EnsureSchema(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS saved_results (
  store_key  VARCHAR(191) NOT NULL PRIMARY KEY,
  payload    JSON         NOT NULL,
  updated_at DATETIME(6)  NOT NULL
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
`
	_, err := r.db.ExecContext(ctx, q)
	return err
}

// Load reads the saved list; a missing row is an empty list.
func (r *ResultStore) Load(ctx context.Context) ([]domain.SavedEntry, error) {
	const q = `
SELECT payload
FROM saved_results
WHERE store_key=? LIMIT 1;
`
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

// Replace upserts the full list.
func (r *ResultStore) Replace(ctx context.Context, entries []domain.SavedEntry) error {
	const q = `
INSERT INTO saved_results
  (store_key, payload, updated_at)
VALUES (?,?,?)
ON DUPLICATE KEY UPDATE
  payload=VALUES(payload), updated_at=VALUES(updated_at);
`
	b, err := storage.EncodeEntries(entries)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, q, r.key, string(b), time.Now().UTC())
	return err
}

func (r *ResultStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return r.db.PingContext(ctx)
}
