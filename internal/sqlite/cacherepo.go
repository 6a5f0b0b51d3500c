package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// CacheRepository implements cache.Store for SQLite.
type CacheRepository struct {
	db *DB
}

// NewCacheRepository creates a new CacheRepository.
func NewCacheRepository(db *DB) *CacheRepository {
	return &CacheRepository{db: db}
}

// GetEntry returns the payload and expiry for key, if present.
func (r *CacheRepository) GetEntry(ctx context.Context, key string) ([]byte, *time.Time, bool, error) {
	var payload []byte
	var expiresAt sql.NullTime
	err := r.db.QueryRowContext(ctx,
		`SELECT payload, expires_at FROM cache_entries WHERE key = ?`, key).
		Scan(&payload, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, nil, false, nil
	}
	if err != nil {
		return nil, nil, false, fmt.Errorf("failed to get cache entry: %w", err)
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		return payload, &t, true, nil
	}
	return payload, nil, true, nil
}

// PutEntry upserts a cache row; last writer wins.
func (r *CacheRepository) PutEntry(ctx context.Context, key string, payload []byte, expiresAt *time.Time) error {
	err := r.db.withWriteTx(ctx, func(tx *sql.Tx) error {
		var expiry interface{}
		if expiresAt != nil {
			expiry = *expiresAt
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO cache_entries (key, payload, expires_at) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, expires_at = excluded.expires_at`,
			key, payload, expiry)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to put cache entry: %w", err)
	}
	return nil
}

// DeleteEntry removes a cache row. Deleting a missing key is not an error.
func (r *CacheRepository) DeleteEntry(ctx context.Context, key string) error {
	err := r.db.withWriteTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = ?`, key)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}
