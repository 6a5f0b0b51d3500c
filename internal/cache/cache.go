// Package cache provides a content-addressed, TTL-expiring response cache
// for research requests. The cache is a pure optimization: a miss costs
// latency and provider calls, never correctness.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Store holds cache rows. A nil expiry means the entry never expires.
type Store interface {
	GetEntry(ctx context.Context, key string) (payload []byte, expiresAt *time.Time, found bool, err error)
	PutEntry(ctx context.Context, key string, payload []byte, expiresAt *time.Time) error
	DeleteEntry(ctx context.Context, key string) error
}

// Cache keys serialized payloads by a stable hash of the request tuple.
// Expired entries are treated as absent and deleted lazily on lookup; there
// is no background sweep.
type Cache struct {
	store Store
	now   func() time.Time
}

// New creates a cache over the given store.
func New(store Store) *Cache {
	return &Cache{store: store, now: time.Now}
}

// Key returns the SHA-256 of the JSON-canonicalized parts.
func (c *Cache) Key(parts ...string) string {
	// json.Marshal of a string slice is deterministic.
	data, err := json.Marshal(parts)
	if err != nil {
		// Marshalling strings cannot fail; keep the signature honest anyway.
		data = []byte(fmt.Sprint(parts))
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Get returns the payload for key if present and unexpired. An expired row
// is deleted and reported as absent.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	payload, expiresAt, found, err := c.store.GetEntry(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("cache lookup: %w", err)
	}
	if !found {
		return nil, false, nil
	}
	if expiresAt != nil && !c.now().Before(*expiresAt) {
		if err := c.store.DeleteEntry(ctx, key); err != nil {
			return nil, false, fmt.Errorf("deleting expired cache entry: %w", err)
		}
		return nil, false, nil
	}
	return payload, true, nil
}

// Put upserts payload under key. A positive ttl sets the expiry; ttl <= 0
// stores the entry without one. Last writer wins.
func (c *Cache) Put(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	var expiresAt *time.Time
	if ttl > 0 {
		t := c.now().Add(ttl)
		expiresAt = &t
	}
	if err := c.store.PutEntry(ctx, key, payload, expiresAt); err != nil {
		return fmt.Errorf("cache store: %w", err)
	}
	return nil
}
