package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu      sync.Mutex
	entries map[string]memEntry
	deletes int
}

type memEntry struct {
	payload   []byte
	expiresAt *time.Time
}

func newMemStore() *memStore {
	return &memStore{entries: make(map[string]memEntry)}
}

func (s *memStore) GetEntry(ctx context.Context, key string) ([]byte, *time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, nil, false, nil
	}
	return e.payload, e.expiresAt, true, nil
}

func (s *memStore) PutEntry(ctx context.Context, key string, payload []byte, expiresAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memEntry{payload: payload, expiresAt: expiresAt}
	return nil
}

func (s *memStore) DeleteEntry(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	s.deletes++
	return nil
}

func TestCache_KeyIsStableAndOrderSensitive(t *testing.T) {
	c := New(newMemStore())
	k1 := c.Key("search text", "purpose", "question")
	k2 := c.Key("search text", "purpose", "question")
	k3 := c.Key("purpose", "search text", "question")
	require.Equal(t, k1, k2)
	require.NotEqual(t, k1, k3)
	require.Len(t, k1, 64)
}

func TestCache_PutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := New(newMemStore())
	key := c.Key("p", "q")

	require.NoError(t, c.Put(ctx, key, []byte(`{"answer":42}`), time.Minute))

	payload, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `{"answer":42}`, string(payload))
}

func TestCache_ExpiredEntryDeletedLazily(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	c := New(store)
	key := c.Key("p", "q")

	now := time.Now()
	c.now = func() time.Time { return now }
	require.NoError(t, c.Put(ctx, key, []byte("v"), 10*time.Second))

	// Advance past the TTL.
	c.now = func() time.Time { return now.Add(11 * time.Second) }
	_, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, 1, store.deletes, "expired row should be deleted on lookup")

	_, _, found, err := store.GetEntry(ctx, key)
	require.NoError(t, err)
	require.False(t, found)
}

func TestCache_ZeroTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	c := New(newMemStore())
	key := c.Key("p", "q")

	now := time.Now()
	c.now = func() time.Time { return now }
	require.NoError(t, c.Put(ctx, key, []byte("v"), 0))

	c.now = func() time.Time { return now.Add(1000 * time.Hour) }
	_, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCache_LastWriterWins(t *testing.T) {
	ctx := context.Background()
	c := New(newMemStore())
	key := c.Key("p", "q")

	require.NoError(t, c.Put(ctx, key, []byte("first"), time.Minute))
	require.NoError(t, c.Put(ctx, key, []byte("second"), time.Minute))

	payload, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "second", string(payload))
}

func TestCache_MissingKey(t *testing.T) {
	c := New(newMemStore())
	_, ok, err := c.Get(context.Background(), c.Key("nope"))
	require.NoError(t, err)
	require.False(t, ok)
}
