package wordid

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu       sync.Mutex
	existing map[string]bool
	err      error
}

func (s *fakeStore) Exists(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	return s.existing[id], nil
}

func TestGenerator_Format(t *testing.T) {
	g, err := New(&fakeStore{})
	require.NoError(t, err)

	id, err := g.GenerateID(context.Background())
	require.NoError(t, err)
	require.Regexp(t, regexp.MustCompile(`^[a-z]+-[a-z]+$`), id)
}

func TestGenerator_NoDuplicatesAcrossConcurrentCallers(t *testing.T) {
	g, err := New(&fakeStore{})
	require.NoError(t, err)

	const n = 200
	ids := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := g.GenerateID(context.Background())
			require.NoError(t, err)
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool, n)
	for id := range ids {
		require.False(t, seen[id], "identifier %q issued twice", id)
		seen[id] = true
	}
}

func TestGenerator_AvoidsExistingStoreIDs(t *testing.T) {
	store := &fakeStore{existing: map[string]bool{}}
	g, err := New(&fakeStore{})
	require.NoError(t, err)

	// Mark most of a tiny word space as taken and verify only free pairs
	// come back.
	g.adjectives = []string{"bold", "calm"}
	g.nouns = []string{"fox", "owl"}
	store.existing["bold-fox"] = true
	store.existing["bold-owl"] = true
	store.existing["calm-fox"] = true
	g.store = store

	id, err := g.GenerateID(context.Background())
	require.NoError(t, err)
	require.Equal(t, "calm-owl", id)
}

func TestGenerator_RetryCeiling(t *testing.T) {
	store := &fakeStore{existing: map[string]bool{
		"bold-fox": true,
	}}
	g, err := New(store)
	require.NoError(t, err)
	g.adjectives = []string{"bold"}
	g.nouns = []string{"fox"}

	_, err = g.GenerateID(context.Background())
	require.ErrorIs(t, err, ErrSpaceExhausted)
}

func TestGenerator_StoreError(t *testing.T) {
	boom := errors.New("store down")
	g, err := New(&fakeStore{err: boom})
	require.NoError(t, err)

	_, err = g.GenerateID(context.Background())
	require.ErrorIs(t, err, boom)
}
