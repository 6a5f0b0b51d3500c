package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCacheRepository_RoundTrip(t *testing.T) {
	db := NewTestDB(t)
	repo := NewCacheRepository(db)
	ctx := context.Background()

	expiry := time.Now().UTC().Add(time.Hour)
	require.NoError(t, repo.PutEntry(ctx, "k1", []byte("payload"), &expiry))

	payload, gotExpiry, found, err := repo.GetEntry(ctx, "k1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("payload"), payload)
	require.NotNil(t, gotExpiry)
	require.WithinDuration(t, expiry, *gotExpiry, time.Second)
}

func TestCacheRepository_NilExpiry(t *testing.T) {
	db := NewTestDB(t)
	repo := NewCacheRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.PutEntry(ctx, "k1", []byte("v"), nil))

	_, expiry, found, err := repo.GetEntry(ctx, "k1")
	require.NoError(t, err)
	require.True(t, found)
	require.Nil(t, expiry)
}

func TestCacheRepository_UpsertReplaces(t *testing.T) {
	db := NewTestDB(t)
	repo := NewCacheRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.PutEntry(ctx, "k1", []byte("first"), nil))
	require.NoError(t, repo.PutEntry(ctx, "k1", []byte("second"), nil))

	payload, _, found, err := repo.GetEntry(ctx, "k1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("second"), payload)
}

func TestCacheRepository_MissingAndDelete(t *testing.T) {
	db := NewTestDB(t)
	repo := NewCacheRepository(db)
	ctx := context.Background()

	_, _, found, err := repo.GetEntry(ctx, "absent")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, repo.PutEntry(ctx, "k1", []byte("v"), nil))
	require.NoError(t, repo.DeleteEntry(ctx, "k1"))

	_, _, found, err = repo.GetEntry(ctx, "k1")
	require.NoError(t, err)
	require.False(t, found)

	// Deleting a missing key is a no-op.
	require.NoError(t, repo.DeleteEntry(ctx, "k1"))
}
