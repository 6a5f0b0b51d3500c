package sqlite

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scryhq/scry/internal/domain/research"
)

func TestQueryRepository_Create(t *testing.T) {
	db := NewTestDB(t)
	repo := NewQueryRepository(db)
	ctx := context.Background()

	id, err := repo.Create(ctx, research.Query{
		Text:      "Here is recent news about token buckets:",
		Category:  research.CategoryNews,
		Livecrawl: true,
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	var text string
	var category sql.NullString
	var livecrawl bool
	err = db.QueryRowContext(ctx,
		`SELECT text, category, livecrawl FROM queries WHERE id = ?`, id).
		Scan(&text, &category, &livecrawl)
	require.NoError(t, err)
	require.Equal(t, "Here is recent news about token buckets:", text)
	require.Equal(t, "news", category.String)
	require.True(t, livecrawl)
}

func TestQueryRepository_CreateWithoutCategory(t *testing.T) {
	db := NewTestDB(t)
	repo := NewQueryRepository(db)

	id, err := repo.Create(context.Background(), research.Query{Text: "plain query:"})
	require.NoError(t, err)

	var category sql.NullString
	err = db.QueryRow(`SELECT category FROM queries WHERE id = ?`, id).Scan(&category)
	require.NoError(t, err)
	require.False(t, category.Valid, "empty category stored as NULL")
}

func TestQueryRepository_IDsAreUnique(t *testing.T) {
	db := NewTestDB(t)
	repo := NewQueryRepository(db)
	ctx := context.Background()

	id1, err := repo.Create(ctx, research.Query{Text: "a:"})
	require.NoError(t, err)
	id2, err := repo.Create(ctx, research.Query{Text: "a:"})
	require.NoError(t, err)
	require.NotEqual(t, id1, id2)
}
