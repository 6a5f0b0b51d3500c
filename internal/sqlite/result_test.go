package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/scryhq/scry/internal/domain/research"
)

func seedBatch(t *testing.T, db *DB) ([]research.QueryResultSet, *ResultRepository) {
	t.Helper()

	queries := NewQueryRepository(db)
	ctx := context.Background()

	q1ID, err := queries.Create(ctx, research.Query{Text: "first query:"})
	require.NoError(t, err)
	q2ID, err := queries.Create(ctx, research.Query{Text: "second query:", Category: research.CategoryNews})
	require.NoError(t, err)

	sets := []research.QueryResultSet{
		{
			QueryID: q1ID,
			Query:   research.Query{Text: "first query:"},
			RawResults: []research.RawResult{
				{ID: "bold-fox", URL: "https://a.test", Title: "A", Score: 0.9, Text: "alpha"},
				{ID: "calm-owl", URL: "https://b.test", Title: "B", Score: 0.8, Text: "beta"},
				{ID: "pale-elk", URL: "https://c.test", Title: "C", Score: 0.7, Text: "gamma"},
			},
			Summaries: []research.Summary{
				{ID: "bold-fox", RelevanceSummary: "covers A", DenseSummary: "dense A"},
				{ID: "calm-owl", RelevanceSummary: "covers B", DenseSummary: "dense B"},
			},
		},
		{
			QueryID: q2ID,
			Query:   research.Query{Text: "second query:", Category: research.CategoryNews},
			RawResults: []research.RawResult{
				{ID: "wild-tern", URL: "https://d.test", Title: "D", Score: 0.95, Text: "delta"},
			},
			Summaries: []research.Summary{
				{ID: "wild-tern", RelevanceSummary: "covers D", DenseSummary: "dense D"},
			},
		},
	}

	return sets, NewResultRepository(db)
}

func TestResultRepository_UpsertBatch(t *testing.T) {
	db := NewTestDB(t)
	sets, repo := seedBatch(t, db)
	ctx := context.Background()

	require.NoError(t, repo.UpsertBatch(ctx, sets, "eval", "what is X"))

	// Only summarized results are persisted: 2 + 1.
	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM results`).Scan(&count))
	require.Equal(t, 3, count)

	// No row for the result the summarizer filtered out.
	_, err := repo.Get(ctx, "pale-elk")
	require.ErrorIs(t, err, research.ErrNotFound)

	// Links exist for every summarized (query, result) pair.
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM query_results`).Scan(&count))
	require.Equal(t, 3, count)

	got, err := repo.Get(ctx, "bold-fox")
	require.NoError(t, err)
	require.Equal(t, "A", got.Title)
	require.Equal(t, "dense A", got.DenseSummary)
	require.Equal(t, "covers A", got.RelevanceSummary)
	require.Equal(t, "eval", got.QueryPurpose)
	require.Equal(t, "what is X", got.QueryQuestion)
	require.Equal(t, 0.9, got.RelevanceScore)
}

func TestResultRepository_UpsertBatchIdempotent(t *testing.T) {
	db := NewTestDB(t)
	sets, repo := seedBatch(t, db)
	ctx := context.Background()

	require.NoError(t, repo.UpsertBatch(ctx, sets, "eval", "what is X"))

	first, err := repo.Get(ctx, "bold-fox")
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, repo.UpsertBatch(ctx, sets, "eval", "what is X"))

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM results`).Scan(&count))
	require.Equal(t, 3, count, "re-running the batch must not add rows")
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM query_results`).Scan(&count))
	require.Equal(t, 3, count, "re-running the batch must not add links")

	second, err := repo.Get(ctx, "bold-fox")
	require.NoError(t, err)
	require.Equal(t, first.CreatedAt, second.CreatedAt, "created_at never changes")
	require.True(t, second.UpdatedAt.After(first.UpdatedAt), "updated_at advances on re-observation")
}

func TestResultRepository_SharedResultAcrossQueries(t *testing.T) {
	db := NewTestDB(t)
	queries := NewQueryRepository(db)
	repo := NewResultRepository(db)
	ctx := context.Background()

	q1ID, err := queries.Create(ctx, research.Query{Text: "q1:"})
	require.NoError(t, err)
	q2ID, err := queries.Create(ctx, research.Query{Text: "q2:"})
	require.NoError(t, err)

	shared := research.RawResult{ID: "gray-wren", URL: "https://s.test", Title: "S", Score: 0.5, Text: "shared"}
	summary := research.Summary{ID: "gray-wren", RelevanceSummary: "rel", DenseSummary: "dense"}

	// The same identifier surfaces under both queries in one batch.
	sets := []research.QueryResultSet{
		{QueryID: q1ID, RawResults: []research.RawResult{shared}, Summaries: []research.Summary{summary}},
		{QueryID: q2ID, RawResults: []research.RawResult{shared}, Summaries: []research.Summary{summary}},
	}
	require.NoError(t, repo.UpsertBatch(ctx, sets, "p", "q"))

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM results`).Scan(&count))
	require.Equal(t, 1, count)
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM query_results`).Scan(&count))
	require.Equal(t, 2, count)
}

func TestResultRepository_ListRecentOrdering(t *testing.T) {
	db := NewTestDB(t)
	sets, repo := seedBatch(t, db)
	ctx := context.Background()

	require.NoError(t, repo.UpsertBatch(ctx, sets, "eval", "what is X"))

	results, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, results, 3)
	require.Equal(t, "wild-tern", results[0].ID, "highest relevance first")
	require.Equal(t, "bold-fox", results[1].ID)
	require.Equal(t, "calm-owl", results[2].ID)

	limited, err := repo.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
}

func TestResultRepository_GetNotFound(t *testing.T) {
	db := NewTestDB(t)
	repo := NewResultRepository(db)

	_, err := repo.Get(context.Background(), "missing-id")
	require.ErrorIs(t, err, research.ErrNotFound)
}

func TestResultRepository_GetFullTexts(t *testing.T) {
	db := NewTestDB(t)
	sets, repo := seedBatch(t, db)
	ctx := context.Background()

	require.NoError(t, repo.UpsertBatch(ctx, sets, "eval", "what is X"))

	results, err := repo.GetFullTexts(ctx, []string{"wild-tern", "missing-id", "bold-fox"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "wild-tern", results[0].ID, "input order preserved")
	require.Equal(t, "bold-fox", results[1].ID)
	require.Equal(t, "delta", results[0].Text)
}

func TestResultRepository_Exists(t *testing.T) {
	db := NewTestDB(t)
	sets, repo := seedBatch(t, db)
	ctx := context.Background()

	exists, err := repo.Exists(ctx, "bold-fox")
	require.NoError(t, err)
	require.False(t, exists)

	require.NoError(t, repo.UpsertBatch(ctx, sets, "eval", "what is X"))

	exists, err = repo.Exists(ctx, "bold-fox")
	require.NoError(t, err)
	require.True(t, exists)
}
