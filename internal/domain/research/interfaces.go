package research

import (
	"context"
	"time"
)

// QueryGenerator produces optimized search queries for a research request.
// External collaborator; may fail on provider error.
type QueryGenerator interface {
	GenerateQueries(ctx context.Context, purpose, question string) ([]Query, error)
}

// Summarizer judges relevance and condenses content for a batch of raw
// results. Items it deems irrelevant yield no corresponding Summary.
type Summarizer interface {
	Summarize(ctx context.Context, qc QueryContext, items []RawResult) ([]Summary, error)
}

// SearchGateway executes one query against the search provider under rate
// and concurrency limits.
type SearchGateway interface {
	Search(ctx context.Context, q Query) ([]RawResult, error)
}

// IdentifierGenerator issues short collision-checked identifiers for results.
type IdentifierGenerator interface {
	GenerateID(ctx context.Context) (string, error)
}

// ResultRepository persists and retrieves research results.
type ResultRepository interface {
	// UpsertBatch writes a whole research run in one transaction: new rows
	// for unseen identifiers, an updated_at bump for known ones, and
	// idempotent query-result links. Results without a summary are skipped.
	UpsertBatch(ctx context.Context, sets []QueryResultSet, purpose, question string) error
	ListRecent(ctx context.Context, limit int) ([]PersistedResult, error)
	Get(ctx context.Context, id string) (*PersistedResult, error)
	GetFullTexts(ctx context.Context, ids []string) ([]PersistedResult, error)
}

// QueryRepository stores generated queries and returns their row identifiers.
type QueryRepository interface {
	Create(ctx context.Context, q Query) (string, error)
}

// ResponseCache is a content-addressed TTL cache in front of the pipeline.
// Its absence never changes correctness, only latency and provider cost.
type ResponseCache interface {
	Key(parts ...string) string
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, payload []byte, ttl time.Duration) error
}
