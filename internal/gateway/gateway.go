// Package gateway wraps the external search provider with rate limiting and
// a bounded-concurrency cap, translating provider rows into domain results.
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/semaphore"

	"github.com/scryhq/scry/internal/domain/research"
	"github.com/scryhq/scry/internal/ratelimit"
)

// DefaultMaxInFlight bounds concurrent provider calls, independently of the
// rate limiter: the semaphore caps in-flight calls, the limiter caps call rate.
const DefaultMaxInFlight = 5

// SearchOptions carries the provider filter arguments built from a query.
type SearchOptions struct {
	Category  string
	Livecrawl bool
}

// ProviderResult mirrors one row of the provider's search response. Optional
// fields are pointers so missing values are distinguishable from empty ones.
type ProviderResult struct {
	ID            string   `json:"id"`
	URL           string   `json:"url"`
	Title         *string  `json:"title"`
	Score         *float64 `json:"score"`
	PublishedDate *string  `json:"publishedDate"`
	Author        *string  `json:"author"`
	Text          *string  `json:"text"`
}

// SearchClient executes a raw provider search.
type SearchClient interface {
	Search(ctx context.Context, text string, opts SearchOptions) ([]ProviderResult, error)
}

// Gateway implements research.SearchGateway over a SearchClient.
type Gateway struct {
	client  SearchClient
	limiter *ratelimit.Limiter
	sem     *semaphore.Weighted
	logger  *slog.Logger
}

// New creates a gateway. maxInFlight <= 0 falls back to DefaultMaxInFlight.
func New(client SearchClient, limiter *ratelimit.Limiter, maxInFlight int64, logger *slog.Logger) *Gateway {
	if maxInFlight <= 0 {
		maxInFlight = DefaultMaxInFlight
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		client:  client,
		limiter: limiter,
		sem:     semaphore.NewWeighted(maxInFlight),
		logger:  logger,
	}
}

// Search validates the query, waits for a rate token and an in-flight
// permit, executes the provider call, and maps rows into RawResults with
// missing fields defaulted. Provider failures are logged and wrapped in a
// ProviderError; retries, if any, belong to the caller.
func (g *Gateway) Search(ctx context.Context, q research.Query) ([]research.RawResult, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, research.ErrInvalidQuery
	}

	opts := SearchOptions{
		Category:  string(q.Category),
		Livecrawl: q.Livecrawl,
	}

	if err := g.limiter.Acquire(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limit: %w", err)
	}
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("waiting for search slot: %w", err)
	}
	defer g.sem.Release(1)

	rows, err := g.client.Search(ctx, q.Text, opts)
	if err != nil {
		g.logger.Error("search provider call failed", "query", q.Text, "error", err)
		return nil, &research.ProviderError{Query: q.Text, Err: err}
	}

	results := make([]research.RawResult, 0, len(rows))
	for _, row := range rows {
		results = append(results, research.RawResult{
			URL:           row.URL,
			ID:            row.ID,
			Title:         stringValue(row.Title),
			Score:         floatValue(row.Score),
			PublishedDate: stringValue(row.PublishedDate),
			Author:        stringValue(row.Author),
			Text:          research.NormalizeText(stringValue(row.Text)),
		})
	}
	return results, nil
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func floatValue(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
