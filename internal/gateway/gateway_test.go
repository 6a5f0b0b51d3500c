package gateway

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/scryhq/scry/internal/domain/research"
	"github.com/scryhq/scry/internal/ratelimit"
)

type fakeClient struct {
	mu       sync.Mutex
	calls    int
	lastText string
	lastOpts SearchOptions
	rows     []ProviderResult
	err      error
	block    chan struct{}
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (c *fakeClient) Search(ctx context.Context, text string, opts SearchOptions) ([]ProviderResult, error) {
	cur := c.inFlight.Add(1)
	defer c.inFlight.Add(-1)
	for {
		peak := c.peak.Load()
		if cur <= peak || c.peak.CompareAndSwap(peak, cur) {
			break
		}
	}
	if c.block != nil {
		<-c.block
	}
	c.mu.Lock()
	c.calls++
	c.lastText = text
	c.lastOpts = opts
	c.mu.Unlock()
	return c.rows, c.err
}

func newTestGateway(client SearchClient, maxInFlight int64) *Gateway {
	return New(client, ratelimit.New(1000, 1000), maxInFlight, nil)
}

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }

func TestGateway_BlankQueryRejected(t *testing.T) {
	client := &fakeClient{}
	g := newTestGateway(client, 2)

	_, err := g.Search(context.Background(), research.Query{Text: "   "})
	require.ErrorIs(t, err, research.ErrInvalidQuery)
	require.Equal(t, 0, client.calls, "provider must not be called for blank text")
}

func TestGateway_BuildsFilterArguments(t *testing.T) {
	client := &fakeClient{}
	g := newTestGateway(client, 2)

	_, err := g.Search(context.Background(), research.Query{
		Text:      "Here is a paper on token buckets:",
		Category:  research.CategoryResearchPaper,
		Livecrawl: true,
	})
	require.NoError(t, err)
	require.Equal(t, "Here is a paper on token buckets:", client.lastText)
	require.Equal(t, "research paper", client.lastOpts.Category)
	require.True(t, client.lastOpts.Livecrawl)
}

func TestGateway_MissingFieldsDefaulted(t *testing.T) {
	client := &fakeClient{rows: []ProviderResult{
		{
			ID:  "prov-1",
			URL: "https://example.com/a",
			// Title, Author, Score, Text all missing.
		},
		{
			ID:    "prov-2",
			URL:   "https://example.com/b",
			Title: strPtr("A Title"),
			Score: f64Ptr(0.93),
			Text:  strPtr("line one\n\n\tline two  "),
		},
	}}
	g := newTestGateway(client, 2)

	results, err := g.Search(context.Background(), research.Query{Text: "q:"})
	require.NoError(t, err)
	require.Len(t, results, 2)

	require.Equal(t, "", results[0].Title)
	require.Equal(t, "", results[0].Author)
	require.Equal(t, "", results[0].Text)
	require.Equal(t, 0.0, results[0].Score)

	require.Equal(t, "A Title", results[1].Title)
	require.Equal(t, 0.93, results[1].Score)
	require.Equal(t, "line one line two", results[1].Text, "text must be normalized")
}

func TestGateway_ProviderErrorWrapped(t *testing.T) {
	boom := errors.New("upstream 503")
	client := &fakeClient{err: boom}
	g := newTestGateway(client, 2)

	_, err := g.Search(context.Background(), research.Query{Text: "q:"})
	require.ErrorIs(t, err, boom)

	var provErr *research.ProviderError
	require.ErrorAs(t, err, &provErr)
	require.Equal(t, "q:", provErr.Query)
}

func TestGateway_ConcurrencyCap(t *testing.T) {
	block := make(chan struct{})
	client := &fakeClient{block: block}
	g := newTestGateway(client, 2)

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := g.Search(context.Background(), research.Query{Text: "q:"})
			require.NoError(t, err)
		}()
	}

	// Give the goroutines time to pile up against the semaphore.
	time.Sleep(50 * time.Millisecond)
	close(block)
	wg.Wait()

	require.LessOrEqual(t, client.peak.Load(), int32(2), "in-flight calls must not exceed the cap")
	require.Equal(t, 6, client.calls)
}
