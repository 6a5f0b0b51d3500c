package research

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/errgroup"
)

const (
	defaultCacheTTL  = 7 * 24 * time.Hour
	defaultListLimit = 25
	persistTimeout   = 30 * time.Second
	maxIDWorkers     = 8
)

// Service orchestrates a research call: query generation, rate-limited
// search fan-out, identifier assignment, summarization fan-out, assembly,
// caching, and a fire-and-forget background write.
type Service struct {
	generator  QueryGenerator
	summarizer Summarizer
	gateway    SearchGateway
	ids        IdentifierGenerator
	results    ResultRepository
	queries    QueryRepository
	cache      ResponseCache
	cacheTTL   time.Duration
	logger     *slog.Logger

	// Background persistence: schedulePersist appends to an unbounded queue
	// and returns immediately, so a write backlog never delays the caller.
	// One drain worker, hosted on the pool, applies queued batches in order.
	// The WaitGroup lets Close flush the queue instead of abandoning it.
	persistPool   *ants.Pool
	persistWG     sync.WaitGroup
	persistMu     sync.Mutex
	persistCond   *sync.Cond
	persistQueue  []*ResearchResult
	persistClosed bool
}

// Option configures a Service.
type Option func(*Service)

// WithCacheTTL overrides how long assembled results stay cached.
// A non-positive ttl caches entries without expiry.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.cacheTTL = ttl
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates a research service. All collaborators are injected;
// the service owns only the background-persistence pool.
func NewService(
	generator QueryGenerator,
	summarizer Summarizer,
	gateway SearchGateway,
	ids IdentifierGenerator,
	results ResultRepository,
	queries QueryRepository,
	cache ResponseCache,
	opts ...Option,
) (*Service, error) {
	pool, err := ants.NewPool(1)
	if err != nil {
		return nil, fmt.Errorf("creating persistence pool: %w", err)
	}

	s := &Service{
		generator:   generator,
		summarizer:  summarizer,
		gateway:     gateway,
		ids:         ids,
		results:     results,
		queries:     queries,
		cache:       cache,
		cacheTTL:    defaultCacheTTL,
		logger:      slog.Default(),
		persistPool: pool,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.persistCond = sync.NewCond(&s.persistMu)
	if err := pool.Submit(s.drainPersistQueue); err != nil {
		pool.Release()
		return nil, fmt.Errorf("starting persistence worker: %w", err)
	}
	return s, nil
}

// Close flushes queued background writes and releases the pool.
func (s *Service) Close() error {
	s.persistMu.Lock()
	s.persistClosed = true
	s.persistCond.Broadcast()
	s.persistMu.Unlock()

	s.persistWG.Wait()
	s.persistPool.Release()
	return nil
}

// Research answers a research question. The returned result covers one
// QueryResultSet per generated query; a failed query yields an empty set
// rather than aborting its siblings. Persistence happens in the background
// after the call returns.
func (s *Service) Research(ctx context.Context, purpose, question string) (*ResearchResult, error) {
	key := s.cache.Key(purpose, question)
	if cached := s.cacheLookup(ctx, key); cached != nil {
		s.logger.Debug("research cache hit", "question", question)
		return cached, nil
	}

	queries, err := s.generator.GenerateQueries(ctx, purpose, question)
	if err != nil {
		return nil, fmt.Errorf("generating queries: %w", err)
	}
	if len(queries) == 0 {
		return nil, ErrNoQueriesGenerated
	}
	s.logger.Info("research started", "question", question, "queries", len(queries))

	sets := s.searchAll(ctx, queries)

	if err := s.assignIdentifiers(ctx, sets); err != nil {
		return nil, fmt.Errorf("assigning identifiers: %w", err)
	}

	s.summarizeAll(ctx, QueryContext{Purpose: purpose, Question: question}, sets)

	result := &ResearchResult{
		Purpose:         purpose,
		Question:        question,
		QueryResultSets: sets,
	}

	s.cacheStore(ctx, key, result)
	s.schedulePersist(result)

	return result, nil
}

// ListRecentResults returns stored results ordered by relevance score then
// recency, both descending.
func (s *Service) ListRecentResults(ctx context.Context, limit int) ([]PersistedResult, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.results.ListRecent(ctx, limit)
}

// GetResult returns one stored result by identifier, or ErrNotFound.
func (s *Service) GetResult(ctx context.Context, id string) (*PersistedResult, error) {
	return s.results.Get(ctx, id)
}

// GetFullTexts returns the stored results for ids, in input order.
func (s *Service) GetFullTexts(ctx context.Context, ids []string) ([]PersistedResult, error) {
	return s.results.GetFullTexts(ctx, ids)
}

// searchAll fans out one gateway call per query. The gateway's own semaphore
// bounds concurrency; completion order across queries is nondeterministic
// but the returned slice preserves generation order.
func (s *Service) searchAll(ctx context.Context, queries []Query) []QueryResultSet {
	sets := make([]QueryResultSet, len(queries))
	var wg sync.WaitGroup
	for i, q := range queries {
		wg.Add(1)
		go func(i int, q Query) {
			defer wg.Done()
			sets[i] = s.runQuery(ctx, q)
		}(i, q)
	}
	wg.Wait()
	return sets
}

// runQuery stores the query row and executes its search. Failures are this
// query's alone: they are logged and leave the set empty.
func (s *Service) runQuery(ctx context.Context, q Query) QueryResultSet {
	set := QueryResultSet{Query: q}

	queryID, err := s.queries.Create(ctx, q)
	if err != nil {
		s.logger.Error("storing query failed", "query", q.Text, "error", err)
		return set
	}
	set.QueryID = queryID

	raw, err := s.gateway.Search(ctx, q)
	if err != nil {
		s.logger.Error("search failed", "query", q.Text, "error", err)
		return set
	}
	set.RawResults = raw
	return set
}

// assignIdentifiers replaces provider-assigned IDs with fresh word-pair
// identifiers across all sets. Identifier failures are fatal for the
// request: without stable IDs, summaries cannot be joined to results.
func (s *Service) assignIdentifiers(ctx context.Context, sets []QueryResultSet) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxIDWorkers)
	for si := range sets {
		for ri := range sets[si].RawResults {
			g.Go(func() error {
				id, err := s.ids.GenerateID(gctx)
				if err != nil {
					return err
				}
				sets[si].RawResults[ri].ID = id
				return nil
			})
		}
	}
	return g.Wait()
}

// summarizeAll fans out one summarizer call per non-empty set. A failed
// summarization leaves that set without summaries, which the store treats
// as "nothing relevant".
func (s *Service) summarizeAll(ctx context.Context, qc QueryContext, sets []QueryResultSet) {
	var wg sync.WaitGroup
	for i := range sets {
		if len(sets[i].RawResults) == 0 {
			continue
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			summaries, err := s.summarizer.Summarize(ctx, qc, sets[i].RawResults)
			if err != nil {
				s.logger.Error("summarization failed", "query", sets[i].Query.Text, "error", err)
				return
			}
			sets[i].Summaries = summaries
		}(i)
	}
	wg.Wait()
}

func (s *Service) cacheLookup(ctx context.Context, key string) *ResearchResult {
	payload, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("cache lookup failed", "error", err)
		return nil
	}
	if !ok {
		return nil
	}
	var result ResearchResult
	if err := json.Unmarshal(payload, &result); err != nil {
		s.logger.Warn("discarding undecodable cache entry", "error", err)
		return nil
	}
	return &result
}

func (s *Service) cacheStore(ctx context.Context, key string, result *ResearchResult) {
	payload, err := json.Marshal(result)
	if err != nil {
		s.logger.Warn("cache encode failed", "error", err)
		return
	}
	if err := s.cache.Put(ctx, key, payload, s.cacheTTL); err != nil {
		s.logger.Warn("cache store failed", "error", err)
	}
}

// schedulePersist queues the finished result for the background writer and
// returns immediately, regardless of any write backlog. Ownership transfers
// here: the result is not mutated again. Results arriving after Close are
// dropped with a log line.
func (s *Service) schedulePersist(result *ResearchResult) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if s.persistClosed {
		s.logger.Error("dropping background persist, service closed", "question", result.Question)
		return
	}
	s.persistWG.Add(1)
	s.persistQueue = append(s.persistQueue, result)
	s.persistCond.Signal()
}

// drainPersistQueue applies queued batches one at a time until Close empties
// the queue. Store-level write serialization is the repository's concern;
// the single worker only keeps background writes from competing with each
// other.
func (s *Service) drainPersistQueue() {
	for {
		s.persistMu.Lock()
		for len(s.persistQueue) == 0 && !s.persistClosed {
			s.persistCond.Wait()
		}
		batch := s.persistQueue
		s.persistQueue = nil
		closed := s.persistClosed
		s.persistMu.Unlock()

		for _, result := range batch {
			s.persistBatch(result)
			s.persistWG.Done()
		}
		if closed && len(batch) == 0 {
			return
		}
	}
}

// persistBatch writes one result. Failures are logged, never surfaced;
// caller cancellation does not reach this write.
func (s *Service) persistBatch(result *ResearchResult) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.results.UpsertBatch(ctx, result.QueryResultSets, result.Purpose, result.Question); err != nil {
		s.logger.Error("background persist failed", "question", result.Question, "error", err)
	}
}
