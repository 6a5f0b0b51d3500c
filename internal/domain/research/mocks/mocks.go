package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/scryhq/scry/internal/domain/research"
)

// QueryGenerator is a mock for research.QueryGenerator.
type QueryGenerator struct {
	mock.Mock
}

func (m *QueryGenerator) GenerateQueries(ctx context.Context, purpose, question string) ([]research.Query, error) {
	args := m.Called(ctx, purpose, question)
	if queries, ok := args.Get(0).([]research.Query); ok {
		return queries, args.Error(1)
	}
	return nil, args.Error(1)
}

// Summarizer is a mock for research.Summarizer.
type Summarizer struct {
	mock.Mock
}

func (m *Summarizer) Summarize(ctx context.Context, qc research.QueryContext, items []research.RawResult) ([]research.Summary, error) {
	args := m.Called(ctx, qc, items)
	if summaries, ok := args.Get(0).([]research.Summary); ok {
		return summaries, args.Error(1)
	}
	return nil, args.Error(1)
}

// SearchGateway is a mock for research.SearchGateway.
type SearchGateway struct {
	mock.Mock
}

func (m *SearchGateway) Search(ctx context.Context, q research.Query) ([]research.RawResult, error) {
	args := m.Called(ctx, q)
	if results, ok := args.Get(0).([]research.RawResult); ok {
		return results, args.Error(1)
	}
	return nil, args.Error(1)
}

// IdentifierGenerator is a mock for research.IdentifierGenerator.
type IdentifierGenerator struct {
	mock.Mock
}

func (m *IdentifierGenerator) GenerateID(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// ResultRepository is a mock for research.ResultRepository.
type ResultRepository struct {
	mock.Mock
}

func (m *ResultRepository) UpsertBatch(ctx context.Context, sets []research.QueryResultSet, purpose, question string) error {
	args := m.Called(ctx, sets, purpose, question)
	return args.Error(0)
}

func (m *ResultRepository) ListRecent(ctx context.Context, limit int) ([]research.PersistedResult, error) {
	args := m.Called(ctx, limit)
	if results, ok := args.Get(0).([]research.PersistedResult); ok {
		return results, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ResultRepository) Get(ctx context.Context, id string) (*research.PersistedResult, error) {
	args := m.Called(ctx, id)
	if result, ok := args.Get(0).(*research.PersistedResult); ok {
		return result, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ResultRepository) GetFullTexts(ctx context.Context, ids []string) ([]research.PersistedResult, error) {
	args := m.Called(ctx, ids)
	if results, ok := args.Get(0).([]research.PersistedResult); ok {
		return results, args.Error(1)
	}
	return nil, args.Error(1)
}

// QueryRepository is a mock for research.QueryRepository.
type QueryRepository struct {
	mock.Mock
}

func (m *QueryRepository) Create(ctx context.Context, q research.Query) (string, error) {
	args := m.Called(ctx, q)
	return args.String(0), args.Error(1)
}

// ResponseCache is a mock for research.ResponseCache.
type ResponseCache struct {
	mock.Mock
}

func (m *ResponseCache) Key(parts ...string) string {
	args := m.Called(parts)
	return args.String(0)
}

func (m *ResponseCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	if payload, ok := args.Get(0).([]byte); ok {
		return payload, args.Bool(1), args.Error(2)
	}
	return nil, args.Bool(1), args.Error(2)
}

func (m *ResponseCache) Put(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, payload, ttl)
	return args.Error(0)
}
