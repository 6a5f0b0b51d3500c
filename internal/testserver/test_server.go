package testserver

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/scryhq/scry/internal/cache"
	"github.com/scryhq/scry/internal/domain/research"
	"github.com/scryhq/scry/internal/gateway"
	"github.com/scryhq/scry/internal/llm"
	"github.com/scryhq/scry/internal/mcp"
	"github.com/scryhq/scry/internal/ratelimit"
	"github.com/scryhq/scry/internal/sqlite"
	"github.com/scryhq/scry/internal/transport"
	"github.com/scryhq/scry/internal/wordid"
)

// Config injects the two external collaborators the stack talks to.
// Everything else (store, limiter, identifiers, cache, MCP server) is real.
type Config struct {
	SearchClient gateway.SearchClient
	Model        llms.Model
	AuthToken    string // enables bearer auth when non-empty
	CacheTTL     time.Duration
}

type TestServer struct {
	Server  *httptest.Server
	DB      *sqlite.DB
	Service *research.Service
	Token   string
}

// New builds the full research stack over an in-memory database and serves
// it through the streamable HTTP handler.
func New(t *testing.T, cfg Config) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	resultRepo := sqlite.NewResultRepository(db)
	queryRepo := sqlite.NewQueryRepository(db)
	cacheRepo := sqlite.NewCacheRepository(db)

	// High rate so tests never stall on the bucket.
	limiter := ratelimit.New(1000, 100)
	searchGateway := gateway.New(cfg.SearchClient, limiter, gateway.DefaultMaxInFlight, slog.Default())

	ids, err := wordid.New(resultRepo)
	require.NoError(t, err)

	opts := []research.Option{}
	if cfg.CacheTTL != 0 {
		opts = append(opts, research.WithCacheTTL(cfg.CacheTTL))
	}
	svc, err := research.NewService(
		llm.NewQueryGenerator(cfg.Model, nil),
		llm.NewSummarizer(cfg.Model, nil),
		searchGateway,
		ids,
		resultRepo,
		queryRepo,
		cache.New(cacheRepo),
		opts...,
	)
	require.NoError(t, err)

	mcpServer := mcp.NewServer(mcp.Config{
		Service:       svc,
		AuthEnabled:   cfg.AuthToken != "",
		AuthToken:     cfg.AuthToken,
		TransportMode: "http",
	})

	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return mcpServer },
		nil,
	)
	server := httptest.NewServer(transport.NewRouter(mcpHandler, nil))

	ts := &TestServer{
		Server:  server,
		DB:      db,
		Service: svc,
		Token:   cfg.AuthToken,
	}

	t.Cleanup(func() {
		server.Close()
		_ = svc.Close()
		_ = db.Close()
	})

	return ts
}

// Endpoint returns the MCP endpoint URL.
func (ts *TestServer) Endpoint() string {
	return ts.Server.URL + "/mcp"
}
