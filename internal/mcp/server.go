package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/scryhq/scry/internal/domain/research"
)

// ResearchService defines the research operations needed by MCP.
type ResearchService interface {
	Research(ctx context.Context, purpose, question string) (*research.ResearchResult, error)
	ListRecentResults(ctx context.Context, limit int) ([]research.PersistedResult, error)
	GetResult(ctx context.Context, id string) (*research.PersistedResult, error)
	GetFullTexts(ctx context.Context, ids []string) ([]research.PersistedResult, error)
}

// Config contains server configuration.
type Config struct {
	Service       ResearchService
	AuthEnabled   bool
	AuthToken     string
	TransportMode string // "stdio" or "http"
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "scry",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	// Stdio runs locally over a pipe; bearer auth only makes sense on HTTP.
	if cfg.TransportMode != "stdio" && cfg.AuthEnabled {
		server.AddReceivingMiddleware(authMiddleware(cfg.AuthToken))
	}
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, cfg.Service)

	return server
}
