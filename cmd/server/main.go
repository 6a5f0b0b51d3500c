package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/scryhq/scry/internal/cache"
	"github.com/scryhq/scry/internal/config"
	"github.com/scryhq/scry/internal/domain/research"
	"github.com/scryhq/scry/internal/exa"
	"github.com/scryhq/scry/internal/gateway"
	"github.com/scryhq/scry/internal/llm"
	"github.com/scryhq/scry/internal/mcp"
	"github.com/scryhq/scry/internal/ratelimit"
	"github.com/scryhq/scry/internal/sqlite"
	"github.com/scryhq/scry/internal/transport"
	"github.com/scryhq/scry/internal/wordid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// Use stderr for logs in stdio mode to keep stdout clean for JSON-RPC.
	logWriter := io.Writer(os.Stdout)
	if cfg.Transport.Mode == "stdio" {
		logWriter = os.Stderr
	}
	if logPath := os.Getenv("SCRY_LOG_PATH"); logPath != "" {
		logFile, err := openCappedLogFile(logPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			defer logFile.Close()
			logWriter = logFile
		}
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		logger.Error("failed to prepare database path", "error", err)
		os.Exit(1)
	}

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	resultRepo := sqlite.NewResultRepository(db)
	queryRepo := sqlite.NewQueryRepository(db)
	cacheRepo := sqlite.NewCacheRepository(db)

	model, err := newChatModel(cfg.LLM)
	if err != nil {
		logger.Error("failed to create chat model", "error", err)
		os.Exit(1)
	}

	searchClient := exa.New(exa.Config{
		BaseURL:    cfg.Search.BaseURL,
		APIKey:     cfg.Search.APIKey,
		NumResults: cfg.Search.NumResults,
	})
	limiter := ratelimit.New(cfg.Search.Rate, cfg.Search.Burst)
	searchGateway := gateway.New(searchClient, limiter, int64(cfg.Search.MaxInFlight), logger)

	ids, err := wordid.New(resultRepo)
	if err != nil {
		logger.Error("failed to load identifier word lists", "error", err)
		os.Exit(1)
	}

	svc, err := research.NewService(
		llm.NewQueryGenerator(model, logger),
		llm.NewSummarizer(model, logger),
		searchGateway,
		ids,
		resultRepo,
		queryRepo,
		cache.New(cacheRepo),
		research.WithCacheTTL(time.Duration(cfg.Cache.TTL)),
		research.WithLogger(logger),
	)
	if err != nil {
		logger.Error("failed to create research service", "error", err)
		os.Exit(1)
	}
	defer svc.Close()

	mcpServer := mcp.NewServer(mcp.Config{
		Service:       svc,
		AuthEnabled:   cfg.Auth.Enabled,
		AuthToken:     cfg.Auth.Token,
		TransportMode: cfg.Transport.Mode,
		Logger:        logger,
	})

	if cfg.Transport.Mode == "stdio" {
		runStdioMode(logger, mcpServer)
	} else {
		runHTTPMode(logger, mcpServer, cfg.Server.Host, cfg.Server.Port)
	}
}

func newChatModel(cfg config.LLMConfig) (*openai.LLM, error) {
	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	return openai.New(opts...)
}

// runStdioMode serves MCP over stdin/stdout until EOF or a signal.
func runStdioMode(logger *slog.Logger, mcpServer *sdkmcp.Server) {
	logger.Info("starting stdio transport")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{}); err != nil {
		logger.Error("stdio server error", "error", err)
		os.Exit(1)
	}
	logger.Info("stdio transport closed")
}

// runHTTPMode serves the streamable MCP handler behind the chi router and
// drains in-flight requests on SIGINT/SIGTERM.
func runHTTPMode(logger *slog.Logger, mcpServer *sdkmcp.Server, host string, port int) {
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(r *http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{
			Stateless:      false,
			SessionTimeout: 30 * time.Minute,
		},
	)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", host, port),
		Handler: transport.NewRouter(mcpHandler, logger),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", httpServer.Addr)
		serveErr <- httpServer.ListenAndServe()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serveErr:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// cappedLogFile appends log output to a file, trimming it back to retainBytes
// whenever it grows past trimThreshold. The trim keeps the newest tail so a
// long-running stdio server cannot fill the disk with debug traffic.
type cappedLogFile struct {
	mu   sync.Mutex
	file *os.File
	size int64
}

const (
	trimThreshold = 6 << 20
	retainBytes   = 5 << 20
)

func openCappedLogFile(path string) (*cappedLogFile, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	w := &cappedLogFile{file: file, size: info.Size()}
	if err := w.trim(); err != nil {
		file.Close()
		return nil, err
	}
	return w, nil
}

func (w *cappedLogFile) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, err := w.file.Write(p)
	w.size += int64(n)
	if err != nil {
		return n, err
	}
	return n, w.trim()
}

func (w *cappedLogFile) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

// trim rewrites the file in place with only its newest retainBytes. Callers
// hold w.mu.
func (w *cappedLogFile) trim() error {
	if w.size <= trimThreshold {
		return nil
	}

	tail := make([]byte, retainBytes)
	n, err := w.file.ReadAt(tail, w.size-retainBytes)
	if err != nil && err != io.EOF {
		return err
	}
	tail = tail[:n]

	if err := w.file.Truncate(0); err != nil {
		return err
	}
	if _, err := w.file.WriteAt(tail, 0); err != nil {
		return err
	}
	if _, err := w.file.Seek(0, io.SeekEnd); err != nil {
		return err
	}
	w.size = int64(len(tail))
	return nil
}
