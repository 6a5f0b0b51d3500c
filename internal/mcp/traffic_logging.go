package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// payloadLogLimit caps logged params/results; full-text payloads can run to
// hundreds of kilobytes.
const payloadLogLimit = 2048

// trafficLoggingMiddleware logs every JSON-RPC exchange at debug level.
// direction distinguishes the receiving and sending middleware chains.
func trafficLoggingMiddleware(logger *slog.Logger, direction string) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			if logger == nil || !logger.Enabled(ctx, slog.LevelDebug) {
				return next(ctx, method, req)
			}

			sessionID := safeSessionID(req)
			logger.Debug("mcp traffic",
				"direction", direction,
				"stage", "request",
				"method", method,
				"session_id", sessionID,
				"params", formatPayload(safeParams(req)))

			start := time.Now()
			result, err := next(ctx, method, req)

			// Notifications have no response to report.
			if strings.HasPrefix(method, "notifications/") {
				return result, err
			}

			attrs := []any{
				"direction", direction,
				"stage", "response",
				"method", method,
				"session_id", sessionID,
				"duration", time.Since(start),
				"result", formatPayload(result),
			}
			if err != nil {
				attrs = append(attrs, "error", err)
			}
			logger.Debug("mcp traffic", attrs...)
			return result, err
		}
	}
}

// safeSessionID tolerates nil sessions and SDK panics on partially
// initialized requests.
func safeSessionID(req sdkmcp.Request) (id string) {
	defer func() { recover() }()
	if req == nil {
		return ""
	}
	if session := req.GetSession(); session != nil {
		id = session.ID()
	}
	return id
}

func safeParams(req sdkmcp.Request) (params any) {
	defer func() { recover() }()
	if req == nil {
		return nil
	}
	return req.GetParams()
}

func formatPayload(payload any) string {
	if payload == nil {
		return "<nil>"
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf("%T", payload)
	}
	if len(data) > payloadLogLimit {
		return string(data[:payloadLogLimit]) + "...(truncated)"
	}
	return string(data)
}
