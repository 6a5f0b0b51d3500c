package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/llms"

	"github.com/scryhq/scry/internal/domain/research"
)

const generateAttempts = 3

// QueryGenerator turns a research purpose and question into search queries
// using a chat model in JSON mode.
type QueryGenerator struct {
	model  llms.Model
	logger *slog.Logger
}

// NewQueryGenerator creates a generator backed by model.
func NewQueryGenerator(model llms.Model, logger *slog.Logger) *QueryGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryGenerator{
		model:  model,
		logger: logger.With("component", "query-generator"),
	}
}

type generatedQuery struct {
	Text      string  `json:"text"`
	Category  *string `json:"category"`
	Livecrawl bool    `json:"livecrawl"`
}

type generatedQueries struct {
	Queries []generatedQuery `json:"queries"`
}

// GenerateQueries produces optimized search queries. Malformed model output
// is retried up to three times; queries with blank text or an unknown
// category are dropped rather than failing the call.
func (g *QueryGenerator) GenerateQueries(ctx context.Context, purpose, question string) ([]research.Query, error) {
	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(queryGenerationSystemPrompt)},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(fmt.Sprintf("**Purpose:** %s\n**Question:** %s", purpose, question)),
			},
		},
	}

	var parsed generatedQueries
	var lastErr error
	for attempt := 0; attempt < generateAttempts; attempt++ {
		response, err := g.model.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			return nil, fmt.Errorf("generating queries: %w", err)
		}
		if len(response.Choices) == 0 {
			return nil, fmt.Errorf("generating queries: model returned no choices")
		}

		text := stripFences(response.Choices[0].Content)
		if err := json.Unmarshal([]byte(text), &parsed); err != nil {
			lastErr = err
			g.logger.Warn("unparseable query generation response",
				"attempt", attempt+1, "error", err)
			continue
		}
		lastErr = nil
		break
	}
	if lastErr != nil {
		return nil, fmt.Errorf("parsing generated queries: %w", lastErr)
	}

	queries := make([]research.Query, 0, len(parsed.Queries))
	for _, q := range parsed.Queries {
		text := strings.TrimSpace(q.Text)
		if text == "" {
			continue
		}
		var category research.Category
		if q.Category != nil && *q.Category != "" {
			category = research.Category(*q.Category)
			if !category.Valid() {
				g.logger.Warn("dropping query with unknown category",
					"category", *q.Category, "query", text)
				continue
			}
		}
		queries = append(queries, research.Query{
			Text:      text,
			Category:  category,
			Livecrawl: q.Livecrawl,
		})
	}

	g.logger.Debug("generated queries", "question", question, "count", len(queries))
	return queries, nil
}
