package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tmc/langchaingo/llms"

	"github.com/scryhq/scry/internal/domain/research"
)

// Summarizer condenses raw search results into relevance and dense
// summaries, one model call per result.
type Summarizer struct {
	model  llms.Model
	logger *slog.Logger
}

// NewSummarizer creates a summarizer backed by model.
func NewSummarizer(model llms.Model, logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{
		model:  model,
		logger: logger.With("component", "summarizer"),
	}
}

type summarizeResponse struct {
	Relevant         bool   `json:"relevant"`
	RelevanceSummary string `json:"relevance_summary"`
	DenseSummary     string `json:"dense_summary"`
}

// Summarize fans out one model call per item. Items the model deems
// irrelevant are omitted, as are items whose call fails; relative order of
// the rest is preserved. The error return is reserved for the degenerate
// case where every call failed outright.
func (s *Summarizer) Summarize(ctx context.Context, qc research.QueryContext, items []research.RawResult) ([]research.Summary, error) {
	if len(items) == 0 {
		return nil, nil
	}

	summaries := make([]*research.Summary, len(items))
	errs := make([]error, len(items))

	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func(i int, item research.RawResult) {
			defer wg.Done()
			summary, err := s.summarizeOne(ctx, qc, item)
			if err != nil {
				errs[i] = err
				s.logger.Warn("summarizing result failed", "id", item.ID, "error", err)
				return
			}
			summaries[i] = summary
		}(i, item)
	}
	wg.Wait()

	out := make([]research.Summary, 0, len(items))
	for _, summary := range summaries {
		if summary != nil {
			out = append(out, *summary)
		}
	}
	if len(out) == 0 {
		for _, err := range errs {
			if err != nil {
				return nil, fmt.Errorf("summarizing results: %w", err)
			}
		}
	}
	return out, nil
}

// summarizeOne returns (nil, nil) when the model marks the item irrelevant.
func (s *Summarizer) summarizeOne(ctx context.Context, qc research.QueryContext, item research.RawResult) (*research.Summary, error) {
	user := fmt.Sprintf(
		"**Purpose:** %s\n**Question:** %s\n\n<result>\n<title>%s</title>\n<url>%s</url>\n<content>\n%s\n</content>\n</result>",
		qc.Purpose, qc.Question, item.Title, item.URL, item.Text,
	)
	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(summarizeSystemPrompt)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(user)},
		},
	}

	response, err := s.model.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
	if err != nil {
		return nil, err
	}
	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("model returned no choices")
	}

	var parsed summarizeResponse
	text := stripFences(response.Choices[0].Content)
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("parsing summary response: %w", err)
	}
	if !parsed.Relevant {
		return nil, nil
	}
	return &research.Summary{
		ID:               item.ID,
		RelevanceSummary: parsed.RelevanceSummary,
		DenseSummary:     parsed.DenseSummary,
	}, nil
}
