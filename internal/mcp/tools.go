package mcp

import (
	"context"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/scryhq/scry/internal/domain/research"
)

const purposeDescription = `Why you need this information - provide detailed context to generate better queries.

Include:
- Your broader research context or goal
- How you plan to use this information
- Any specific perspective or lens you're analyzing from
- Level of technical depth needed
- Timeline relevance (historical, current, future trends)

Example: "I'm writing an academic paper analyzing how luxury brands commodify spiritual practices,
focusing on the intersection of capitalism and cultural appropriation in the wellness industry"`

const questionDescription = `Your specific research question or topic - be precise and detailed.

Include:
- Key concepts or terms you're investigating
- Specific aspects you want to focus on
- Any relevant timeframes
- Types of sources that would be most valuable
- Any specific examples or cases you're interested in

Example: "How do modern wellness companies incorporate and market traditional spiritual practices?
Looking for both academic analysis and concrete examples from major brands"`

// ResearchParams are the arguments for the research tool.
type ResearchParams struct {
	Purpose  string `json:"purpose" jsonschema:"why you need this information"`
	Question string `json:"question" jsonschema:"your specific research question or topic"`
}

// ListResultsParams are the arguments for the list_recent_results tool.
type ListResultsParams struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 25)"`
}

// GetResultParams are the arguments for the get_result tool.
type GetResultParams struct {
	ID string `json:"id" jsonschema:"word-pair result identifier, e.g. calm-owl"`
}

// GetFullTextsParams are the arguments for the get_full_texts tool.
type GetFullTextsParams struct {
	IDs []string `json:"ids" jsonschema:"word-pair result identifiers to fetch full source text for"`
}

func registerTools(server *sdkmcp.Server, svc ResearchService) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name: "research",
		Description: "Run a research pipeline: generate optimized search queries from your purpose and question, " +
			"execute them against a neural search index, and return summarized, relevance-filtered results. " +
			"Each result carries a stable word-pair ID usable with get_result and get_full_texts.\n\n" +
			"purpose: " + purposeDescription + "\n\nquestion: " + questionDescription,
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, params ResearchParams) (*sdkmcp.CallToolResult, *research.ResearchResult, error) {
		result, err := svc.Research(ctx, params.Purpose, params.Question)
		if err != nil {
			return nil, nil, mapError(err)
		}
		return textResult(formatResearchResult(result)), result, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name: "list_recent_results",
		Description: "List stored research results ordered by relevance then recency, both descending. " +
			"Returns dense summaries, not full source text.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, params ListResultsParams) (*sdkmcp.CallToolResult, any, error) {
		results, err := svc.ListRecentResults(ctx, params.Limit)
		if err != nil {
			return nil, nil, mapError(err)
		}
		formatted := make([]string, 0, len(results))
		for _, r := range results {
			formatted = append(formatted, formatResource(r))
		}
		return textResult(strings.Join(formatted, "\n\n")), nil, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_result",
		Description: "Get one stored research result by its word-pair identifier.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, params GetResultParams) (*sdkmcp.CallToolResult, any, error) {
		result, err := svc.GetResult(ctx, params.ID)
		if err != nil {
			return nil, nil, mapError(err)
		}
		return textResult(formatResource(*result)), nil, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name: "get_full_texts",
		Description: "Get the full source text for a list of stored results. " +
			"Unknown identifiers are skipped; known ones come back in input order.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, params GetFullTextsParams) (*sdkmcp.CallToolResult, any, error) {
		results, err := svc.GetFullTexts(ctx, params.IDs)
		if err != nil {
			return nil, nil, mapError(err)
		}
		formatted := make([]string, 0, len(results))
		for _, r := range results {
			formatted = append(formatted, formatFullText(r))
		}
		return textResult(strings.Join(formatted, "\n\n")), nil, nil
	})
}

func textResult(text string) *sdkmcp.CallToolResult {
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: text}},
	}
}
