package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `scry runs multi-query web research and stores every summarized result for later reuse.

Core concepts:
- Purpose + Question: the research tool's inputs. Purpose explains why you need the information; question says what, specifically. Richer inputs produce better queries.
- Query: a generated neural-search string, optionally restricted to a content category or to recently crawled pages.
- Result: a summarized source document with a stable word-pair ID (e.g. "calm-owl"). IDs persist across research calls.
- Dense summary vs full text: research and list_recent_results return dense summaries to keep context small; fetch full source text only when you need it.

Default workflow:
1) Call research(purpose, question) with detailed, natural-language inputs.
2) Read the relevance and dense summaries; note the IDs of sources worth keeping.
3) Call get_full_texts(ids) only for the handful of sources you need verbatim.
4) In later chats, list_recent_results and get_result recover earlier findings without re-searching.

Notes:
- Repeating an identical purpose+question within the cache window returns the cached result instead of re-searching.
- A query that fails upstream returns an empty result set for that query; the rest of the results are unaffected.

Docs (progressive disclosure):
- scry://docs/writing-inputs (how to phrase purpose and question)
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "scry://docs/writing-inputs",
		Name:        "docs_writing_inputs",
		Title:       "Writing research inputs",
		Description: "How to phrase purpose and question so query generation produces strong searches.",
		Content: `# Writing research inputs

The research tool generates its own search queries; your job is to give it
enough context to generate good ones.

## Purpose

Explain why you want the information. Include your broader goal, how the
information will be used, the analytical lens, required technical depth, and
whether you care about historical, current, or emerging material.

Weak: "research for an article"
Strong: "I'm writing an academic paper analyzing how luxury brands commodify
spiritual practices, focusing on the intersection of capitalism and cultural
appropriation in the wellness industry"

## Question

State what you want to know, precisely. Include key concepts, the aspects to
focus on, relevant timeframes, and the kinds of sources that would help.

Weak: "wellness industry"
Strong: "How do modern wellness companies incorporate and market traditional
spiritual practices? Looking for both academic analysis and concrete examples
from major brands"

## What happens with your inputs

Several queries are generated per call, often mixing category-restricted
searches (research papers, news) with unrestricted ones, and marking queries
that need content from the last month for live crawling. Everything returned
has already been filtered for relevance against your purpose and question.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		doc := doc

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
