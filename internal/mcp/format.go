package mcp

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/scryhq/scry/internal/domain/research"
)

// Responses are rendered as lightweight XML-ish text. Agents parse this far
// more reliably than nested JSON, and it keeps token cost visible.

const maxAuthorLen = 120

func formatResearchResult(result *research.ResearchResult) string {
	var b strings.Builder
	for _, set := range result.QueryResultSets {
		b.WriteString(formatQueryHeader(set.Query))
		b.WriteString("\n")
		byID := make(map[string]research.RawResult, len(set.RawResults))
		for _, raw := range set.RawResults {
			byID[raw.ID] = raw
		}
		for _, summary := range set.Summaries {
			raw := byID[summary.ID]
			b.WriteString(formatResultSummary(raw, summary))
			b.WriteString("\n")
		}
	}
	return wrapInResultsTag(strings.TrimRight(b.String(), "\n"))
}

func formatQueryHeader(q research.Query) string {
	var b strings.Builder
	b.WriteString("<query>\n")
	fmt.Fprintf(&b, "<text>%s</text>\n", q.Text)
	if q.Category != "" {
		fmt.Fprintf(&b, "<category>%s</category>\n", q.Category)
	}
	if q.Livecrawl {
		b.WriteString("<crawl-status>recent</crawl-status>\n")
	}
	b.WriteString("</query>")
	return b.String()
}

func formatResultSummary(raw research.RawResult, summary research.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<result id=%q>\n\n", summary.ID)
	fmt.Fprintf(&b, "<title>%s</title>\n", raw.Title)
	if date := formatDate(raw.PublishedDate); date != "" {
		fmt.Fprintf(&b, "<date>%s</date>\n", date)
	}
	if raw.Author != "" {
		fmt.Fprintf(&b, "<author>%s</author>\n", truncateAuthor(raw.Author))
	}
	fmt.Fprintf(&b, "\n<relevance>\n%s\n</relevance>\n", summary.RelevanceSummary)
	fmt.Fprintf(&b, "\n<summary>\n%s\n</summary>\n", summary.DenseSummary)
	b.WriteString("</result>")
	return b.String()
}

// formatResource renders a stored result with its dense summary as content.
func formatResource(r research.PersistedResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<resource id=%q>\n", r.ID)
	fmt.Fprintf(&b, "<title>%s</title>\n", r.Title)
	if r.Author != "" {
		fmt.Fprintf(&b, "<author>%s</author>\n", truncateAuthor(r.Author))
	}
	if date := formatDate(r.PublishedDate); date != "" {
		fmt.Fprintf(&b, "<published_date>%s</published_date>\n", date)
	}
	fmt.Fprintf(&b, "\n<content>\n%s\n</content>\n", r.DenseSummary)
	b.WriteString("</resource>")
	return b.String()
}

// formatFullText renders a stored result with its full source text.
func formatFullText(r research.PersistedResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<text id=%q>\n", r.ID)
	fmt.Fprintf(&b, "<title>%s</title>\n", r.Title)
	if r.Author != "" {
		fmt.Fprintf(&b, "<author>%s</author>\n", truncateAuthor(r.Author))
	}
	if date := formatDate(r.PublishedDate); date != "" {
		fmt.Fprintf(&b, "<date>%s</date>\n", date)
	}
	fmt.Fprintf(&b, "<content>\n%s\n</content>\n", r.Text)
	b.WriteString("</text>")
	return b.String()
}

func wrapInResultsTag(content string) string {
	return fmt.Sprintf("<results>\n%s\n</results>", content)
}

// formatDate normalizes provider timestamps to yyyy-mm-dd; unparseable
// values are dropped rather than passed through.
func formatDate(s string) string {
	if s == "" {
		return ""
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

func truncateAuthor(author string) string {
	if len(author) <= maxAuthorLen {
		return author
	}
	// Cut on a rune boundary so multi-byte names stay valid UTF-8.
	cut := maxAuthorLen
	for cut > 0 && !utf8.RuneStart(author[cut]) {
		cut--
	}
	return author[:cut] + "..."
}
