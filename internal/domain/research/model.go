package research

import (
	"strings"
	"time"
	"unicode"
)

// Category restricts a query to a single provider content type.
type Category string

const (
	CategoryCompany         Category = "company"
	CategoryResearchPaper   Category = "research paper"
	CategoryNews            Category = "news"
	CategoryLinkedInProfile Category = "linkedin profile"
	CategoryGitHub          Category = "github"
	CategoryTweet           Category = "tweet"
	CategoryMovie           Category = "movie"
	CategorySong            Category = "song"
	CategoryPersonalSite    Category = "personal site"
	CategoryPDF             Category = "pdf"
)

// Categories lists every valid content-type filter accepted by the provider.
var Categories = []Category{
	CategoryCompany,
	CategoryResearchPaper,
	CategoryNews,
	CategoryLinkedInProfile,
	CategoryGitHub,
	CategoryTweet,
	CategoryMovie,
	CategorySong,
	CategoryPersonalSite,
	CategoryPDF,
}

// Valid reports whether c belongs to the closed category set. The empty
// category means "no filter" and is valid.
func (c Category) Valid() bool {
	if c == "" {
		return true
	}
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Query is a single generated search string plus optional content-category
// and freshness flags. Immutable once generated.
type Query struct {
	Text      string   `json:"text"`
	Category  Category `json:"category,omitempty"`
	Livecrawl bool     `json:"livecrawl"`
}

// RawResult is an unprocessed item returned by the search provider for one
// query. Text is normalized on construction. The ID starts as the
// provider-assigned identifier and is reassigned to a word-pair identifier
// before persistence.
type RawResult struct {
	URL           string  `json:"url"`
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Score         float64 `json:"score"`
	PublishedDate string  `json:"published_date,omitempty"`
	Author        string  `json:"author,omitempty"`
	Text          string  `json:"text"`
}

// Summary is the LLM-produced relevance judgment for one RawResult, matched
// by ID. A raw result with no summary was filtered out as irrelevant.
type Summary struct {
	ID               string `json:"id"`
	RelevanceSummary string `json:"relevance_summary"`
	DenseSummary     string `json:"dense_summary"`
}

// QueryResultSet groups one query with its raw results and summaries.
// QueryID is the persisted identifier of the query row.
type QueryResultSet struct {
	QueryID    string      `json:"query_id"`
	Query      Query       `json:"query"`
	RawResults []RawResult `json:"raw_results"`
	Summaries  []Summary   `json:"summaries"`
}

// ResearchResult is the top-level container returned to the caller. It holds
// one QueryResultSet per generated query, in generation order.
type ResearchResult struct {
	Purpose         string           `json:"purpose"`
	Question        string           `json:"question"`
	QueryResultSets []QueryResultSet `json:"query_result_sets"`
}

// QueryContext carries the originating purpose and question to the
// summarizer so it can judge relevance.
type QueryContext struct {
	Purpose  string `json:"purpose"`
	Question string `json:"question"`
}

// PersistedResult is a stored research result, keyed by its word-pair
// identifier. CreatedAt never changes after insert; UpdatedAt advances each
// time the same identifier is re-observed by a later research run.
type PersistedResult struct {
	ID               string    `json:"id"`
	Title            string    `json:"title,omitempty"`
	Author           string    `json:"author,omitempty"`
	URL              string    `json:"url,omitempty"`
	DenseSummary     string    `json:"dense_summary"`
	RelevanceSummary string    `json:"relevance_summary"`
	Text             string    `json:"text"`
	RelevanceScore   float64   `json:"relevance_score"`
	QueryPurpose     string    `json:"query_purpose"`
	QueryQuestion    string    `json:"query_question"`
	PublishedDate    string    `json:"published_date,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// NormalizeText strips control characters and collapses whitespace runs in
// provider text so stored content is stable across crawls.
func NormalizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			inSpace = true
			continue
		}
		if unicode.IsControl(r) {
			continue
		}
		if inSpace && b.Len() > 0 {
			b.WriteByte(' ')
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}
