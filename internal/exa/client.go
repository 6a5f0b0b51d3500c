// Package exa is an HTTP client for the Exa neural search API.
package exa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/scryhq/scry/internal/gateway"
	"github.com/scryhq/scry/internal/httputil"
)

const (
	defaultBaseURL    = "https://api.exa.ai"
	defaultNumResults = 10
	requestTimeout    = 60 * time.Second
)

// Config configures the client.
type Config struct {
	BaseURL    string
	APIKey     string
	NumResults int
	HTTPClient *http.Client
}

// Client calls the provider's /search endpoint with neural search and full
// text contents enabled. It retries only on HTTP 429.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	numResults int
}

// New creates a client from cfg, filling in defaults where unset.
func New(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	numResults := cfg.NumResults
	if numResults <= 0 {
		numResults = defaultNumResults
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		numResults: numResults,
	}
}

type searchRequest struct {
	Query      string          `json:"query"`
	Type       string          `json:"type"`
	NumResults int             `json:"numResults"`
	Contents   contentsRequest `json:"contents"`
	Category   string          `json:"category,omitempty"`
	Livecrawl  string          `json:"livecrawl,omitempty"`
}

type contentsRequest struct {
	Text bool `json:"text"`
}

type searchResponse struct {
	Results []gateway.ProviderResult `json:"results"`
}

// Search implements gateway.SearchClient.
func (c *Client) Search(ctx context.Context, text string, opts gateway.SearchOptions) ([]gateway.ProviderResult, error) {
	reqBody := searchRequest{
		Query:      text,
		Type:       "neural",
		NumResults: c.numResults,
		Contents:   contentsRequest{Text: true},
		Category:   opts.Category,
	}
	if opts.Livecrawl {
		reqBody.Livecrawl = "always"
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("encoding search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := httputil.DoWithRetry(ctx, c.httpClient, req, 0)
	if err != nil {
		return nil, fmt.Errorf("executing search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("search request failed with status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}
	return decoded.Results, nil
}
