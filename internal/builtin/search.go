package builtin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-smol/smolagents/internal/tool"
	"github.com/go-smol/smolagents/internal/util"
)

const (
	searchMaxResults     = 5
	searchHTTPTimeout    = 15 * time.Second
	searchMaxBody        = 5 << 20 // 5MB success response limit
	searchErrMaxBody     = 1 << 20 // 1MB error response limit
	searchErrBodyRunes   = 200
	searchDescMaxRunes   = 300
	searchQueryMaxRunes  = 1000
)

type searchResult struct {
	Title       string
	URL         string
	Description string
}

func parseSearchQuery(args map[string]any) (string, error) {
	q, _ := args["query"].(string)
	q = strings.TrimSpace(q)
	if q == "" {
		return "", fmt.Errorf("query must not be empty")
	}
	if len([]rune(q)) > searchQueryMaxRunes {
		return "", fmt.Errorf("query too long (max %d characters)", searchQueryMaxRunes)
	}
	return q, nil
}

func formatSearchResults(results []searchResult) string {
	if len(results) == 0 {
		return "No results found."
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d results:\n\n", len(results)))
	for i, r := range results {
		desc := util.TruncateRunes(r.Description, searchDescMaxRunes)
		sb.WriteString(fmt.Sprintf("[%d] %s\n    %s\n    %s\n\n", i+1, r.Title, r.URL, desc))
	}
	return sb.String()
}

func searchSchema() tool.Schema {
	return tool.Schema{"query": tool.Param{Type: []tool.ValueType{tool.TypeString}, Description: "search query"}}
}

// ── brave_search ──

// BraveSearchTool searches the web via the Brave Search API.
type BraveSearchTool struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewBraveSearchTool(apiKey string) *BraveSearchTool {
	return &BraveSearchTool{apiKey: apiKey, baseURL: "https://api.search.brave.com/res/v1/web/search", client: &http.Client{}}
}

func (t *BraveSearchTool) Name() string             { return "brave_search" }
func (t *BraveSearchTool) Description() string      { return "Searches the web via the Brave Search API." }
func (t *BraveSearchTool) OutputType() tool.ValueType { return tool.TypeString }
func (t *BraveSearchTool) InputSchema() tool.Schema { return searchSchema() }

func (t *BraveSearchTool) SetUp(_ context.Context) error {
	if t.apiKey == "" {
		return fmt.Errorf("brave_search: BRAVE_API_KEY is not configured")
	}
	return nil
}

type braveResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}

func (t *BraveSearchTool) Forward(ctx context.Context, args map[string]any) (any, error) {
	query, err := parseSearchQuery(args)
	if err != nil {
		return nil, err
	}

	u, err := url.Parse(t.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("count", fmt.Sprintf("%d", searchMaxResults))
	u.RawQuery = q.Encode()

	httpCtx, cancel := context.WithTimeout(ctx, searchHTTPTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(httpCtx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", t.apiKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, searchErrMaxBody))
		return nil, fmt.Errorf("brave API error (HTTP %d): %s", resp.StatusCode,
			util.TruncateRunes(strings.TrimSpace(string(body)), searchErrBodyRunes))
	}

	var braveResp braveResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, searchMaxBody)).Decode(&braveResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	results := make([]searchResult, len(braveResp.Web.Results))
	for i, r := range braveResp.Web.Results {
		results[i] = searchResult{Title: r.Title, URL: r.URL, Description: r.Description}
	}
	return formatSearchResults(results), nil
}

// ── web_search (Tavily) ──

// TavilySearchTool searches the web via the Tavily API.
type TavilySearchTool struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewTavilySearchTool(apiKey string) *TavilySearchTool {
	return &TavilySearchTool{apiKey: apiKey, baseURL: "https://api.tavily.com/search", client: &http.Client{}}
}

func (t *TavilySearchTool) Name() string             { return "web_search" }
func (t *TavilySearchTool) Description() string      { return "Searches the web for real-time information, news, and documentation." }
func (t *TavilySearchTool) OutputType() tool.ValueType { return tool.TypeString }
func (t *TavilySearchTool) InputSchema() tool.Schema { return searchSchema() }

func (t *TavilySearchTool) SetUp(_ context.Context) error {
	if t.apiKey == "" {
		return fmt.Errorf("web_search: TAVILY_API_KEY is not configured")
	}
	return nil
}

type tavilyRequest struct {
	APIKey     string `json:"api_key"`
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type tavilyResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

func (t *TavilySearchTool) Forward(ctx context.Context, args map[string]any) (any, error) {
	query, err := parseSearchQuery(args)
	if err != nil {
		return nil, err
	}

	reqBody, err := json.Marshal(tavilyRequest{APIKey: t.apiKey, Query: query, MaxResults: searchMaxResults})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	httpCtx, cancel := context.WithTimeout(ctx, searchHTTPTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(httpCtx, http.MethodPost, t.baseURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, searchErrMaxBody))
		return nil, fmt.Errorf("tavily API error (HTTP %d): %s", resp.StatusCode,
			util.TruncateRunes(strings.TrimSpace(string(body)), searchErrBodyRunes))
	}

	var tavilyResp tavilyResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, searchMaxBody)).Decode(&tavilyResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	results := make([]searchResult, len(tavilyResp.Results))
	for i, r := range tavilyResp.Results {
		results[i] = searchResult{Title: r.Title, URL: r.URL, Description: r.Content}
	}
	return formatSearchResults(results), nil
}
