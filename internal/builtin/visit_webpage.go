package builtin

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"

	"github.com/go-smol/smolagents/internal/tool"
	"github.com/go-smol/smolagents/internal/util"
)

const (
	visitWebpageTimeout      = 15 * time.Second
	visitWebpageMaxBody      = 2 << 20 // 2MB
	visitWebpageMaxRunes     = 8000
	visitWebpageUserAgent    = "smolagents/0.1 (+visit_webpage tool)"
	visitWebpageMaxRedirects = 10
)

var visitWebpageClient = &http.Client{
	Timeout: visitWebpageTimeout,
	CheckRedirect: func(req *http.Request, via []*http.Request) error {
		if len(via) >= visitWebpageMaxRedirects {
			return fmt.Errorf("exceeded %d redirects", visitWebpageMaxRedirects)
		}
		return nil
	},
}

// VisitWebpageTool fetches a URL and extracts its main readable text via
// github.com/go-shiori/go-readability (a Go port of Mozilla's Readability.js),
// rather than a hand-rolled golang.org/x/net/html extraction.
type VisitWebpageTool struct{}

func NewVisitWebpageTool() *VisitWebpageTool { return &VisitWebpageTool{} }

func (t *VisitWebpageTool) Name() string { return "visit_webpage" }
func (t *VisitWebpageTool) Description() string {
	return "Fetches a web page and extracts its main article text (title + body), stripping navigation/ads/boilerplate."
}
func (t *VisitWebpageTool) OutputType() tool.ValueType { return tool.TypeString }
func (t *VisitWebpageTool) InputSchema() tool.Schema {
	return tool.Schema{"url": tool.Param{Type: []tool.ValueType{tool.TypeString}, Description: "URL to fetch, must start with http:// or https://"}}
}

func (t *VisitWebpageTool) Forward(ctx context.Context, args map[string]any) (any, error) {
	rawURL, _ := args["url"].(string)
	rawURL = strings.TrimSpace(rawURL)
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return nil, fmt.Errorf("url must start with http:// or https://")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", visitWebpageUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := visitWebpageClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, visitWebpageMaxBody))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	parsedURL, _ := url.Parse(rawURL)
	article, err := readability.FromReader(strings.NewReader(string(body)), parsedURL)
	if err != nil || strings.TrimSpace(article.TextContent) == "" {
		return nil, fmt.Errorf("could not extract readable content from %s", rawURL)
	}

	text := util.TruncateRunes(strings.TrimSpace(article.TextContent), visitWebpageMaxRunes)
	if article.Title != "" {
		return fmt.Sprintf("# %s\n\n%s", article.Title, text), nil
	}
	return text, nil
}
