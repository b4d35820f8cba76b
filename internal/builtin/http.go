package builtin

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-smol/smolagents/internal/tool"
)

const (
	httpMaxResponseRunes = 8000
	httpMaxTimeoutSec    = 30
	httpDefaultTimeout   = 10 * time.Second
	httpMaxRedirects     = 3
)

// privateNetworks lists internal IPv4/IPv6 ranges, blocked by default to
// prevent SSRF against the host running the agent.
var privateNetworks []*net.IPNet

func init() {
	for _, cidr := range []string{
		"0.0.0.0/8", "10.0.0.0/8", "100.64.0.0/10", "127.0.0.0/8",
		"169.254.0.0/16", "172.16.0.0/12", "192.168.0.0/16", "198.18.0.0/15",
		"::1/128", "fc00::/7", "fe80::/10",
	} {
		if _, network, err := net.ParseCIDR(cidr); err == nil {
			privateNetworks = append(privateNetworks, network)
		}
	}
}

var allowedHTTPMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "PATCH": true,
	"DELETE": true, "HEAD": true, "OPTIONS": true,
}

var usefulResponseHeaders = map[string]bool{
	"Content-Type": true, "Content-Length": true, "Content-Encoding": true,
	"Location": true, "Cache-Control": true, "Retry-After": true,
	"X-Ratelimit-Limit": true, "X-Ratelimit-Remaining": true, "X-Ratelimit-Reset": true,
	"X-Request-Id": true, "X-Correlation-Id": true,
}

// HTTPRequestArgs is the typed argument struct for HTTPRequestTool, declared
// via tool.SchemaFromStruct rather than a hand-written tool.Schema literal —
// the struct-reflection path SPEC_FULL.md's domain-stack section calls for
// exercising github.com/invopop/jsonschema.
type HTTPRequestArgs struct {
	URL     string            `json:"url" jsonschema:"required,description=request URL; must be http:// or https://"`
	Method  string            `json:"method,omitempty" jsonschema:"description=GET/POST/PUT/PATCH/DELETE/HEAD/OPTIONS; default GET"`
	Headers map[string]string `json:"headers,omitempty" jsonschema:"description=request headers"`
	Body    string            `json:"body,omitempty" jsonschema:"description=request body for POST/PUT"`
	Timeout int               `json:"timeout,omitempty" jsonschema:"description=timeout in seconds; default 10, max 30"`
}

// HTTPRequestTool issues an HTTP request and returns a formatted summary of
// the response, behind an SSRF-blocking dialer and redirect guard by
// default.
type HTTPRequestTool struct {
	allowInternal bool
	schema        tool.Schema
}

func NewHTTPRequestTool(allowInternal bool) *HTTPRequestTool {
	return &HTTPRequestTool{allowInternal: allowInternal, schema: tool.SchemaFromStruct(HTTPRequestArgs{})}
}

func (t *HTTPRequestTool) Name() string        { return "http_request" }
func (t *HTTPRequestTool) Description() string {
	return "Sends an HTTP request and returns the response. Internal/private addresses are blocked by default."
}
func (t *HTTPRequestTool) OutputType() tool.ValueType { return tool.TypeString }
func (t *HTTPRequestTool) InputSchema() tool.Schema   { return t.schema }

func (t *HTTPRequestTool) Forward(ctx context.Context, args map[string]any) (any, error) {
	url, _ := args["url"].(string)
	method, _ := args["method"].(string)
	body, _ := args["body"].(string)
	timeoutArg := 0
	switch v := args["timeout"].(type) {
	case float64:
		timeoutArg = int(v)
	case int:
		timeoutArg = v
	}

	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("url must not be empty")
	}
	lowerURL := strings.ToLower(url)
	if !strings.HasPrefix(lowerURL, "http://") && !strings.HasPrefix(lowerURL, "https://") {
		return nil, fmt.Errorf("only http:// and https:// are supported")
	}

	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = "GET"
	}
	if !allowedHTTPMethods[method] {
		return nil, fmt.Errorf("unsupported HTTP method %q", method)
	}

	timeout := httpDefaultTimeout
	if timeoutArg > 0 {
		timeout = time.Duration(timeoutArg) * time.Second
		if timeoutArg > httpMaxTimeoutSec {
			timeout = httpMaxTimeoutSec * time.Second
		}
	}

	allowInternal := t.allowInternal
	baseDialer := &net.Dialer{Timeout: timeout}
	transport := &http.Transport{
		DialContext: func(dialCtx context.Context, network, addr string) (net.Conn, error) {
			host, _, err := net.SplitHostPort(addr)
			if err != nil {
				host = addr
			}
			if !allowInternal {
				if err := blockInternalHost(host); err != nil {
					return nil, err
				}
			}
			return baseDialer.DialContext(dialCtx, network, addr)
		},
	}

	redirects := 0
	client := &http.Client{
		Timeout:   timeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			redirects++
			if redirects > httpMaxRedirects {
				return fmt.Errorf("exceeded %d redirects", httpMaxRedirects)
			}
			if !allowInternal {
				return blockInternalHost(req.URL.Hostname())
			}
			return nil
		},
	}

	var bodyReader io.Reader
	if body != "" {
		bodyReader = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if headers, ok := args["headers"].(map[string]any); ok {
		for k, v := range headers {
			if s, ok := v.(string); ok {
				req.Header.Set(k, s)
			}
		}
	}

	start := time.Now()
	resp, err := client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	contentType := resp.Header.Get("Content-Type")

	if isBinaryHTTPResponse(contentType, rawBody) {
		return fmt.Sprintf("Status: %s\nElapsed: %dms\nContent-Type: %s\nBody: binary content (%d bytes), not shown",
			resp.Status, elapsed.Milliseconds(), contentType, len(rawBody)), nil
	}

	bodyStr := string(rawBody)
	truncated := false
	if utf8.RuneCountInString(bodyStr) > httpMaxResponseRunes {
		bodyStr = string([]rune(bodyStr)[:httpMaxResponseRunes])
		truncated = true
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Status: %s\nElapsed: %dms\n", resp.Status, elapsed.Milliseconds()))
	var headerLines []string
	for k, vs := range resp.Header {
		if usefulResponseHeaders[http.CanonicalHeaderKey(k)] {
			headerLines = append(headerLines, fmt.Sprintf("  %s: %s", k, strings.Join(vs, ", ")))
		}
	}
	if len(headerLines) > 0 {
		sb.WriteString("\nHeaders:\n" + strings.Join(headerLines, "\n") + "\n")
	}
	sb.WriteString("\nBody:\n" + bodyStr)
	if truncated {
		sb.WriteString(fmt.Sprintf("\n...[truncated, %d bytes total]", len(rawBody)))
	}
	return sb.String(), nil
}

func blockInternalHost(host string) error {
	ips, err := net.LookupHost(host)
	if err != nil {
		ips = []string{host}
	}
	for _, ipStr := range ips {
		ip := net.ParseIP(ipStr)
		if ip == nil {
			continue
		}
		if ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsUnspecified() {
			return fmt.Errorf("refusing to contact internal address %s", host)
		}
		for _, network := range privateNetworks {
			if network.Contains(ip) {
				return fmt.Errorf("refusing to contact internal address %s", host)
			}
		}
	}
	return nil
}

func isBinaryHTTPResponse(contentType string, body []byte) bool {
	ct := strings.ToLower(contentType)
	for _, prefix := range []string{
		"image/", "audio/", "video/",
		"application/octet-stream", "application/pdf",
		"application/zip", "application/gzip", "application/x-tar", "application/x-binary",
	} {
		if strings.HasPrefix(ct, prefix) {
			return true
		}
	}
	if len(body) == 0 {
		return false
	}
	return bytes.IndexByte(body, 0) >= 0 && !utf8.Valid(body)
}
