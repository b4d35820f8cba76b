package builtin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestVisitWebpageTool_RejectsBadScheme(t *testing.T) {
	tool := NewVisitWebpageTool()
	if _, err := tool.Forward(context.Background(), map[string]any{"url": "ftp://example.com"}); err == nil {
		t.Error("expected error for non-http(s) scheme")
	}
}

func TestVisitWebpageTool_ExtractsArticle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><title>ignored</title></head><body><article><h1>Hello</h1><p>` +
			strings.Repeat("This is readable article content. ", 20) + `</p></article></body></html>`))
	}))
	defer srv.Close()

	tool := NewVisitWebpageTool()
	out, err := tool.Forward(context.Background(), map[string]any{"url": srv.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.(string), "readable article content") {
		t.Errorf("expected extracted article text, got: %q", out)
	}
}

func TestVisitWebpageTool_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	tool := NewVisitWebpageTool()
	if _, err := tool.Forward(context.Background(), map[string]any{"url": srv.URL}); err == nil {
		t.Error("expected error for 404 response")
	}
}
