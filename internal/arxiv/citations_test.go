// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package arxiv

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pdiddy/paperplay/internal/httputil"
)

func init() {
	httputil.RetryBaseDelay = 1 * time.Millisecond
}

func TestZeroCitations(t *testing.T) {
	count, err := ZeroCitations{}.CitationCount(context.Background(), "1706.03762")
	if err != nil || count != 0 {
		t.Errorf("got (%d, %v), want (0, nil)", count, err)
	}
}

func TestStaticCitations(t *testing.T) {
	s := StaticCitations{"1706.03762": 42}
	if count, _ := s.CitationCount(context.Background(), "1706.03762"); count != 42 {
		t.Errorf("known ID: got %d, want 42", count)
	}
	if count, _ := s.CitationCount(context.Background(), "0000.00000"); count != 0 {
		t.Errorf("unknown ID: got %d, want 0", count)
	}
}

func TestSemanticScholarCitations(t *testing.T) {
	var calls int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		if r.URL.Path != "/arXiv:1706.03762" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("fields"); got != "citationCount" {
			t.Errorf("fields = %q", got)
		}
		if got := r.Header.Get("x-api-key"); got != "ss-key" {
			t.Errorf("x-api-key = %q", got)
		}
		w.Write([]byte(`{"paperId": "abc", "citationCount": 90210}`))
	}))
	defer ts.Close()

	old := semanticAPIBase
	semanticAPIBase = ts.URL
	defer func() { semanticAPIBase = old }()

	s := &SemanticScholarCitations{Client: ts.Client(), APIKey: "ss-key"}
	count, err := s.CitationCount(context.Background(), "1706.03762")
	if err != nil {
		t.Fatalf("CitationCount: %v", err)
	}
	if count != 90210 {
		t.Errorf("count = %d, want 90210", count)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2 (one 429 retry)", calls)
	}
}

func TestSemanticScholarCitationsHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	old := semanticAPIBase
	semanticAPIBase = ts.URL
	defer func() { semanticAPIBase = old }()

	s := &SemanticScholarCitations{Client: ts.Client()}
	if _, err := s.CitationCount(context.Background(), "0000.00000"); err == nil {
		t.Fatal("expected error for HTTP 404")
	}
}
