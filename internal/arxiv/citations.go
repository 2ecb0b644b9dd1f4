// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package arxiv

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pdiddy/paperplay/internal/httputil"
)

// semanticAPIBase is the Semantic Scholar paper endpoint. Declared as a
// var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper"

// CitationSource supplies citation counts for papers.
type CitationSource interface {
	CitationCount(ctx context.Context, arxivID string) (int, error)
}

// ZeroCitations reports every paper as uncited. It is the default source
// when no citation backend is configured.
type ZeroCitations struct{}

func (ZeroCitations) CitationCount(context.Context, string) (int, error) { return 0, nil }

// StaticCitations serves counts from a fixed map, mainly for tests and
// offline runs. Unknown IDs report zero.
type StaticCitations map[string]int

func (s StaticCitations) CitationCount(_ context.Context, arxivID string) (int, error) {
	return s[arxivID], nil
}

// SemanticScholarCitations queries the Semantic Scholar graph API for a
// paper's citation count.
type SemanticScholarCitations struct {
	Client    *http.Client
	APIKey    string
	UserAgent string
}

type semanticPaper struct {
	CitationCount int `json:"citationCount"`
}

// CitationCount looks up the paper by arXiv ID. Rate limiting (HTTP 429)
// is retried with backoff.
func (s *SemanticScholarCitations) CitationCount(ctx context.Context, arxivID string) (int, error) {
	reqURL := fmt.Sprintf("%s/arXiv:%s?fields=citationCount", semanticAPIBase, arxivID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.UserAgent)
	if s.APIKey != "" {
		req.Header.Set("x-api-key", s.APIKey)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 0, nil)
	if err != nil {
		return 0, fmt.Errorf("Semantic Scholar API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("Semantic Scholar API returned HTTP %d", resp.StatusCode)
	}

	var sp semanticPaper
	if err := json.NewDecoder(resp.Body).Decode(&sp); err != nil {
		return 0, fmt.Errorf("parsing Semantic Scholar response: %w", err)
	}
	return sp.CitationCount, nil
}
