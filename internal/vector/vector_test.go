// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package vector

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/paperplay/pkg/types"
)

// stubEmbedder maps known substrings to fixed unit-ish vectors so cosine
// ranking is predictable.
type stubEmbedder struct {
	calls int
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	s.calls++
	switch {
	case strings.Contains(text, "attention"):
		return []float64{1, 0, 0}, nil
	case strings.Contains(text, "convolution"):
		return []float64{0, 1, 0}, nil
	case strings.Contains(text, "mixed"):
		return []float64{1, 1, 0}, nil
	default:
		return []float64{0, 0, 1}, nil
	}
}

func newTestIndex(t *testing.T) (*Index, *stubEmbedder) {
	t.Helper()
	emb := &stubEmbedder{}
	ix, err := NewIndex(types.VectorConfig{
		DBPath:     filepath.Join(t.TempDir(), "vectors.db"),
		MaxResults: 5,
	}, emb)
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	t.Cleanup(func() { ix.Close() })
	return ix, emb
}

func TestAddAndSearchRanking(t *testing.T) {
	ix, _ := newTestIndex(t)
	ctx := context.Background()

	docs := map[string]string{
		"p1": "attention is all you need",
		"p2": "convolution networks for images",
		"p3": "mixed attention and convolution",
	}
	for refID, text := range docs {
		if _, err := ix.Add(ctx, CollectionPapers, refID, text, map[string]string{"ref": refID}); err != nil {
			t.Fatalf("Add(%s): %v", refID, err)
		}
	}

	matches, err := ix.Search(ctx, CollectionPapers, "attention mechanisms", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("got %d matches, want 3", len(matches))
	}
	if matches[0].RefID != "p1" {
		t.Errorf("top match = %s, want p1", matches[0].RefID)
	}
	if matches[1].RefID != "p3" {
		t.Errorf("second match = %s, want p3", matches[1].RefID)
	}
	if math.Abs(matches[0].Similarity-1.0) > 1e-9 {
		t.Errorf("top similarity = %v, want 1.0", matches[0].Similarity)
	}
	if matches[0].Similarity < matches[1].Similarity || matches[1].Similarity < matches[2].Similarity {
		t.Errorf("matches not ranked descending: %v", matches)
	}
	if matches[0].Metadata["ref"] != "p1" {
		t.Errorf("metadata lost: %v", matches[0].Metadata)
	}
}

func TestSearchRespectsK(t *testing.T) {
	ix, _ := newTestIndex(t)
	ctx := context.Background()

	for _, refID := range []string{"a", "b", "c", "d"} {
		if _, err := ix.Add(ctx, CollectionConcepts, refID, "attention "+refID, nil); err != nil {
			t.Fatal(err)
		}
	}

	matches, err := ix.Search(ctx, CollectionConcepts, "attention", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 2 {
		t.Errorf("got %d matches, want 2", len(matches))
	}
}

func TestCollectionsAreIsolated(t *testing.T) {
	ix, _ := newTestIndex(t)
	ctx := context.Background()

	if _, err := ix.Add(ctx, CollectionPapers, "p1", "attention paper", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := ix.Add(ctx, CollectionConcepts, "c1", "attention concept", nil); err != nil {
		t.Fatal(err)
	}

	matches, err := ix.Search(ctx, CollectionConcepts, "attention", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 || matches[0].RefID != "c1" {
		t.Errorf("concept search leaked across collections: %v", matches)
	}
}

func TestAddReplacesExistingRef(t *testing.T) {
	ix, _ := newTestIndex(t)
	ctx := context.Background()

	if _, err := ix.Add(ctx, CollectionPapers, "p1", "attention v1", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := ix.Add(ctx, CollectionPapers, "p1", "attention v2", nil); err != nil {
		t.Fatal(err)
	}

	n, err := ix.Count(ctx, CollectionPapers)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("count = %d after re-add, want 1", n)
	}

	matches, err := ix.Search(ctx, CollectionPapers, "attention", 1)
	if err != nil {
		t.Fatal(err)
	}
	if matches[0].Document != "attention v2" {
		t.Errorf("document = %q, want replacement", matches[0].Document)
	}
}

func TestEncodeDecodeVector(t *testing.T) {
	in := []float64{0.25, -1.5, 3.14159, 0}
	out, err := decodeVector(encodeVector(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != len(in) {
		t.Fatalf("length %d, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("out[%d] = %v, want %v", i, out[i], in[i])
		}
	}

	if _, err := decodeVector([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for misaligned blob")
	}
}

func TestHTTPEmbedder(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer emb-key" {
			t.Errorf("Authorization = %q", got)
		}
		var req embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.Model != "test-embed" || len(req.Input) != 1 {
			t.Errorf("request = %+v", req)
		}
		w.Write([]byte(`{"data": [{"embedding": [0.1, 0.2, 0.3]}]}`))
	}))
	defer ts.Close()

	old := embeddingsAPIURL
	embeddingsAPIURL = ts.URL
	defer func() { embeddingsAPIURL = old }()

	e := &HTTPEmbedder{Model: "test-embed", APIKey: "emb-key", Client: ts.Client()}
	vec, err := e.Embed(context.Background(), "some text")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vec) != 3 || vec[1] != 0.2 {
		t.Errorf("vec = %v", vec)
	}
}

func TestHTTPEmbedderEmptyResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"data": []}`))
	}))
	defer ts.Close()

	old := embeddingsAPIURL
	embeddingsAPIURL = ts.URL
	defer func() { embeddingsAPIURL = old }()

	e := &HTTPEmbedder{Model: "test-embed", Client: ts.Client()}
	if _, err := e.Embed(context.Background(), "text"); err == nil {
		t.Fatal("expected error for empty data")
	}
}
