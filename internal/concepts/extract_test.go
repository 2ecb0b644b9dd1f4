// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package concepts

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/paperplay/internal/store"
	"github.com/pdiddy/paperplay/pkg/types"
)

func TestMain(m *testing.M) {
	backoffUnit = time.Millisecond
	os.Exit(m.Run())
}

// mockBackend replays canned responses (or errors) in order, recording
// each prompt it receives.
type mockBackend struct {
	responses []string
	errs      []error
	calls     int
	prompts   []string
}

func (m *mockBackend) Complete(_ context.Context, prompt string) (string, error) {
	i := m.calls
	m.calls++
	m.prompts = append(m.prompts, prompt)
	if i < len(m.errs) && m.errs[i] != nil {
		return "", m.errs[i]
	}
	if i < len(m.responses) {
		return m.responses[i], nil
	}
	return "", errors.New("mock backend out of responses")
}

const validResponse = `{"concepts": [
  {"name": "Self-Attention", "explanation": "Each token weighs every other token to build its representation.", "importance_score": 0.95},
  {"name": "Multi-Head Attention", "explanation": "Several attention maps run in parallel over different subspaces.", "importance_score": 0.90},
  {"name": "Positional Encoding", "explanation": "Sinusoidal signals inject token order into an order-free model.", "importance_score": 0.85},
  {"name": "Encoder-Decoder Structure", "explanation": "Separate stacks encode the input and generate the output.", "importance_score": 0.80},
  {"name": "Scaled Dot-Product", "explanation": "Dot products scaled by dimension keep attention gradients stable.", "importance_score": 0.75}
]}`

// Prose with no braces and no mention of the expected field: unrecoverable
// and not a format failure, so the controller retries.
const noDataResponse = "I am sorry but I was unable to read the document you provided. " +
	"Please upload the paper again and I will analyze it for you right away."

func newExtractor(b *mockBackend) *Extractor {
	return &Extractor{Backend: b, Config: types.ExtractionConfig{}}
}

func TestExtractConceptsFirstAttempt(t *testing.T) {
	b := &mockBackend{responses: []string{validResponse}}
	res, err := newExtractor(b).ExtractConcepts(context.Background(), "Attention Is All You Need", "abstract", "body")
	if err != nil {
		t.Fatalf("ExtractConcepts: %v", err)
	}
	if res.Method != MethodLLM {
		t.Errorf("Method = %q, want %q", res.Method, MethodLLM)
	}
	if res.Attempts != 1 || b.calls != 1 {
		t.Errorf("attempts = %d, calls = %d, want 1 each", res.Attempts, b.calls)
	}
	if len(res.Concepts) != 5 {
		t.Fatalf("got %d concepts, want 5", len(res.Concepts))
	}
	if res.Concepts[0].Name != "Self-Attention" || res.Concepts[0].ImportanceScore != 0.95 {
		t.Errorf("concepts[0] = %+v", res.Concepts[0])
	}
}

func TestExtractConceptsFencedResponse(t *testing.T) {
	raw := "Here are the extracted concepts:\n```json\n" + validResponse + "\n```\nHope this helps!"
	b := &mockBackend{responses: []string{raw}}
	res, err := newExtractor(b).ExtractConcepts(context.Background(), "T", "a", "body")
	if err != nil {
		t.Fatal(err)
	}
	if res.Method != MethodLLM || len(res.Concepts) != 5 {
		t.Errorf("fenced response not recovered: %+v", res)
	}
}

func TestExtractConceptsRetriesThenSucceeds(t *testing.T) {
	b := &mockBackend{responses: []string{noDataResponse, validResponse}}
	res, err := newExtractor(b).ExtractConcepts(context.Background(), "T", "a", "body")
	if err != nil {
		t.Fatal(err)
	}
	if res.Method != MethodLLM {
		t.Errorf("Method = %q", res.Method)
	}
	if res.Attempts != 2 || b.calls != 2 {
		t.Errorf("attempts = %d, calls = %d, want 2 each", res.Attempts, b.calls)
	}
}

func TestExtractConceptsTooFewRetried(t *testing.T) {
	small := `{"concepts": [
	  {"name": "A", "explanation": "x", "importance_score": 0.9},
	  {"name": "B", "explanation": "y", "importance_score": 0.8}
	]}`
	b := &mockBackend{responses: []string{small, validResponse}}
	res, err := newExtractor(b).ExtractConcepts(context.Background(), "T", "a", "body")
	if err != nil {
		t.Fatal(err)
	}
	if res.Attempts != 2 || len(res.Concepts) != 5 {
		t.Errorf("undersized batch accepted or not retried: %+v", res)
	}
}

func TestExtractConceptsFormatFailureUsesGenericFallback(t *testing.T) {
	garbled := "I attempted to produce the concepts array you requested but the paper content was " +
		"not parseable, so no structured concepts could be generated this time."
	b := &mockBackend{responses: []string{garbled}}
	res, err := newExtractor(b).ExtractConcepts(context.Background(), "T", "a", "body")
	if err != nil {
		t.Fatal(err)
	}
	if res.Method != MethodFallbackGeneric {
		t.Fatalf("Method = %q, want %q", res.Method, MethodFallbackGeneric)
	}
	if b.calls != 1 {
		t.Errorf("calls = %d, format failure should not retry", b.calls)
	}
	if len(res.Concepts) != 5 {
		t.Fatalf("got %d fallback concepts, want 5", len(res.Concepts))
	}
	if res.Concepts[0].ImportanceScore != 0.95 || res.Concepts[4].ImportanceScore != 0.75 {
		t.Errorf("fallback importance range wrong: %v .. %v",
			res.Concepts[0].ImportanceScore, res.Concepts[4].ImportanceScore)
	}
}

func TestExtractConceptsExhaustionUsesMinimalFallback(t *testing.T) {
	b := &mockBackend{responses: []string{noDataResponse, noDataResponse, noDataResponse}}
	res, err := newExtractor(b).ExtractConcepts(context.Background(), "T", "a", "body")
	if err != nil {
		t.Fatal(err)
	}
	if res.Method != MethodFallbackMinimal {
		t.Fatalf("Method = %q, want %q", res.Method, MethodFallbackMinimal)
	}
	if b.calls != 3 {
		t.Errorf("calls = %d, want 3", b.calls)
	}
	if len(res.Concepts) != 3 {
		t.Errorf("got %d minimal concepts, want 3", len(res.Concepts))
	}
}

func TestExtractConceptsBackendErrorsNeverSurface(t *testing.T) {
	boom := errors.New("connection reset")
	b := &mockBackend{errs: []error{boom, boom, boom}}
	res, err := newExtractor(b).ExtractConcepts(context.Background(), "T", "a", "body")
	if err != nil {
		t.Fatalf("backend errors must resolve to fallback, got %v", err)
	}
	if res.Method != MethodFallbackMinimal || b.calls != 3 {
		t.Errorf("res = %+v, calls = %d", res, b.calls)
	}
}

func TestExtractConceptsMissingTitle(t *testing.T) {
	b := &mockBackend{responses: []string{validResponse}}
	if _, err := newExtractor(b).ExtractConcepts(context.Background(), "", "a", "body"); err == nil {
		t.Fatal("expected error for missing title")
	}
	if b.calls != 0 {
		t.Errorf("backend called despite missing title")
	}
}

func TestExtractConceptsTruncatesContent(t *testing.T) {
	b := &mockBackend{responses: []string{validResponse}}
	e := &Extractor{Backend: b, Config: types.ExtractionConfig{MaxContentChars: 100}}

	longText := strings.Repeat("lorem ipsum ", 100)
	if _, err := e.ExtractConcepts(context.Background(), "T", "a", longText); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(b.prompts[0], longText) {
		t.Error("prompt contains untruncated body text")
	}
	if !strings.Contains(b.prompts[0], longText[:100]) {
		t.Error("prompt missing truncated body text")
	}
}

func TestProcessPaperPersistsFallbackBatch(t *testing.T) {
	st, err := store.NewStore(types.StorageConfig{DBPath: filepath.Join(t.TempDir(), "content.db")})
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	// Every attempt fails; the stored batch must be the minimal fallback.
	b := &mockBackend{responses: []string{noDataResponse, noDataResponse, noDataResponse}}
	paper := &types.Paper{ArxivID: "1706.03762", Title: "Attention Is All You Need"}

	res, err := newExtractor(b).ProcessPaper(context.Background(), st, paper)
	if err != nil {
		t.Fatalf("ProcessPaper: %v", err)
	}
	if res.Method != MethodFallbackMinimal {
		t.Errorf("Method = %q", res.Method)
	}

	got, err := st.GetPaperWithConcepts(context.Background(), "1706.03762")
	if err != nil {
		t.Fatalf("paper not persisted: %v", err)
	}
	if len(got.Concepts) != 3 {
		t.Errorf("stored %d concepts, want 3", len(got.Concepts))
	}
}
