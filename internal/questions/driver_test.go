// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package questions

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/paperplay/internal/concepts"
	"github.com/pdiddy/paperplay/internal/store"
	"github.com/pdiddy/paperplay/pkg/types"
)

func writeConceptFile(t *testing.T, dir, arxivID string, conceptList []types.Concept) {
	t.Helper()
	paper := &types.Paper{
		ArxivID:  arxivID,
		Title:    "Paper " + arxivID,
		Authors:  []string{"Some Author"},
		Abstract: "An abstract.",
		Year:     2020,
		Journal:  "arXiv preprint",
	}
	res := concepts.Result{Concepts: conceptList, Method: concepts.MethodLLM}
	path := filepath.Join(dir, arxivID+".concepts.json")
	if err := concepts.WriteConceptFile(path, paper, res); err != nil {
		t.Fatal(err)
	}
}

func TestGenerateDirStoresPairsPerConcept(t *testing.T) {
	dir := t.TempDir()
	conceptList := []types.Concept{
		{Name: "Attention", Explanation: "e1", ImportanceScore: 0.95},
		{Name: "Encoder", Explanation: "e2", ImportanceScore: 0.90},
	}
	writeConceptFile(t, dir, "1706.03762", conceptList)

	st, err := store.NewStore(types.StorageConfig{DBPath: filepath.Join(t.TempDir(), "content.db")})
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	b := &mockBackend{responses: []string{validQuestion, validQuestion}}
	g := &Generator{Backend: b, Config: types.GenerationConfig{PapersDir: dir}}

	var out bytes.Buffer
	summary, err := g.GenerateDir(context.Background(), st, &out)
	if err != nil {
		t.Fatalf("GenerateDir: %v", err)
	}
	if summary.Papers != 1 || summary.Questions != 2 || summary.Failed != 0 {
		t.Errorf("summary = %+v", summary)
	}
	if !strings.Contains(out.String(), "Batch summary: 1 papers, 2 questions, 0 failed") {
		t.Errorf("tally line missing: %q", out.String())
	}

	// Each concept produced a pair of rows under the paper's level.
	ctx := context.Background()
	p, err := st.GetPaperWithConcepts(ctx, "1706.03762")
	if err != nil {
		t.Fatalf("paper row missing: %v", err)
	}
	levelID, err := st.EnsureLevel(ctx, p.ID, p.Title)
	if err != nil {
		t.Fatal(err)
	}
	rows, err := st.QuestionsForLevel(ctx, levelID)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Fatalf("got %d question rows, want 4 (two pairs)", len(rows))
	}
	if rows[0].PairID != rows[1].PairID {
		t.Error("first pair not linked")
	}
	if rows[0].PairID == rows[2].PairID {
		t.Error("distinct concepts share a pair id")
	}
	for _, r := range rows {
		if r.Score != 5 {
			t.Errorf("Score = %d, want default 5", r.Score)
		}
	}
}

func TestGenerateDirFallbackStillStored(t *testing.T) {
	dir := t.TempDir()
	writeConceptFile(t, dir, "2301.00001", []types.Concept{
		{Name: "Quantization", Explanation: "e", ImportanceScore: 0.9},
	})

	st, err := store.NewStore(types.StorageConfig{DBPath: filepath.Join(t.TempDir(), "content.db")})
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	// Backend produces garbage on every attempt; the fallback pair must
	// still land in the store.
	b := &mockBackend{responses: []string{"??", "??", "??"}}
	g := &Generator{Backend: b, Config: types.GenerationConfig{PapersDir: dir}}

	summary, err := g.GenerateDir(context.Background(), st, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	if summary.Questions != 1 {
		t.Errorf("summary = %+v, want 1 question", summary)
	}

	stats, err := st.GetStats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Questions != 2 {
		t.Errorf("stored %d question rows, want 2", stats.Questions)
	}
}

func TestGenerateDirContinuesAfterBadFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.concepts.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	writeConceptFile(t, dir, "2301.00002", []types.Concept{
		{Name: "Distillation", Explanation: "e", ImportanceScore: 0.9},
	})

	st, err := store.NewStore(types.StorageConfig{DBPath: filepath.Join(t.TempDir(), "content.db")})
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	b := &mockBackend{responses: []string{validQuestion}}
	g := &Generator{Backend: b, Config: types.GenerationConfig{PapersDir: dir}}

	summary, err := g.GenerateDir(context.Background(), st, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	if summary.Failed != 1 || summary.Papers != 1 {
		t.Errorf("summary = %+v, want 1 failed and 1 paper", summary)
	}
}
