// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package questions

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdiddy/paperplay/internal/concepts"
	"github.com/pdiddy/paperplay/internal/store"
	"github.com/pdiddy/paperplay/pkg/types"
)

const defaultQuestionScore = 5

// BatchSummary holds the outcome of a directory generation run.
type BatchSummary struct {
	Papers    int
	Questions int
	Failed    int
}

// GenerateDir walks the .concepts.json files under the configured papers
// directory, ensures each paper and its level exist in the store, and
// persists one question pair per concept. Individual paper failures are
// reported and do not stop the run.
func (g *Generator) GenerateDir(ctx context.Context, st *store.Store, w io.Writer) (BatchSummary, error) {
	dir := g.Config.PapersDir
	entries, err := os.ReadDir(dir)
	if err != nil {
		return BatchSummary{}, fmt.Errorf("reading papers directory %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".concepts.json") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	score := g.Config.QuestionScore
	if score <= 0 {
		score = defaultQuestionScore
	}

	var summary BatchSummary
	for _, name := range names {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		file, err := concepts.LoadConceptFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", name, err)
			summary.Failed++
			continue
		}

		inserted, err := g.processPaper(ctx, st, file, score, w)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", file.PaperInfo.ArxivID, err)
			summary.Failed++
			continue
		}

		summary.Papers++
		summary.Questions += inserted
	}

	fmt.Fprintf(w, "\nBatch summary: %d papers, %d questions, %d failed\n",
		summary.Papers, summary.Questions, summary.Failed)
	return summary, nil
}

// processPaper inserts the paper and level rows, then generates and
// stores one question pair per concept.
func (g *Generator) processPaper(ctx context.Context, st *store.Store, file *types.ConceptFile, score int, w io.Writer) (int, error) {
	info := file.PaperInfo
	paper := &types.Paper{
		ArxivID:  info.ArxivID,
		Title:    info.Title,
		Authors:  info.Authors,
		Abstract: info.Abstract,
		Year:     info.Year,
		Journal:  info.Journal,
	}

	paperID, err := st.InsertPaper(ctx, paper)
	if err != nil {
		return 0, fmt.Errorf("storing paper: %w", err)
	}
	levelID, err := st.EnsureLevel(ctx, paperID, info.Title)
	if err != nil {
		return 0, fmt.Errorf("ensuring level: %w", err)
	}

	fmt.Fprintf(w, "generating: %s (%d concepts)\n", info.ArxivID, len(file.Concepts))

	inserted := 0
	for _, concept := range file.Concepts {
		q, err := g.GenerateQuestion(ctx, info.Title, concept)
		if err != nil {
			fmt.Fprintf(w, "  warning: %s skipped: %v\n", concept.Name, err)
			continue
		}
		if err := st.InsertQuestionPair(ctx, levelID, concept.Name, q, score); err != nil {
			return inserted, fmt.Errorf("storing question for %q: %w", concept.Name, err)
		}
		fmt.Fprintf(w, "  %s: pair stored (correct %s)\n", concept.Name, q.CorrectOption)
		inserted++
	}
	return inserted, nil
}
