// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package concepts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/paperplay/internal/store"
	"github.com/pdiddy/paperplay/pkg/types"
)

const abstractClip = 500

// BatchSummary holds the outcome of a directory extraction run.
type BatchSummary struct {
	Extracted int
	Skipped   int
	Failed    int
}

// Total returns the number of markdown files processed.
func (s BatchSummary) Total() int {
	return s.Extracted + s.Skipped + s.Failed
}

// ExtractDir walks the markdown files under the configured papers
// directory and writes a <arxiv-id>.concepts.json next to each one.
// Files whose concept JSON already exists are skipped. When st is
// non-nil the paper and its concepts are also persisted. Individual
// failures are reported and do not stop the run.
func (e *Extractor) ExtractDir(ctx context.Context, st *store.Store, w io.Writer) (BatchSummary, error) {
	dir := e.Config.PapersDir
	entries, err := os.ReadDir(dir)
	if err != nil {
		return BatchSummary{}, fmt.Errorf("reading papers directory %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".md") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var summary BatchSummary
	for _, name := range names {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		mdPath := filepath.Join(dir, name)
		arxivID := strings.TrimSuffix(strings.TrimSuffix(name, ".md"), ".pdf")
		jsonPath := filepath.Join(dir, arxivID+".concepts.json")

		if _, err := os.Stat(jsonPath); err == nil {
			fmt.Fprintf(w, "skipped: %s (concepts exist)\n", arxivID)
			summary.Skipped++
			continue
		}

		paper, err := ParseMarkdownPaper(mdPath)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", arxivID, err)
			summary.Failed++
			continue
		}

		fmt.Fprintf(w, "extracting: %s (%s)\n", arxivID, paper.Title)

		res, err := e.ExtractConcepts(ctx, paper.Title, paper.Abstract, paper.FullText)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", arxivID, err)
			summary.Failed++
			continue
		}

		if err := WriteConceptFile(jsonPath, paper, res); err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", arxivID, err)
			summary.Failed++
			continue
		}

		if st != nil {
			paperID, err := st.InsertPaper(ctx, paper)
			if err == nil {
				err = st.InsertConcepts(ctx, paperID, res.Concepts)
			}
			if err != nil {
				fmt.Fprintf(w, "  warning: storing %s failed: %v\n", arxivID, err)
			}
		}

		fmt.Fprintf(w, "  %d concepts (%s)\n", len(res.Concepts), res.Method)
		summary.Extracted++
	}

	fmt.Fprintf(w, "\nBatch summary: %d extracted, %d skipped, %d failed (total: %d)\n",
		summary.Extracted, summary.Skipped, summary.Failed, summary.Total())
	return summary, nil
}

// WriteConceptFile writes the paper's concept batch to path in the
// .concepts.json format consumed by question generation.
func WriteConceptFile(path string, paper *types.Paper, res Result) error {
	abstract := paper.Abstract
	if len(abstract) > abstractClip {
		abstract = abstract[:abstractClip] + "..."
	}

	file := types.ConceptFile{
		PaperInfo: types.PaperInfo{
			ArxivID:             paper.ArxivID,
			Title:               paper.Title,
			Authors:             paper.Authors,
			Abstract:            abstract,
			Year:                paper.Year,
			Journal:             paper.Journal,
			ExtractionTimestamp: time.Now().UTC().Format(time.RFC3339),
		},
		Concepts: res.Concepts,
		Metadata: types.ConceptFileMetadata{
			TotalConcepts:    len(res.Concepts),
			ExtractionMethod: res.Method,
			Source:           "markdown_file",
		},
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling concept file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadConceptFile reads a .concepts.json file.
func LoadConceptFile(path string) (*types.ConceptFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading concept file: %w", err)
	}
	var file types.ConceptFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing concept file %s: %w", path, err)
	}
	return &file, nil
}
