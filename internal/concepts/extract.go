// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package concepts extracts per-paper concept batches from paper text via
// an LLM backend, with bounded retry, structural validation, and
// deterministic fallbacks. Extraction never fails on model misbehavior;
// only missing input or storage errors surface to the caller.
package concepts

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pdiddy/paperplay/internal/llm"
	"github.com/pdiddy/paperplay/internal/parse"
	"github.com/pdiddy/paperplay/internal/store"
	"github.com/pdiddy/paperplay/pkg/types"
)

// backoffUnit is the base wait between extraction attempts. Attempt n
// (1-based) waits n*2 units. Tests override this to avoid real sleeps.
var backoffUnit = time.Second

const (
	defaultMaxAttempts     = 3
	defaultMinConcepts     = 3
	defaultMaxContentChars = 5000
)

// Extractor runs concept extraction against an LLM backend.
type Extractor struct {
	Backend llm.Backend
	Config  types.ExtractionConfig

	// Debug receives parser and retry diagnostics. Nil discards.
	Debug io.Writer
}

// Result is the outcome of one extraction. Concepts is never empty.
type Result struct {
	Concepts []types.Concept
	Method   string // MethodLLM or a fallback method
	Attempts int    // LLM round-trips consumed
}

type conceptsPayload struct {
	Concepts []types.Concept `json:"concepts"`
}

// ExtractConcepts extracts a concept batch for one paper. The only error
// is a missing title; model failures of any kind resolve to a fallback
// batch instead.
func (e *Extractor) ExtractConcepts(ctx context.Context, title, abstract, fullText string) (Result, error) {
	if title == "" {
		return Result{}, fmt.Errorf("paper title is required")
	}

	dbg := e.Debug
	if dbg == nil {
		dbg = io.Discard
	}

	maxAttempts := e.Config.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	minConcepts := e.Config.MinConcepts
	if minConcepts <= 0 {
		minConcepts = defaultMinConcepts
	}
	maxChars := e.Config.MaxContentChars
	if maxChars <= 0 {
		maxChars = defaultMaxContentChars
	}
	if len(fullText) > maxChars {
		fullText = fullText[:maxChars]
	}

	prompt, err := renderPrompt(title, abstract, fullText)
	if err != nil {
		return Result{}, fmt.Errorf("rendering prompt: %w", err)
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		fmt.Fprintf(dbg, "extract: attempt %d/%d for %q\n", attempt, maxAttempts, title)

		raw, err := e.Backend.Complete(ctx, prompt)
		if err != nil {
			fmt.Fprintf(dbg, "extract: attempt %d error: %v\n", attempt, err)
			e.wait(ctx, attempt, maxAttempts)
			continue
		}

		var payload conceptsPayload
		report := parse.Object(raw, "concepts", &payload, dbg)
		switch report.Kind {
		case parse.OK:
			if len(payload.Concepts) >= minConcepts {
				fmt.Fprintf(dbg, "extract: attempt %d succeeded with %d concepts\n", attempt, len(payload.Concepts))
				return Result{Concepts: payload.Concepts, Method: MethodLLM, Attempts: attempt}, nil
			}
			fmt.Fprintf(dbg, "extract: attempt %d returned only %d concepts, want at least %d\n",
				attempt, len(payload.Concepts), minConcepts)
		case parse.FormatFailure:
			// The model tried and garbled the format; more attempts rarely
			// help, substitute the generic batch.
			fmt.Fprintf(dbg, "extract: format failure, using generic fallback concepts\n")
			return Result{Concepts: FallbackConcepts(), Method: MethodFallbackGeneric, Attempts: attempt}, nil
		case parse.NoData:
			fmt.Fprintf(dbg, "extract: attempt %d produced no recoverable payload\n", attempt)
		}

		e.wait(ctx, attempt, maxAttempts)
	}

	fmt.Fprintf(dbg, "extract: all attempts exhausted, using minimal fallback concepts\n")
	return Result{Concepts: MinimalConcepts(), Method: MethodFallbackMinimal, Attempts: maxAttempts}, nil
}

// wait sleeps between attempts with a linearly growing delay. No sleep
// after the final attempt.
func (e *Extractor) wait(ctx context.Context, attempt, maxAttempts int) {
	if attempt >= maxAttempts {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(time.Duration(attempt) * 2 * backoffUnit):
	}
}

// ProcessPaper extracts concepts for the paper and persists both the paper
// row and its concept batch. The paper is stored before extraction so a
// fallback batch still lands under a real paper record.
func (e *Extractor) ProcessPaper(ctx context.Context, st *store.Store, paper *types.Paper) (Result, error) {
	paperID, err := st.InsertPaper(ctx, paper)
	if err != nil {
		return Result{}, fmt.Errorf("storing paper: %w", err)
	}

	res, err := e.ExtractConcepts(ctx, paper.Title, paper.Abstract, paper.FullText)
	if err != nil {
		return Result{}, err
	}

	if err := st.InsertConcepts(ctx, paperID, res.Concepts); err != nil {
		return Result{}, fmt.Errorf("storing concepts: %w", err)
	}
	return res, nil
}
