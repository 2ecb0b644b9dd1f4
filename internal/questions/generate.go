// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package questions turns extracted concepts into paired analogical quiz
// questions via an LLM backend. Like extraction, generation never fails on
// model misbehavior: structurally invalid responses are retried and
// exhaustion resolves to a fixed fallback question.
package questions

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pdiddy/paperplay/internal/llm"
	"github.com/pdiddy/paperplay/internal/parse"
	"github.com/pdiddy/paperplay/pkg/types"
)

// backoffUnit is the base wait between generation attempts. Attempt n
// (1-based) waits n*2 units. Tests override this to avoid real sleeps.
var backoffUnit = time.Second

const defaultMaxAttempts = 3

// Generator produces analogical questions from concepts.
type Generator struct {
	Backend llm.Backend
	Config  types.GenerationConfig

	// Debug receives parser and retry diagnostics. Nil discards.
	Debug io.Writer
}

// Validate checks the structural contract of a generated question: all
// seven fields present, both option lists exactly four entries, and the
// correct option one of A through D. There is no partial acceptance.
func Validate(q *types.AnalogicalQuestion) error {
	switch {
	case q.LeadInQuestion == "":
		return fmt.Errorf("missing lead_in_question")
	case q.ConceptExplanation == "":
		return fmt.Errorf("missing concept_explanation")
	case q.ConceptQuestion == "":
		return fmt.Errorf("missing concept_question")
	case q.Explanation == "":
		return fmt.Errorf("missing explanation")
	case len(q.LeadInOptions) != 4:
		return fmt.Errorf("lead_in_options has %d entries, want 4", len(q.LeadInOptions))
	case len(q.ConceptOptions) != 4:
		return fmt.Errorf("concept_options has %d entries, want 4", len(q.ConceptOptions))
	}
	switch q.CorrectOption {
	case "A", "B", "C", "D":
		return nil
	default:
		return fmt.Errorf("correct_option %q not in A-D", q.CorrectOption)
	}
}

// GenerateQuestion produces one validated question for the concept. Model
// failures and invalid structures are retried; exhaustion returns the
// fallback question. The only error is a missing concept name.
func (g *Generator) GenerateQuestion(ctx context.Context, paperTitle string, concept types.Concept) (*types.AnalogicalQuestion, error) {
	if concept.Name == "" {
		return nil, fmt.Errorf("concept name is required")
	}

	dbg := g.Debug
	if dbg == nil {
		dbg = io.Discard
	}

	maxAttempts := g.Config.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	prompt, err := renderPrompt(paperTitle, concept)
	if err != nil {
		return nil, fmt.Errorf("rendering prompt: %w", err)
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		fmt.Fprintf(dbg, "generate: attempt %d/%d for concept %q\n", attempt, maxAttempts, concept.Name)

		raw, err := g.Backend.Complete(ctx, prompt)
		if err != nil {
			fmt.Fprintf(dbg, "generate: attempt %d error: %v\n", attempt, err)
			g.wait(ctx, attempt, maxAttempts)
			continue
		}

		var q types.AnalogicalQuestion
		report := parse.Object(raw, "lead_in_question", &q, dbg)
		if report.Kind != parse.OK {
			fmt.Fprintf(dbg, "generate: attempt %d unparseable response\n", attempt)
			g.wait(ctx, attempt, maxAttempts)
			continue
		}
		if err := Validate(&q); err != nil {
			fmt.Fprintf(dbg, "generate: attempt %d invalid question: %v\n", attempt, err)
			g.wait(ctx, attempt, maxAttempts)
			continue
		}

		fmt.Fprintf(dbg, "generate: attempt %d succeeded\n", attempt)
		return &q, nil
	}

	fmt.Fprintf(dbg, "generate: all attempts exhausted for %q, using fallback question\n", concept.Name)
	return FallbackQuestion(concept.Name, concept.Explanation), nil
}

func (g *Generator) wait(ctx context.Context, attempt, maxAttempts int) {
	if attempt >= maxAttempts {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(time.Duration(attempt) * 2 * backoffUnit):
	}
}

// FallbackQuestion returns the fixed analogy question substituted when
// generation is exhausted. It satisfies Validate by construction.
func FallbackQuestion(conceptName, conceptExplanation string) *types.AnalogicalQuestion {
	if len(conceptExplanation) > 100 {
		conceptExplanation = conceptExplanation[:100] + "..."
	}
	return &types.AnalogicalQuestion{
		LeadInQuestion: fmt.Sprintf("Imagine you need to explain a complex idea, %q, to a friend. What approach would you take?", conceptName),
		LeadInOptions: []string{
			"A. Recite the formal definition and let them work it out alone",
			"B. Use a familiar everyday example as an analogy so the idea becomes easy to grasp",
			"C. Insist they first learn all the background material",
			"D. Draw an intricate technical diagram to walk through",
		},
		ConceptExplanation: fmt.Sprintf("In computer science, %s is an important concept. %s", conceptName, conceptExplanation),
		ConceptQuestion:    fmt.Sprintf("Which statement best describes the core role of %s?", conceptName),
		ConceptOptions: []string{
			"A. It mainly speeds up system execution",
			"B. Through its particular mechanism, it helps a system understand and handle complex information",
			"C. It is only used for data storage and management",
			"D. It deals exclusively with user interface rendering",
		},
		CorrectOption: "B",
		Explanation:   fmt.Sprintf("Just as an everyday analogy makes a hard idea approachable, %s uses its particular mechanism to help a system understand and process information.", conceptName),
	}
}
