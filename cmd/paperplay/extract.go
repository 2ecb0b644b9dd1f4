// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperplay/internal/concepts"
	"github.com/pdiddy/paperplay/internal/llm"
	"github.com/pdiddy/paperplay/internal/store"
	"github.com/pdiddy/paperplay/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract educational concepts from markdown papers",
	Long: `Extract walks the markdown conversions in the papers directory and asks
the LLM for five core concepts per paper, writing a <id>.concepts.json file
next to each markdown source. Files with existing concept JSON are skipped.

Model failures never abort the run: malformed responses fall back to a
generic concept set, and retry exhaustion falls back to a minimal one.
With --db, papers and concepts are also persisted to the content store.`,
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	papersDir, _ := cmd.Flags().GetString("papers-dir")
	model, _ := cmd.Flags().GetString("model")
	apiKeyFlag, _ := cmd.Flags().GetString("api-key")
	maxAttempts, _ := cmd.Flags().GetInt("max-attempts")
	minConcepts, _ := cmd.Flags().GetInt("min-concepts")
	maxChars, _ := cmd.Flags().GetInt("max-content-chars")
	dbPath, _ := cmd.Flags().GetString("db")
	debug, _ := cmd.Flags().GetBool("debug")

	apiKey := anthropicKey(apiKeyFlag)
	if apiKey == "" {
		return fmt.Errorf("no API key: set ANTHROPIC_API_KEY, .secrets/anthropic-api-key, or --api-key")
	}

	var dbg io.Writer = io.Discard
	if debug {
		dbg = os.Stderr
	}

	extractor := &concepts.Extractor{
		Backend: &llm.ClaudeBackend{APIKey: apiKey, Model: model, Debug: dbg},
		Config: types.ExtractionConfig{
			AIConfig:        types.AIConfig{Model: model, MaxAttempts: maxAttempts},
			PapersDir:       papersDir,
			MinConcepts:     minConcepts,
			MaxContentChars: maxChars,
		},
		Debug: dbg,
	}

	var st *store.Store
	if dbPath != "" {
		var err error
		st, err = store.NewStore(types.StorageConfig{DBPath: dbPath})
		if err != nil {
			return err
		}
		defer st.Close()
	}

	summary, err := extractor.ExtractDir(context.Background(), st, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d paper(s) failed extraction", summary.Failed)
	}
	return nil
}

func init() {
	extractCmd.Flags().String("papers-dir", "papers/markdown", "directory holding markdown conversions")
	extractCmd.Flags().String("model", defaultModel, "Claude model identifier")
	extractCmd.Flags().String("api-key", "", "Claude API key (overrides secrets and environment)")
	extractCmd.Flags().Int("max-attempts", 3, "LLM attempts before falling back")
	extractCmd.Flags().Int("min-concepts", 3, "minimum accepted concepts per paper")
	extractCmd.Flags().Int("max-content-chars", 5000, "paper text budget included in the prompt")
	extractCmd.Flags().String("db", "", "also persist to this SQLite content store")
	extractCmd.Flags().Bool("debug", false, "write parser and retry diagnostics to stderr")

	rootCmd.AddCommand(extractCmd)
}
