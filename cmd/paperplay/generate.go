// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperplay/internal/llm"
	"github.com/pdiddy/paperplay/internal/questions"
	"github.com/pdiddy/paperplay/internal/store"
	"github.com/pdiddy/paperplay/pkg/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate analogical quiz questions from extracted concepts",
	Long: `Generate reads the .concepts.json files in the papers directory and asks
the LLM for one two-part question per concept: an everyday analogy lead-in
followed by a conceptual question, both sharing the same correct option.
Question pairs are stored in the SQLite content store under a per-paper level.

Structurally invalid responses are retried; exhaustion substitutes a fixed
fallback question so every concept ends up with a stored pair.`,
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	papersDir, _ := cmd.Flags().GetString("papers-dir")
	model, _ := cmd.Flags().GetString("model")
	apiKeyFlag, _ := cmd.Flags().GetString("api-key")
	maxAttempts, _ := cmd.Flags().GetInt("max-attempts")
	score, _ := cmd.Flags().GetInt("score")
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

	st, err := store.NewStore(types.StorageConfig{DBPath: dbPath})
	if err != nil {
		return err
	}
	defer st.Close()

	gen := &questions.Generator{
		Backend: &llm.ClaudeBackend{APIKey: apiKey, Model: model, Debug: dbg},
		Config: types.GenerationConfig{
			AIConfig:      types.AIConfig{Model: model, MaxAttempts: maxAttempts},
			PapersDir:     papersDir,
			QuestionScore: score,
		},
		Debug: dbg,
	}

	summary, err := gen.GenerateDir(context.Background(), st, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d paper(s) failed generation", summary.Failed)
	}
	return nil
}

func init() {
	generateCmd.Flags().String("papers-dir", "papers/markdown", "directory holding .concepts.json files")
	generateCmd.Flags().String("model", defaultModel, "Claude model identifier")
	generateCmd.Flags().String("api-key", "", "Claude API key (overrides secrets and environment)")
	generateCmd.Flags().Int("max-attempts", 3, "LLM attempts before the fallback question")
	generateCmd.Flags().Int("score", 5, "score assigned to each stored question")
	generateCmd.Flags().String("db", defaultDBPath, "SQLite content store path")
	generateCmd.Flags().Bool("debug", false, "write parser and retry diagnostics to stderr")

	rootCmd.AddCommand(generateCmd)
}
