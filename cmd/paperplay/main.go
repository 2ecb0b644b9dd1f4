// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paperplay CLI, a pipeline that
// turns academic papers into educational content: extracted concepts and
// analogy-led quiz questions.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paperplay/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

const (
	defaultModel     = "claude-sonnet-4-5-20250929"
	defaultUserAgent = "paperplay/0.1"
	defaultDBPath    = "sqlite/paperplay.db"
)

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// anthropicKey resolves the Claude API key: flag value, then key file,
// then environment.
func anthropicKey(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return secrets.Resolve(loadedSecrets, "anthropic-api-key", "ANTHROPIC_API_KEY")
}

// embeddingsKey resolves the embeddings API key the same way.
func embeddingsKey(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return secrets.Resolve(loadedSecrets, "embeddings-api-key", "EMBEDDINGS_API_KEY", "OPENAI_API_KEY")
}

// rootCmd is the base command for the paperplay CLI.
var rootCmd = &cobra.Command{
	Use:   "paperplay",
	Short: "Turn academic papers into concepts and quiz questions",
	Long: `paperplay extracts educational concepts from academic papers and
generates paired analogy-led quiz questions, using an LLM hardened with
multi-strategy response parsing, bounded retry, and deterministic fallbacks.

Each pipeline stage is a subcommand: fetch papers from arXiv, extract
concepts from markdown conversions, generate questions from concepts, store
everything in SQLite, and search the embedding index.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		godotenv.Load()

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paperplay.yaml or ~/.config/paperplay/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paperplay")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paperplay"))
		}
	}

	viper.SetEnvPrefix("PAPERPLAY")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
