// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperplay/internal/arxiv"
	"github.com/pdiddy/paperplay/internal/secrets"
	"github.com/pdiddy/paperplay/pkg/types"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [identifiers...]",
	Short: "Download papers and metadata from arXiv",
	Long: `Fetch downloads PDFs and Atom metadata for the given arXiv identifiers
into the papers directory (raw/ and metadata/ subdirectories). Identifiers
may be bare IDs, abs/ or pdf/ URLs, or versioned IDs; all are normalized.
Papers already on disk are skipped.

With --citations, citation counts are looked up on Semantic Scholar.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFetch,
}

func runFetch(cmd *cobra.Command, args []string) error {
	papersDir, _ := cmd.Flags().GetString("papers-dir")
	delay, _ := cmd.Flags().GetDuration("delay")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	withCitations, _ := cmd.Flags().GetBool("citations")

	cfg := types.FetchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		PapersDir:     papersDir,
		DownloadDelay: delay,
	}

	httpClient := &http.Client{Timeout: timeout}
	client := &arxiv.Client{
		HTTP:      httpClient,
		UserAgent: defaultUserAgent,
	}
	if withCitations {
		client.Citations = &arxiv.SemanticScholarCitations{
			Client:    httpClient,
			APIKey:    secrets.Resolve(loadedSecrets, "semantic-scholar-api-key", "SEMANTIC_SCHOLAR_API_KEY"),
			UserAgent: defaultUserAgent,
		}
	}

	result := client.FetchBatch(context.Background(), args, cfg, os.Stdout)
	if result.Failed > 0 {
		return fmt.Errorf("%d paper(s) failed to download", result.Failed)
	}
	return nil
}

func init() {
	fetchCmd.Flags().String("papers-dir", "papers", "base directory for papers (contains raw/, metadata/)")
	fetchCmd.Flags().Duration("delay", time.Second, "delay between consecutive downloads")
	fetchCmd.Flags().Duration("timeout", 60*time.Second, "HTTP request timeout")
	fetchCmd.Flags().Bool("citations", false, "look up citation counts on Semantic Scholar")

	rootCmd.AddCommand(fetchCmd)
}
