// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperplay/internal/store"
	"github.com/pdiddy/paperplay/internal/vector"
	"github.com/pdiddy/paperplay/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search stored papers and concepts",
	Long: `Search queries the embedding index for papers or concepts similar to the
query text, ranked by cosine similarity. With --keyword, the SQLite content
store is searched by substring match on concept names and explanations
instead, ranked by importance.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	keyword, _ := cmd.Flags().GetBool("keyword")
	top, _ := cmd.Flags().GetInt("top")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	if keyword {
		return runKeywordSearch(cmd, query, top, jsonOutput)
	}

	collection, _ := cmd.Flags().GetString("collection")
	switch collection {
	case vector.CollectionPapers, vector.CollectionConcepts:
	default:
		return fmt.Errorf("unknown collection %q: use papers or concepts", collection)
	}

	ix, err := openIndex(cmd)
	if err != nil {
		return err
	}
	defer ix.Close()

	matches, err := ix.Search(context.Background(), collection, query, top)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(matches)
	}

	if len(matches) == 0 {
		fmt.Println("No results found.")
		return nil
	}
	for i, m := range matches {
		doc := strings.SplitN(m.Document, "\n", 2)[0]
		if len(doc) > 70 {
			doc = doc[:67] + "..."
		}
		fmt.Printf("%-4d  %.3f  %s\n", i+1, m.Similarity, doc)
	}
	fmt.Printf("\n%d results\n", len(matches))
	return nil
}

func runKeywordSearch(cmd *cobra.Command, query string, top int, jsonOutput bool) error {
	dbPath, _ := cmd.Flags().GetString("db")
	st, err := store.NewStore(types.StorageConfig{DBPath: dbPath})
	if err != nil {
		return err
	}
	defer st.Close()

	results, err := st.SearchConcepts(context.Background(), query, top)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}
	for i, r := range results {
		explanation := r.Explanation
		if len(explanation) > 60 {
			explanation = explanation[:57] + "..."
		}
		fmt.Printf("%-4d  %.2f  %-35s  %s\n", i+1, r.ImportanceScore, r.Name, explanation)
	}
	fmt.Printf("\n%d results\n", len(results))
	return nil
}

func init() {
	searchCmd.Flags().String("collection", vector.CollectionConcepts, "collection to search: papers or concepts")
	searchCmd.Flags().Int("top", 5, "maximum number of results")
	searchCmd.Flags().Bool("keyword", false, "substring search against the content store instead of embeddings")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	searchCmd.Flags().String("db", defaultDBPath, "SQLite content store path (keyword search)")
	searchCmd.Flags().String("vector-db", "sqlite/vectors.db", "SQLite database holding embeddings")
	searchCmd.Flags().String("embedding-model", "text-embedding-3-small", "embedding model identifier")
	searchCmd.Flags().String("embedding-api-key", "", "embeddings API key (overrides secrets and environment)")

	rootCmd.AddCommand(searchCmd)
}
