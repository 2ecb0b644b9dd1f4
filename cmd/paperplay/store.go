// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperplay/internal/concepts"
	"github.com/pdiddy/paperplay/internal/store"
	"github.com/pdiddy/paperplay/internal/vector"
	"github.com/pdiddy/paperplay/pkg/types"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Ingest concept files into the content store and embedding index",
	Long: `Store reads the .concepts.json files in the papers directory and ingests
papers and concepts into the SQLite content store. With --embed, papers and
concepts are also embedded and added to the vector index so they become
searchable by similarity.`,
	RunE: runStore,
}

func runStore(cmd *cobra.Command, args []string) error {
	papersDir, _ := cmd.Flags().GetString("papers-dir")
	dbPath, _ := cmd.Flags().GetString("db")
	embed, _ := cmd.Flags().GetBool("embed")

	st, err := store.NewStore(types.StorageConfig{DBPath: dbPath})
	if err != nil {
		return err
	}
	defer st.Close()

	var ix *vector.Index
	if embed {
		ix, err = openIndex(cmd)
		if err != nil {
			return err
		}
		defer ix.Close()
	}

	entries, err := os.ReadDir(papersDir)
	if err != nil {
		return fmt.Errorf("reading papers directory %s: %w", papersDir, err)
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".concepts.json") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	ctx := context.Background()
	ingested, failed := 0, 0
	for _, name := range names {
		file, err := concepts.LoadConceptFile(filepath.Join(papersDir, name))
		if err != nil {
			fmt.Printf("failed:  %s (%v)\n", name, err)
			failed++
			continue
		}
		if err := ingestConceptFile(ctx, st, ix, file); err != nil {
			fmt.Printf("failed:  %s (%v)\n", file.PaperInfo.ArxivID, err)
			failed++
			continue
		}
		fmt.Printf("stored:  %s (%d concepts)\n", file.PaperInfo.ArxivID, len(file.Concepts))
		ingested++
	}

	fmt.Printf("\nBatch summary: %d ingested, %d failed (total: %d)\n", ingested, failed, ingested+failed)
	if failed > 0 {
		return fmt.Errorf("%d file(s) failed ingestion", failed)
	}
	return nil
}

func ingestConceptFile(ctx context.Context, st *store.Store, ix *vector.Index, file *types.ConceptFile) error {
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
		return err
	}
	if err := st.InsertConcepts(ctx, paperID, file.Concepts); err != nil {
		return err
	}

	if ix == nil {
		return nil
	}

	doc := info.Title
	if info.Abstract != "" {
		doc += "\n\n" + info.Abstract
	}
	meta := map[string]string{"arxiv_id": info.ArxivID, "year": strconv.Itoa(info.Year)}
	if _, err := ix.Add(ctx, vector.CollectionPapers, paperID, doc, meta); err != nil {
		return fmt.Errorf("embedding paper: %w", err)
	}

	for _, c := range file.Concepts {
		refID := paperID + "/" + c.Name
		cmeta := map[string]string{"arxiv_id": info.ArxivID, "concept": c.Name}
		if _, err := ix.Add(ctx, vector.CollectionConcepts, refID, c.Name+": "+c.Explanation, cmeta); err != nil {
			return fmt.Errorf("embedding concept %q: %w", c.Name, err)
		}
	}
	return nil
}

// openIndex builds the vector index from the shared embedding flags.
func openIndex(cmd *cobra.Command) (*vector.Index, error) {
	vectorDB, _ := cmd.Flags().GetString("vector-db")
	embeddingModel, _ := cmd.Flags().GetString("embedding-model")
	apiKeyFlag, _ := cmd.Flags().GetString("embedding-api-key")

	apiKey := embeddingsKey(apiKeyFlag)
	if apiKey == "" {
		return nil, fmt.Errorf("no embeddings API key: set EMBEDDINGS_API_KEY, .secrets/embeddings-api-key, or --embedding-api-key")
	}

	embedder := &vector.HTTPEmbedder{
		Model:  embeddingModel,
		APIKey: apiKey,
		Client: &http.Client{Timeout: 30 * time.Second},
	}
	return vector.NewIndex(types.VectorConfig{DBPath: vectorDB, EmbeddingModel: embeddingModel}, embedder)
}

func init() {
	storeCmd.Flags().String("papers-dir", "papers/markdown", "directory holding .concepts.json files")
	storeCmd.Flags().String("db", defaultDBPath, "SQLite content store path")
	storeCmd.Flags().Bool("embed", false, "also embed papers and concepts into the vector index")
	storeCmd.Flags().String("vector-db", "sqlite/vectors.db", "SQLite database holding embeddings")
	storeCmd.Flags().String("embedding-model", "text-embedding-3-small", "embedding model identifier")
	storeCmd.Flags().String("embedding-api-key", "", "embeddings API key (overrides secrets and environment)")

	rootCmd.AddCommand(storeCmd)
}
