// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperplay/internal/store"
	"github.com/pdiddy/paperplay/pkg/types"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show content store statistics",
	Long: `Stats reports paper, concept, and question counts from the content store,
along with the most cited papers. With --export, a full JSON dump of the
store is written to the given path.`,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	dbPath, _ := cmd.Flags().GetString("db")
	exportPath, _ := cmd.Flags().GetString("export")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	st, err := store.NewStore(types.StorageConfig{DBPath: dbPath})
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()

	if exportPath != "" {
		if err := st.ExportJSON(ctx, exportPath); err != nil {
			return err
		}
		fmt.Println("Exported to", exportPath)
		return nil
	}

	stats, err := st.GetStats(ctx)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	fmt.Printf("Papers:    %d\n", stats.Papers)
	fmt.Printf("Concepts:  %d (%.1f per paper)\n", stats.Concepts, stats.AvgConceptsPaper)
	fmt.Printf("Questions: %d\n", stats.Questions)
	if len(stats.TopCited) > 0 {
		fmt.Println("\nMost cited:")
		for _, p := range stats.TopCited {
			fmt.Printf("  %6d  %s (%s)\n", p.CitationCount, p.Title, p.ArxivID)
		}
	}
	return nil
}

func init() {
	statsCmd.Flags().String("db", defaultDBPath, "SQLite content store path")
	statsCmd.Flags().String("export", "", "write a full JSON export to this path")
	statsCmd.Flags().Bool("json", false, "output statistics as JSON")

	rootCmd.AddCommand(statsCmd)
}
