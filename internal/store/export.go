// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// exportDoc is the top-level structure written by ExportJSON.
type exportDoc struct {
	Stats  Stats         `json:"stats"`
	Papers []PaperRecord `json:"papers"`
}

// ExportJSON writes every paper with its concepts, plus summary stats,
// to a JSON file at path.
func (s *Store) ExportJSON(ctx context.Context, path string) error {
	stats, err := s.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("computing stats: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT arxiv_id FROM papers ORDER BY arxiv_id`)
	if err != nil {
		return fmt.Errorf("listing papers: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("scanning paper id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	doc := exportDoc{Stats: stats}
	for _, id := range ids {
		p, err := s.GetPaperWithConcepts(ctx, id)
		if err != nil {
			return err
		}
		doc.Papers = append(doc.Papers, *p)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
