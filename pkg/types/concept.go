// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Concept is a single extracted idea with an explanation and importance weight.
type Concept struct {
	// Name is the short label of the concept.
	Name string `json:"name" yaml:"name"`

	// Explanation is a teaching-oriented description, roughly 100-200
	// characters by prompt contract (not hard-validated).
	Explanation string `json:"explanation" yaml:"explanation"`

	// ImportanceScore is in (0, 1]. Batches are ordered by descending
	// importance by convention.
	ImportanceScore float64 `json:"importance_score" yaml:"importance_score"`
}

// PaperInfo is the provenance block written into a .concepts.json file.
type PaperInfo struct {
	ArxivID             string   `json:"arxiv_id"`
	Title               string   `json:"title"`
	Authors             []string `json:"authors"`
	Abstract            string   `json:"abstract"`
	Year                int      `json:"year,omitempty"`
	Journal             string   `json:"journal,omitempty"`
	ExtractionTimestamp string   `json:"extraction_timestamp"`
}

// ConceptFileMetadata describes how a concept batch was produced.
type ConceptFileMetadata struct {
	TotalConcepts    int    `json:"total_concepts"`
	ExtractionMethod string `json:"extraction_method"`
	Source           string `json:"source"`
}

// ConceptFile is the on-disk format for one paper's extracted concepts
// (the "<arxiv-id>.concepts.json" files consumed by question generation).
type ConceptFile struct {
	PaperInfo PaperInfo           `json:"paper_info"`
	Concepts  []Concept           `json:"concepts"`
	Metadata  ConceptFileMetadata `json:"metadata"`
}
