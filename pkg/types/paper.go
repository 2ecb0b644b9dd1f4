// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Paper holds metadata and text for an acquired paper.
type Paper struct {
	// ArxivID is the bare arXiv identifier without version suffix
	// (e.g. "1706.03762").
	ArxivID string `json:"arxiv_id" yaml:"arxiv_id"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Abstract is the paper abstract.
	Abstract string `json:"abstract" yaml:"abstract"`

	// FullText is the converted body text. Empty when only metadata was fetched.
	FullText string `json:"full_text,omitempty" yaml:"full_text,omitempty"`

	// Year is the publication year. Zero when unknown.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// Journal is the venue label (e.g. "arXiv preprint").
	Journal string `json:"journal,omitempty" yaml:"journal,omitempty"`

	// DOI is the digital object identifier, when known.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// CitationCount comes from an injected CitationSource; zero means unknown.
	CitationCount int `json:"citation_count" yaml:"citation_count"`

	// SourceURL is the URL from which the paper was downloaded.
	SourceURL string `json:"source_url,omitempty" yaml:"source_url,omitempty"`

	// PDFPath is the local filesystem path to the downloaded PDF.
	PDFPath string `json:"pdf_path,omitempty" yaml:"pdf_path,omitempty"`

	// Date is the publication or preprint date.
	Date time.Time `json:"date,omitempty" yaml:"date,omitempty"`
}
