// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package arxiv

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/paperplay/pkg/types"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/1706.03762v7</id>
    <title>Attention Is All
      You Need</title>
    <summary>  The dominant sequence transduction models are based on RNNs.  </summary>
    <published>2017-06-12T17:57:34Z</published>
    <author><name>Ashish Vaswani</name></author>
    <author><name>Noam Shazeer</name></author>
  </entry>
</feed>`

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"1706.03762", "1706.03762", false},
		{"1706.03762v5", "1706.03762", false},
		{"https://arxiv.org/abs/1706.03762", "1706.03762", false},
		{"https://arxiv.org/abs/1706.03762v2", "1706.03762", false},
		{"https://arxiv.org/pdf/1706.03762v2.pdf", "1706.03762", false},
		{"  2301.07041  ", "2301.07041", false},
		{"", "", true},
		{"not an id", "", true},
	}
	for _, tt := range tests {
		got, err := NormalizeID(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("NormalizeID(%q): expected error, got %q", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("NormalizeID(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFetchMetadata(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("id_list"); got != "1706.03762" {
			t.Errorf("id_list = %q, want 1706.03762", got)
		}
		w.Write([]byte(sampleFeed))
	}))
	defer ts.Close()

	old := arxivAPIBase
	arxivAPIBase = ts.URL
	defer func() { arxivAPIBase = old }()

	c := &Client{HTTP: ts.Client(), Citations: StaticCitations{"1706.03762": 90000}}
	paper, err := c.FetchMetadata(context.Background(), "1706.03762")
	if err != nil {
		t.Fatalf("FetchMetadata: %v", err)
	}

	if paper.Title != "Attention Is All You Need" {
		t.Errorf("Title = %q (whitespace not collapsed?)", paper.Title)
	}
	if paper.Abstract != "The dominant sequence transduction models are based on RNNs." {
		t.Errorf("Abstract = %q", paper.Abstract)
	}
	if len(paper.Authors) != 2 || paper.Authors[0] != "Ashish Vaswani" {
		t.Errorf("Authors = %v", paper.Authors)
	}
	if paper.Year != 2017 {
		t.Errorf("Year = %d, want 2017", paper.Year)
	}
	if paper.Journal != "arXiv preprint" {
		t.Errorf("Journal = %q", paper.Journal)
	}
	if paper.CitationCount != 90000 {
		t.Errorf("CitationCount = %d, want 90000", paper.CitationCount)
	}
}

func TestFetchMetadataEmptyFeed(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<feed xmlns="http://www.w3.org/2005/Atom"></feed>`))
	}))
	defer ts.Close()

	old := arxivAPIBase
	arxivAPIBase = ts.URL
	defer func() { arxivAPIBase = old }()

	c := &Client{HTTP: ts.Client()}
	if _, err := c.FetchMetadata(context.Background(), "9999.99999"); err == nil {
		t.Fatal("expected error for empty feed")
	}
}

func TestFetchPaperDownloadsAndWritesMetadata(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/pdf/", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("%PDF-1.5 fake body"))
	})
	mux.HandleFunc("/api/query", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(sampleFeed))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	oldAPI, oldPDF := arxivAPIBase, arxivPDFBase
	arxivAPIBase = ts.URL + "/api/query"
	arxivPDFBase = ts.URL + "/pdf/"
	defer func() { arxivAPIBase, arxivPDFBase = oldAPI, oldPDF }()

	cfg := types.FetchConfig{PapersDir: t.TempDir()}
	c := &Client{HTTP: ts.Client()}

	var out bytes.Buffer
	paper, skipped, err := c.FetchPaper(context.Background(), "https://arxiv.org/abs/1706.03762v7", cfg, &out)
	if err != nil {
		t.Fatalf("FetchPaper: %v", err)
	}
	if skipped {
		t.Error("first fetch should not be skipped")
	}
	if paper.ArxivID != "1706.03762" {
		t.Errorf("ArxivID = %q", paper.ArxivID)
	}

	pdfPath := filepath.Join(cfg.PapersDir, "raw", "1706.03762.pdf")
	if _, err := os.Stat(pdfPath); err != nil {
		t.Errorf("PDF not written: %v", err)
	}
	metaPath := filepath.Join(cfg.PapersDir, "metadata", "1706.03762.yaml")
	meta, err := os.ReadFile(metaPath)
	if err != nil {
		t.Fatalf("metadata not written: %v", err)
	}
	if !strings.Contains(string(meta), "Attention Is All You Need") {
		t.Errorf("metadata missing title: %s", meta)
	}

	// No stray temp files left in the raw directory.
	entries, err := os.ReadDir(filepath.Join(cfg.PapersDir, "raw"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("raw dir has %d entries, want 1", len(entries))
	}

	// Second fetch skips the download.
	out.Reset()
	paper2, skipped, err := c.FetchPaper(context.Background(), "1706.03762", cfg, &out)
	if err != nil {
		t.Fatalf("second FetchPaper: %v", err)
	}
	if !skipped {
		t.Error("second fetch should be skipped")
	}
	if paper2.Title != "Attention Is All You Need" {
		t.Errorf("skipped fetch lost metadata: %+v", paper2)
	}
	if !strings.Contains(out.String(), "skipped") {
		t.Errorf("status line missing: %q", out.String())
	}
}

func TestFetchPaperDownloadFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	oldPDF := arxivPDFBase
	arxivPDFBase = ts.URL + "/pdf/"
	defer func() { arxivPDFBase = oldPDF }()

	cfg := types.FetchConfig{PapersDir: t.TempDir()}
	c := &Client{HTTP: ts.Client()}

	_, _, err := c.FetchPaper(context.Background(), "1234.56789", cfg, io.Discard)
	if err == nil {
		t.Fatal("expected error for 404 PDF")
	}

	// Failed download leaves no partial PDF behind.
	if _, statErr := os.Stat(filepath.Join(cfg.PapersDir, "raw", "1234.56789.pdf")); statErr == nil {
		t.Error("partial PDF left after failed download")
	}
}

func TestFetchBatch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/pdf/", func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "bad") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("%PDF-1.5"))
	})
	mux.HandleFunc("/api/query", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(sampleFeed))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	oldAPI, oldPDF := arxivAPIBase, arxivPDFBase
	arxivAPIBase = ts.URL + "/api/query"
	arxivPDFBase = ts.URL + "/pdf/"
	defer func() { arxivAPIBase, arxivPDFBase = oldAPI, oldPDF }()

	cfg := types.FetchConfig{PapersDir: t.TempDir()}
	c := &Client{HTTP: ts.Client()}

	var out bytes.Buffer
	result := c.FetchBatch(context.Background(), []string{"1706.03762", "bad.00000", "1706.03762"}, cfg, &out)

	if result.Downloaded != 1 || result.Failed != 1 || result.Skipped != 1 {
		t.Errorf("result = %+v, want 1 downloaded, 1 skipped, 1 failed", result)
	}
	if !strings.Contains(out.String(), "Batch summary: 1 downloaded, 1 skipped, 1 failed (total: 3)") {
		t.Errorf("summary line missing: %q", out.String())
	}
}
