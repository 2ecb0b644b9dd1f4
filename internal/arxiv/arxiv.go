// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package arxiv fetches paper metadata and PDFs from the arXiv API.
package arxiv

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paperplay/pkg/types"
)

const (
	rawDir      = "raw"
	metadataDir = "metadata"
)

// API endpoints. Declared as vars so tests can substitute httptest servers.
var (
	arxivAPIBase = "https://export.arxiv.org/api/query"
	arxivPDFBase = "https://arxiv.org/pdf/"
)

// Client fetches from the arXiv API.
type Client struct {
	HTTP      *http.Client
	UserAgent string

	// Citations supplies citation counts for fetched papers. Nil means
	// counts stay zero.
	Citations CitationSource
}

// BatchResult holds the outcome of a batch fetch run.
type BatchResult struct {
	Downloaded int
	Skipped    int
	Failed     int
	Papers     []*types.Paper
}

// Total returns the total number of identifiers processed.
func (r BatchResult) Total() int {
	return r.Downloaded + r.Skipped + r.Failed
}

// NormalizeID reduces an arXiv identifier to its bare form: an abs/pdf URL
// becomes the trailing id, and a version suffix ("v1", "v2") is stripped.
// Returns an error when nothing identifier-shaped remains.
func NormalizeID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	for _, marker := range []string{"/abs/", "/pdf/"} {
		if idx := strings.Index(id, marker); idx >= 0 {
			id = id[idx+len(marker):]
		}
	}
	id = strings.TrimSuffix(id, ".pdf")

	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}

	if id == "" || strings.ContainsAny(id, " \t\n") {
		return "", fmt.Errorf("unrecognized arXiv identifier: %q", raw)
	}
	return id, nil
}

// FetchMetadata retrieves title, abstract, authors, and date for one paper
// from the arXiv Atom feed.
func (c *Client) FetchMetadata(ctx context.Context, arxivID string) (*types.Paper, error) {
	apiURL := fmt.Sprintf("%s?id_list=%s", arxivAPIBase, arxivID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}
	if len(feed.Entries) == 0 {
		return nil, fmt.Errorf("no entries found for arXiv ID %s", arxivID)
	}

	entry := feed.Entries[0]
	paper := &types.Paper{
		ArxivID:  arxivID,
		Title:    strings.Join(strings.Fields(entry.Title), " "),
		Abstract: strings.TrimSpace(entry.Summary),
		Journal:  "arXiv preprint",
	}
	for _, a := range entry.Authors {
		paper.Authors = append(paper.Authors, strings.TrimSpace(a.Name))
	}
	if t, parseErr := time.Parse(time.RFC3339, entry.Published); parseErr == nil {
		paper.Date = t
		paper.Year = t.Year()
	}
	if entry.DOI != "" {
		paper.DOI = strings.TrimSpace(entry.DOI)
	}

	if c.Citations != nil {
		count, err := c.Citations.CitationCount(ctx, arxivID)
		if err == nil {
			paper.CitationCount = count
		}
	}
	return paper, nil
}

// FetchPaper fetches metadata and the PDF for one identifier, writing
// papers/raw/<id>.pdf and papers/metadata/<id>.yaml under cfg.PapersDir.
// An existing PDF skips the download; skipped reports that outcome.
func (c *Client) FetchPaper(ctx context.Context, identifier string, cfg types.FetchConfig, w io.Writer) (paper *types.Paper, skipped bool, err error) {
	id, err := NormalizeID(identifier)
	if err != nil {
		return nil, false, err
	}

	pdfPath := filepath.Join(cfg.PapersDir, rawDir, id+".pdf")
	metaPath := filepath.Join(cfg.PapersDir, metadataDir, id+".yaml")

	if _, err := os.Stat(pdfPath); err == nil {
		fmt.Fprintf(w, "skipped: %s (already exists)\n", id)
		p, readErr := readMetadata(metaPath)
		if readErr != nil {
			p = &types.Paper{ArxivID: id, PDFPath: pdfPath}
		}
		return p, true, nil
	}

	for _, dir := range []string{
		filepath.Join(cfg.PapersDir, rawDir),
		filepath.Join(cfg.PapersDir, metadataDir),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, false, fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	fmt.Fprintf(w, "downloading: %s\n", id)

	pdfURL := arxivPDFBase + id
	if err := c.downloadFile(ctx, pdfURL, pdfPath); err != nil {
		return nil, false, fmt.Errorf("downloading %s: %w", id, err)
	}

	p, err := c.FetchMetadata(ctx, id)
	if err != nil {
		fmt.Fprintf(w, "  warning: arXiv metadata fetch failed: %v\n", err)
		p = &types.Paper{ArxivID: id}
	}
	p.SourceURL = pdfURL
	p.PDFPath = pdfPath

	if err := writeMetadata(p, metaPath); err != nil {
		return nil, false, fmt.Errorf("writing metadata for %s: %w", id, err)
	}
	return p, false, nil
}

// FetchBatch processes multiple identifiers with per-item status lines and
// a summary line. It continues after individual failures and applies a
// delay between consecutive downloads.
func (c *Client) FetchBatch(ctx context.Context, identifiers []string, cfg types.FetchConfig, w io.Writer) BatchResult {
	var result BatchResult
	for i, id := range identifiers {
		if i > 0 && cfg.DownloadDelay > 0 {
			time.Sleep(cfg.DownloadDelay)
		}
		paper, wasSkipped, err := c.FetchPaper(ctx, id, cfg, w)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", id, err)
			result.Failed++
			continue
		}
		if wasSkipped {
			result.Skipped++
		} else {
			result.Downloaded++
		}
		result.Papers = append(result.Papers, paper)
	}
	fmt.Fprintf(w, "\nBatch summary: %d downloaded, %d skipped, %d failed (total: %d)\n",
		result.Downloaded, result.Skipped, result.Failed, result.Total())
	return result
}

// downloadFile fetches url to destPath using a temporary file so a failed
// download never leaves a partial PDF behind.
func (c *Client) downloadFile(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "application/pdf")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".fetch-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	Authors   []arxivAuthor `xml:"author"`
	DOI       string        `xml:"doi"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

// writeMetadata writes a Paper record to a YAML file.
func writeMetadata(paper *types.Paper, path string) error {
	data, err := yaml.Marshal(paper)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// readMetadata reads a Paper record from a YAML file.
func readMetadata(path string) (*types.Paper, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var paper types.Paper
	if err := yaml.Unmarshal(data, &paper); err != nil {
		return nil, err
	}
	return &paper, nil
}
