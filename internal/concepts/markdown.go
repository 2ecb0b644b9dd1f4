// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package concepts

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/paperplay/pkg/types"
)

// Markdown conversions of arXiv PDFs carry no structured metadata, so
// title, abstract, authors, and year are recovered heuristically from the
// first page of text.

var (
	abstractRE  = regexp.MustCompile(`(?s)Abstract\s*\n(.*?)\n\s*\n`)
	authorRE    = regexp.MustCompile(`^[A-Z][a-z]+\s+[A-Z]`)
	markerRE    = regexp.MustCompile(`\s*[∗*†‡].*$`)
	affiliation = regexp.MustCompile(`\s+(Google|University|Institute|Laboratory|Research).*$`)
	yearRE      = regexp.MustCompile(`20[0-2][0-9]|19[89][0-9]`)
	wsRE        = regexp.MustCompile(`\s+`)
)

// ParseMarkdownPaper reads a converted paper from a markdown file. The
// arXiv ID comes from the filename stem; the rest is heuristic.
func ParseMarkdownPaper(path string) (*types.Paper, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading markdown file: %w", err)
	}
	content := string(data)

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	arxivID := strings.TrimSuffix(stem, ".pdf")

	return &types.Paper{
		ArxivID:  arxivID,
		Title:    extractTitle(content),
		Authors:  extractAuthors(content),
		Abstract: extractAbstract(content),
		FullText: content,
		Year:     extractYear(content),
		Journal:  "arXiv preprint",
	}, nil
}

// extractTitle scans the first 20 lines for a plausible title: neither a
// license banner, an author line, nor contact info.
func extractTitle(content string) string {
	lines := strings.Split(content, "\n")
	if len(lines) > 20 {
		lines = lines[:20]
	}
	for _, line := range lines {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "# "))
		if len(line) <= 10 || len(line) >= 200 {
			continue
		}
		if strings.HasPrefix(line, "Provided") ||
			strings.HasPrefix(line, "Abstract") ||
			strings.Contains(line, "@") ||
			strings.HasPrefix(line, "*") ||
			strings.HasPrefix(line, "†") ||
			strings.HasPrefix(line, "‡") {
			continue
		}
		// Author lines are short name pairs, often with footnote markers
		// or an affiliation; title-case titles run longer.
		if authorRE.MatchString(line) &&
			(len(strings.Fields(line)) <= 3 || strings.ContainsAny(line, "∗†‡") || affiliation.MatchString(line)) {
			continue
		}
		if len(strings.Fields(line)) > 2 {
			return line
		}
	}
	return "Unknown Title"
}

// extractAbstract looks for an "Abstract" heading; failing that, the first
// paragraph long enough to be body text.
func extractAbstract(content string) string {
	if m := abstractRE.FindStringSubmatch(content); m != nil {
		abstract := m[1]
		var kept []string
		for _, line := range strings.Split(abstract, "\n") {
			t := strings.TrimSpace(line)
			if strings.HasPrefix(t, "*") || strings.HasPrefix(t, "†") || strings.HasPrefix(t, "‡") {
				continue
			}
			kept = append(kept, t)
		}
		abstract = wsRE.ReplaceAllString(strings.Join(kept, " "), " ")
		abstract = strings.TrimSpace(abstract)
		if len(abstract) > 50 {
			return clipRunes(abstract, 1000)
		}
	}

	for _, paragraph := range strings.Split(content, "\n\n") {
		p := strings.TrimSpace(paragraph)
		if len(p) > 100 && !strings.Contains(p, "©") {
			return clipRunes(wsRE.ReplaceAllString(p, " "), 1000)
		}
	}
	return ""
}

// extractAuthors collects up to three name-shaped lines near the top of
// the document, stripping footnote markers and affiliations.
func extractAuthors(content string) []string {
	lines := strings.Split(content, "\n")
	if len(lines) > 30 {
		lines = lines[:30]
	}

	var authors []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if !authorRE.MatchString(line) || strings.Contains(line, "@") {
			continue
		}
		author := markerRE.ReplaceAllString(line, "")
		author = affiliation.ReplaceAllString(author, "")
		author = strings.TrimSpace(author)
		// Two or three capitalized words reads as a name; longer lines are
		// usually titles or prose.
		if n := len(strings.Fields(author)); n >= 2 && n <= 3 {
			authors = append(authors, author)
		}
		if len(authors) >= 3 {
			break
		}
	}
	return authors
}

// extractYear finds the first plausible publication year in the first
// 1000 characters.
func extractYear(content string) int {
	head := clipRunes(content, 1000)
	if m := yearRE.FindString(head); m != "" {
		year, _ := strconv.Atoi(m)
		return year
	}
	return 0
}

func clipRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
