// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package parse recovers structured payloads from raw LLM responses.
// Models wrap JSON in prose, code fences, or truncate it mid-object, so the
// package layers strategies from cheap to permissive: direct parse, fenced
// block extraction, pattern extraction, and text-level repair. A response
// that still resists parsing but mentions the expected field (or is
// implausibly short) is reported as a format failure so callers can
// substitute fallback content instead of returning nothing.
package parse

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Strategy indices reported for diagnosability.
const (
	StrategyDirect  = 1
	StrategyFenced  = 2
	StrategyPattern = 3
	StrategyRepair  = 4
)

// shortResponseLen is the length below which a response is considered
// truncated or empty rather than merely malformed.
const shortResponseLen = 50

// Kind classifies the outcome of a parse attempt.
type Kind int

const (
	// OK means a payload was recovered into the caller's value.
	OK Kind = iota

	// FormatFailure means no payload was recoverable but the response looks
	// like a failed attempt at the expected format. Callers should fall back
	// rather than treat this as an empty result.
	FormatFailure

	// NoData means nothing recoverable was found.
	NoData
)

// Report describes how (or whether) a payload was recovered.
type Report struct {
	Kind         Kind
	Strategy     int // winning strategy index, 0 when Kind != OK
	CandidateLen int // length of the candidate text that parsed
}

// fencedPatterns locate JSON inside markdown code fences, tried in order:
// tagged fence, untagged fence, single-backtick span.
var fencedPatterns = []*regexp.Regexp{
	regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```"),
	regexp.MustCompile("(?s)```\\s*(\\{.*?\\})\\s*```"),
	regexp.MustCompile("(?s)`(\\{.*?\\})`"),
}

// Object recovers a JSON object from raw into v. field names the payload
// field the caller expects inside the object (e.g. "concepts"); it anchors
// the pattern strategy and the format-failure heuristic, and may be empty.
// Diagnostics go to dbg; nil means discard.
func Object(raw, field string, v any, dbg io.Writer) Report {
	if dbg == nil {
		dbg = io.Discard
	}

	cleaned := strings.TrimSpace(raw)

	// Strategy 1: the whole response is the object.
	if strings.HasPrefix(cleaned, "{") {
		if try(cleaned, v) {
			return win(dbg, StrategyDirect, cleaned)
		}
	}

	// Strategy 2: the object is inside a code fence.
	for _, re := range fencedPatterns {
		m := re.FindStringSubmatch(cleaned)
		if m == nil {
			continue
		}
		candidate := strings.TrimSpace(m[1])
		if try(candidate, v) {
			return win(dbg, StrategyFenced, candidate)
		}
	}

	// Strategy 3: locate the object directly in unstructured text, repairing
	// each candidate before giving up on it.
	for _, candidate := range patternCandidates(cleaned, field) {
		if try(candidate, v) {
			return win(dbg, StrategyPattern, candidate)
		}
		repaired := Repair(candidate)
		if try(repaired, v) {
			return win(dbg, StrategyPattern, repaired)
		}
	}

	// Strategy 4: repair the entire response and retry.
	repaired := Repair(cleaned)
	if try(repaired, v) {
		return win(dbg, StrategyRepair, repaired)
	}

	fmt.Fprintf(dbg, "parse: all strategies failed\n")
	fmt.Fprintf(dbg, "parse: response head: %s\n", clip(cleaned, 500))
	fmt.Fprintf(dbg, "parse: response tail: %s\n", clipTail(cleaned, 500))

	// A response that mentions the expected field, or is too short to have
	// carried a payload at all, is a format failure rather than silence.
	if (field != "" && strings.Contains(strings.ToLower(cleaned), strings.ToLower(field))) ||
		len(cleaned) < shortResponseLen {
		fmt.Fprintf(dbg, "parse: format failure (len=%d)\n", len(cleaned))
		return Report{Kind: FormatFailure}
	}
	return Report{Kind: NoData}
}

// patternCandidates returns object-shaped substrings of text, most specific
// first. When field is set, candidates are anchored on that field name.
func patternCandidates(text, field string) []string {
	var patterns []*regexp.Regexp
	if field != "" {
		f := regexp.QuoteMeta(field)
		patterns = []*regexp.Regexp{
			// Flat object holding the field's array.
			regexp.MustCompile(`(?s)\{\s*"` + f + `"\s*:\s*\[.*?\]\s*\}`),
			// Nested elements inside the array.
			regexp.MustCompile(`(?s)\{[^{}]*"` + f + `"[^{}]*\[[^\[\]]*(?:\{[^{}]*\}[^\[\]]*)*\][^{}]*\}`),
		}
	}
	// Last resort for any shape: first '{' through last '}'.
	patterns = append(patterns, regexp.MustCompile(`(?s)\{.*\}`))

	var out []string
	for _, re := range patterns {
		if m := re.FindString(text); m != "" {
			out = append(out, strings.TrimSpace(m))
		}
	}
	return out
}

// try unmarshals candidate into v. Syntax is checked first so that failed
// candidates never leave partial data behind in v.
func try(candidate string, v any) bool {
	b := []byte(candidate)
	if !json.Valid(b) {
		return false
	}
	return json.Unmarshal(b, v) == nil
}

func win(dbg io.Writer, strategy int, candidate string) Report {
	fmt.Fprintf(dbg, "parse: strategy %d succeeded (candidate %d bytes)\n", strategy, len(candidate))
	return Report{Kind: OK, Strategy: strategy, CandidateLen: len(candidate)}
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func clipTail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
