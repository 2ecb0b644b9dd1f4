// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"regexp"
	"strings"
)

// Repair rules are an ordered list of independent text transforms, each
// cheap and individually testable. They must leave well-formed JSON intact:
// Repair applied to valid input parses to the same value.

var (
	trailingCommaRE  = regexp.MustCompile(`,(\s*[}\]])`)
	singleQuoteKeyRE = regexp.MustCompile(`'([^']*)'\s*:`)
	bareKeyRE        = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)
)

// repairs is the transform pipeline, applied in order.
var repairs = []func(string) string{
	stripPrefix,
	stripSuffix,
	dropTrailingCommas,
	requoteSingleQuotedKeys,
	quoteBareKeys,
	balanceBrackets,
}

// Repair applies every repair transform to s and returns the result.
func Repair(s string) string {
	for _, fix := range repairs {
		s = fix(s)
	}
	return s
}

// stripPrefix removes any text before the first '{'.
func stripPrefix(s string) string {
	if i := strings.Index(s, "{"); i > 0 {
		return s[i:]
	}
	return s
}

// stripSuffix removes any text after the last '}'.
func stripSuffix(s string) string {
	if i := strings.LastIndex(s, "}"); i >= 0 && i < len(s)-1 {
		return s[:i+1]
	}
	return s
}

// dropTrailingCommas removes commas that directly precede a closing
// bracket or brace.
func dropTrailingCommas(s string) string {
	return trailingCommaRE.ReplaceAllString(s, "$1")
}

// requoteSingleQuotedKeys rewrites 'key': to "key":.
func requoteSingleQuotedKeys(s string) string {
	return singleQuoteKeyRE.ReplaceAllString(s, `"$1":`)
}

// quoteBareKeys quotes unquoted identifier keys after '{' or ','.
func quoteBareKeys(s string) string {
	return bareKeyRE.ReplaceAllString(s, `$1"$2":`)
}

// balanceBrackets appends missing closing brackets and braces when the
// text was truncated mid-structure. Array closers come first since arrays
// nest inside the payload object.
func balanceBrackets(s string) string {
	for i := strings.Count(s, "[") - strings.Count(s, "]"); i > 0; i-- {
		s += "]"
	}
	for i := strings.Count(s, "{") - strings.Count(s, "}"); i > 0; i-- {
		s += "}"
	}
	return s
}
