package tools

import (
	"regexp"
	"strings"
)

// A model asked for "a JSON array of tool calls" routinely wraps it in a
// Markdown fence, prepends a stray colon, leaves a trailing comma, or emits
// a bare object instead of an array. Sanitize repairs those deterministically
// through a fixed pipeline of pure string stages. Stage order matters: later
// stages assume the earlier cleanup has happened. Each stage is idempotent.
//
// Unrecoverable garbage still comes out as a string; the dispatcher treats
// any remaining parse failure as "no tools requested".
func Sanitize(raw string) string {
	s := stripCodeFences(raw)
	s = stripStrayColons(s)
	s = stripTrailingCommas(s)
	s = collapseDoubleArray(s)
	s = ensureArray(s)
	return strings.TrimSpace(s)
}

var trailingCommaRe = regexp.MustCompile(`,\s*([\]}])`)

// stripCodeFences removes Markdown fence markers around a JSON block.
func stripCodeFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	return strings.ReplaceAll(s, "```", "")
}

// stripStrayColons drops a single leading colon, and a colon immediately
// following the opening bracket. Both are artifacts of the model continuing
// a key-value template ("tools: [...]").
func stripStrayColons(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, ":")
	return strings.ReplaceAll(s, "[:", "[")
}

// stripTrailingCommas rewrites ", ]" to "]" and ", }" to "}".
func stripTrailingCommas(s string) string {
	return trailingCommaRe.ReplaceAllString(s, "$1")
}

// collapseDoubleArray unwraps an accidental [[ ... ]] around a single
// array. Sibling arrays ("],[") are left alone; only a redundant outer
// wrapper is removed.
func collapseDoubleArray(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "[[") || !strings.HasSuffix(t, "]]") {
		return s
	}
	if strings.Contains(t, "],[") || strings.Contains(t, "], [") {
		return s
	}
	return t[1 : len(t)-1]
}

// ensureArray wraps a bare object (or any non-array remnant) in a
// single-element array so downstream parsing always sees an array.
func ensureArray(s string) string {
	t := strings.TrimSpace(s)
	if t == "" {
		return "[]"
	}
	if strings.HasPrefix(t, "[") {
		return t
	}
	return "[" + t + "]"
}
