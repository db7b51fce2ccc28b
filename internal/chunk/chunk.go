// Package chunk splits raw text into overlapping windows suitable for
// embedding. Two granularities are supported: sentences and words.
package chunk

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidParams indicates chunking parameters that violate the
// preconditions. It is fatal at startup, before any segmentation work.
var ErrInvalidParams = errors.New("invalid chunk parameters")

// BySentences splits text into chunks of sentencesPerChunk sentences joined
// with single spaces. When overlap > 0, every chunk after the first is
// prefixed with the last overlap sentences of the previous window, giving
// soft context continuity across chunk boundaries.
//
// Preconditions: sentencesPerChunk >= 2 and 0 <= overlap < sentencesPerChunk-1.
// Empty input yields an empty slice, not an error.
func BySentences(text string, sentencesPerChunk, overlap int) ([]string, error) {
	if err := validateParams(sentencesPerChunk, overlap); err != nil {
		return nil, err
	}
	return windows(SplitSentences(text), sentencesPerChunk, overlap), nil
}

// ByWords splits text into chunks of wordsPerChunk whitespace-delimited
// words, with the same overlap rule as BySentences.
func ByWords(text string, wordsPerChunk, overlap int) ([]string, error) {
	if err := validateParams(wordsPerChunk, overlap); err != nil {
		return nil, err
	}
	return windows(strings.Fields(text), wordsPerChunk, overlap), nil
}

func validateParams(unitsPerChunk, overlap int) error {
	if unitsPerChunk < 2 {
		return fmt.Errorf("%w: units per chunk must be 2 or more, got %d",
			ErrInvalidParams, unitsPerChunk)
	}
	if overlap < 0 || overlap >= unitsPerChunk-1 {
		return fmt.Errorf("%w: overlap must be in [0, %d), got %d",
			ErrInvalidParams, unitsPerChunk-1, overlap)
	}
	return nil
}

// windows walks units with a stride of unitsPerChunk. A trailing partial
// window is kept as-is. The first window never receives an overlap prefix.
func windows(units []string, unitsPerChunk, overlap int) []string {
	if len(units) == 0 {
		return []string{}
	}

	chunks := make([]string, 0, (len(units)+unitsPerChunk-1)/unitsPerChunk)
	for i := 0; i < len(units); i += unitsPerChunk {
		end := min(i+unitsPerChunk, len(units))
		text := strings.Join(units[i:end], " ")

		if overlap > 0 && i > 0 {
			prefix := strings.Join(units[max(0, i-overlap):i], " ")
			text = prefix + " " + text
		}

		chunks = append(chunks, strings.TrimSpace(text))
	}
	return chunks
}
