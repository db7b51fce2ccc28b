package chunk

import (
	"strings"
	"unicode"
)

// SplitSentences segments text into sentences. A sentence ends at a run of
// '.', '!' or '?' followed by whitespace or end of input; the terminator run
// stays attached to its sentence. Whitespace-only segments are dropped.
//
// This is deliberately simple: it does not special-case abbreviations or
// decimal points followed by spaces. For corpus chunking the occasional
// over-split only shifts a window boundary.
func SplitSentences(text string) []string {
	var sentences []string
	var b strings.Builder

	flush := func() {
		if s := strings.TrimSpace(b.String()); s != "" {
			sentences = append(sentences, s)
		}
		b.Reset()
	}

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		b.WriteRune(r)

		if !isTerminator(r) {
			continue
		}
		// Absorb the rest of the terminator run ("...", "?!").
		for i+1 < len(runes) && isTerminator(runes[i+1]) {
			i++
			b.WriteRune(runes[i])
		}
		// Closing quotes belong to the sentence they end.
		for i+1 < len(runes) && isClosingQuote(runes[i+1]) {
			i++
			b.WriteRune(runes[i])
		}
		if i+1 >= len(runes) || unicode.IsSpace(runes[i+1]) {
			flush()
		}
	}
	flush()

	return sentences
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isClosingQuote(r rune) bool {
	return r == '"' || r == '\'' || r == '”' || r == '’'
}
