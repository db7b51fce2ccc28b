package chunk

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sentencesText builds a corpus of n trivially distinguishable sentences.
func sentencesText(n int) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "Sentence %d ends here. ", i)
	}
	return b.String()
}

func TestBySentencesWindowLayout(t *testing.T) {
	chunks, err := BySentences(sentencesText(10), 4, 1)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	// Windows start at sentences 0, 4 and 8.
	assert.True(t, strings.HasPrefix(chunks[0], "Sentence 1"))
	assert.Contains(t, chunks[0], "Sentence 4")
	assert.NotContains(t, chunks[0], "Sentence 5")

	// Every window after the first carries a one-sentence prefix from the
	// previous window.
	assert.True(t, strings.HasPrefix(chunks[1], "Sentence 4"))
	assert.Contains(t, chunks[1], "Sentence 8")
	assert.True(t, strings.HasPrefix(chunks[2], "Sentence 8"))
	assert.Contains(t, chunks[2], "Sentence 10")
}

func TestBySentencesNoOverlap(t *testing.T) {
	chunks, err := BySentences(sentencesText(8), 4, 0)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.True(t, strings.HasPrefix(chunks[1], "Sentence 5"))
}

func TestBySentencesShortInput(t *testing.T) {
	// Shorter than one window: exactly one chunk with all sentences.
	chunks, err := BySentences(sentencesText(2), 4, 1)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0], "Sentence 1")
	assert.Contains(t, chunks[0], "Sentence 2")
}

func TestBySentencesEmptyInput(t *testing.T) {
	chunks, err := BySentences("", 4, 1)
	require.NoError(t, err)
	assert.Empty(t, chunks)

	chunks, err = BySentences("   \n\t  ", 4, 1)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestBySentencesInvalidParams(t *testing.T) {
	tests := []struct {
		name              string
		perChunk, overlap int
	}{
		{"one sentence per chunk", 1, 0},
		{"zero per chunk", 0, 0},
		{"negative overlap", 4, -1},
		{"overlap equals limit", 4, 3},
		{"overlap above limit", 4, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks, err := BySentences(sentencesText(10), tt.perChunk, tt.overlap)
			assert.ErrorIs(t, err, ErrInvalidParams)
			assert.Nil(t, chunks)
		})
	}
}

func TestBySentencesContiguity(t *testing.T) {
	// The non-overlap portion of every chunk is a contiguous run of the
	// source sentences, for all valid parameter combinations.
	text := sentencesText(13)
	source := SplitSentences(text)

	for perChunk := 2; perChunk <= 6; perChunk++ {
		for overlap := 0; overlap < perChunk-1; overlap++ {
			chunks, err := BySentences(text, perChunk, overlap)
			require.NoError(t, err)

			joined := strings.Join(source, " ")
			for i, c := range chunks {
				// Strip the overlap prefix: the core window always starts
				// at sentence i*perChunk.
				core := strings.Join(source[i*perChunk:min((i+1)*perChunk, len(source))], " ")
				assert.True(t, strings.HasSuffix(c, core))
				assert.Contains(t, joined, core)
			}
		}
	}
}

func TestByWords(t *testing.T) {
	chunks, err := ByWords("one two three four five six seven", 3, 1)
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, "one two three", chunks[0])
	assert.Equal(t, "three four five six", chunks[1])
	assert.Equal(t, "six seven", chunks[2])
}

func TestByWordsInvalidParams(t *testing.T) {
	_, err := ByWords("a b c", 1, 0)
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			"plain",
			"First one. Second one. Third one.",
			[]string{"First one.", "Second one.", "Third one."},
		},
		{
			"mixed terminators",
			"Really? Yes! Fine.",
			[]string{"Really?", "Yes!", "Fine."},
		},
		{
			"ellipsis stays together",
			"Wait... then go. Done.",
			[]string{"Wait... then go.", "Done."},
		},
		{
			"no trailing terminator",
			"First. Second without end",
			[]string{"First.", "Second without end"},
		},
		{
			"closing quote attaches",
			`He said "stop." Then left.`,
			[]string{`He said "stop."`, "Then left."},
		},
		{
			"newlines",
			"Line one.\nLine two.",
			[]string{"Line one.", "Line two."},
		},
		{"empty", "", nil},
		{"whitespace only", "  \n ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitSentences(tt.text))
		})
	}
}
