package chat

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragline/ragline/internal/log"
	"github.com/ragline/ragline/internal/retrieval"
)

func TestToolSelectionPrompt(t *testing.T) {
	got := ToolSelectionPrompt(`[{"function_name":"calculator"}]`, `[{"function_name":"example"}]`, "add 2 and 2")

	assert.Contains(t, got, "The response must be a JSON array.")
	assert.Contains(t, got, `[{"function_name":"calculator"}]`)
	assert.Contains(t, got, `[{"function_name":"example"}]`)
	assert.Contains(t, got, "add 2 and 2")
}

func TestAnswerPrompt(t *testing.T) {
	history := []Message{
		{Role: RoleUser, Content: "earlier question"},
		{Role: RoleAssistant, Content: "earlier answer"},
	}
	got := AnswerPrompt(history, []string{"result one", "result two"}, "the new question")

	assert.Contains(t, got, `"role": "user"`)
	assert.Contains(t, got, "earlier question")
	assert.Contains(t, got, "result one\nresult two")
	assert.Contains(t, got, "the new question")
	assert.Contains(t, got, "considering only the provided tool results")
}

func TestAnswerPromptEmptyHistoryAndResults(t *testing.T) {
	got := AnswerPrompt(nil, nil, "lone question")
	assert.Contains(t, got, "lone question")
}

func TestRAGPrompt(t *testing.T) {
	got := RAGPrompt("excerpt a\n\nexcerpt b", "the question")
	assert.Contains(t, got, "I have this information:")
	assert.Contains(t, got, "excerpt a")
	assert.Contains(t, got, "So my question is:\nthe question")
}

type stubRetriever struct {
	excerpts []retrieval.Excerpt
	err      error
}

func (s *stubRetriever) Retrieve(ctx context.Context, query string, k int) ([]retrieval.Excerpt, error) {
	return s.excerpts, s.err
}

func TestOneShot(t *testing.T) {
	gen := &fakeGen{streamChunks: []string{"The answer."}}
	retriever := &stubRetriever{excerpts: []retrieval.Excerpt{
		{File: "a.txt", Text: "context one"},
		{File: "b.txt", Text: "context two"},
	}}
	var out bytes.Buffer

	err := OneShot(context.Background(), gen, retriever,
		Config{Model: "m", ContextSize: 4096, Temperature: 0.6},
		8, "what does the corpus say?", &out, log.NewNop())
	require.NoError(t, err)

	assert.Contains(t, gen.streamPrompt, "context one\n\ncontext two")
	assert.Contains(t, gen.streamPrompt, "what does the corpus say?")
	assert.Contains(t, out.String(), "The answer.")
	assert.Contains(t, out.String(), "Response time:")
}

func TestOneShotShortQuery(t *testing.T) {
	var out bytes.Buffer
	err := OneShot(context.Background(), &fakeGen{}, &stubRetriever{},
		Config{Model: "m"}, 8, "ab", &out, log.NewNop())
	assert.Error(t, err)
}

func TestOneShotRetrievalFailureDegrades(t *testing.T) {
	gen := &fakeGen{streamChunks: []string{"best effort"}}
	var out bytes.Buffer

	err := OneShot(context.Background(), gen, &stubRetriever{err: errors.New("down")},
		Config{Model: "m"}, 8, "a real question", &out, log.NewNop())
	require.NoError(t, err)
	assert.Contains(t, out.String(), "best effort")
}
