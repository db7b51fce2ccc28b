package chat

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ragline/ragline/internal/log"
	"github.com/ragline/ragline/internal/ollama"
	"github.com/ragline/ragline/internal/retrieval"
)

// ExcerptRetriever answers free-text queries with ranked excerpts.
// Satisfied by *retrieval.Retriever.
type ExcerptRetriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]retrieval.Excerpt, error)
}

// OneShot answers a single query with plain retrieval-augmented generation
// and no tool loop: retrieve k excerpts, build the RAG prompt, stream the
// answer to out. A retrieval failure degrades to answering without
// supporting context instead of failing the call.
func OneShot(ctx context.Context, gen Generator, retriever ExcerptRetriever,
	cfg Config, k int, query string, out io.Writer, logger log.Logger,
) error {
	if len(strings.TrimSpace(query)) < minInputLength {
		return fmt.Errorf("invalid input: the question must be at least %d characters long", minInputLength)
	}

	started := time.Now()
	fmt.Fprintf(out, "Question:\n%s\n", query)

	var contextText string
	excerpts, err := retriever.Retrieve(ctx, query, k)
	if err != nil {
		logger.Warn("retrieval failed, answering without context", "error", err)
	} else {
		texts := make([]string, 0, len(excerpts))
		for _, e := range excerpts {
			texts = append(texts, e.Text)
		}
		contextText = strings.Join(texts, "\n\n")
	}

	fmt.Fprintln(out, "\nAnswer:")
	err = gen.Stream(ctx, ollama.GenerateRequest{
		Model:  cfg.Model,
		Prompt: RAGPrompt(contextText, query),
		Options: &ollama.Options{
			NumCtx:      cfg.ContextSize,
			Temperature: cfg.Temperature,
		},
	}, func(gr ollama.GenerateResponse) error {
		fmt.Fprint(out, gr.Response)
		return nil
	})
	if err != nil {
		return fmt.Errorf("generating answer: %w", err)
	}

	fmt.Fprintf(out, "\nResponse time: %s\n", FormatDuration(time.Since(started).Nanoseconds()))
	return nil
}
