package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ragline/ragline/internal/retrieval"
)

// minQueryLength guards against the model passing an empty or junk query
// through to the embedder.
const minQueryLength = 3

// DocumentRetriever answers free-text queries with ranked excerpts.
// Satisfied by *retrieval.Retriever.
type DocumentRetriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]retrieval.Excerpt, error)
}

// NewRetrieveTool wraps the retriever as the retrieveFromVectorDB tool.
// k is the number of excerpts returned per call.
func NewRetrieveTool(retriever DocumentRetriever, k int) Tool {
	return Tool{
		Descriptor: Descriptor{
			FunctionName: "retrieveFromVectorDB",
			Parameters:   map[string]string{"user_query": "<query>"},
			Description:  "This tool is triggered if the user mentions or asks to retrieve documents.",
		},
		Execute: func(ctx context.Context, params Params) (string, error) {
			query := strings.TrimSpace(params.String("user_query"))
			if len(query) < minQueryLength {
				return fmt.Sprintf("Malformed parameter: user_query must be at least %d characters.", minQueryLength), nil
			}

			excerpts, err := retriever.Retrieve(ctx, query, k)
			if err != nil {
				// Retrieval failures become prompt text, never a turn
				// failure.
				return fmt.Sprintf("Document retrieval failed: %v", err), nil
			}
			if len(excerpts) == 0 {
				return "No matching documents were found in the vector database.", nil
			}

			out, err := json.MarshalIndent(excerpts, "", "  ")
			if err != nil {
				return "", fmt.Errorf("marshaling excerpts: %w", err)
			}
			return string(out), nil
		},
	}
}
