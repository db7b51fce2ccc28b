// Package retrieval composes the embedding gateway and the vector store
// into query-time document retrieval.
package retrieval

import (
	"context"
	"errors"
	"fmt"

	"github.com/ragline/ragline/internal/log"
	"github.com/ragline/ragline/internal/vectorstore"
)

// ErrRetrieval indicates an embedding or vector-store failure. The retrieval
// tool recovers it locally and surfaces a string result; it is never fatal.
var ErrRetrieval = errors.New("retrieval failed")

// Embedder turns text into a fixed-length vector under a named model.
type Embedder interface {
	Embed(ctx context.Context, model, text string) ([]float32, error)
}

// Searcher answers ranked nearest-neighbour queries.
type Searcher interface {
	Query(ctx context.Context, embedding []float32, k int) ([]vectorstore.Match, error)
}

// Excerpt is one retrieved document chunk with its provenance and a
// human-readable relevance percentage.
type Excerpt struct {
	File      string `json:"file"`
	Chunk     int    `json:"chunk"`
	Relevance string `json:"relevance"`
	Text      string `json:"text"`
}

// Retriever answers free-text queries with ranked excerpts.
type Retriever struct {
	embedder Embedder
	store    Searcher
	model    string // embedding model name
	logger   log.Logger
}

// New creates a Retriever using model for query embeddings.
func New(embedder Embedder, store Searcher, model string, logger log.Logger) *Retriever {
	return &Retriever{embedder: embedder, store: store, model: model, logger: logger}
}

// Retrieve embeds query and returns the k nearest excerpts in the store's
// own ranking order. Relevance is (1 - cosineDistance) * 100, formatted as
// a percentage; the order is the store's, never re-sorted by relevance.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]Excerpt, error) {
	embedding, err := r.embedder.Embed(ctx, r.model, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding query: %v", ErrRetrieval, err)
	}

	matches, err := r.store.Query(ctx, embedding, k)
	if err != nil {
		return nil, fmt.Errorf("%w: querying store: %v", ErrRetrieval, err)
	}

	excerpts := make([]Excerpt, 0, len(matches))
	for _, m := range matches {
		excerpts = append(excerpts, Excerpt{
			File:      metadataString(m.Metadata, "file"),
			Chunk:     metadataInt(m.Metadata, "chunk"),
			Relevance: fmt.Sprintf("%.2f%%", (1-m.Distance)*100),
			Text:      m.Content,
		})
	}

	r.logger.Debug("retrieved excerpts", "query_len", len(query), "count", len(excerpts))
	return excerpts, nil
}

func metadataString(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

// metadataInt reads a numeric metadata value. JSON round-trips numbers as
// float64, so both are accepted.
func metadataInt(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}
