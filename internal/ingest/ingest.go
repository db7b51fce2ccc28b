// Package ingest walks a corpus directory, chunks each document into
// overlapping sentence windows, embeds every chunk and upserts the vectors
// into the store. Files are processed concurrently; embedding calls share a
// rate limiter so a large corpus does not flood the model server.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"github.com/ragline/ragline/internal/chunk"
	"github.com/ragline/ragline/internal/log"
	"github.com/ragline/ragline/internal/vectorstore"
)

// Chunking parameters for corpus documents.
const (
	sentencesPerChunk = 4
	chunkOverlap      = 1
)

// ErrNoDocuments indicates a corpus directory with nothing ingestible.
var ErrNoDocuments = errors.New("no documents found in corpus directory")

// Embedder turns one text into its embedding vector. Satisfied by
// *ollama.Client.
type Embedder interface {
	Embed(ctx context.Context, model, text string) ([]float32, error)
}

// Upserter receives the embedded chunks. Satisfied by *vectorstore.Store.
type Upserter interface {
	Reset(ctx context.Context) error
	Upsert(ctx context.Context, docs []vectorstore.Document) error
}

// Ingestor embeds a corpus directory into the vector store.
type Ingestor struct {
	embedder Embedder
	store    Upserter
	model    string
	limiter  *rate.Limiter
	logger   log.Logger

	// progressMu serializes progress writes; file workers share the writer.
	progressMu sync.Mutex
	progress   io.Writer
}

// New creates an Ingestor. embedsPerSecond caps the aggregate embedding
// rate across all file workers; zero or negative means no limit.
func New(embedder Embedder, store Upserter, model string, embedsPerSecond float64,
	progress io.Writer, logger log.Logger,
) *Ingestor {
	limit := rate.Inf
	if embedsPerSecond > 0 {
		limit = rate.Limit(embedsPerSecond)
	}
	return &Ingestor{
		embedder: embedder,
		store:    store,
		model:    model,
		limiter:  rate.NewLimiter(limit, 1),
		progress: progress,
		logger:   logger,
	}
}

// Run resets the collection and re-embeds every .txt and .md file under
// dir. Each file is handled by its own goroutine; a failure in one file
// does not stop the others, and the first error is returned after all
// workers finish.
func (in *Ingestor) Run(ctx context.Context, dir string) error {
	files, err := corpusFiles(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: %s", ErrNoDocuments, dir)
	}

	if err := in.store.Reset(ctx); err != nil {
		return fmt.Errorf("resetting collection: %w", err)
	}

	in.logger.Info("ingesting corpus", "dir", dir, "files", len(files))

	var wg sync.WaitGroup
	errs := make([]error, len(files))
	for i, file := range files {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := in.ingestFile(ctx, file); err != nil {
				errs[i] = fmt.Errorf("%s: %w", filepath.Base(file), err)
				in.logger.Error("file ingestion failed", "file", file, "error", err)
			}
		}()
	}
	wg.Wait()

	in.reportProgress("\n")
	return errors.Join(errs...)
}

// reportProgress writes s to the progress writer under the mutex so file
// workers can emit dots concurrently.
func (in *Ingestor) reportProgress(s string) {
	in.progressMu.Lock()
	defer in.progressMu.Unlock()
	fmt.Fprint(in.progress, s)
}

// ingestFile chunks, embeds and upserts one document. The document ID is
// "<basename>_<chunkIndex>" so re-ingesting a file overwrites its old
// chunks in place.
func (in *Ingestor) ingestFile(ctx context.Context, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	chunks, err := chunk.BySentences(string(raw), sentencesPerChunk, chunkOverlap)
	if err != nil {
		return fmt.Errorf("chunking: %w", err)
	}

	base := filepath.Base(path)
	docs := make([]vectorstore.Document, 0, len(chunks))
	for i, text := range chunks {
		if err := in.limiter.Wait(ctx); err != nil {
			return err
		}
		embedding, err := in.embedder.Embed(ctx, in.model, text)
		if err != nil {
			return fmt.Errorf("embedding chunk %d: %w", i, err)
		}
		docs = append(docs, vectorstore.Document{
			ID:        fmt.Sprintf("%s_%d", base, i),
			Content:   text,
			Embedding: embedding,
			Metadata:  map[string]any{"file": base, "chunk": i},
		})
		in.reportProgress(".")
	}

	if err := in.store.Upsert(ctx, docs); err != nil {
		return fmt.Errorf("storing chunks: %w", err)
	}
	return nil
}

// corpusFiles lists the ingestible files directly under and below dir.
func corpusFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".txt", ".md":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking corpus directory: %w", err)
	}
	return files, nil
}
