// Package vectorstore persists embedded document chunks in PostgreSQL with
// pgvector, and answers cosine-distance ranked queries over one collection.
package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/ragline/ragline/internal/log"
)

// DB is the subset of pgxpool.Pool the store needs. Defined here, by the
// consumer, so tests can substitute a fake.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Document is one embedded chunk heading into the store.
type Document struct {
	ID        string         // "<file>_<chunkIndex>", unique per collection
	Content   string         // the chunk text
	Embedding []float32      // fixed-length vector from the embedder
	Metadata  map[string]any // at minimum {"file": ..., "chunk": ...}
}

// Match is one ranked query result. Distance is the cosine distance as
// reported by pgvector; the store returns rows in the database's ascending
// distance order and never re-ranks.
type Match struct {
	Content  string
	Metadata map[string]any
	Distance float64
}

// Store reads and writes one collection of embedded documents.
// Safe for concurrent use; all state lives in the database.
type Store struct {
	db         DB
	collection string
	logger     log.Logger
}

// New creates a Store bound to collection.
func New(db DB, collection string, logger log.Logger) *Store {
	return &Store{db: db, collection: collection, logger: logger}
}

// Upsert inserts or replaces documents by id. Existing content, metadata and
// embedding are overwritten so re-ingesting a corpus is idempotent.
func (s *Store) Upsert(ctx context.Context, docs []Document) error {
	for _, doc := range docs {
		metadata, err := json.Marshal(doc.Metadata)
		if err != nil {
			return fmt.Errorf("marshaling metadata for %q: %w", doc.ID, err)
		}

		_, err = s.db.Exec(ctx, `
			INSERT INTO documents (id, collection, content, metadata, embedding)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id, collection) DO UPDATE
			SET content = EXCLUDED.content,
			    metadata = EXCLUDED.metadata,
			    embedding = EXCLUDED.embedding`,
			doc.ID, s.collection, doc.Content, metadata, pgvector.NewVector(doc.Embedding))
		if err != nil {
			return fmt.Errorf("upserting document %q: %w", doc.ID, err)
		}
	}
	return nil
}

// Query returns the k nearest documents to embedding by cosine distance.
func (s *Store) Query(ctx context.Context, embedding []float32, k int) ([]Match, error) {
	rows, err := s.db.Query(ctx, `
		SELECT content, metadata, embedding <=> $1 AS distance
		FROM documents
		WHERE collection = $2
		ORDER BY distance
		LIMIT $3`,
		pgvector.NewVector(embedding), s.collection, k)
	if err != nil {
		return nil, fmt.Errorf("querying collection %q: %w", s.collection, err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var (
			m    Match
			meta []byte
		)
		if err := rows.Scan(&m.Content, &meta, &m.Distance); err != nil {
			return nil, fmt.Errorf("scanning match: %w", err)
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &m.Metadata); err != nil {
				return nil, fmt.Errorf("decoding metadata: %w", err)
			}
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading matches: %w", err)
	}
	return matches, nil
}

// Reset removes every document in the collection. Ingestion calls this
// before re-embedding a corpus.
func (s *Store) Reset(ctx context.Context) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM documents WHERE collection = $1`, s.collection)
	if err != nil {
		return fmt.Errorf("resetting collection %q: %w", s.collection, err)
	}
	s.logger.Info("collection reset", "collection", s.collection, "deleted", tag.RowsAffected())
	return nil
}

// Count returns the number of documents in the collection.
func (s *Store) Count(ctx context.Context) (int64, error) {
	rows, err := s.db.Query(ctx, `SELECT count(*) FROM documents WHERE collection = $1`, s.collection)
	if err != nil {
		return 0, fmt.Errorf("counting collection %q: %w", s.collection, err)
	}
	defer rows.Close()

	var n int64
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, fmt.Errorf("scanning count: %w", err)
		}
	}
	return n, rows.Err()
}
