package vectorstore

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgvector "github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragline/ragline/internal/log"
)

// fakeDB records Exec calls and serves canned rows for Query.
type fakeDB struct {
	execSQL  []string
	execArgs [][]any
	execErr  error

	queryRows *fakeRows
	queryArgs []any
	queryErr  error
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execSQL = append(f.execSQL, sql)
	f.execArgs = append(f.execArgs, args)
	return pgconn.NewCommandTag("INSERT 0 1"), f.execErr
}

func (f *fakeDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.queryArgs = args
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.queryRows, nil
}

// fakeRows implements pgx.Rows over a fixed [][]any.
type fakeRows struct {
	rows [][]any
	idx  int
	err  error
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.rows[r.idx-1]
	for i, d := range dest {
		switch v := d.(type) {
		case *string:
			*v = row[i].(string)
		case *[]byte:
			*v = row[i].([]byte)
		case *float64:
			*v = row[i].(float64)
		case *int64:
			*v = row[i].(int64)
		}
	}
	return nil
}

func (r *fakeRows) Values() ([]any, error) { return nil, nil }
func (r *fakeRows) RawValues() [][]byte    { return nil }
func (r *fakeRows) Conn() *pgx.Conn        { return nil }

func metaJSON(t *testing.T, m map[string]any) []byte {
	t.Helper()
	b, err := json.Marshal(m)
	require.NoError(t, err)
	return b
}

func TestUpsert(t *testing.T) {
	db := &fakeDB{}
	s := New(db, "rag_collection", log.NewNop())

	docs := []Document{
		{
			ID:        "notes.txt_0",
			Content:   "first chunk",
			Embedding: []float32{0.1, 0.2},
			Metadata:  map[string]any{"file": "notes.txt", "chunk": 0},
		},
		{
			ID:        "notes.txt_1",
			Content:   "second chunk",
			Embedding: []float32{0.3, 0.4},
			Metadata:  map[string]any{"file": "notes.txt", "chunk": 1},
		},
	}

	require.NoError(t, s.Upsert(context.Background(), docs))
	require.Len(t, db.execSQL, 2)
	assert.Contains(t, db.execSQL[0], "ON CONFLICT (id, collection) DO UPDATE")

	args := db.execArgs[0]
	assert.Equal(t, "notes.txt_0", args[0])
	assert.Equal(t, "rag_collection", args[1])
	assert.Equal(t, "first chunk", args[2])
	assert.Equal(t, pgvector.NewVector([]float32{0.1, 0.2}), args[4])
}

func TestQueryRanking(t *testing.T) {
	db := &fakeDB{queryRows: &fakeRows{rows: [][]any{
		{"closest", metaJSON(t, map[string]any{"file": "a.txt", "chunk": float64(3)}), 0.08},
		{"further", metaJSON(t, map[string]any{"file": "b.txt", "chunk": float64(1)}), 0.31},
	}}}
	s := New(db, "rag_collection", log.NewNop())

	matches, err := s.Query(context.Background(), []float32{0.5, 0.5}, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	// Order is the database's ascending-distance order, untouched.
	assert.Equal(t, "closest", matches[0].Content)
	assert.InDelta(t, 0.08, matches[0].Distance, 1e-9)
	assert.Equal(t, "a.txt", matches[0].Metadata["file"])
	assert.Equal(t, "further", matches[1].Content)

	// Collection filter and limit are passed through.
	assert.Equal(t, "rag_collection", db.queryArgs[1])
	assert.Equal(t, 2, db.queryArgs[2])
}

func TestQueryEmpty(t *testing.T) {
	db := &fakeDB{queryRows: &fakeRows{}}
	s := New(db, "rag_collection", log.NewNop())

	matches, err := s.Query(context.Background(), []float32{0.5}, 4)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestReset(t *testing.T) {
	db := &fakeDB{}
	s := New(db, "rag_collection", log.NewNop())

	require.NoError(t, s.Reset(context.Background()))
	require.Len(t, db.execSQL, 1)
	assert.Contains(t, db.execSQL[0], "DELETE FROM documents")
	assert.Equal(t, []any{"rag_collection"}, db.execArgs[0])
}

func TestConvertToMigrateURL(t *testing.T) {
	got, err := convertToMigrateURL("postgres://u:p@localhost:5432/ragline?sslmode=disable")
	require.NoError(t, err)
	assert.Equal(t, "pgx5://u:p@localhost:5432/ragline?sslmode=disable", got)

	_, err = convertToMigrateURL("mysql://localhost/db")
	assert.Error(t, err)
}
