// Package dbchat drives the natural-language-to-SQL conversation loop: the
// model turns a question into a SELECT against the introspected schema, the
// query runs under a read-only session, and the rows feed the final
// streamed answer.
package dbchat

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// DB is the subset of pgxpool.Pool the runner needs.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// SQLRunner executes one SQL statement and returns its rows as ordered
// column-name-to-value maps.
type SQLRunner interface {
	Run(ctx context.Context, sql string) ([]map[string]any, error)
}

// PGRunner is the pgx-backed SQLRunner. The pool behind it must be opened
// with default_transaction_read_only=on; model-generated SQL is never
// trusted with a writable session.
type PGRunner struct {
	db DB
}

// NewPGRunner creates a PGRunner over db.
func NewPGRunner(db DB) *PGRunner {
	return &PGRunner{db: db}
}

// Run executes sql and collects every row.
func (r *PGRunner) Run(ctx context.Context, sql string) ([]map[string]any, error) {
	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}
	defer rows.Close()

	var out []map[string]any
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}
		fields := rows.FieldDescriptions()

		row := make(map[string]any, len(fields))
		for i, fd := range fields {
			row[fd.Name] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return out, nil
}

// schemaQuery lists every public column so the model can target real
// tables.
const schemaQuery = `
	SELECT table_name, column_name
	FROM information_schema.columns
	WHERE table_schema = 'public'
	ORDER BY table_name, ordinal_position`

// IntrospectSchema loads the public schema once at session start.
func IntrospectSchema(ctx context.Context, runner SQLRunner) ([]map[string]any, error) {
	schema, err := runner.Run(ctx, schemaQuery)
	if err != nil {
		return nil, fmt.Errorf("introspecting schema: %w", err)
	}
	return schema, nil
}
