package dbchat

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotReadOnly indicates model-generated SQL that is not a single
// read-only statement. Defense in depth: the session it would run under is
// read-only anyway, but rejecting early gives the user a clear message
// instead of a database error.
var ErrNotReadOnly = errors.New("generated SQL is not a single SELECT statement")

// CleanSQL strips the Markdown fences and labels a model wraps around
// generated SQL, leaving the bare statement.
func CleanSQL(raw string) string {
	s := strings.ReplaceAll(raw, "```sql", "")
	s = strings.ReplaceAll(s, "```", "")
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ";")
	return strings.TrimSpace(s)
}

// ValidateSelect rejects anything that is not one SELECT (or WITH ... SELECT)
// statement.
func ValidateSelect(sql string) error {
	if sql == "" {
		return fmt.Errorf("%w: empty statement", ErrNotReadOnly)
	}
	// A remaining semicolon means stacked statements.
	if strings.Contains(sql, ";") {
		return fmt.Errorf("%w: multiple statements", ErrNotReadOnly)
	}

	head := strings.ToLower(firstWord(sql))
	if head != "select" && head != "with" {
		return fmt.Errorf("%w: starts with %q", ErrNotReadOnly, head)
	}
	return nil
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
