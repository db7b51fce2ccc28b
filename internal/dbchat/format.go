package dbchat

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// FormatRows renders query results as a numbered list, one row per line with
// its columns joined by commas. Column order follows the statement when the
// runner preserves it; otherwise columns are sorted by name.
func FormatRows(rows []map[string]any, columns []string) string {
	if len(rows) == 0 {
		return "The query returned no rows."
	}

	var b strings.Builder
	for i, row := range rows {
		cols := columns
		if len(cols) == 0 {
			cols = make([]string, 0, len(row))
			for k := range row {
				cols = append(cols, k)
			}
			sort.Strings(cols)
		}

		parts := make([]string, 0, len(cols))
		for _, col := range cols {
			v, ok := row[col]
			if !ok {
				continue
			}
			parts = append(parts, fmt.Sprintf("%s: %s", titleWord(col), formatValue(v)))
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, strings.Join(parts, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case time.Time:
		return val.Format("2006-01-02 15:04:05")
	case []byte:
		return string(val)
	case float64:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.4f", val), "0"), ".")
	default:
		return fmt.Sprintf("%v", val)
	}
}

func titleWord(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
