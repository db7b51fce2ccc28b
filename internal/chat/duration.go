package chat

import (
	"fmt"
	"strings"
)

// FormatDuration renders a nanosecond duration as "1h 2m 3s 45ms" style
// text for the turn metrics, omitting leading zero units.
func FormatDuration(ns int64) string {
	ms := ns / 1_000_000
	seconds := ms / 1000
	ms %= 1000
	minutes := seconds / 60
	seconds %= 60
	hours := minutes / 60
	minutes %= 60

	var parts []string
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || hours > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if seconds > 0 || minutes > 0 || hours > 0 {
		parts = append(parts, fmt.Sprintf("%ds", seconds))
	}
	parts = append(parts, fmt.Sprintf("%dms", ms))

	return strings.Join(parts, " ")
}
