package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name string
		ns   int64
		want string
	}{
		{"zero", 0, "0ms"},
		{"millis only", 345_000_000, "345ms"},
		{"seconds", 2_345_000_000, "2s 345ms"},
		{"minutes", 62_000_000_000, "1m 2s 0ms"},
		{"hours", 3_723_000_000_000, "1h 2m 3s 0ms"},
		{"whole minute keeps seconds", 60_000_000_000, "1m 0s 0ms"},
		{"sub-millisecond truncates", 999_999, "0ms"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDuration(tt.ns))
		})
	}
}
