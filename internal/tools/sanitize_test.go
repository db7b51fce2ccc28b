package tools

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeTable(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			"clean array untouched",
			`[{"function_name":"calculator","parameters":{"expression":"2+2"}}]`,
			`[{"function_name":"calculator","parameters":{"expression":"2+2"}}]`,
		},
		{
			"markdown fence",
			"```json\n[{\"function_name\":\"getWeather\"}]\n```",
			`[{"function_name":"getWeather"}]`,
		},
		{
			"leading colon",
			`: [{"function_name":"getWeather"}]`,
			`[{"function_name":"getWeather"}]`,
		},
		{
			"colon after bracket",
			`[:{"function_name":"getWeather"}]`,
			`[{"function_name":"getWeather"}]`,
		},
		{
			"trailing comma before bracket",
			`[{"function_name":"getWeather"},]`,
			`[{"function_name":"getWeather"}]`,
		},
		{
			"trailing comma before brace",
			`[{"function_name":"getWeather",}]`,
			`[{"function_name":"getWeather"}]`,
		},
		{
			"double-wrapped array",
			`[[{"function_name":"getWeather"}]]`,
			`[{"function_name":"getWeather"}]`,
		},
		{
			"bare object wrapped",
			`{"function_name":"getWeather","parameters":{"city_name":"paris"}}`,
			`[{"function_name":"getWeather","parameters":{"city_name":"paris"}}]`,
		},
		{
			"surrounding whitespace",
			"  \n [] \n ",
			"[]",
		},
		{
			"empty input",
			"",
			"[]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.raw))
		})
	}
}

func TestSanitizeIsIdempotent(t *testing.T) {
	inputs := []string{
		"```json\n[{\"function_name\":\"x\"},]\n```",
		`{"function_name":"y"}`,
		`[[{"function_name":"z"}]]`,
	}
	for _, raw := range inputs {
		once := Sanitize(raw)
		assert.Equal(t, once, Sanitize(once), "sanitizing twice must be a no-op: %q", raw)
	}
}

func TestSanitizeRoundTrip(t *testing.T) {
	// A valid array wrapped in a fence with a trailing comma injected must
	// come back out parse-identical.
	original := []Request{
		{FunctionName: "calculator", Parameters: Params{"expression": "40+2"}},
		{FunctionName: "getWeather", Parameters: Params{"city_name": "paris"}},
	}
	encoded, err := json.Marshal(original)
	require.NoError(t, err)

	damaged := "```json\n" + string(encoded[:len(encoded)-1]) + ",]\n```"

	var got []Request
	require.NoError(t, json.Unmarshal([]byte(Sanitize(damaged)), &got))
	assert.Equal(t, original, got)
}

func TestSanitizeBareObjectParsesAsOneElementArray(t *testing.T) {
	raw := `{"function_name":"getWeather","parameters":{"city_name":"paris"}}`

	var got []Request
	require.NoError(t, json.Unmarshal([]byte(Sanitize(raw)), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "getWeather", got[0].FunctionName)
}

func TestSanitizeKeepsSiblingArrays(t *testing.T) {
	// [[..],[..]] is not a double wrap; it must survive untouched.
	raw := `[["a"],["b"]]`
	assert.Equal(t, raw, Sanitize(raw))
}

func TestSanitizeGarbageStillParses(t *testing.T) {
	// Whatever comes out must be parseable or the dispatcher falls back to
	// "no tools". Verify the empty-ish cases parse to an empty array.
	var got []Request
	require.NoError(t, json.Unmarshal([]byte(Sanitize("   ")), &got))
	assert.Empty(t, got)
}
