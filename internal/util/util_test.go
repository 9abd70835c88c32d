package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONResponse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain object", `{"a": 1}`, `{"a": 1}`},
		{"fenced json", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"bare fence", "```\n[1, 2]\n```", `[1, 2]`},
		{"think block", "<think>reasoning about the task</think>{\"a\": 1}", `{"a": 1}`},
		{"prose around object", "Sure! Here you go: {\"a\": 1} Hope that helps.", `{"a": 1}`},
		{"no json at all", "I cannot answer that.", "I cannot answer that."},
		{"nested braces", `{"outer": {"inner": 2}}`, `{"outer": {"inner": 2}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanJSONResponse(tt.in))
		})
	}
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "a b c", CleanText("  a\n\tb   c  "))
	assert.Equal(t, "caf latte", CleanText("café latte"))
	assert.Equal(t, "", CleanText(""))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab", Truncate("abcdef", 2))
	assert.Equal(t, "", Truncate("abc", 0))
	assert.Equal(t, "héll", Truncate("héllo", 4), "rune-aware")
}

func TestNewIDIsUnique(t *testing.T) {
	assert.NotEqual(t, NewID(), NewID())
	assert.Len(t, NewID(), 36)
}
