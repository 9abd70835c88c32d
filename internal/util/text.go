package util

import (
	"strings"
	"unicode"
)

// CleanText drops non-ASCII runes and collapses runs of whitespace. Literature
// feeds mix unicode dashes and hard line breaks into titles and abstracts;
// normalizing keeps prompts and stored records diff-friendly.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r <= unicode.MaxASCII {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Truncate shortens s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
