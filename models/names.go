package models

import (
	"strings"
	"unicode"
)

// FormatName normalizes a category name for persistence: trim, collapse
// internal whitespace, title-case each word. Two names differing only in
// case or spacing are stored identically formatted, but duplicates are
// not rejected.
func FormatName(raw string) string {
	words := strings.Fields(raw)
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
