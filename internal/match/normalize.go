package match

import (
	"strings"
	"unicode"
)

// Fold reduces a key to the form used for comparison: lower case with word
// separators removed, so "displayName", "display_name" and "Display Name"
// all fold to "displayname".
func Fold(key string) string {
	var b strings.Builder

	b.Grow(len(key))

	for _, r := range key {
		if isSeparator(r) {
			continue
		}

		b.WriteRune(unicode.ToLower(r))
	}

	return b.String()
}

func isSeparator(r rune) bool {
	switch r {
	case '_', '-', '.', ' ':
		return true
	}

	return false
}
