package textutil

import (
	"strings"
	"unicode"
)

// SanitizeName replaces control and invisible formatting characters so a
// filename cannot inject terminal escape sequences or reorder the row it is
// drawn on.
func SanitizeName(text string) string {
	for _, r := range text {
		if requiresSanitization(r) {
			return sanitize(text)
		}
	}
	return text
}

func requiresSanitization(r rune) bool {
	if r < 0x20 || r == 0x7f {
		return true
	}
	return unicode.In(r, unicode.Cf)
}

func sanitize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r == '\t', r == '\n', r == '\r':
			b.WriteByte(' ')
		case r < 0x20 || r == 0x7f:
			b.WriteByte('?')
		case unicode.In(r, unicode.Cf):
			// Bidi overrides, zero-width joiners and friends.
			b.WriteRune('�')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
