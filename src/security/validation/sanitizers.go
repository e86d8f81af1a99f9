package validation

import (
	"strings"
	"unicode"
)

// StripUnprintable removes non-printable characters from free-text input,
// allowing common whitespace like space, tab, newline, and carriage return.
func StripUnprintable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		return -1
	}, s)
}

// SanitizeDescription trims and strips a user-entered description.
func SanitizeDescription(s string) string {
	return strings.TrimSpace(StripUnprintable(s))
}
