package analyze

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// NormalizeName canonicalizes a manager name: trimmed, first letter upper,
// the rest lower. Names shorter than two runes are rejected, so stray
// punctuation in the manager column does not become a report line.
func NormalizeName(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if utf8.RuneCountInString(s) < 2 {
		return "", false
	}
	first, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(first)) + strings.ToLower(s[size:]), true
}
