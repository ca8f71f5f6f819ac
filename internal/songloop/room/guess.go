package room

import (
	"regexp"
	"strings"
	"unicode"
)

var parentheticalRe = regexp.MustCompile(`\([^)]*\)|（[^）]*）|\[[^\]]*\]`)

// Normalize lowercases s, strips parenthetical content and removes all
// whitespace and punctuation. Idempotent: normalizing a normalized string is
// a no-op.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = parentheticalRe.ReplaceAllString(s, "")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Matches reports whether guess identifies the answer. A guess is correct if
// its normalized form equals the normalized title, contains it, or contains
// both the normalized artist and the normalized title.
func Matches(guess, title, artist string) bool {
	ng, nt := Normalize(guess), Normalize(title)
	if ng == "" || nt == "" {
		return false
	}
	if ng == nt || strings.Contains(ng, nt) {
		return true
	}

	na := Normalize(artist)
	return na != "" && strings.Contains(ng, na) && strings.Contains(ng, nt)
}
