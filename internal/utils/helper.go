package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldApostrophes = strings.NewReplacer("’", "'", "´", "'", "`", "'", "‘", "'")

// Fold lowercases s and strips accents so "Crêtes" and "cretes" compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(foldApostrophes.Replace(out))
}

// ContainsFolded reports whether any of haystacks contains needle, comparing folded text.
// needle must already be folded.
func ContainsFolded(needle string, haystacks ...string) bool {
	for _, h := range haystacks {
		if h != "" && strings.Contains(Fold(h), needle) {
			return true
		}
	}
	return false
}
