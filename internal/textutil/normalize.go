package textutil

import (
	"strings"
	"unicode"
)

// showNamePunctuation strips characters that release groups and catalogs
// disagree on (apostrophes, quotes, commas, colons, semicolons, hyphens).
var showNamePunctuation = strings.NewReplacer(
	"'", "",
	"\"", "",
	",", "",
	":", "",
	";", "",
	"-", "",
)

// NormalizeShowName lowercases and trims name, removes identity-neutral
// punctuation, and collapses every whitespace run to a single space.
//
// Punctuation is removed after trimming, so a name that ends in a stripped
// character keeps the space in front of it ("abc -" becomes "abc ").
func NormalizeShowName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	name = showNamePunctuation.Replace(name)
	return collapseSpaces(name)
}

// SameShow reports whether a and b normalize to the same identity.
func SameShow(a, b string) bool {
	return NormalizeShowName(a) == NormalizeShowName(b)
}

func collapseSpaces(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	inSpace := false
	for _, r := range value {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte(' ')
			}
			inSpace = true
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}
