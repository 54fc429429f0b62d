package matching

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldChain decomposes, strips combining marks and recomposes so that
// "Café" and "cafe" compare equal.
var foldChain = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalize folds case and width, removes diacritics and collapses whitespace.
func normalize(s string) string {
	if s == "" {
		return ""
	}
	folded, _, err := transform.String(foldChain, s)
	if err != nil {
		folded = norm.NFKC.String(s)
	}
	folded = cases.Fold().String(folded)
	return strings.Join(strings.Fields(folded), " ")
}

// normalizeCode is the exact-lookup key of an item code. Only case and
// whitespace are ignored; accents and width variants stay distinct.
func normalizeCode(code string) string {
	return strings.Join(strings.Fields(strings.ToLower(code)), " ")
}

// tokenize splits normalized text on anything that is not a letter or digit.
func tokenize(s string) []string {
	return strings.FieldsFunc(normalize(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
