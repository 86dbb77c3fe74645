package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold returns s case-folded with diacritics removed and whitespace collapsed.
// Two titles that differ only in case, accents or spacing fold to the same
// string.
func Fold(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	stripped, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		stripped = s
	}
	return strings.Join(strings.Fields(cases.Fold().String(stripped)), " ")
}

// TitleKey folds s and drops punctuation and a leading article so that
// "The Office" and "office" compare equal.
func TitleKey(s string) string {
	tokens := Tokenize(s)
	if len(tokens) > 1 && (tokens[0] == "the" || tokens[0] == "a" || tokens[0] == "an") {
		tokens = tokens[1:]
	}
	return strings.Join(tokens, " ")
}
