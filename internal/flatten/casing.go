package flatten

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	numericPattern  = regexp.MustCompile(`^-?\d+(?:[.,]\d+)*$`)
	acronymPattern  = regexp.MustCompile(`^[A-Z0-9/]{1,5}$`)
	datePattern     = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)
	nationalPattern = regexp.MustCompile(`^[A-Z0-9]{18}$`)
)

// TitleKey converts a raw JSON key into a display label: underscores become
// spaces, camelCase boundaries are split, and every word starts upper-case.
// Applying it to its own output is a no-op.
func TitleKey(key string) string {
	key = strings.ReplaceAll(key, "_", " ")
	key = splitCamel(key)
	words := strings.Fields(key)
	caser := cases.Title(language.Und, cases.NoLower)
	for i, w := range words {
		words[i] = caser.String(w)
	}
	return strings.Join(words, " ")
}

func splitCamel(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	prev := rune(0)
	for _, r := range s {
		if unicode.IsUpper(r) && unicode.IsLower(prev) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}

// NormalizeValue applies display casing to a leaf value. Numbers, short
// upper-case codes (INE, N/A), DD/MM/YYYY dates and 18-character national-id codes are
// kept verbatim; everything else becomes sentence case.
func NormalizeValue(value string) string {
	switch {
	case value == "":
		return value
	case numericPattern.MatchString(value),
		acronymPattern.MatchString(value),
		datePattern.MatchString(value),
		nationalPattern.MatchString(value):
		return value
	}
	return sentenceCase(value)
}

func sentenceCase(s string) string {
	first, size := utf8.DecodeRuneInString(s)
	if first == utf8.RuneError {
		return cases.Lower(language.Und).String(s)
	}
	return cases.Upper(language.Und).String(string(first)) + cases.Lower(language.Und).String(s[size:])
}
