package graph

import (
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// UniqueID returns base if it is not in taken, otherwise the first of
// base-1, base-2, ... that is free.
func UniqueID(base string, taken map[string]bool) string {
	if !taken[base] {
		return base
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		if !taken[candidate] {
			return candidate
		}
	}
}

// Slug converts a display name into an ID fragment: accents are stripped,
// letters lower-cased and runs of anything else collapsed to a single dash.
func Slug(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, name)
	if err != nil {
		stripped = name
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(stripped) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// EdgeID derives a stable ID for an edge that was declared without one.
// The position within its batch keeps parallel edges apart.
func EdgeID(source, target, label string, index int) string {
	h, _ := blake2b.New(8, nil)
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00%d", source, target, label, index)
	return "e-" + hex.EncodeToString(h.Sum(nil))
}
