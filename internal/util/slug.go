// Package util provides general-purpose helpers: URL slug generation with
// Unicode normalization, nullable SQL type conversion, and filename
// sanitization.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var multipleHyphens = regexp.MustCompile(`-{2,}`)

// Slugify converts a string to a URL-friendly slug. Accents are stripped and
// ASCII is lowercased, but CJK and other Unicode letters are kept as-is since
// most artist names are not Latin script.
func Slugify(s string) string {
	// Decompose accented characters, drop the combining marks.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)

	result = strings.ToLower(result)

	var b strings.Builder
	b.Grow(len(result))
	for _, r := range result {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '_' || r == '/':
			b.WriteByte('-')
		}
	}

	result = multipleHyphens.ReplaceAllString(b.String(), "-")
	return strings.Trim(result, "-")
}

// IsValidSlug checks if a string is a valid slug: non-empty, no whitespace or
// punctuation besides single hyphens, and no leading or trailing hyphen.
func IsValidSlug(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-') {
			return false
		}
		if unicode.IsUpper(r) {
			return false
		}
	}

	if s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}

	return !strings.Contains(s, "--")
}
