// Package permalink computes output URLs for documents from the configured
// permalink pattern and guarantees their uniqueness.
package permalink

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// foldDiacritics decomposes characters and strips combining marks, so
	// "café" slugs the same as "cafe".
	foldDiacritics = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	nonSlugRunes = regexp.MustCompile(`[^a-z0-9]+`)
)

// Slugify normalizes a string into a URL slug: Unicode-folded, lower-cased,
// runs of whitespace and punctuation collapsed to a single separator.
// Slugify is idempotent: Slugify(Slugify(s)) == Slugify(s).
func Slugify(s string) string {
	folded, _, err := transform.String(foldDiacritics, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)
	folded = nonSlugRunes.ReplaceAllString(folded, "-")
	return strings.Trim(folded, "-")
}
