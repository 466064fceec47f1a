// Package loyalty implements the pure computations of the loyalty engine:
// category normalization, order points calculation, and activity streaks.
package loyalty

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultCategory is the multiplier key used when an item carries no category.
const DefaultCategory = "default"

// NormalizeCategory canonicalizes a free-text category label: lower-cases,
// strips diacritics (NFD decomposition, combining marks removed), and maps
// empty input to DefaultCategory. "Électronique", "électronique" and
// "ELECTRONIQUE" all normalize to "electronique".
func NormalizeCategory(raw string) string {
	if raw == "" {
		return DefaultCategory
	}
	lowered := strings.ToLower(raw)
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(stripMarks, lowered)
	if err != nil {
		return lowered
	}
	return out
}
