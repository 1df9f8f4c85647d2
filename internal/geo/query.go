// Package geo turns raw request parameters into place lookups:
// free-text search queries and map viewport bounds.
package geo

import (
	"strings"
	"unicode"
)

// Kind says which lookup form a search query resolved to
type Kind int

const (
	// KindPlacePrefix matches place names starting with Text
	KindPlacePrefix Kind = iota
	// KindPostalCode matches postal codes starting with Text
	KindPostalCode
	// KindPlaceWithCode matches place names containing Text within region code Region
	KindPlaceWithCode
	// KindPlaceWithRegion matches place names containing Text within region name Region
	KindPlaceWithRegion
)

// String is used as a metrics label and in logs
func (k Kind) String() string {
	switch k {
	case KindPostalCode:
		return "postal_code"
	case KindPlaceWithCode:
		return "place_with_code"
	case KindPlaceWithRegion:
		return "place_with_region"
	default:
		return "place_prefix"
	}
}

// ignoredRegionCode is dropped when detected; it is almost always the tail of
// a country name ("Columbus, US") rather than a state.
const ignoredRegionCode = "US"

// Query is a parsed search query
type Query struct {
	Kind   Kind
	Text   string // postal code prefix or trimmed place name fragment
	Region string // region code or region name, empty for the prefix kinds
}

// ParseQuery classifies q as a postal code, a place name, or a place name
// qualified by a region code ("Paris TX") or region name ("Paris, Texas").
//
// The uppercase-pair heuristic is intentionally naive: the first two adjacent
// uppercase letters anywhere in q are taken as the code, and q is cut there.
// An empty q parses as a prefix query on "" and therefore matches every place.
func ParseQuery(q string) Query {
	if isDigits(q) {
		return Query{Kind: KindPostalCode, Text: q}
	}

	text := q
	code := ""
	runes := []rune(q)
	for i := 0; i+1 < len(runes); i++ {
		if unicode.IsUpper(runes[i]) && unicode.IsUpper(runes[i+1]) {
			code = string(runes[i : i+2])
			text = string(runes[:i])
			break
		}
	}
	// text stays truncated even when the code itself is thrown away
	if code == ignoredRegionCode {
		code = ""
	}

	if code != "" {
		return Query{Kind: KindPlaceWithCode, Text: trimSeparators(text), Region: code}
	}

	segments := strings.Split(q, ",")
	if len(segments) > 1 {
		if name := strings.TrimSpace(segments[1]); name != "" {
			return Query{Kind: KindPlaceWithRegion, Text: strings.TrimSpace(segments[0]), Region: name}
		}
	}

	return Query{Kind: KindPlacePrefix, Text: strings.TrimSpace(text)}
}

// LikePattern returns the SQL LIKE pattern for the place name or postal code column.
// User text is not escaped: % and _ typed by the user act as wildcards.
func (q Query) LikePattern() string {
	switch q.Kind {
	case KindPlaceWithCode, KindPlaceWithRegion:
		return "%" + q.Text + "%"
	default:
		return q.Text + "%"
	}
}

// Matches reports whether the given column values satisfy the query using the
// same rules the SQL form applies (case-insensitive, like SQLite's LIKE)
func (q Query) Matches(postalCode, placeName, adminCode1, adminName1 string) bool {
	switch q.Kind {
	case KindPostalCode:
		return strings.HasPrefix(postalCode, q.Text)
	case KindPlaceWithCode:
		return containsFold(placeName, q.Text) && adminCode1 == q.Region
	case KindPlaceWithRegion:
		return containsFold(placeName, q.Text) && adminName1 == q.Region
	default:
		return hasPrefixFold(placeName, q.Text)
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// trimSeparators strips the space and commas left between a place name and
// a trailing region code ("Paris, TX" -> "Paris")
func trimSeparators(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == ','
	})
}

func hasPrefixFold(s, prefix string) bool {
	return strings.HasPrefix(strings.ToLower(s), strings.ToLower(prefix))
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
