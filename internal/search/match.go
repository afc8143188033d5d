package search

import (
	"strings"
	"unicode/utf8"
)

// MinQueryLength is the shortest normalized query, in characters, that is
// matched at all.
const MinQueryLength = 2

// NormalizeQuery trims and lowercases q and collapses runs of internal
// whitespace to a single space.
func NormalizeQuery(q string) string {
	return strings.ToLower(strings.Join(strings.Fields(q), " "))
}

// IsSearchable reports whether a normalized query is long enough to match.
func IsSearchable(normalized string) bool {
	return utf8.RuneCountInString(normalized) >= MinQueryLength
}

// Match reports whether blob contains the normalized query.
func Match(query, blob string) bool {
	return strings.Contains(blob, query)
}
