package search

import (
	"slices"
	"strings"
)

// Rank sorts results by exact title match, then title prefix match, then kind
// priority. The sort is stable, so results that tie keep insertion order.
// The input slice is not modified.
func Rank(results []Result, query string) []Result {
	type keyed struct {
		Result
		exact, prefix bool
	}
	ks := make([]keyed, len(results))
	for i, r := range results {
		title := strings.ToLower(r.Title)
		ks[i] = keyed{
			Result: r,
			exact:  title == query,
			prefix: strings.HasPrefix(title, query),
		}
	}

	slices.SortStableFunc(ks, func(a, b keyed) int {
		if a.exact != b.exact {
			if a.exact {
				return -1
			}
			return 1
		}
		if a.prefix != b.prefix {
			if a.prefix {
				return -1
			}
			return 1
		}
		return b.Type.Priority() - a.Type.Priority()
	})

	out := make([]Result, len(ks))
	for i, k := range ks {
		out[i] = k.Result
	}
	return out
}
