package structure

import "strings"

// Match reports whether candidate matches a symbol search query.
//
// An empty query matches everything. Otherwise the query must be a
// case-sensitive prefix of candidate (which includes exact equality).
// Camel-case and subsequence matching are not supported.
func Match(candidate, query string) bool {
	if query == "" {
		return true
	}

	// simple prefix
	if strings.HasPrefix(candidate, query) {
		return true
	}

	// trivial case
	return candidate == query
}
