// Package organize implements the library organization engine: genre
// normalization, mood inference, grouping, duplicate detection, search
// filtering and playlist naming. All functions are pure and perform no I/O.
package organize

import "strings"

// CategoryOther is the fallback genre category and mood bucket.
const CategoryOther = "Other"

// GenreRule maps a raw genre tag pattern to a canonical category.
type GenreRule struct {
	Pattern  string // lowercase tag or tag fragment
	Category string // canonical category, e.g. "Pop"
}

// Normalizer maps raw free-text genre tags to canonical categories using an
// ordered rule table.
type Normalizer struct {
	rules []GenreRule
}

// NewNormalizer creates a Normalizer with the given rule table.
// A nil or empty table selects DefaultGenreRules.
func NewNormalizer(rules []GenreRule) *Normalizer {
	if len(rules) == 0 {
		rules = DefaultGenreRules()
	}
	return &Normalizer{rules: rules}
}

// Normalize returns the canonical category for a list of raw genre tags.
// Tags are checked in caller-supplied order; for each tag an exact match
// across the whole table is tried before substring containment. The first
// tag that matches anything wins. When nothing matches, the first raw tag
// is returned as-is, or "Other" for empty input.
func (n *Normalizer) Normalize(rawGenres []string) string {
	for _, raw := range rawGenres {
		tag := strings.ToLower(raw)

		for _, r := range n.rules {
			if tag == r.Pattern {
				return r.Category
			}
		}

		for _, r := range n.rules {
			if strings.Contains(tag, r.Pattern) {
				return r.Category
			}
		}
	}

	if len(rawGenres) > 0 {
		return rawGenres[0]
	}
	return CategoryOther
}
