package organize

import (
	"strings"

	"github.com/mks-o/spotify-organizer/internal/domain/track"
)

// Exclude returns the tracks whose IDs are not in the exclusion set,
// preserving order. A nil or empty set returns the input unchanged.
func Exclude(tracks []track.Track, excluded map[string]bool) []track.Track {
	if len(excluded) == 0 {
		return tracks
	}
	kept := make([]track.Track, 0, len(tracks))
	for _, t := range tracks {
		if !excluded[t.ID] {
			kept = append(kept, t)
		}
	}
	return kept
}

// Search returns the tracks matching the query, preserving order. The match
// is a case-insensitive substring check against the track name, any artist
// name, and the raw release date string. An empty or whitespace-only query
// returns the input unchanged.
//
// Search operates on an already exclusion-filtered list; it never
// resurrects excluded tracks because it only ever narrows its input.
func Search(tracks []track.Track, query string) []track.Track {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return tracks
	}

	matched := make([]track.Track, 0, len(tracks))
	for _, t := range tracks {
		if matches(t, q) {
			matched = append(matched, t)
		}
	}
	return matched
}

func matches(t track.Track, q string) bool {
	if strings.Contains(strings.ToLower(t.Name), q) {
		return true
	}
	for _, a := range t.Artists {
		if strings.Contains(strings.ToLower(a.Name), q) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(t.Album.ReleaseDate), q)
}
