package organize

import (
	"sort"
	"strings"

	"github.com/mks-o/spotify-organizer/internal/domain/track"
)

// DuplicateGroup is a cluster of tracks that are the same song saved more
// than once (remasters, re-releases, singles vs. album cuts).
type DuplicateGroup struct {
	Key    string // normalized "name::primary artist"
	Tracks []track.Track
}

// FindDuplicates clusters tracks by normalized song name and primary artist
// name and returns only clusters with more than one member, largest first.
// Ties keep the order the keys were first encountered in.
func FindDuplicates(tracks []track.Track) []DuplicateGroup {
	byKey := make(map[string][]track.Track)
	var order []string

	for _, t := range tracks {
		key := duplicateKey(t)
		if _, ok := byKey[key]; !ok {
			order = append(order, key)
		}
		byKey[key] = append(byKey[key], t)
	}

	var duplicates []DuplicateGroup
	for _, key := range order {
		if cluster := byKey[key]; len(cluster) > 1 {
			duplicates = append(duplicates, DuplicateGroup{Key: key, Tracks: cluster})
		}
	}

	sort.SliceStable(duplicates, func(i, j int) bool {
		return len(duplicates[i].Tracks) > len(duplicates[j].Tracks)
	})

	return duplicates
}

// ExtraCount returns the number of removable tracks across all clusters
// (every cluster member beyond the first).
func ExtraCount(duplicates []DuplicateGroup) int {
	var n int
	for _, d := range duplicates {
		n += len(d.Tracks) - 1
	}
	return n
}

// duplicateKey builds the normalized duplicate-detection key. Cover songs
// keep distinct keys because the primary artist differs.
func duplicateKey(t track.Track) string {
	name := strings.TrimSpace(strings.ToLower(t.Name))
	var artist string
	if primary, ok := t.PrimaryArtist(); ok {
		artist = strings.TrimSpace(strings.ToLower(primary.Name))
	}
	return name + "::" + artist
}
