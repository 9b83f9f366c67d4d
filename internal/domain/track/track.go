// Package track provides the Track domain entity.
package track

import (
	"strconv"
	"strings"
)

// Artist represents a track artist as returned by the Spotify API.
type Artist struct {
	ID   string // Spotify Artist ID
	Name string // Display name
}

// Image represents an album art image.
type Image struct {
	URL string
}

// Album represents the album a track belongs to.
type Album struct {
	Name        string  // Album name
	ReleaseDate string  // "YYYY", "YYYY-MM" or "YYYY-MM-DD"
	Images      []Image // Album art, largest first
}

// Track represents a saved track from the user's Spotify library.
// Contains only information retrieved from the Spotify API.
type Track struct {
	ID      string   // Spotify Track ID
	URI     string   // Spotify URI ("spotify:track:..."), required for playlist creation
	Name    string   // Track name
	Artists []Artist // Credited artists, primary artist first
	Album   Album    // Album info
}

// PrimaryArtist returns the first credited artist.
// The second return value is false when the track has no artists.
func (t *Track) PrimaryArtist() (Artist, bool) {
	if len(t.Artists) == 0 {
		return Artist{}, false
	}
	return t.Artists[0], true
}

// ArtistNames returns the names of all credited artists in order.
func (t *Track) ArtistNames() []string {
	names := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		names[i] = a.Name
	}
	return names
}

// ReleaseYear parses the leading year of the album release date.
// The second return value is false when the date is missing or malformed.
func (t *Track) ReleaseYear() (int, bool) {
	date := t.Album.ReleaseDate
	if i := strings.IndexByte(date, '-'); i >= 0 {
		date = date[:i]
	}
	if date == "" {
		return 0, false
	}
	year, err := strconv.Atoi(date)
	if err != nil {
		return 0, false
	}
	return year, true
}

// URIs returns the Spotify URIs for a list of tracks, preserving order.
func URIs(tracks []Track) []string {
	uris := make([]string, len(tracks))
	for i, t := range tracks {
		uris[i] = t.URI
	}
	return uris
}
