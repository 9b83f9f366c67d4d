// Package playlist provides the Playlist domain entity.
package playlist

// Playlist represents a playlist created on Spotify.
type Playlist struct {
	ID   string // Spotify Playlist ID
	Name string // Playlist name as accepted by Spotify
	URL  string // Spotify URL
}

// Created records a successful group-to-playlist conversion within a session.
// It is the only guard against creating a second playlist for the same group;
// collisions with pre-existing remote playlists are not detected.
type Created struct {
	GroupName string // Group the playlist was created from
	Playlist  Playlist
}

// Find returns the record for the given group name, if any.
func Find(records []Created, groupName string) (Created, bool) {
	for _, r := range records {
		if r.GroupName == groupName {
			return r, true
		}
	}
	return Created{}, false
}
