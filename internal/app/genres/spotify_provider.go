package genres

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/mks-o/spotify-organizer/internal/domain/track"
)

// SpotifyClient defines the Spotify operations the genre providers need.
type SpotifyClient interface {
	FetchArtistGenres(ctx context.Context, artistIDs []string) (map[string][]string, error)
}

// SpotifyProvider retrieves genre tags from the Spotify artist catalog.
type SpotifyProvider struct {
	spotify SpotifyClient
}

// NewSpotifyProvider creates a new SpotifyProvider.
func NewSpotifyProvider(spotify SpotifyClient) (*SpotifyProvider, error) {
	if spotify == nil {
		return nil, errors.New("spotify client is required")
	}
	return &SpotifyProvider{spotify: spotify}, nil
}

// Tags retrieves genre tags for the given artists from Spotify.
func (p *SpotifyProvider) Tags(ctx context.Context, artists []track.Artist) (map[string][]string, error) {
	ids := make([]string, 0, len(artists))
	for _, a := range artists {
		if a.ID != "" {
			ids = append(ids, a.ID)
		}
	}
	if len(ids) == 0 {
		return map[string][]string{}, nil
	}

	return p.spotify.FetchArtistGenres(ctx, ids)
}

// Name returns the provider name.
func (p *SpotifyProvider) Name() string {
	return "spotify"
}
