package genres

import (
	"context"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/mks-o/spotify-organizer/internal/app/organize"
	"github.com/mks-o/spotify-organizer/internal/domain/track"
)

// TagSource retrieves raw tags for artists. Both Chain and individual
// providers satisfy it.
type TagSource interface {
	Tags(ctx context.Context, artists []track.Artist) (map[string][]string, error)
}

// Resolver maps a track list to normalized genre categories per artist.
type Resolver struct {
	source     TagSource
	normalizer *organize.Normalizer
}

// NewResolver creates a new Resolver. A nil normalizer uses the default
// rule table.
func NewResolver(source TagSource, normalizer *organize.Normalizer) (*Resolver, error) {
	if source == nil {
		return nil, errors.New("tag source is required")
	}
	if normalizer == nil {
		normalizer = organize.NewNormalizer(nil)
	}
	return &Resolver{source: source, normalizer: normalizer}, nil
}

// Resolve determines the genre category for every primary artist in the
// given tracks. Artists without tags fall back to the normalizer default.
func (r *Resolver) Resolve(ctx context.Context, tracks []track.Track) (organize.GenreMap, error) {
	artists := primaryArtists(tracks)
	if len(artists) == 0 {
		return organize.GenreMap{}, nil
	}

	tags, err := r.source.Tags(ctx, artists)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch genre tags")
	}

	genres := make(organize.GenreMap, len(artists))
	for _, a := range artists {
		genres[a.ID] = r.normalizer.Normalize(tags[a.ID])
	}

	zlog.Info().Msgf("resolved genres: artists=%d tagged=%d", len(artists), len(tags))
	return genres, nil
}

// primaryArtists collects the unique primary artist of each track,
// preserving first-seen order.
func primaryArtists(tracks []track.Track) []track.Artist {
	seen := make(map[string]bool)
	var artists []track.Artist

	for _, t := range tracks {
		a, ok := t.PrimaryArtist()
		if !ok || a.ID == "" || seen[a.ID] {
			continue
		}
		seen[a.ID] = true
		artists = append(artists, a)
	}

	return artists
}
