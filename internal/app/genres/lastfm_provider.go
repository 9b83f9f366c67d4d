package genres

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"github.com/mks-o/spotify-organizer/internal/domain/track"
	"github.com/mks-o/spotify-organizer/internal/infra/lastfm"
)

// LastFmClient defines the interface for Last.fm operations.
type LastFmClient interface {
	GetArtistTopTags(ctx context.Context, artistName string, limit int) ([]lastfm.Tag, error)
}

type LastFmProviderConfig struct {
	APIKey   string `yaml:"api_key" mapstructure:"api_key" validate:"required"`
	TagCount int    `yaml:"tag_count" mapstructure:"tag_count" default:"5" validate:"gte=1"`
	MinCount int    `yaml:"min_count" mapstructure:"min_count" default:"10" validate:"gte=0"`
}

// LastFmProvider retrieves genre tags from Last.fm artist top tags.
// Used as a fallback for artists Spotify returns no genres for.
type LastFmProvider struct {
	lastfm LastFmClient
	config *LastFmProviderConfig
}

// NewLastFmProvider creates a new LastFmProvider.
func NewLastFmProvider(settings map[string]any) (*LastFmProvider, error) {
	if len(settings) == 0 {
		return nil, errors.New("settings are required")
	}

	var config LastFmProviderConfig
	if err := mapstructure.Decode(settings, &config); err != nil {
		return nil, errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(&config); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	if err := validator.New().Struct(config); err != nil {
		return nil, errors.Wrap(err, "validation failed")
	}

	lastfmClient, err := lastfm.New(lastfm.Config{APIKey: config.APIKey})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create last.fm client")
	}

	return &LastFmProvider{
		lastfm: lastfmClient,
		config: &config,
	}, nil
}

// Tags retrieves genre tags for the given artists from Last.fm.
// Individual lookup failures are skipped; the artist stays untagged.
func (p *LastFmProvider) Tags(ctx context.Context, artists []track.Artist) (map[string][]string, error) {
	result := make(map[string][]string, len(artists))

	for _, a := range artists {
		if a.ID == "" || a.Name == "" {
			continue
		}

		tags, err := p.lastfm.GetArtistTopTags(ctx, a.Name, p.config.TagCount)
		if err != nil {
			continue
		}

		names := make([]string, 0, len(tags))
		for _, tag := range tags {
			if tag.Count < p.config.MinCount {
				continue
			}
			names = append(names, strings.ToLower(tag.Name))
		}
		if len(names) > 0 {
			result[a.ID] = names
		}
	}

	return result, nil
}

// Name returns the provider name.
func (p *LastFmProvider) Name() string {
	return "lastfm"
}
