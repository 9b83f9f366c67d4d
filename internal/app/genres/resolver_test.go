package genres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mks-o/spotify-organizer/internal/domain/track"
)

func TestResolver_Resolve(t *testing.T) {
	source := &fakeProvider{
		name: "spotify",
		tags: map[string][]string{
			"a1": {"dance pop"},
			"a2": {"melodic death metal"},
		},
	}

	resolver, err := NewResolver(source, nil)
	require.NoError(t, err)

	tracks := []track.Track{
		{ID: "t1", Artists: []track.Artist{{ID: "a1", Name: "Dua Lipa"}}},
		{ID: "t2", Artists: []track.Artist{{ID: "a2", Name: "Insomnium"}}},
		{ID: "t3", Artists: []track.Artist{{ID: "a1", Name: "Dua Lipa"}}},
		{ID: "t4", Artists: []track.Artist{{ID: "a3", Name: "Unknown Act"}}},
	}

	genres, err := resolver.Resolve(context.Background(), tracks)
	require.NoError(t, err)

	assert.Equal(t, "Pop", genres["a1"])
	assert.Equal(t, "Metal", genres["a2"])
	assert.Equal(t, "Other", genres["a3"])

	// Each artist is queried once regardless of how many tracks it has.
	require.Len(t, source.asked, 1)
	assert.Equal(t, []string{"a1", "a2", "a3"}, source.asked[0])
}

func TestResolver_EmptyLibrary(t *testing.T) {
	resolver, err := NewResolver(&fakeProvider{name: "spotify"}, nil)
	require.NoError(t, err)

	genres, err := resolver.Resolve(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, genres)
}

func TestResolver_NilSource(t *testing.T) {
	_, err := NewResolver(nil, nil)
	assert.Error(t, err)
}

func TestNewLastFmProvider_Settings(t *testing.T) {
	tests := []struct {
		name     string
		settings map[string]any
		wantErr  bool
	}{
		{
			name:     "valid settings",
			settings: map[string]any{"api_key": "key123"},
			wantErr:  false,
		},
		{
			name:     "missing api key",
			settings: map[string]any{"tag_count": 3},
			wantErr:  true,
		},
		{
			name:     "empty settings",
			settings: nil,
			wantErr:  true,
		},
		{
			name:     "invalid tag count",
			settings: map[string]any{"api_key": "key123", "tag_count": -1},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewLastFmProvider(tt.settings)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "lastfm", p.Name())
			assert.Equal(t, 5, p.config.TagCount)
		})
	}
}
