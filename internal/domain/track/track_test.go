package track

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrack_ReleaseYear(t *testing.T) {
	tests := []struct {
		name        string
		releaseDate string
		expected    int
		ok          bool
	}{
		{
			name:        "full date",
			releaseDate: "1995-06-12",
			expected:    1995,
			ok:          true,
		},
		{
			name:        "year and month",
			releaseDate: "2005-03",
			expected:    2005,
			ok:          true,
		},
		{
			name:        "year only",
			releaseDate: "1985",
			expected:    1985,
			ok:          true,
		},
		{
			name:        "empty date",
			releaseDate: "",
			ok:          false,
		},
		{
			name:        "garbage date",
			releaseDate: "unknown",
			ok:          false,
		},
		{
			name:        "leading dash",
			releaseDate: "-2020",
			ok:          false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &Track{Album: Album{ReleaseDate: tt.releaseDate}}

			year, ok := tr.ReleaseYear()
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, year)
			}
		})
	}
}

func TestTrack_PrimaryArtist(t *testing.T) {
	tr := &Track{Artists: []Artist{
		{ID: "a1", Name: "Queen"},
		{ID: "a2", Name: "David Bowie"},
	}}

	primary, ok := tr.PrimaryArtist()
	assert.True(t, ok)
	assert.Equal(t, "Queen", primary.Name)

	empty := &Track{}
	_, ok = empty.PrimaryArtist()
	assert.False(t, ok)
}

func TestURIs(t *testing.T) {
	tracks := []Track{
		{ID: "t1", URI: "spotify:track:t1"},
		{ID: "t2", URI: "spotify:track:t2"},
	}

	assert.Equal(t, []string{"spotify:track:t1", "spotify:track:t2"}, URIs(tracks))
	assert.Empty(t, URIs(nil))
}
