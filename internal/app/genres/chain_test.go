package genres

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mks-o/spotify-organizer/internal/domain/track"
)

// fakeProvider returns canned tags and records which artists it was asked for.
type fakeProvider struct {
	name  string
	tags  map[string][]string
	err   error
	asked [][]string
}

func (f *fakeProvider) Tags(_ context.Context, artists []track.Artist) (map[string][]string, error) {
	ids := make([]string, len(artists))
	for i, a := range artists {
		ids[i] = a.ID
	}
	f.asked = append(f.asked, ids)
	if f.err != nil {
		return nil, f.err
	}
	return f.tags, nil
}

func (f *fakeProvider) Name() string { return f.name }

func TestChain_FillsMissingFromLaterProviders(t *testing.T) {
	first := &fakeProvider{
		name: "spotify",
		tags: map[string][]string{
			"a1": {"indie rock"},
		},
	}
	second := &fakeProvider{
		name: "lastfm",
		tags: map[string][]string{
			"a2": {"synthpop"},
		},
	}

	chain := NewChain([]Provider{first, second})
	artists := []track.Artist{
		{ID: "a1", Name: "Arctic Monkeys"},
		{ID: "a2", Name: "CHVRCHES"},
	}

	tags, err := chain.Tags(context.Background(), artists)
	require.NoError(t, err)

	assert.Equal(t, []string{"indie rock"}, tags["a1"])
	assert.Equal(t, []string{"synthpop"}, tags["a2"])

	// The second provider is only asked about the still-untagged artist.
	require.Len(t, second.asked, 1)
	assert.Equal(t, []string{"a2"}, second.asked[0])
}

func TestChain_SkipsSecondProviderWhenComplete(t *testing.T) {
	first := &fakeProvider{
		name: "spotify",
		tags: map[string][]string{
			"a1": {"pop"},
		},
	}
	second := &fakeProvider{name: "lastfm"}

	chain := NewChain([]Provider{first, second})
	tags, err := chain.Tags(context.Background(), []track.Artist{{ID: "a1", Name: "Carly Rae Jepsen"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"pop"}, tags["a1"])
	assert.Empty(t, second.asked)
}

func TestChain_ProviderFailureFallsThrough(t *testing.T) {
	first := &fakeProvider{
		name: "spotify",
		err:  errors.New("spotify down"),
	}
	second := &fakeProvider{
		name: "lastfm",
		tags: map[string][]string{
			"a1": {"jazz"},
		},
	}

	chain := NewChain([]Provider{first, second})
	tags, err := chain.Tags(context.Background(), []track.Artist{{ID: "a1", Name: "Brad Mehldau"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"jazz"}, tags["a1"])
}

func TestChain_NoProviders(t *testing.T) {
	chain := NewChain(nil)
	_, err := chain.Tags(context.Background(), []track.Artist{{ID: "a1"}})
	assert.Error(t, err)
}
