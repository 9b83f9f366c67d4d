package genres

import (
	"context"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/mks-o/spotify-organizer/internal/domain/track"
)

// Chain queries providers in order, asking each later provider only for
// the artists that are still missing tags.
type Chain struct {
	providers []Provider
}

// NewChain creates a new provider chain.
func NewChain(providers []Provider) *Chain {
	return &Chain{providers: providers}
}

// Tags retrieves tags for the given artists across the chain.
func (c *Chain) Tags(ctx context.Context, artists []track.Artist) (map[string][]string, error) {
	if len(c.providers) == 0 {
		return nil, errors.New("no genre providers configured")
	}

	result := make(map[string][]string, len(artists))
	missing := artists

	for i, p := range c.providers {
		if len(missing) == 0 {
			break
		}

		zlog.Debug().Msgf("querying genre provider: index=%d name=%s artists=%d", i+1, p.Name(), len(missing))

		tags, err := p.Tags(ctx, missing)
		if err != nil {
			zlog.Warn().Msgf("genre provider failed, trying next: provider=%s error=%v", p.Name(), err)
			continue
		}

		for id, t := range tags {
			if len(t) > 0 {
				result[id] = t
			}
		}

		var next []track.Artist
		for _, a := range missing {
			if len(result[a.ID]) == 0 {
				next = append(next, a)
			}
		}
		missing = next

		zlog.Info().Msgf("genre provider done: provider=%s tagged=%d remaining=%d", p.Name(), len(tags), len(missing))
	}

	return result, nil
}

// Name returns the chain name.
func (c *Chain) Name() string {
	return "provider_chain"
}
