// Package genres resolves raw genre tags for artists and normalizes them
// into playlist categories.
package genres

import (
	"context"

	"github.com/mks-o/spotify-organizer/internal/domain/track"
)

// Provider defines the interface for genre tag sources.
type Provider interface {
	// Tags retrieves raw genre tags for the given artists, keyed by artist ID.
	// Artists the source knows nothing about are simply absent from the result.
	Tags(ctx context.Context, artists []track.Artist) (map[string][]string, error)

	// Name returns the provider name.
	Name() string
}
