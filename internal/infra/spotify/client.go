// Package spotify provides a client for the Spotify Web API.
package spotify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/mks-o/spotify-organizer/internal/domain/playlist"
	"github.com/mks-o/spotify-organizer/internal/domain/track"
	"github.com/mks-o/spotify-organizer/internal/domain/user"
)

const (
	savedTracksPageSize = 50  // Spotify max per saved-tracks request
	artistBatchSize     = 50  // Spotify max artists per request
	playlistChunkSize   = 100 // Spotify max tracks per add request

	defaultLibraryLimit = 2000
)

// Client is a Spotify Web API client scoped to one user's token.
type Client struct {
	client       *spotify.Client
	limiter      *rate.Limiter
	maxRetries   int
	retryDelay   time.Duration
	libraryLimit int
	market       string
}

// Config represents Spotify client configuration for refresh-token use
// (the headless CLI). Browser sessions use NewFromToken instead.
type Config struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	Market       string
	LibraryLimit int
}

// NewAuthenticator creates the OAuth authenticator with the scopes the
// organizer needs.
func NewAuthenticator(clientID, clientSecret, redirectURL string) *spotifyauth.Authenticator {
	opts := []spotifyauth.AuthenticatorOption{
		spotifyauth.WithClientID(clientID),
		spotifyauth.WithClientSecret(clientSecret),
		spotifyauth.WithScopes(
			spotifyauth.ScopeUserLibraryRead,
			spotifyauth.ScopeUserReadPrivate,
			spotifyauth.ScopePlaylistModifyPublic,
			spotifyauth.ScopePlaylistModifyPrivate,
		),
	}
	if redirectURL != "" {
		opts = append(opts, spotifyauth.WithRedirectURL(redirectURL))
	}
	return spotifyauth.New(opts...)
}

// New creates a new Spotify client from a refresh token.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RefreshToken == "" {
		return nil, errors.New("spotify credentials are required")
	}

	auth := NewAuthenticator(cfg.ClientID, cfg.ClientSecret, "")
	token := &oauth2.Token{RefreshToken: cfg.RefreshToken}

	return NewFromToken(ctx, auth, token, cfg.Market, cfg.LibraryLimit), nil
}

// NewFromToken creates a client from an OAuth token obtained elsewhere
// (the web session's cookie-stored token). The underlying HTTP client
// refreshes the token automatically.
func NewFromToken(ctx context.Context, auth *spotifyauth.Authenticator, token *oauth2.Token, market string, libraryLimit int) *Client {
	if libraryLimit <= 0 {
		libraryLimit = defaultLibraryLimit
	}
	return &Client{
		client:       spotify.New(auth.Client(ctx, token)),
		limiter:      rate.NewLimiter(rate.Limit(10), 1),
		maxRetries:   3,
		retryDelay:   time.Second,
		libraryLimit: libraryLimit,
		market:       market,
	}
}

// CurrentUser retrieves the account the token belongs to.
func (c *Client) CurrentUser(ctx context.Context) (*user.User, error) {
	var result *spotify.PrivateUser
	err := c.call(ctx, func() error {
		u, err := c.client.CurrentUser(ctx)
		if err != nil {
			return err
		}
		result = u
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get current user")
	}

	u := &user.User{
		ID:    result.ID,
		Name:  result.DisplayName,
		Email: result.Email,
	}
	if len(result.Images) > 0 {
		u.ImageURL = result.Images[0].URL
	}
	return u, nil
}

// FetchLibrary retrieves the user's saved tracks. Pagination is handled
// here; the result is capped at the configured library limit.
func (c *Client) FetchLibrary(ctx context.Context) ([]track.Track, error) {
	var tracks []track.Track

	opts := []spotify.RequestOption{spotify.Limit(savedTracksPageSize)}
	if c.market != "" {
		opts = append(opts, spotify.Market(c.market))
	}

	var page *spotify.SavedTrackPage
	err := c.call(ctx, func() error {
		p, err := c.client.CurrentUsersTracks(ctx, opts...)
		if err != nil {
			return err
		}
		page = p
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get saved tracks")
	}

	for {
		for _, saved := range page.Tracks {
			tracks = append(tracks, convertSavedTrack(saved))
		}
		zlog.Debug().Msgf("fetched %d saved tracks", len(tracks))

		if len(tracks) >= c.libraryLimit {
			zlog.Warn().Msgf("library capped at %d tracks", c.libraryLimit)
			tracks = tracks[:c.libraryLimit]
			break
		}

		err := c.call(ctx, func() error {
			return c.client.NextPage(ctx, page)
		})
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to get next saved-tracks page")
		}
	}

	return tracks, nil
}

// FetchArtistGenres retrieves the raw genre tags for the given artists in
// batches. A failed batch is logged and skipped; its artists are simply
// absent from the result.
func (c *Client) FetchArtistGenres(ctx context.Context, artistIDs []string) (map[string][]string, error) {
	genres := make(map[string][]string, len(artistIDs))

	for start := 0; start < len(artistIDs); start += artistBatchSize {
		end := min(start+artistBatchSize, len(artistIDs))
		batch := make([]spotify.ID, 0, end-start)
		for _, id := range artistIDs[start:end] {
			batch = append(batch, spotify.ID(id))
		}

		var artists []*spotify.FullArtist
		err := c.call(ctx, func() error {
			a, err := c.client.GetArtists(ctx, batch...)
			if err != nil {
				return err
			}
			artists = a
			return nil
		})
		if err != nil {
			zlog.Warn().Err(err).Msgf("skipping artist batch %d-%d", start, end)
			continue
		}

		for _, a := range artists {
			if a != nil {
				genres[string(a.ID)] = a.Genres
			}
		}
	}

	return genres, nil
}

// CreatePlaylist creates a private playlist for the current user and adds
// the given tracks to it, chunking the add requests as the API requires.
func (c *Client) CreatePlaylist(ctx context.Context, name, description string, trackURIs []string) (*playlist.Playlist, error) {
	if name == "" {
		return nil, errors.New("playlist name is required")
	}
	if len(trackURIs) == 0 {
		return nil, errors.New("at least one track is required")
	}

	u, err := c.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	var created *spotify.FullPlaylist
	err = c.call(ctx, func() error {
		p, err := c.client.CreatePlaylistForUser(ctx, u.ID, name, description, false, false)
		if err != nil {
			return err
		}
		created = p
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create playlist")
	}

	ids := make([]spotify.ID, len(trackURIs))
	for i, uri := range trackURIs {
		ids[i] = spotify.ID(extractTrackID(uri))
	}

	for start := 0; start < len(ids); start += playlistChunkSize {
		end := min(start+playlistChunkSize, len(ids))
		chunk := ids[start:end]

		err := c.call(ctx, func() error {
			_, err := c.client.AddTracksToPlaylist(ctx, created.ID, chunk...)
			return err
		})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to add tracks %d-%d", start+1, end)
		}
	}

	url := created.ExternalURLs["spotify"]
	if url == "" {
		url = fmt.Sprintf("https://open.spotify.com/playlist/%s", created.ID)
	}

	return &playlist.Playlist{
		ID:   string(created.ID),
		Name: created.Name,
		URL:  url,
	}, nil
}

// convertSavedTrack converts a Spotify SavedTrack to a domain Track.
func convertSavedTrack(saved spotify.SavedTrack) track.Track {
	artists := make([]track.Artist, len(saved.Artists))
	for i, a := range saved.Artists {
		artists[i] = track.Artist{ID: string(a.ID), Name: a.Name}
	}

	images := make([]track.Image, len(saved.Album.Images))
	for i, img := range saved.Album.Images {
		images[i] = track.Image{URL: img.URL}
	}

	return track.Track{
		ID:      string(saved.ID),
		URI:     string(saved.URI),
		Name:    saved.Name,
		Artists: artists,
		Album: track.Album{
			Name:        saved.Album.Name,
			ReleaseDate: saved.Album.ReleaseDate,
			Images:      images,
		},
	}
}

// call waits for the rate limiter, then runs the operation with linear
// backoff on retryable errors.
func (c *Client) call(ctx context.Context, fn func() error) error {
	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetryable(err) {
			return err
		}

		if i < c.maxRetries-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retryDelay * time.Duration(i+1)):
			}
		}
	}
	return errors.Wrap(lastErr, "max retries exceeded")
}

// isRetryable checks if an error is retryable.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	// Rate limit errors and server errors are retryable.
	errStr := err.Error()
	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "504")
}

// extractTrackID extracts the track ID from a Spotify track URI or URL.
func extractTrackID(input string) string {
	input = strings.TrimSpace(input)
	if strings.HasPrefix(input, "spotify:track:") {
		return strings.TrimPrefix(input, "spotify:track:")
	}

	if strings.Contains(input, "open.spotify.com") && strings.Contains(input, "/track/") {
		parts := strings.Split(input, "/track/")
		if len(parts) >= 2 {
			id := strings.Split(parts[len(parts)-1], "?")[0]
			return strings.TrimRight(id, "/")
		}
	}

	// Assume it's already a track ID.
	return input
}
