package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/mks-o/spotify-organizer/internal/app/genres"
	"github.com/mks-o/spotify-organizer/internal/app/library"
	"github.com/mks-o/spotify-organizer/internal/app/organize"
	"github.com/mks-o/spotify-organizer/internal/domain/playlist"
	"github.com/mks-o/spotify-organizer/internal/domain/track"
	"github.com/mks-o/spotify-organizer/internal/domain/user"
	"github.com/mks-o/spotify-organizer/internal/infra/config"
)

// fakeSpotify acts as both the library fetcher and the playlist creator.
type fakeSpotify struct {
	tracks   []track.Track
	fetchErr error
	failOn   map[string]bool
	created  int
	lastDesc string
}

func (f *fakeSpotify) FetchLibrary(_ context.Context) ([]track.Track, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.tracks, nil
}

func (f *fakeSpotify) CreatePlaylist(_ context.Context, name, description string, _ []string) (*playlist.Playlist, error) {
	if f.failOn[name] {
		return nil, errors.New("spotify rejected the request")
	}
	f.created++
	f.lastDesc = description
	return &playlist.Playlist{
		ID:   fmt.Sprintf("pl%d", f.created),
		Name: name,
		URL:  fmt.Sprintf("https://open.spotify.com/playlist/pl%d", f.created),
	}, nil
}

type fakeTagSource struct {
	tags map[string][]string
}

func (f *fakeTagSource) Tags(_ context.Context, artists []track.Artist) (map[string][]string, error) {
	return f.tags, nil
}

func webTrack(id, name, artistID, artistName, releaseDate string) track.Track {
	return track.Track{
		ID:   id,
		URI:  "spotify:track:" + id,
		Name: name,
		Artists: []track.Artist{
			{ID: artistID, Name: artistName},
		},
		Album: track.Album{ReleaseDate: releaseDate},
	}
}

type testEnv struct {
	handlers *Handlers
	router   chi.Router
	session  *Session
	spotify  *fakeSpotify
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{}
	cfg.Server.SessionTTLMin = 60
	cfg.Spotify.LibraryLimit = 2000

	sessions := NewSessionStore(time.Hour)
	namer := organize.NewNamer(organize.NamerConfig{
		Now: func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) },
	})
	engine := organize.NewEngine(organize.Config{})
	normalizer := organize.NewNormalizer(nil)

	h := NewHandlers(cfg, nil, sessions, engine, namer, normalizer)

	sp := &fakeSpotify{
		tracks: []track.Track{
			webTrack("t1", "Song A", "a1", "Artist One", "1995-04-01"),
			webTrack("t2", "Song B", "a2", "Artist Two", "2005-06-15"),
			webTrack("t3", "Song C", "a1", "Artist One", "1997-01-01"),
		},
	}

	source := &fakeTagSource{tags: map[string][]string{
		"a1": {"indie rock"},
		"a2": {"dance pop"},
	}}
	resolver, err := genres.NewResolver(source, normalizer)
	require.NoError(t, err)

	manager := library.NewManager(sp, engine, namer)
	session := sessions.Create(&oauth2.Token{AccessToken: "tok"}, &user.User{ID: "u1", Name: "Tester"}, sp, manager, resolver)

	router := chi.NewRouter()
	router.Get("/", h.Home)
	router.Route("/api", func(r chi.Router) {
		r.Use(h.RequireSession)
		r.Get("/me", h.Me)
		r.Get("/songs", h.Songs)
		r.Post("/genres", h.Genres)
		r.Get("/groups", h.Groups)
		r.Get("/duplicates", h.Duplicates)
		r.Post("/playlists", h.CreatePlaylist)
		r.Post("/playlists/bulk", h.BulkCreate)
		r.Post("/exclusions", h.Exclusions)
	})

	return &testEnv{handlers: h, router: router, session: session, spotify: sp}
}

func (e *testEnv) request(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: e.session.ID})

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, r)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestAPI_RequiresSession(t *testing.T) {
	env := newTestEnv(t)

	r := httptest.NewRequest(http.MethodGet, "/api/songs", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSongs_FetchesOnFirstUse(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodGet, "/api/songs", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, float64(3), body["total"])
	assert.True(t, env.session.Manager.HasLibrary())
}

func TestSongs_Search(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodGet, "/api/songs?query=Song+B", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["total"])
}

func TestSongs_FetchFailure(t *testing.T) {
	env := newTestEnv(t)
	env.spotify.fetchErr = errors.New("spotify down")

	w := env.request(t, http.MethodGet, "/api/songs", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestExclusions_HideFromSongs(t *testing.T) {
	env := newTestEnv(t)
	env.request(t, http.MethodGet, "/api/songs", "")

	w := env.request(t, http.MethodPost, "/api/exclusions", `{"trackIds":["t1"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{"t1"}, decode(t, w)["excluded"])

	// A search matching the excluded track must not bring it back.
	w = env.request(t, http.MethodGet, "/api/songs?query=Song+A", "")
	assert.Equal(t, float64(0), decode(t, w)["total"])
}

func TestGroups_Decade(t *testing.T) {
	env := newTestEnv(t)
	env.request(t, http.MethodGet, "/api/songs", "")

	w := env.request(t, http.MethodGet, "/api/groups?by=decade", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	groups := body["groups"].([]any)
	require.Len(t, groups, 2)
	assert.Equal(t, "2000's", groups[0].(map[string]any)["name"])
	assert.Equal(t, "1990's", groups[1].(map[string]any)["name"])
}

func TestGroups_GenreRequiresResolution(t *testing.T) {
	env := newTestEnv(t)
	env.request(t, http.MethodGet, "/api/songs", "")

	w := env.request(t, http.MethodGet, "/api/groups?by=genre", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.request(t, http.MethodPost, "/api/genres", "{}")
	require.Equal(t, http.StatusOK, w.Code)

	w = env.request(t, http.MethodGet, "/api/groups?by=genre", "")
	require.Equal(t, http.StatusOK, w.Code)

	groups := decode(t, w)["groups"].([]any)
	require.Len(t, groups, 2)
	assert.Equal(t, "Rock", groups[0].(map[string]any)["name"])
	assert.Equal(t, "Pop", groups[1].(map[string]any)["name"])
}

func TestGroups_WithoutLibrary(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodGet, "/api/groups?by=decade", "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGroups_InvalidMode(t *testing.T) {
	env := newTestEnv(t)
	env.request(t, http.MethodGet, "/api/songs", "")

	w := env.request(t, http.MethodGet, "/api/groups?by=tempo", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreatePlaylist_Single(t *testing.T) {
	env := newTestEnv(t)
	env.request(t, http.MethodGet, "/api/songs", "")

	w := env.request(t, http.MethodPost, "/api/playlists", `{"by":"decade","group":"1990's"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	body := decode(t, w)
	assert.Equal(t, "1990's", body["group"])
	pl := body["playlist"].(map[string]any)
	assert.Equal(t, "📼 1990's Collection (2024-05-01)", pl["name"])

	// The same group cannot be published twice in one session.
	w = env.request(t, http.MethodPost, "/api/playlists", `{"by":"decade","group":"1990's"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreatePlaylist_SingleOverrides(t *testing.T) {
	env := newTestEnv(t)
	env.request(t, http.MethodGet, "/api/songs", "")

	w := env.request(t, http.MethodPost, "/api/playlists",
		`{"by":"decade","group":"1990's","name":"My Nineties","description":"Personal picks"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	pl := decode(t, w)["playlist"].(map[string]any)
	assert.Equal(t, "My Nineties", pl["name"])
	assert.Equal(t, "Personal picks", env.spotify.lastDesc)
}

func TestCreatePlaylist_UnknownGroup(t *testing.T) {
	env := newTestEnv(t)
	env.request(t, http.MethodGet, "/api/songs", "")

	w := env.request(t, http.MethodPost, "/api/playlists", `{"by":"decade","group":"1950's"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreatePlaylist_Merge(t *testing.T) {
	env := newTestEnv(t)
	env.request(t, http.MethodGet, "/api/songs", "")

	w := env.request(t, http.MethodPost, "/api/playlists",
		`{"by":"decade","groups":["1990's","2000's"],"name":"Throwbacks"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	pl := decode(t, w)["playlist"].(map[string]any)
	assert.Equal(t, "Throwbacks", pl["name"])
	assert.Equal(t, "Merged playlist: 1990's, 2000's", env.spotify.lastDesc)
}

func TestCreatePlaylist_MergeCustomDescription(t *testing.T) {
	env := newTestEnv(t)
	env.request(t, http.MethodGet, "/api/songs", "")

	w := env.request(t, http.MethodPost, "/api/playlists",
		`{"by":"decade","groups":["1990's"],"name":"My Mix","description":"Songs for the road"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Songs for the road", env.spotify.lastDesc)
}

func TestCreatePlaylist_MergeWithoutName(t *testing.T) {
	env := newTestEnv(t)
	env.request(t, http.MethodGet, "/api/songs", "")

	w := env.request(t, http.MethodPost, "/api/playlists", `{"by":"decade","groups":["1990's","2000's"]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, env.spotify.created)
}

func TestCreatePlaylist_MissingGroup(t *testing.T) {
	env := newTestEnv(t)
	env.request(t, http.MethodGet, "/api/songs", "")

	w := env.request(t, http.MethodPost, "/api/playlists", `{"by":"decade"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBulkCreate_ReportsOutcomes(t *testing.T) {
	env := newTestEnv(t)
	env.spotify.failOn = map[string]bool{"💿 2000's Collection (2024-05-01)": true}
	env.request(t, http.MethodGet, "/api/songs", "")

	w := env.request(t, http.MethodPost, "/api/playlists/bulk", `{"by":"decade"}`)
	require.Equal(t, http.StatusOK, w.Code)

	outcomes := decode(t, w)["outcomes"].([]any)
	require.Len(t, outcomes, 2)

	first := outcomes[0].(map[string]any)
	assert.Equal(t, "2000's", first["group"])
	assert.NotEmpty(t, first["error"])

	second := outcomes[1].(map[string]any)
	assert.Equal(t, "1990's", second["group"])
	assert.NotNil(t, second["playlist"])
}

func TestDuplicates(t *testing.T) {
	env := newTestEnv(t)
	env.spotify.tracks = append(env.spotify.tracks,
		webTrack("t9", "song a", "a1", "Artist One", "1995-04-01"))
	env.request(t, http.MethodGet, "/api/songs", "")

	w := env.request(t, http.MethodGet, "/api/duplicates", "")
	require.Equal(t, http.StatusOK, w.Code)

	dups := decode(t, w)["duplicates"].([]any)
	require.Len(t, dups, 1)
	assert.Len(t, dups[0].(map[string]any)["tracks"], 2)
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodGet, "/api/me", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Tester", decode(t, w)["name"])
}

func TestHome_Unauthenticated(t *testing.T) {
	env := newTestEnv(t)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["authenticated"])
}
