package web

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	spotifyauth "github.com/zmb3/spotify/v2/auth"

	"github.com/mks-o/spotify-organizer/internal/app/genres"
	"github.com/mks-o/spotify-organizer/internal/app/library"
	"github.com/mks-o/spotify-organizer/internal/app/organize"
	"github.com/mks-o/spotify-organizer/internal/domain/playlist"
	"github.com/mks-o/spotify-organizer/internal/domain/track"
	"github.com/mks-o/spotify-organizer/internal/infra/config"
	spotifyinfra "github.com/mks-o/spotify-organizer/internal/infra/spotify"
)

type contextKey string

const sessionContextKey contextKey = "session"

// Handlers contains HTTP handlers for the organizer API.
type Handlers struct {
	cfg        *config.Config
	auth       *spotifyauth.Authenticator
	sessions   *SessionStore
	engine     *organize.Engine
	namer      *organize.Namer
	normalizer *organize.Normalizer
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(cfg *config.Config, auth *spotifyauth.Authenticator, sessions *SessionStore,
	engine *organize.Engine, namer *organize.Namer, normalizer *organize.Normalizer) *Handlers {
	return &Handlers{
		cfg:        cfg,
		auth:       auth,
		sessions:   sessions,
		engine:     engine,
		namer:      namer,
		normalizer: normalizer,
	}
}

// ---- DTOs ----

type trackDTO struct {
	ID          string   `json:"id"`
	URI         string   `json:"uri"`
	Name        string   `json:"name"`
	Artists     []string `json:"artists"`
	Album       string   `json:"album"`
	ReleaseDate string   `json:"releaseDate"`
	ImageURL    string   `json:"imageUrl,omitempty"`
}

type groupDTO struct {
	Name   string     `json:"name"`
	Tracks []trackDTO `json:"tracks"`
}

type duplicateDTO struct {
	Key    string     `json:"key"`
	Tracks []trackDTO `json:"tracks"`
}

type playlistDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

type createdDTO struct {
	Group    string      `json:"group"`
	Playlist playlistDTO `json:"playlist"`
}

type outcomeDTO struct {
	Group    string       `json:"group"`
	Playlist *playlistDTO `json:"playlist,omitempty"`
	Error    string       `json:"error,omitempty"`
}

type userDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl,omitempty"`
}

func toTrackDTO(t track.Track) trackDTO {
	dto := trackDTO{
		ID:          t.ID,
		URI:         t.URI,
		Name:        t.Name,
		Artists:     t.ArtistNames(),
		Album:       t.Album.Name,
		ReleaseDate: t.Album.ReleaseDate,
	}
	if len(t.Album.Images) > 0 {
		dto.ImageURL = t.Album.Images[0].URL
	}
	return dto
}

func toTrackDTOs(tracks []track.Track) []trackDTO {
	out := make([]trackDTO, len(tracks))
	for i, t := range tracks {
		out[i] = toTrackDTO(t)
	}
	return out
}

func toPlaylistDTO(p playlist.Playlist) playlistDTO {
	return playlistDTO{ID: p.ID, Name: p.Name, URL: p.URL}
}

// ---- Auth ----

// Home reports the authentication state (GET /).
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.GetFromRequest(r)

	resp := map[string]any{"authenticated": session != nil}
	if session != nil && session.User != nil {
		resp["user"] = userDTO{ID: session.User.ID, Name: session.User.Name, ImageURL: session.User.ImageURL}
	}
	respondJSON(w, http.StatusOK, resp)
}

// Login initiates the Spotify OAuth flow (GET /auth/login).
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	state, err := generateOAuthState()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to generate state")
		return
	}

	// State travels in a short-lived cookie and is checked on callback.
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   300,
	})

	http.Redirect(w, r, h.auth.AuthURL(state), http.StatusTemporaryRedirect)
}

// Callback handles the OAuth callback from Spotify (GET /callback).
func (h *Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing state cookie")
		return
	}

	state := r.URL.Query().Get("state")
	if state != stateCookie.Value {
		respondError(w, http.StatusBadRequest, "state mismatch")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		respondError(w, http.StatusBadRequest, "spotify auth error: "+errMsg)
		return
	}

	token, err := h.auth.Token(r.Context(), state, r)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to exchange token")
		return
	}

	// The session owns its own client stack; tokens never outlive the
	// store TTL.
	client := spotifyinfra.NewFromToken(context.Background(), h.auth, token, h.cfg.Spotify.Market, h.cfg.Spotify.LibraryLimit)

	u, err := client.CurrentUser(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get user info")
		return
	}

	chain, err := genres.NewChainFromConfig(h.cfg, client)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to build genre providers")
		return
	}
	resolver, err := genres.NewResolver(chain, h.normalizer)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to build genre resolver")
		return
	}

	manager := library.NewManager(client, h.engine, h.namer)
	session := h.sessions.Create(token, u, client, manager, resolver)
	h.sessions.SetCookie(w, session)

	zlog.Info().Msgf("user logged in: user=%s session=%s", u.ID, session.ID)
	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

// Logout clears the session (POST /auth/logout).
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if session := h.sessions.GetFromRequest(r); session != nil {
		h.sessions.Delete(session.ID)
	}
	h.sessions.ClearCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// RequireSession rejects requests without a valid session cookie.
func (h *Handlers) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := h.sessions.GetFromRequest(r)
		if session == nil {
			respondError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		ctx := context.WithValue(r.Context(), sessionContextKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFrom(r *http.Request) *Session {
	session, _ := r.Context().Value(sessionContextKey).(*Session)
	return session
}

// ---- API ----

// Me returns the authenticated user (GET /api/me).
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r)
	respondJSON(w, http.StatusOK, userDTO{
		ID:       session.User.ID,
		Name:     session.User.Name,
		ImageURL: session.User.ImageURL,
	})
}

// Songs returns the visible library, fetching it from Spotify on first
// use (GET /api/songs?query=).
func (h *Handlers) Songs(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r)

	if !session.Manager.HasLibrary() {
		tracks, err := session.Client.FetchLibrary(r.Context())
		if err != nil {
			zlog.Error().Err(err).Msg("library fetch failed")
			respondError(w, http.StatusBadGateway, "failed to fetch library from Spotify")
			return
		}
		session.Manager.SetLibrary(tracks)
	}

	visible := session.Manager.VisibleTracks(r.URL.Query().Get("query"))
	respondJSON(w, http.StatusOK, map[string]any{
		"tracks": toTrackDTOs(visible),
		"total":  len(visible),
	})
}

// Genres resolves genre categories for every artist in the library
// (POST /api/genres).
func (h *Handlers) Genres(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r)

	if !session.Manager.HasLibrary() {
		respondError(w, http.StatusConflict, "no library loaded")
		return
	}

	resolved, err := session.Resolver.Resolve(r.Context(), session.Manager.Tracks())
	if err != nil {
		zlog.Error().Err(err).Msg("genre resolution failed")
		respondError(w, http.StatusBadGateway, "failed to resolve genres")
		return
	}
	session.Manager.SetGenres(resolved)

	respondJSON(w, http.StatusOK, map[string]any{"genres": resolved})
}

// Groups partitions the visible library (GET /api/groups?by=).
func (h *Handlers) Groups(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r)

	mode, ok := h.parseMode(w, r.URL.Query().Get("by"))
	if !ok {
		return
	}
	if mode != organize.ModeDecade && !session.Manager.HasGenres() {
		respondError(w, http.StatusConflict, "genres not resolved")
		return
	}

	grouping, err := session.Manager.Groups(mode)
	if err != nil {
		h.respondManagerError(w, err)
		return
	}

	groups := grouping.Groups()
	out := make([]groupDTO, len(groups))
	for i, g := range groups {
		out[i] = groupDTO{Name: g.Name, Tracks: toTrackDTOs(g.Tracks)}
	}
	respondJSON(w, http.StatusOK, map[string]any{"by": mode, "groups": out})
}

// Duplicates returns duplicate clusters (GET /api/duplicates).
func (h *Handlers) Duplicates(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r)

	clusters, err := session.Manager.Duplicates()
	if err != nil {
		h.respondManagerError(w, err)
		return
	}

	out := make([]duplicateDTO, len(clusters))
	for i, c := range clusters {
		out[i] = duplicateDTO{Key: c.Key, Tracks: toTrackDTOs(c.Tracks)}
	}
	respondJSON(w, http.StatusOK, map[string]any{"duplicates": out})
}

type createPlaylistRequest struct {
	By          string   `json:"by"`
	Group       string   `json:"group"`
	Groups      []string `json:"groups"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
}

// CreatePlaylist creates one playlist from a group, or from several
// merged groups (POST /api/playlists).
func (h *Handlers) CreatePlaylist(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r)

	var req createPlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	mode, ok := h.parseMode(w, req.By)
	if !ok {
		return
	}

	var created playlist.Created
	var err error
	switch {
	case len(req.Groups) > 0:
		created, err = session.Manager.Merge(r.Context(), mode, req.Groups, req.Name, req.Description)
	case req.Group != "":
		created, err = session.Manager.Publish(r.Context(), mode, req.Group, req.Name, req.Description)
	default:
		respondError(w, http.StatusBadRequest, "group or groups is required")
		return
	}
	if err != nil {
		h.respondManagerError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, createdDTO{
		Group:    created.GroupName,
		Playlist: toPlaylistDTO(created.Playlist),
	})
}

type bulkCreateRequest struct {
	By string `json:"by"`
}

// BulkCreate creates a playlist for every group (POST /api/playlists/bulk).
func (h *Handlers) BulkCreate(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r)

	var req bulkCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	mode, ok := h.parseMode(w, req.By)
	if !ok {
		return
	}
	if mode != organize.ModeDecade && !session.Manager.HasGenres() {
		respondError(w, http.StatusConflict, "genres not resolved")
		return
	}

	outcomes, err := session.Manager.PublishAll(r.Context(), mode)
	if err != nil {
		h.respondManagerError(w, err)
		return
	}

	out := make([]outcomeDTO, len(outcomes))
	for i, o := range outcomes {
		dto := outcomeDTO{Group: o.GroupName}
		if o.Err != nil {
			dto.Error = o.Err.Error()
		} else if o.Playlist != nil {
			p := toPlaylistDTO(*o.Playlist)
			dto.Playlist = &p
		}
		out[i] = dto
	}
	respondJSON(w, http.StatusOK, map[string]any{"outcomes": out})
}

type exclusionsRequest struct {
	TrackIDs []string `json:"trackIds"`
}

// Exclusions replaces the session's exclusion set (POST /api/exclusions).
func (h *Handlers) Exclusions(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r)

	var req exclusionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session.Manager.SetExclusions(req.TrackIDs)
	respondJSON(w, http.StatusOK, map[string]any{"excluded": session.Manager.Exclusions()})
}

// ---- Helpers ----

// parseMode parses the grouping mode, defaulting to decade. A false
// return means the error response was already written.
func (h *Handlers) parseMode(w http.ResponseWriter, by string) (organize.Mode, bool) {
	if by == "" {
		return organize.ModeDecade, true
	}
	mode, err := organize.ParseMode(by)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return mode, true
}

// respondManagerError maps library manager errors to HTTP status codes.
func (h *Handlers) respondManagerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, library.ErrNoLibrary):
		respondError(w, http.StatusConflict, "no library loaded")
	case errors.Is(err, library.ErrPublishInProgress):
		respondError(w, http.StatusConflict, "playlist creation already in progress")
	case errors.Is(err, library.ErrAlreadyCreated):
		respondError(w, http.StatusConflict, "playlist already created for this group")
	case errors.Is(err, library.ErrGroupNotFound):
		respondError(w, http.StatusNotFound, "group not found")
	case errors.Is(err, library.ErrEmptySelection):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, library.ErrEmptyName):
		respondError(w, http.StatusBadRequest, "playlist name is required")
	default:
		zlog.Error().Err(err).Msg("playlist creation failed")
		respondError(w, http.StatusBadGateway, "playlist creation failed")
	}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zlog.Error().Err(err).Msg("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// generateOAuthState creates a random state string for OAuth.
func generateOAuthState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
