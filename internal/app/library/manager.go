// Package library manages the per-session working state: the fetched
// track library, resolved genres, exclusions and created playlists.
package library

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/mks-o/spotify-organizer/internal/app/organize"
	"github.com/mks-o/spotify-organizer/internal/domain/playlist"
	"github.com/mks-o/spotify-organizer/internal/domain/track"
)

// Sentinel errors for state violations.
var (
	ErrNoLibrary         = errors.New("no library loaded")
	ErrPublishInProgress = errors.New("playlist creation already in progress")
	ErrGroupNotFound     = errors.New("group not found")
	ErrAlreadyCreated    = errors.New("playlist already created for this group")
	ErrEmptySelection    = errors.New("no groups selected")
	ErrEmptyName         = errors.New("playlist name is required")
)

// PlaylistCreator defines the Spotify operation the manager needs.
type PlaylistCreator interface {
	CreatePlaylist(ctx context.Context, name, description string, trackURIs []string) (*playlist.Playlist, error)
}

// Outcome records the result of one group's playlist creation during a
// bulk publish.
type Outcome struct {
	GroupName string
	Playlist  *playlist.Playlist
	Err       error
}

// Manager holds one session's organization state. All methods are safe
// for concurrent use.
type Manager struct {
	creator PlaylistCreator
	engine  *organize.Engine
	namer   *organize.Namer

	mu         sync.Mutex
	tracks     []track.Track
	genres     organize.GenreMap
	excluded   map[string]bool
	created    []playlist.Created
	publishing bool
}

// NewManager creates a session manager. Nil engine or namer select the
// built-in defaults.
func NewManager(creator PlaylistCreator, engine *organize.Engine, namer *organize.Namer) *Manager {
	if engine == nil {
		engine = organize.NewEngine(organize.Config{})
	}
	if namer == nil {
		namer = organize.NewNamer(organize.NamerConfig{})
	}
	return &Manager{
		creator:  creator,
		engine:   engine,
		namer:    namer,
		excluded: make(map[string]bool),
	}
}

// SetLibrary replaces the loaded library. Exclusions, genres and created
// records belong to the previous library and are reset.
func (m *Manager) SetLibrary(tracks []track.Track) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tracks = append([]track.Track(nil), tracks...)
	m.genres = nil
	m.excluded = make(map[string]bool)
	m.created = nil
	zlog.Info().Msgf("library loaded: tracks=%d", len(tracks))
}

// Tracks returns a copy of the loaded library.
func (m *Manager) Tracks() []track.Track {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]track.Track(nil), m.tracks...)
}

// HasLibrary reports whether a library has been loaded.
func (m *Manager) HasLibrary() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tracks != nil
}

// SetGenres replaces the resolved genre map.
func (m *Manager) SetGenres(genres organize.GenreMap) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.genres = make(organize.GenreMap, len(genres))
	for k, v := range genres {
		m.genres[k] = v
	}
}

// Genres returns a copy of the resolved genre map.
func (m *Manager) Genres() organize.GenreMap {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(organize.GenreMap, len(m.genres))
	for k, v := range m.genres {
		out[k] = v
	}
	return out
}

// HasGenres reports whether genres have been resolved for the library.
func (m *Manager) HasGenres() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.genres != nil
}

// SetExclusions replaces the exclusion set with the given track IDs.
func (m *Manager) SetExclusions(trackIDs []string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.excluded = make(map[string]bool, len(trackIDs))
	for _, id := range trackIDs {
		if id != "" {
			m.excluded[id] = true
		}
	}
}

// ToggleExclusion flips one track's exclusion and reports the new state.
func (m *Manager) ToggleExclusion(trackID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.excluded[trackID] {
		delete(m.excluded, trackID)
		return false
	}
	m.excluded[trackID] = true
	return true
}

// Exclusions returns the excluded track IDs in sorted order.
func (m *Manager) Exclusions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.excluded))
	for id := range m.excluded {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// VisibleTracks returns the library with exclusions removed, then filtered
// by the search query. Exclusion always happens first, so a search can
// never resurrect an excluded track.
func (m *Manager) VisibleTracks(query string) []track.Track {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.visibleLocked(query)
}

func (m *Manager) visibleLocked(query string) []track.Track {
	return organize.Search(organize.Exclude(m.tracks, m.excluded), query)
}

// Groups partitions the visible library by the given mode.
func (m *Manager) Groups(mode organize.Mode) (*organize.Grouping, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.tracks == nil {
		return nil, ErrNoLibrary
	}
	return m.engine.Group(m.visibleLocked(""), mode, m.genres), nil
}

// Duplicates clusters the visible library by normalized name and primary
// artist.
func (m *Manager) Duplicates() ([]organize.DuplicateGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.tracks == nil {
		return nil, ErrNoLibrary
	}
	return organize.FindDuplicates(m.visibleLocked("")), nil
}

// Created returns the playlists created in this session.
func (m *Manager) Created() []playlist.Created {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]playlist.Created(nil), m.created...)
}

// Publish creates a playlist from one group of the given mode. Name and
// description override the derived defaults when non-empty. Only one
// publish may run at a time; a group that already produced a playlist in
// this session is rejected.
func (m *Manager) Publish(ctx context.Context, mode organize.Mode, groupName, name, description string) (playlist.Created, error) {
	derivedName, derivedDescription, uris, err := m.beginPublish(mode, groupName)
	if err != nil {
		return playlist.Created{}, err
	}
	defer m.endPublish()

	if strings.TrimSpace(name) == "" {
		name = derivedName
	}
	if strings.TrimSpace(description) == "" {
		description = derivedDescription
	}

	created, err := m.creator.CreatePlaylist(ctx, name, description, uris)
	if err != nil {
		return playlist.Created{}, errors.Wrapf(err, "failed to create playlist for group %q", groupName)
	}

	record := playlist.Created{GroupName: groupName, Playlist: *created}
	m.record(record)
	zlog.Info().Msgf("playlist created: group=%s name=%s tracks=%d", groupName, created.Name, len(uris))
	return record, nil
}

// PublishAll creates a playlist for every group of the given mode,
// sequentially. A failed group is recorded in its outcome and does not
// stop the remaining groups. Groups already published this session are
// skipped.
func (m *Manager) PublishAll(ctx context.Context, mode organize.Mode) ([]Outcome, error) {
	m.mu.Lock()
	if m.tracks == nil {
		m.mu.Unlock()
		return nil, ErrNoLibrary
	}
	if m.publishing {
		m.mu.Unlock()
		return nil, ErrPublishInProgress
	}
	m.publishing = true
	groups := m.engine.Group(m.visibleLocked(""), mode, m.genres).Groups()
	done := make(map[string]bool, len(m.created))
	for _, c := range m.created {
		done[c.GroupName] = true
	}
	m.mu.Unlock()
	defer m.endPublish()

	outcomes := make([]Outcome, 0, len(groups))
	for _, g := range groups {
		if done[g.Name] {
			continue
		}

		created, err := m.creator.CreatePlaylist(ctx,
			m.namer.NameFor(mode, g.Name),
			organize.BulkDescription,
			track.URIs(g.Tracks))
		if err != nil {
			zlog.Warn().Err(err).Msgf("bulk create failed for group, continuing: group=%s", g.Name)
			outcomes = append(outcomes, Outcome{GroupName: g.Name, Err: err})
			continue
		}

		m.record(playlist.Created{GroupName: g.Name, Playlist: *created})
		outcomes = append(outcomes, Outcome{GroupName: g.Name, Playlist: created})
	}

	zlog.Info().Msgf("bulk create finished: groups=%d attempted=%d", len(groups), len(outcomes))
	return outcomes, nil
}

// Merge creates one playlist from the tracks of several groups. Tracks
// are deduplicated by URI; exclusions apply before aggregation. The name
// is caller-supplied and required; an empty description selects the
// suggested merge description.
func (m *Manager) Merge(ctx context.Context, mode organize.Mode, groupNames []string, name, description string) (playlist.Created, error) {
	if strings.TrimSpace(name) == "" {
		return playlist.Created{}, ErrEmptyName
	}

	m.mu.Lock()
	if m.tracks == nil {
		m.mu.Unlock()
		return playlist.Created{}, ErrNoLibrary
	}
	if m.publishing {
		m.mu.Unlock()
		return playlist.Created{}, ErrPublishInProgress
	}
	if len(groupNames) == 0 {
		m.mu.Unlock()
		return playlist.Created{}, ErrEmptySelection
	}

	grouping := m.engine.Group(m.visibleLocked(""), mode, m.genres)

	seen := make(map[string]bool)
	var uris []string
	for _, groupName := range groupNames {
		groupTracks, ok := grouping.Get(groupName)
		if !ok {
			m.mu.Unlock()
			return playlist.Created{}, errors.Wrapf(ErrGroupNotFound, "group %q", groupName)
		}
		for _, uri := range track.URIs(groupTracks) {
			if !seen[uri] {
				seen[uri] = true
				uris = append(uris, uri)
			}
		}
	}
	if len(uris) == 0 {
		m.mu.Unlock()
		return playlist.Created{}, errors.Wrap(ErrEmptySelection, "selected groups have no visible tracks")
	}

	m.publishing = true
	m.mu.Unlock()
	defer m.endPublish()

	if strings.TrimSpace(description) == "" {
		description = m.namer.MergeDescription(groupNames)
	}

	created, err := m.creator.CreatePlaylist(ctx, name, description, uris)
	if err != nil {
		return playlist.Created{}, errors.Wrap(err, "failed to create merged playlist")
	}

	record := playlist.Created{GroupName: name, Playlist: *created}
	m.record(record)
	zlog.Info().Msgf("merged playlist created: name=%s groups=%d tracks=%d", created.Name, len(groupNames), len(uris))
	return record, nil
}

// beginPublish validates state, marks the session as publishing and
// returns the snapshot needed for the Spotify call.
func (m *Manager) beginPublish(mode organize.Mode, groupName string) (name, description string, uris []string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.tracks == nil {
		return "", "", nil, ErrNoLibrary
	}
	if m.publishing {
		return "", "", nil, ErrPublishInProgress
	}
	if _, found := playlist.Find(m.created, groupName); found {
		return "", "", nil, errors.Wrapf(ErrAlreadyCreated, "group %q", groupName)
	}

	tracks, ok := m.engine.Group(m.visibleLocked(""), mode, m.genres).Get(groupName)
	if !ok {
		return "", "", nil, errors.Wrapf(ErrGroupNotFound, "group %q", groupName)
	}

	m.publishing = true
	return m.namer.NameFor(mode, groupName), m.namer.Description(groupName, len(tracks)), track.URIs(tracks), nil
}

func (m *Manager) endPublish() {
	m.mu.Lock()
	m.publishing = false
	m.mu.Unlock()
}

func (m *Manager) record(c playlist.Created) {
	m.mu.Lock()
	m.created = append(m.created, c)
	m.mu.Unlock()
}
