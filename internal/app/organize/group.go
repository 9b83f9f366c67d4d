package organize

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/mks-o/spotify-organizer/internal/domain/track"
)

// Mode selects which partition function applies to the track list.
type Mode string

const (
	ModeDecade Mode = "decade"
	ModeGenre  Mode = "genre"
	ModeMood   Mode = "mood"
)

// ParseMode parses a grouping mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeDecade, ModeGenre, ModeMood:
		return Mode(s), nil
	}
	return "", errors.Newf("unknown grouping mode: %q", s)
}

// DecadeUnknown is the bucket for tracks whose release year cannot be
// parsed. It always sorts last.
const DecadeUnknown = "Unknown"

// Mood bucket names.
const (
	MoodHighEnergy      = "High Energy"
	MoodChillVibe       = "Chill/Vibe"
	MoodCalmFocus       = "Calm/Focus"
	MoodCoolAlternative = "Cool/Alternative"
	MoodGeekFun         = "Geek/Fun"
)

// GenreMap maps an artist ID to its canonical genre category. It is an
// immutable snapshot for the duration of a grouping computation.
type GenreMap map[string]string

// Config holds the Engine's lookup tables. Zero values select the built-in
// defaults.
type Config struct {
	Moods       map[string]string // canonical genre -> mood bucket
	MoodBuckets []string          // candidate buckets in display order
}

// Engine partitions a track list into named groups by decade, genre or mood.
type Engine struct {
	moods   map[string]string
	buckets []string
}

// NewEngine creates a grouping engine.
func NewEngine(cfg Config) *Engine {
	if cfg.Moods == nil {
		cfg.Moods = DefaultMoodTable()
	}
	if len(cfg.MoodBuckets) == 0 {
		cfg.MoodBuckets = DefaultMoodBuckets()
	}
	return &Engine{moods: cfg.Moods, buckets: cfg.MoodBuckets}
}

// InferMood returns the mood bucket for a track's primary artist.
// Unmapped artists and unmapped genres both resolve to "Other".
func (e *Engine) InferMood(artistID string, genres GenreMap) string {
	genre, ok := genres[artistID]
	if !ok {
		genre = CategoryOther
	}
	if mood, ok := e.moods[genre]; ok {
		return mood
	}
	return CategoryOther
}

// Group partitions tracks by the given mode. The genres map is only
// consulted for ModeGenre and ModeMood. Tracks keep their input order
// within each group; the result is a fresh value on every call.
func (e *Engine) Group(tracks []track.Track, mode Mode, genres GenreMap) *Grouping {
	switch mode {
	case ModeGenre:
		return e.groupByGenre(tracks, genres)
	case ModeMood:
		return e.groupByMood(tracks, genres)
	default:
		return e.groupByDecade(tracks)
	}
}

func (e *Engine) groupByDecade(tracks []track.Track) *Grouping {
	g := newGrouping()
	for _, t := range tracks {
		g.add(decadeName(t), t)
	}
	// Most recent decade first, Unknown always last.
	g.sortStable(func(a, b Group) bool {
		return decadeOf(a.Name) > decadeOf(b.Name)
	})
	return g
}

func (e *Engine) groupByGenre(tracks []track.Track, genres GenreMap) *Grouping {
	g := newGrouping()
	for _, t := range tracks {
		category := CategoryOther
		if primary, ok := t.PrimaryArtist(); ok {
			if mapped, ok := genres[primary.ID]; ok && mapped != "" {
				category = mapped
			}
		}
		g.add(category, t)
	}
	g.sortStable(byMemberCountDesc)
	return g
}

func (e *Engine) groupByMood(tracks []track.Track, genres GenreMap) *Grouping {
	g := newGrouping()
	g.seed(e.buckets...)

	for _, t := range tracks {
		mood := CategoryOther
		if primary, ok := t.PrimaryArtist(); ok {
			mood = e.InferMood(primary.ID, genres)
		}
		// Moods outside the candidate buckets fall into Other.
		if _, ok := g.index[mood]; !ok {
			mood = CategoryOther
		}
		g.add(mood, t)
	}

	g.dropEmpty()
	g.sortStable(byMemberCountDesc)
	return g
}

func byMemberCountDesc(a, b Group) bool {
	return len(a.Tracks) > len(b.Tracks)
}

// decadeName formats a track's release decade, e.g. "1990's".
func decadeName(t track.Track) string {
	year, ok := t.ReleaseYear()
	if !ok {
		return DecadeUnknown
	}
	return fmt.Sprintf("%d's", year/10*10)
}

// decadeOf is the inverse of decadeName for sorting purposes.
func decadeOf(name string) int {
	if name == DecadeUnknown {
		return math.MinInt
	}
	n, err := strconv.Atoi(strings.TrimSuffix(name, "'s"))
	if err != nil {
		return math.MinInt
	}
	return n
}
