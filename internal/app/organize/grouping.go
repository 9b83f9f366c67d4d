package organize

import (
	"sort"

	"github.com/mks-o/spotify-organizer/internal/domain/track"
)

// Group is a named, ordered bucket of tracks. Tracks keep the relative order
// they had in the input list.
type Group struct {
	Name   string
	Tracks []track.Track
}

// Grouping is an ordered association of group name to tracks. It preserves
// key insertion order and supports an explicit re-sort step, so "insert in
// encounter order, then sort by a derived criterion" is a visible operation
// rather than a property of the underlying map.
type Grouping struct {
	groups []Group
	index  map[string]int
}

func newGrouping() *Grouping {
	return &Grouping{index: make(map[string]int)}
}

// seed pre-creates empty groups in the given order.
func (g *Grouping) seed(names ...string) {
	for _, name := range names {
		if _, ok := g.index[name]; ok {
			continue
		}
		g.index[name] = len(g.groups)
		g.groups = append(g.groups, Group{Name: name})
	}
}

// add appends a track to the named group, creating the group at the end of
// the order on first encounter.
func (g *Grouping) add(name string, t track.Track) {
	i, ok := g.index[name]
	if !ok {
		i = len(g.groups)
		g.index[name] = i
		g.groups = append(g.groups, Group{Name: name})
	}
	g.groups[i].Tracks = append(g.groups[i].Tracks, t)
}

// dropEmpty removes groups with no tracks.
func (g *Grouping) dropEmpty() {
	kept := g.groups[:0]
	for _, group := range g.groups {
		if len(group.Tracks) > 0 {
			kept = append(kept, group)
		}
	}
	g.groups = kept
	g.reindex()
}

// sortStable re-orders groups by the given comparison. The sort is stable so
// ties keep their insertion order.
func (g *Grouping) sortStable(less func(a, b Group) bool) {
	sort.SliceStable(g.groups, func(i, j int) bool {
		return less(g.groups[i], g.groups[j])
	})
	g.reindex()
}

func (g *Grouping) reindex() {
	g.index = make(map[string]int, len(g.groups))
	for i, group := range g.groups {
		g.index[group.Name] = i
	}
}

// Groups returns all groups in display order.
func (g *Grouping) Groups() []Group {
	return g.groups
}

// Get returns the tracks of the named group.
func (g *Grouping) Get(name string) ([]track.Track, bool) {
	i, ok := g.index[name]
	if !ok {
		return nil, false
	}
	return g.groups[i].Tracks, true
}

// Names returns the group names in display order.
func (g *Grouping) Names() []string {
	names := make([]string, len(g.groups))
	for i, group := range g.groups {
		names[i] = group.Name
	}
	return names
}

// Len returns the number of groups.
func (g *Grouping) Len() int {
	return len(g.groups)
}
