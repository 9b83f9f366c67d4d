package organize

import (
	"fmt"
	"strings"
	"time"
)

// DefaultEmoji is used for group names absent from the emoji table.
const DefaultEmoji = "🎵"

// BulkDescription is the uniform description applied by the bulk-create path.
const BulkDescription = "Bulk created via Spotify Organizer"

// NamerConfig holds the Namer's lookup table and clock. Zero values select
// the built-in emoji table and the system clock.
type NamerConfig struct {
	Emoji map[string]string
	Now   func() time.Time
}

// Namer derives deterministic playlist names and descriptions for a
// group-to-playlist conversion.
type Namer struct {
	emoji map[string]string
	now   func() time.Time
}

// NewNamer creates a Namer.
func NewNamer(cfg NamerConfig) *Namer {
	if cfg.Emoji == nil {
		cfg.Emoji = DefaultEmojiTable()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Namer{emoji: cfg.Emoji, now: cfg.Now}
}

// NameFor returns the display name for a playlist created from the given
// group under the given grouping mode, e.g. "🎸 Best of Rock (2024-05-01)".
func (n *Namer) NameFor(mode Mode, groupName string) string {
	emoji, ok := n.emoji[groupName]
	if !ok {
		emoji = DefaultEmoji
	}
	date := n.now().Format("2006-01-02")

	switch mode {
	case ModeDecade:
		return fmt.Sprintf("%s %s Collection (%s)", emoji, groupName, date)
	case ModeMood:
		return fmt.Sprintf("%s %s Mix (%s)", emoji, groupName, date)
	default:
		return fmt.Sprintf("%s Best of %s (%s)", emoji, groupName, date)
	}
}

// Description returns the default playlist description for a group.
func (n *Namer) Description(groupName string, trackCount int) string {
	return fmt.Sprintf("This playlist contains %d %s highlights. Auto-generated by Spotify Organizer.", trackCount, groupName)
}

// MergeName returns the suggested name for a merge of the given groups.
func (n *Namer) MergeName(groupNames []string) string {
	return fmt.Sprintf("%s %s Mix", DefaultEmoji, strings.Join(groupNames, " + "))
}

// MergeDescription returns the suggested description for a merge.
func (n *Namer) MergeDescription(groupNames []string) string {
	return fmt.Sprintf("Merged playlist: %s", strings.Join(groupNames, ", "))
}
