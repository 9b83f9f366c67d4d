package organize

import (
	"github.com/mks-o/spotify-organizer/internal/infra/config"
)

// NewNormalizerFromConfig creates a Normalizer from configuration. An
// empty rule section keeps the built-in table.
func NewNormalizerFromConfig(cfg *config.Config) *Normalizer {
	rules := make([]GenreRule, 0, len(cfg.Organize.GenreRules))
	for _, r := range cfg.Organize.GenreRules {
		rules = append(rules, GenreRule{Pattern: r.Pattern, Category: r.Category})
	}
	return NewNormalizer(rules)
}

// NewEngineFromConfig creates an Engine from configuration.
func NewEngineFromConfig(cfg *config.Config) *Engine {
	return NewEngine(Config{
		Moods:       cfg.Organize.Moods,
		MoodBuckets: cfg.Organize.MoodBuckets,
	})
}

// NewNamerFromConfig creates a Namer from configuration.
func NewNamerFromConfig(cfg *config.Config) *Namer {
	return NewNamer(NamerConfig{Emoji: cfg.Organize.Emoji})
}
