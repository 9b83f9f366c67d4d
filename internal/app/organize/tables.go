package organize

// Built-in lookup tables. All of them are defaults only: callers construct
// Normalizer, Engine and Namer with their own tables to change behavior.

// DefaultGenreRules returns the built-in genre normalization table.
// Declaration order matters: the substring pass scans rules in this order
// and returns the first hit.
func DefaultGenreRules() []GenreRule {
	return []GenreRule{
		// Pop
		{"pop", "Pop"},
		{"dance pop", "Pop"},
		{"electro pop", "Pop"},
		{"indie pop", "Pop"},
		{"synth-pop", "Pop"},
		{"k-pop", "K-Pop"},
		{"j-pop", "J-Pop"},
		{"mandopop", "Mandopop"},
		{"c-pop", "C-Pop"},
		{"cantopop", "Cantopop"},

		// Rock
		{"rock", "Rock"},
		{"alternative rock", "Rock"},
		{"indie rock", "Rock"},
		{"classic rock", "Rock"},
		{"hard rock", "Rock"},
		{"punk rock", "Rock"},
		{"post-rock", "Rock"},

		// Electronic
		{"edm", "Electronic"},
		{"electronic", "Electronic"},
		{"house", "Electronic"},
		{"techno", "Electronic"},
		{"trance", "Trance"},
		{"dubstep", "Electronic"},
		{"drum and bass", "Electronic"},

		// Hip-Hop
		{"hip hop", "Hip-Hop"},
		{"rap", "Hip-Hop"},
		{"trap", "Hip-Hop"},

		// R&B
		{"r&b", "R&B"},
		{"soul", "R&B"},

		// Jazz
		{"jazz", "Jazz"},

		// Classical
		{"classical", "Classical"},
		{"orchestra", "Classical"},

		// Metal
		{"metal", "Metal"},
		{"heavy metal", "Metal"},
		{"death metal", "Metal"},

		// Country
		{"country", "Country"},

		// Anime / Game
		{"anime", "Anime"},
		{"video game music", "Game"},
		{"game", "Game"},
	}
}

// DefaultMoodTable returns the built-in genre category to mood mapping.
// Mood is inferred from genre because the Spotify audio features endpoint
// is no longer available.
func DefaultMoodTable() map[string]string {
	return map[string]string{
		"Pop":        MoodHighEnergy,
		"Dance":      MoodHighEnergy,
		"Electronic": MoodHighEnergy,
		"Techno":     MoodHighEnergy,
		"Trance":     MoodHighEnergy,
		"House":      MoodHighEnergy,
		"Hip-Hop":    MoodHighEnergy,
		"Trap":       MoodHighEnergy,
		"Rock":       MoodHighEnergy,
		"Metal":      MoodHighEnergy,
		"Punk":       MoodHighEnergy,

		"R&B":       MoodChillVibe,
		"Soul":      MoodChillVibe,
		"Jazz":      MoodChillVibe,
		"Vaporwave": MoodChillVibe,
		"Lo-fi":     MoodChillVibe,
		"Ambient":   MoodChillVibe,
		"Country":   MoodChillVibe,
		"Folk":      MoodChillVibe,
		"Acoustic":  MoodChillVibe,

		"Classical": MoodCalmFocus,

		"Indie":       MoodCoolAlternative,
		"Alternative": MoodCoolAlternative,

		"Anime": MoodGeekFun,
		"Game":  MoodGeekFun,
	}
}

// DefaultMoodBuckets returns the candidate mood buckets in display order.
// Buckets that end up empty after assignment are dropped from the result.
func DefaultMoodBuckets() []string {
	return []string{
		MoodHighEnergy,
		MoodChillVibe,
		MoodCalmFocus,
		MoodCoolAlternative,
		MoodGeekFun,
		CategoryOther,
	}
}

// DefaultEmojiTable returns the built-in group name to emoji mapping used
// for playlist naming.
func DefaultEmojiTable() map[string]string {
	return map[string]string{
		// Decades
		"2020's": "🔮",
		"2010's": "🔥",
		"2000's": "💿",
		"1990's": "📼",
		"1980's": "🕹️",
		"1970's": "🕺",
		"1960's": "☮️",

		// Genres
		"Pop":        "🍭",
		"Rock":       "🎸",
		"Hip-Hop":    "🎤",
		"Electronic": "⚡",
		"Jazz":       "🎷",
		"R&B":        "🌹",
		"Classical":  "🎻",
		"Metal":      "🤘",
		"Country":    "🤠",
		"K-Pop":      "🇰🇷",
		"J-Pop":      "🇯🇵",
		"Anime":      "🏯",
		"Game":       "🎮",
		"Other":      "🎶",

		// Moods
		MoodHighEnergy:      "🔥",
		MoodChillVibe:       "☕",
		MoodCalmFocus:       "🎧",
		MoodCoolAlternative: "🕶️",
		MoodGeekFun:         "👾",
	}
}
