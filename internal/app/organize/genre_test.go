package organize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizer_Normalize(t *testing.T) {
	n := NewNormalizer(nil)

	tests := []struct {
		name     string
		input    []string
		expected string
	}{
		{
			name:     "exact match",
			input:    []string{"dance pop"},
			expected: "Pop",
		},
		{
			name:     "exact match is case-insensitive",
			input:    []string{"Dance Pop"},
			expected: "Pop",
		},
		{
			name:     "substring fallback after exact pass fails",
			input:    []string{"deep house party"},
			expected: "Electronic",
		},
		{
			name:     "first matching tag wins",
			input:    []string{"some unknown tag", "classic rock"},
			expected: "Rock",
		},
		{
			name:     "exact match beats substring within one tag",
			input:    []string{"k-pop"},
			expected: "K-Pop",
		},
		{
			name:     "no match returns first raw tag",
			input:    []string{"some unknown tag"},
			expected: "some unknown tag",
		},
		{
			name:     "empty input returns Other",
			input:    nil,
			expected: "Other",
		},
		{
			name:     "trap maps to Hip-Hop",
			input:    []string{"trap"},
			expected: "Hip-Hop",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, n.Normalize(tt.input))
		})
	}
}

func TestNormalizer_CustomTable(t *testing.T) {
	n := NewNormalizer([]GenreRule{
		{"shibuya-kei", "City Pop"},
		{"kei", "Visual Kei"},
	})

	// Exact match scans the whole table before any substring check runs,
	// so "shibuya-kei" never falls through to the broader "kei" rule.
	assert.Equal(t, "City Pop", n.Normalize([]string{"shibuya-kei"}))
	assert.Equal(t, "Visual Kei", n.Normalize([]string{"gothic kei"}))
}

func TestNormalizer_SubstringOrder(t *testing.T) {
	n := NewNormalizer(nil)

	// "rockabilly" has no exact match; the substring pass returns the first
	// rule in declaration order whose pattern it contains.
	assert.Equal(t, "Rock", n.Normalize([]string{"rockabilly"}))
}
