package discovery

import (
	"testing"
)

func TestFilter_FilterByName(t *testing.T) {
	filter := NewFilter()

	tests := []struct {
		name     string
		files    []string
		pattern  string
		expected int
	}{
		{
			name:     "empty pattern returns all",
			files:    []string{"weather.json", "github.json", "notes.txt"},
			pattern:  "",
			expected: 3,
		},
		{
			name:     "glob matches extension",
			files:    []string{"weather.json", "github.json", "notes.txt"},
			pattern:  "*.json",
			expected: 2,
		},
		{
			name:     "loose wildcard matches substring",
			files:    []string{"weather.mcp.json", "github.json", "weather-backup.txt"},
			pattern:  "*weather*",
			expected: 2,
		},
		{
			name:     "plain pattern is a substring match",
			files:    []string{"weather.json", "github.json"},
			pattern:  "git",
			expected: 1,
		},
		{
			name:     "full path matches on base name",
			files:    []string{"/configs/weather/server.json", "/configs/github.json"},
			pattern:  "*weather*",
			expected: 0,
		},
		{
			name:     "multiple wildcards need every part",
			files:    []string{"weather.mcp.json", "weather.json", "mcp.json"},
			pattern:  "*weather*mcp*",
			expected: 1,
		},
		{
			name:     "question mark needs an exact glob match",
			files:    []string{"a1.json", "ab1.json"},
			pattern:  "a?.json",
			expected: 1,
		},
		{
			name:     "bare wildcard matches everything",
			files:    []string{"a.json", "b.txt"},
			pattern:  "*",
			expected: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := filter.FilterByName(tt.files, tt.pattern)
			if len(result) != tt.expected {
				t.Errorf("expected %d matches, got %d: %v", tt.expected, len(result), result)
			}
		})
	}
}

func TestFilter_FilterByName_EmptyList(t *testing.T) {
	result := NewFilter().FilterByName([]string{}, "*.json")
	if len(result) != 0 {
		t.Errorf("expected empty result, got %d items", len(result))
	}
}
