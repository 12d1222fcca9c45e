package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lotas/tabmon/internal/types"
)

func TestAnalyzeDuplicates(t *testing.T) {
	urls := []string{
		"https://example.com/page#section1",
		"https://example.com/page#section2",
		"https://example.com/other",
		"https://example.com/page?b=2&a=1",
		"https://example.com/page?a=1&b=2",
		"",
		"",
	}
	tabs := make([]types.EnrichedTab, len(urls))
	for i, u := range urls {
		tabs[i].URL = u
	}

	AnalyzeDuplicates(tabs)

	want := []bool{true, true, false, true, true, false, false}
	for i, w := range want {
		assert.Equal(t, w, tabs[i].IsDuplicate, "tab %d (%q)", i, urls[i])
	}
}

func TestAnalyzeDuplicatesClearsStaleMarks(t *testing.T) {
	tabs := []types.EnrichedTab{
		{RawTab: types.RawTab{URL: "https://a.example"}, IsDuplicate: true},
	}
	AnalyzeDuplicates(tabs)
	assert.False(t, tabs[0].IsDuplicate, "single tab should not stay marked as duplicate")
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"https://example.com/page#section", "https://example.com/page"},
		{"https://example.com/page/", "https://example.com/page"},
		{"https://example.com/page?b=2&a=1", "https://example.com/page?a=1&b=2"},
		{"https://example.com", "https://example.com"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, NormalizeURL(tt.input), "NormalizeURL(%q)", tt.input)
	}
}
