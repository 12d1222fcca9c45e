package analyzer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lotas/tabmon/internal/types"
)

func TestAnalyzeStale(t *testing.T) {
	raws := []types.RawTab{
		{ID: 1, URL: "https://fresh.com", LastAccessed: testNow.Add(-1 * time.Hour)},
		{ID: 2, URL: "https://stale.com", LastAccessed: testNow.Add(-10 * 24 * time.Hour)},
		{ID: 3, URL: "https://very-stale.com", LastAccessed: testNow.Add(-30 * 24 * time.Hour)},
		{ID: 4, URL: "https://unknown.com"},
	}
	tabs := EnrichAll(raws, nil, testNow)

	AnalyzeStale(tabs, 7*24*time.Hour)

	assert.False(t, tabs[0].IsStale, "fresh tab")
	assert.True(t, tabs[1].IsStale, "10-day tab")
	assert.Equal(t, 10, tabs[1].StaleDays)
	assert.True(t, tabs[2].IsStale, "30-day tab")
	assert.False(t, tabs[3].IsStale, "tab without last access")
}

func TestAnalyzeStaleClearsOldMarks(t *testing.T) {
	tabs := []types.EnrichedTab{{IsStale: true, StaleDays: 9, Idle: time.Minute, IdleKnown: true}}
	AnalyzeStale(tabs, StaleAfter)
	assert.False(t, tabs[0].IsStale)
	assert.Zero(t, tabs[0].StaleDays)
}
