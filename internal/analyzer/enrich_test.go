package analyzer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lotas/tabmon/internal/types"
)

var testNow = time.UnixMilli(1_700_000_000_000)

func TestEnrichDerivesFields(t *testing.T) {
	windows := []types.RawWindow{{ID: 7, Type: types.WindowPopup}}
	raw := types.RawTab{
		ID:           3,
		URL:          "https://github.com/user/repo",
		WindowID:     7,
		Status:       types.StatusLoading,
		Audible:      true,
		Muted:        true,
		GroupID:      12,
		LastAccessed: testNow.Add(-300000 * time.Millisecond),
	}

	tab := Enrich(raw, windows, testNow)

	assert.Equal(t, "github.com", tab.Domain)
	assert.Equal(t, "5m ago", tab.IdleText)
	assert.True(t, tab.IdleKnown)
	assert.Equal(t, 5*time.Minute, tab.Idle)
	assert.True(t, tab.IsLoading)
	assert.False(t, tab.IsComplete)
	assert.True(t, tab.HasAudio)
	assert.True(t, tab.IsMuted)
	assert.True(t, tab.IsGrouped)
	assert.Equal(t, types.WindowPopup, tab.WindowType)
	assert.Equal(t, raw, tab.RawTab)
}

func TestEnrichOtherStatusKeepsFields(t *testing.T) {
	windows := []types.RawWindow{{ID: 1, Type: types.WindowPopup}}
	for _, status := range []types.LoadStatus{types.StatusUnloaded, "exploded"} {
		raw := types.RawTab{
			ID:           4,
			URL:          "https://github.com/user/repo",
			WindowID:     1,
			Status:       status,
			GroupID:      3,
			LastAccessed: testNow.Add(-5 * time.Minute),
		}

		res := derive(raw, windows, testNow)
		require.NoError(t, res.err, "status %q", status)

		tab := Enrich(raw, windows, testNow)
		assert.Equal(t, "github.com", tab.Domain)
		assert.Equal(t, "5m ago", tab.IdleText)
		assert.True(t, tab.IsGrouped)
		assert.Equal(t, types.WindowPopup, tab.WindowType)
		assert.False(t, tab.IsLoading)
		assert.False(t, tab.IsComplete)
	}
}

func TestEnrichGroupSentinels(t *testing.T) {
	for _, id := range []int{0, types.UngroupedID} {
		tab := Enrich(types.RawTab{ID: 1, GroupID: id}, nil, testNow)
		assert.False(t, tab.IsGrouped, "group id %d", id)
	}
}

func TestEnrichMissingWindowDefaultsToNormal(t *testing.T) {
	tab := Enrich(types.RawTab{ID: 1, WindowID: 99}, []types.RawWindow{{ID: 1, Type: types.WindowDevtools}}, testNow)
	assert.Equal(t, types.WindowNormal, tab.WindowType)
	assert.Equal(t, "Unknown", tab.IdleText)
	assert.False(t, tab.IdleKnown)
	assert.Equal(t, "Unknown", tab.Domain)
}

func TestEnrichMalformedTabFallsBack(t *testing.T) {
	raws := []types.RawTab{
		{ID: -1, URL: "https://example.com", Status: types.StatusLoading, GroupID: 4},
	}
	for _, raw := range raws {
		res := derive(raw, nil, testNow)
		require.Error(t, res.err)
		var ee *EnrichError
		require.ErrorAs(t, res.err, &ee)
		assert.Equal(t, raw.ID, ee.TabID)

		tab := Enrich(raw, nil, testNow)
		assert.Equal(t, "Unknown", tab.Domain)
		assert.Equal(t, "Unknown", tab.IdleText)
		assert.False(t, tab.IsLoading)
		assert.False(t, tab.IsGrouped)
		assert.Equal(t, raw.ID, tab.ID)
	}
}

func TestEnrichAllNeverDropsTabs(t *testing.T) {
	raws := []types.RawTab{
		{ID: 1, URL: "chrome://settings", Status: types.StatusComplete},
		{ID: -5, Status: "bogus"},
		{ID: 2},
	}
	tabs := EnrichAll(raws, nil, testNow)
	require.Len(t, tabs, len(raws))
	for _, tab := range tabs {
		assert.NotEmpty(t, tab.Domain)
		assert.NotEmpty(t, tab.IdleText)
		assert.NotEmpty(t, tab.WindowType)
	}
	assert.Equal(t, "Chrome", tabs[0].Domain)
}

func TestAnalyze(t *testing.T) {
	snap := &types.Snapshot{
		Windows: []types.RawWindow{{ID: 1}},
		Tabs: []types.RawTab{
			{ID: 1, URL: "https://a.example/x", WindowID: 1},
			{ID: 2, URL: "https://a.example/x#top", WindowID: 1, Audible: true},
		},
	}
	tabs, stats := Analyze(snap, testNow)
	require.Len(t, tabs, 2)
	assert.True(t, tabs[0].IsDuplicate)
	assert.Equal(t, 2, stats.DuplicateTabs)
	assert.Equal(t, 1, stats.AudibleTabs)
	assert.Equal(t, 1, stats.TotalWindows)

	tabs, stats = Analyze(nil, testNow)
	assert.Nil(t, tabs)
	assert.Zero(t, stats.TotalTabs)
}
