package aggregate

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lotas/tabmon/internal/types"
)

func tab(id, windowID int, title string) types.EnrichedTab {
	return types.EnrichedTab{RawTab: types.RawTab{ID: id, WindowID: windowID, Title: title}}
}

func ids(tabs []types.EnrichedTab) []int {
	out := make([]int, len(tabs))
	for i, t := range tabs {
		out[i] = t.ID
	}
	return out
}

func windowIDs(groups []types.WindowGroup) []int {
	out := make([]int, len(groups))
	for i, g := range groups {
		out[i] = g.Window.ID
	}
	return out
}

func TestGroupFocusedWindowFirst(t *testing.T) {
	windows := []types.RawWindow{
		{ID: 2, Type: types.WindowNormal},
		{ID: 5, Type: types.WindowNormal, Focused: true},
	}
	tabs := []types.EnrichedTab{tab(1, 2, "a"), tab(2, 5, "b")}

	groups := Group(tabs, windows)
	assert.Equal(t, []int{5, 2}, windowIDs(groups))

	// Input order does not matter.
	groups = Group(tabs, []types.RawWindow{windows[1], windows[0]})
	assert.Equal(t, []int{5, 2}, windowIDs(groups))
}

func TestGroupSynthesizesMissingWindow(t *testing.T) {
	windows := []types.RawWindow{{ID: 1, Focused: true}}
	tabs := []types.EnrichedTab{tab(1, 1, "a"), tab(2, 9, "orphan"), tab(3, 9, "orphan 2")}

	groups := Group(tabs, windows)
	require.Len(t, groups, 2)
	assert.Equal(t, 9, groups[1].Window.ID)
	assert.Equal(t, types.WindowNormal, groups[1].Window.Type)
	assert.False(t, groups[1].Window.Focused)
	assert.Equal(t, []int{2, 3}, ids(groups[1].Tabs))
}

func TestGroupNeverDropsTabs(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for round := 0; round < 200; round++ {
		var windows []types.RawWindow
		nw := rng.Intn(5)
		for id := 1; id <= nw; id++ {
			windows = append(windows, types.RawWindow{ID: id, Focused: rng.Intn(3) == 0})
		}
		var tabs []types.EnrichedTab
		n := rng.Intn(30)
		for i := 0; i < n; i++ {
			tabs = append(tabs, tab(i, rng.Intn(8), "t"))
		}

		groups := Group(tabs, windows)
		total := 0
		for _, g := range groups {
			total += len(g.Tabs)
			for _, tb := range g.Tabs {
				assert.Equal(t, g.Window.ID, tb.WindowID)
			}
		}
		require.Equal(t, len(tabs), total, "round %d", round)

		for i := 1; i < len(groups); i++ {
			a, b := groups[i-1].Window, groups[i].Window
			if a.Focused != b.Focused {
				assert.True(t, a.Focused, "round %d: focused window must come first", round)
			} else {
				assert.Less(t, a.ID, b.ID, "round %d", round)
			}
		}
	}
}

func TestSortTitleIsStableAndIdempotent(t *testing.T) {
	tabs := []types.EnrichedTab{
		tab(1, 1, "beta"),
		tab(2, 1, "Alpha"),
		tab(3, 1, "alpha"),
		tab(4, 1, "BETA"),
	}
	original := ids(tabs)

	sorted := Sort(tabs, types.SortTitle)
	assert.Equal(t, []int{2, 3, 1, 4}, ids(sorted))
	assert.Equal(t, ids(sorted), ids(Sort(sorted, types.SortTitle)))
	assert.Equal(t, original, ids(tabs), "input must not be reordered")
}

func TestSortLastActive(t *testing.T) {
	now := time.Now()
	a := tab(1, 1, "a")
	a.LastAccessed = now.Add(-time.Hour)
	b := tab(2, 1, "b")
	b.LastAccessed = now
	c := tab(3, 1, "c") // never accessed
	d := tab(4, 1, "d") // never accessed

	assert.Equal(t, []int{2, 1, 3, 4}, ids(Sort([]types.EnrichedTab{c, a, d, b}, types.SortLastActive)))
	assert.Equal(t, []int{2, 1, 3, 4}, ids(Sort([]types.EnrichedTab{c, a, d, b}, "")))
}

func TestSortDomainAndPosition(t *testing.T) {
	x := tab(1, 1, "x")
	x.Domain, x.Index = "github.com", 2
	y := tab(2, 1, "y")
	y.Domain, y.Index = "Apple.com", 0
	z := tab(3, 1, "z")
	z.Domain, z.Index = "b.org", 1

	in := []types.EnrichedTab{x, y, z}
	assert.Equal(t, []int{2, 3, 1}, ids(Sort(in, types.SortDomain)))
	assert.Equal(t, []int{2, 3, 1}, ids(Sort(in, types.SortPosition)))
}

func TestSortGroupsPerWindowKey(t *testing.T) {
	groups := []types.WindowGroup{
		{Window: types.RawWindow{ID: 1}, Tabs: []types.EnrichedTab{tab(1, 1, "b"), tab(2, 1, "a")}},
		{Window: types.RawWindow{ID: 2}, Tabs: []types.EnrichedTab{tab(3, 2, "b"), tab(4, 2, "a")}},
	}
	sorted := SortGroups(groups, map[int]types.SortKey{2: types.SortTitle}, "")

	assert.Equal(t, []int{1, 2}, ids(sorted[0].Tabs), "unset window defaults to lastActive, all ties")
	assert.Equal(t, []int{4, 3}, ids(sorted[1].Tabs))
	assert.Equal(t, []int{3, 4}, ids(groups[1].Tabs), "input groups untouched")
}

func TestParseSortKey(t *testing.T) {
	for in, want := range map[string]types.SortKey{
		"":           types.SortLastActive,
		"lastActive": types.SortLastActive,
		"TITLE":      types.SortTitle,
		"domain":     types.SortDomain,
		"index":      types.SortPosition,
	} {
		got, err := ParseSortKey(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseSortKey("size")
	assert.Error(t, err)
}

func TestNextCyclesKeys(t *testing.T) {
	k := types.SortLastActive
	for range types.SortKeys {
		k = Next(k)
	}
	assert.Equal(t, types.SortLastActive, k)
	assert.Equal(t, types.SortTitle, Next(types.SortLastActive))
}

func TestWindowTitle(t *testing.T) {
	assert.Equal(t, "Popup Window", WindowTitle(types.RawWindow{Type: types.WindowPopup, Focused: true}))
	assert.Equal(t, "DevTools Window", WindowTitle(types.RawWindow{Type: types.WindowDevtools}))
	assert.Equal(t, "Incognito Window", WindowTitle(types.RawWindow{Type: types.WindowNormal, Incognito: true}))
	assert.Equal(t, "Main Window (Active)", WindowTitle(types.RawWindow{Type: types.WindowNormal, Focused: true}))
	assert.Equal(t, "Window", WindowTitle(types.RawWindow{Type: types.WindowNormal}))
}

func TestFlatten(t *testing.T) {
	groups := []types.WindowGroup{
		{Tabs: []types.EnrichedTab{tab(1, 1, "a")}},
		{},
		{Tabs: []types.EnrichedTab{tab(2, 2, "b"), tab(3, 2, "c")}},
	}
	assert.Equal(t, []int{1, 2, 3}, ids(Flatten(groups)))
}
