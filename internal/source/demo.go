package source

import (
	"slices"
	"sync"
	"time"

	"github.com/lotas/tabmon/internal/types"
)

// Demo returns the fixed illustrative snapshot served when no browser API is
// available. Access times are relative to now.
func Demo(now time.Time) *types.Snapshot {
	tabs := []types.RawTab{
		{
			ID:           1,
			Title:        "Example Tab 1 - A very long title that might wrap to multiple lines",
			URL:          "https://example.com/some/long/path",
			FavIconURL:   "https://example.com/favicon.ico",
			WindowID:     1,
			Active:       true,
			Status:       types.StatusComplete,
			LastAccessed: now.Add(-5 * time.Minute),
			Index:        0,
			GroupID:      types.UngroupedID,
		},
		{
			ID:           2,
			Title:        "Google Search Results",
			URL:          "https://google.com/search?q=chrome+extension",
			FavIconURL:   "https://google.com/favicon.ico",
			WindowID:     1,
			Pinned:       true,
			Audible:      true,
			Status:       types.StatusComplete,
			LastAccessed: now.Add(-30 * time.Minute),
			Index:        1,
			GroupID:      types.UngroupedID,
		},
		{
			ID:           3,
			Title:        "GitHub Repository",
			URL:          "https://github.com/user/repo",
			FavIconURL:   "https://github.com/favicon.ico",
			WindowID:     2,
			Muted:        true,
			Status:       types.StatusLoading,
			LastAccessed: now.Add(-2 * time.Hour),
			Index:        0,
			GroupID:      1,
		},
	}
	windows := []types.RawWindow{
		{ID: 1, Type: types.WindowNormal, Focused: true, Tabs: append([]types.RawTab(nil), tabs[:2]...)},
		{ID: 2, Type: types.WindowNormal, Tabs: append([]types.RawTab(nil), tabs[2:]...)},
	}
	return &types.Snapshot{
		Windows:   windows,
		Tabs:      tabs,
		Live:      false,
		Source:    "demo",
		FetchedAt: now,
	}
}

// demoState is the snapshot served in demo mode. Mutations change it in
// memory, so a closed demo tab stays closed until the process exits.
type demoState struct {
	mu   sync.Mutex
	snap *types.Snapshot
}

func (d *demoState) fetch(now time.Time) *types.Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.snap == nil {
		d.snap = Demo(now)
	}
	out := &types.Snapshot{
		Tabs:      slices.Clone(d.snap.Tabs),
		Live:      false,
		Source:    d.snap.Source,
		FetchedAt: now,
	}
	for _, w := range d.snap.Windows {
		w.Tabs = slices.Clone(w.Tabs)
		out.Windows = append(out.Windows, w)
	}
	return out
}

func (d *demoState) apply(op string, ids []int, now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.snap == nil {
		d.snap = Demo(now)
	}
	switch op {
	case "activate":
		for _, id := range ids {
			d.activate(id, now)
		}
	default:
		gone := make(map[int]bool, len(ids))
		for _, id := range ids {
			gone[id] = true
		}
		drop := func(t types.RawTab) bool { return gone[t.ID] }
		d.snap.Tabs = slices.DeleteFunc(d.snap.Tabs, drop)
		for i := range d.snap.Windows {
			d.snap.Windows[i].Tabs = slices.DeleteFunc(d.snap.Windows[i].Tabs, drop)
		}
	}
}

func (d *demoState) activate(id int, now time.Time) {
	windowID := -1
	for _, t := range d.snap.Tabs {
		if t.ID == id {
			windowID = t.WindowID
		}
	}
	if windowID < 0 {
		return
	}
	set := func(tabs []types.RawTab) {
		for i := range tabs {
			if tabs[i].WindowID != windowID {
				continue
			}
			tabs[i].Active = tabs[i].ID == id
			if tabs[i].ID == id {
				tabs[i].LastAccessed = now
			}
		}
	}
	set(d.snap.Tabs)
	for i := range d.snap.Windows {
		set(d.snap.Windows[i].Tabs)
	}
}
