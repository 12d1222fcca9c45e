// Package aggregate groups enriched tabs by window, orders windows and
// sorts or filters tabs for display.
package aggregate

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/lotas/tabmon/internal/types"
)

// Group partitions tabs by window. A tab whose window is not in windows gets
// a placeholder window (normal, unfocused), so every tab lands in exactly one
// group. Tabs keep their input order. Windows without tabs are kept.
func Group(tabs []types.EnrichedTab, windows []types.RawWindow) []types.WindowGroup {
	index := make(map[int]int, len(windows))
	groups := make([]types.WindowGroup, 0, len(windows))
	for _, w := range windows {
		if _, dup := index[w.ID]; dup {
			continue
		}
		index[w.ID] = len(groups)
		groups = append(groups, types.WindowGroup{Window: w})
	}

	for _, tab := range tabs {
		i, ok := index[tab.WindowID]
		if !ok {
			i = len(groups)
			index[tab.WindowID] = i
			groups = append(groups, types.WindowGroup{Window: Placeholder(tab.WindowID)})
		}
		groups[i].Tabs = append(groups[i].Tabs, tab)
	}

	OrderWindows(groups)
	return groups
}

// Placeholder is the window used for tabs that reference an unknown window.
func Placeholder(id int) types.RawWindow {
	return types.RawWindow{ID: id, Type: types.WindowNormal}
}

// OrderWindows sorts groups in place: the focused window first, then by
// ascending window ID.
func OrderWindows(groups []types.WindowGroup) {
	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i].Window, groups[j].Window
		if a.Focused != b.Focused {
			return a.Focused
		}
		return a.ID < b.ID
	})
}

// ParseSortKey parses a sort key name. Matching is case-insensitive and
// accepts a few aliases.
func ParseSortKey(s string) (types.SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lastactive", "last-active", "recent", "idle":
		return types.SortLastActive, nil
	case "title":
		return types.SortTitle, nil
	case "domain":
		return types.SortDomain, nil
	case "position", "index":
		return types.SortPosition, nil
	}
	return "", fmt.Errorf("unknown sort key %q (want one of lastActive, title, domain, position)", s)
}

// Next returns the sort key after k in SortKeys, wrapping around.
func Next(k types.SortKey) types.SortKey {
	i := slices.Index(types.SortKeys, k)
	return types.SortKeys[(i+1)%len(types.SortKeys)]
}

// Sort returns a sorted copy of tabs. The input is not modified and ties
// keep their input order.
//
//	lastActive  most recent first; unknown last-access counts as the epoch
//	title       case-insensitive ascending
//	domain      case-insensitive ascending
//	position    ascending tab index
func Sort(tabs []types.EnrichedTab, key types.SortKey) []types.EnrichedTab {
	out := slices.Clone(tabs)
	var less func(a, b *types.EnrichedTab) bool
	switch key {
	case types.SortTitle:
		less = func(a, b *types.EnrichedTab) bool {
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		}
	case types.SortDomain:
		less = func(a, b *types.EnrichedTab) bool {
			return strings.ToLower(a.Domain) < strings.ToLower(b.Domain)
		}
	case types.SortPosition:
		less = func(a, b *types.EnrichedTab) bool {
			return a.Index < b.Index
		}
	default:
		less = func(a, b *types.EnrichedTab) bool {
			return lastAccessMillis(a) > lastAccessMillis(b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return less(&out[i], &out[j]) })
	return out
}

func lastAccessMillis(t *types.EnrichedTab) int64 {
	if t.LastAccessed.IsZero() {
		return 0
	}
	return t.LastAccessed.UnixMilli()
}

// SortGroups returns a copy of groups with each window's tabs sorted by its
// entry in perWindow, or by fallback when it has none. An empty fallback
// means lastActive.
func SortGroups(groups []types.WindowGroup, perWindow map[int]types.SortKey, fallback types.SortKey) []types.WindowGroup {
	if fallback == "" {
		fallback = types.SortLastActive
	}
	out := make([]types.WindowGroup, len(groups))
	for i, g := range groups {
		key, ok := perWindow[g.Window.ID]
		if !ok {
			key = fallback
		}
		out[i] = types.WindowGroup{Window: g.Window, Tabs: Sort(g.Tabs, key)}
	}
	return out
}

// Flatten concatenates group tabs in group order.
func Flatten(groups []types.WindowGroup) []types.EnrichedTab {
	var out []types.EnrichedTab
	for _, g := range groups {
		out = append(out, g.Tabs...)
	}
	return out
}

// WindowTitle is the header label for a window.
func WindowTitle(w types.RawWindow) string {
	switch {
	case w.Type == types.WindowPopup:
		return "Popup Window"
	case w.Type == types.WindowDevtools:
		return "DevTools Window"
	case w.Incognito:
		return "Incognito Window"
	case w.Focused:
		return "Main Window (Active)"
	default:
		return "Window"
	}
}
