package aggregate

import (
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"github.com/sahilm/fuzzy"

	"github.com/lotas/tabmon/internal/types"
)

const globMeta = "*?[{"

// IsGlob reports whether query should be matched as a glob.
func IsGlob(query string) bool {
	return strings.ContainsAny(query, globMeta)
}

// Filter keeps the tabs matching query, in input order.
//
// A query with glob metacharacters ("*.github.com", "docs.{go,rust}*") is
// matched against the domain and the URL. Anything else is a fuzzy match over
// "title domain". An empty query keeps every tab. A glob that does not compile
// falls back to fuzzy matching.
func Filter(tabs []types.EnrichedTab, query string) []types.EnrichedTab {
	query = strings.TrimSpace(query)
	if query == "" {
		return tabs
	}
	if IsGlob(query) {
		if g, err := glob.Compile(strings.ToLower(query)); err == nil {
			var out []types.EnrichedTab
			for _, t := range tabs {
				if g.Match(strings.ToLower(t.Domain)) || g.Match(strings.ToLower(t.URL)) {
					out = append(out, t)
				}
			}
			return out
		}
	}

	matches := fuzzy.FindFrom(query, haystack(tabs))
	idx := make([]int, 0, len(matches))
	for _, m := range matches {
		idx = append(idx, m.Index)
	}
	sort.Ints(idx)
	out := make([]types.EnrichedTab, 0, len(idx))
	for _, i := range idx {
		out = append(out, tabs[i])
	}
	return out
}

// FilterGroups applies Filter to every group and drops groups left empty.
func FilterGroups(groups []types.WindowGroup, query string) []types.WindowGroup {
	if strings.TrimSpace(query) == "" {
		return groups
	}
	var out []types.WindowGroup
	for _, g := range groups {
		if tabs := Filter(g.Tabs, query); len(tabs) > 0 {
			out = append(out, types.WindowGroup{Window: g.Window, Tabs: tabs})
		}
	}
	return out
}

// haystack adapts tabs to fuzzy.Source.
type haystack []types.EnrichedTab

func (h haystack) String(i int) string { return h[i].Title + " " + h[i].Domain }
func (h haystack) Len() int            { return len(h) }
