package analyzer

import "github.com/lotas/tabmon/internal/types"

func ComputeStats(tabs []types.EnrichedTab, windows []types.RawWindow) types.Stats {
	stats := types.Stats{
		TotalTabs:    len(tabs),
		TotalWindows: len(windows),
	}
	for _, tab := range tabs {
		if tab.HasAudio {
			stats.AudibleTabs++
		}
		if tab.IsMuted {
			stats.MutedTabs++
		}
		if tab.IsLoading {
			stats.LoadingTabs++
		}
		if tab.Pinned {
			stats.PinnedTabs++
		}
		if tab.IsGrouped {
			stats.GroupedTabs++
		}
		if tab.IsDuplicate {
			stats.DuplicateTabs++
		}
		if tab.IsStale {
			stats.StaleTabs++
		}
	}
	return stats
}
