package analyzer

import (
	"time"

	"github.com/lotas/tabmon/internal/types"
)

// StaleAfter is how long a tab may sit unvisited before it counts as stale.
const StaleAfter = 7 * 24 * time.Hour

// AnalyzeStale marks tabs idle for longer than threshold. Tabs with an
// unknown last access are never stale.
func AnalyzeStale(tabs []types.EnrichedTab, threshold time.Duration) {
	for i := range tabs {
		tab := &tabs[i]
		tab.IsStale = tab.IdleKnown && tab.Idle > threshold
		tab.StaleDays = 0
		if tab.IsStale {
			tab.StaleDays = int(tab.Idle.Hours() / 24)
		}
	}
}
