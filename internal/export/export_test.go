package export

import (
	"time"

	"github.com/lotas/tabmon/internal/types"
)

var exportedAt = time.Date(2026, 3, 1, 14, 30, 0, 0, time.UTC)

func sampleDoc() Document {
	return Document{
		Source:     "bridge",
		Live:       true,
		ExportedAt: exportedAt,
		Stats:      types.Stats{TotalTabs: 3, TotalWindows: 2, PinnedTabs: 1, DuplicateTabs: 0},
		Groups: []types.WindowGroup{
			{
				Window: types.RawWindow{ID: 5, Type: types.WindowNormal, Focused: true},
				Tabs: []types.EnrichedTab{
					{
						RawTab:   types.RawTab{ID: 1, Title: "Go docs", URL: "https://go.dev/doc", Pinned: true, LastAccessed: exportedAt.Add(-3 * 24 * time.Hour)},
						Domain:   "go.dev",
						IdleText: "3d ago",
					},
					{
						RawTab:   types.RawTab{ID: 2, URL: "https://example.com"},
						Domain:   "example.com",
						IdleText: "Unknown",
					},
				},
			},
			{
				Window: types.RawWindow{ID: 2, Type: types.WindowPopup},
				Tabs: []types.EnrichedTab{
					{
						RawTab:   types.RawTab{ID: 3, Title: "Player", URL: "https://music.example.com", Audible: true},
						Domain:   "music.example.com",
						IdleText: "5m ago",
						HasAudio: true,
					},
				},
			},
		},
	}
}
