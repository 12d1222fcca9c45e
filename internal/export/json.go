package export

import (
	"encoding/json"
	"time"

	"github.com/lotas/tabmon/internal/aggregate"
)

type jsonExport struct {
	Source     string       `json:"source"`
	Live       bool         `json:"live"`
	ExportedAt time.Time    `json:"exported_at"`
	Stats      jsonStats    `json:"stats"`
	Windows    []jsonWindow `json:"windows"`
}

type jsonStats struct {
	Tabs       int `json:"tabs"`
	Windows    int `json:"windows"`
	Audible    int `json:"audible"`
	Pinned     int `json:"pinned"`
	Grouped    int `json:"grouped"`
	Duplicates int `json:"duplicates"`
	Stale      int `json:"stale"`
}

type jsonWindow struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Type      string    `json:"type"`
	Focused   bool      `json:"focused,omitempty"`
	Incognito bool      `json:"incognito,omitempty"`
	Tabs      []jsonTab `json:"tabs"`
}

type jsonTab struct {
	ID           int        `json:"id"`
	Title        string     `json:"title"`
	URL          string     `json:"url"`
	Domain       string     `json:"domain"`
	LastAccessed *time.Time `json:"last_accessed,omitempty"`
	Idle         string     `json:"idle"`
	Active       bool       `json:"active,omitempty"`
	Pinned       bool       `json:"pinned,omitempty"`
	Audible      bool       `json:"audible,omitempty"`
	Muted        bool       `json:"muted,omitempty"`
	Loading      bool       `json:"loading,omitempty"`
	Grouped      bool       `json:"grouped,omitempty"`
	IsDuplicate  bool       `json:"is_duplicate,omitempty"`
	StaleDays    int        `json:"stale_days,omitempty"`
}

// JSON formats a document as indented JSON.
func JSON(doc Document) (string, error) {
	out := jsonExport{
		Source:     doc.Source,
		Live:       doc.Live,
		ExportedAt: doc.ExportedAt,
		Stats: jsonStats{
			Tabs:       doc.Stats.TotalTabs,
			Windows:    doc.Stats.TotalWindows,
			Audible:    doc.Stats.AudibleTabs,
			Pinned:     doc.Stats.PinnedTabs,
			Grouped:    doc.Stats.GroupedTabs,
			Duplicates: doc.Stats.DuplicateTabs,
			Stale:      doc.Stats.StaleTabs,
		},
		Windows: make([]jsonWindow, 0, len(doc.Groups)),
	}

	for _, g := range doc.Groups {
		w := jsonWindow{
			ID:        g.Window.ID,
			Title:     aggregate.WindowTitle(g.Window),
			Type:      string(g.Window.Type),
			Focused:   g.Window.Focused,
			Incognito: g.Window.Incognito,
			Tabs:      make([]jsonTab, 0, len(g.Tabs)),
		}
		for _, tab := range g.Tabs {
			jt := jsonTab{
				ID:          tab.ID,
				Title:       displayTitle(tab),
				URL:         tab.URL,
				Domain:      tab.Domain,
				Idle:        tab.IdleText,
				Active:      tab.Active,
				Pinned:      tab.Pinned,
				Audible:     tab.HasAudio,
				Muted:       tab.IsMuted,
				Loading:     tab.IsLoading,
				Grouped:     tab.IsGrouped,
				IsDuplicate: tab.IsDuplicate,
				StaleDays:   tab.StaleDays,
			}
			if !tab.LastAccessed.IsZero() {
				at := tab.LastAccessed.UTC()
				jt.LastAccessed = &at
			}
			w.Tabs = append(w.Tabs, jt)
		}
		out.Windows = append(out.Windows, w)
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b) + "\n", nil
}
