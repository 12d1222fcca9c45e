// Package export renders grouped tabs as Markdown or JSON.
package export

import (
	"time"

	"github.com/lotas/tabmon/internal/types"
)

// Document is one export: the grouped tabs of a fetch and where they came from.
type Document struct {
	Source     string
	Live       bool
	ExportedAt time.Time
	Groups     []types.WindowGroup
	Stats      types.Stats
}

func displayTitle(tab types.EnrichedTab) string {
	if tab.Title != "" {
		return tab.Title
	}
	if tab.URL != "" {
		return tab.URL
	}
	return "Untitled"
}
