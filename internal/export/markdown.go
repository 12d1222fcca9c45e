package export

import (
	"fmt"
	"strings"

	"github.com/lotas/tabmon/internal/aggregate"
)

// Markdown formats a document as a Markdown list, one section per window.
func Markdown(doc Document) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Open Tabs (%s)\n", doc.Source)
	fmt.Fprintf(&b, "> Exported %s", doc.ExportedAt.Format("2006-01-02 15:04"))
	if !doc.Live {
		b.WriteString(" from demo data")
	}
	b.WriteString("\n")

	for _, g := range doc.Groups {
		n := len(g.Tabs)
		noun := "tabs"
		if n == 1 {
			noun = "tab"
		}
		fmt.Fprintf(&b, "\n## %s #%d (%d %s)\n\n", aggregate.WindowTitle(g.Window), g.Window.ID, n, noun)

		for _, tab := range g.Tabs {
			fmt.Fprintf(&b, "- [%s](%s) · %s · %s%s\n", displayTitle(tab), tab.URL, tab.Domain, tab.IdleText, flags(tab.Pinned, tab.HasAudio, tab.IsDuplicate))
		}
	}

	return b.String()
}

func flags(pinned, audible, duplicate bool) string {
	var parts []string
	if pinned {
		parts = append(parts, "pinned")
	}
	if audible {
		parts = append(parts, "playing audio")
	}
	if duplicate {
		parts = append(parts, "duplicate")
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, ", ") + ")"
}
