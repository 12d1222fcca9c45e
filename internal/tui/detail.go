package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/lotas/tabmon/internal/aggregate"
	"github.com/lotas/tabmon/internal/types"
)

// DetailModel shows information about the selected item.
type DetailModel struct {
	Width      int
	Height     int
	Scroll     int // scroll offset
	ContentLen int // total lines in content
}

// ScrollUp adjusts the scroll offset upward.
func (m *DetailModel) ScrollUp() {
	if m.Scroll > 0 {
		m.Scroll--
	}
}

// ScrollDown adjusts the scroll offset downward.
func (m *DetailModel) ScrollDown() {
	if m.Scroll < m.ContentLen-m.Height {
		m.Scroll++
	}
	if m.Scroll < 0 {
		m.Scroll = 0
	}
}

// ResetScroll resets the scroll offset to 0.
func (m *DetailModel) ResetScroll() {
	m.Scroll = 0
}

var (
	labelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("245"))
	valueStyle = lipgloss.NewStyle()
)

func (m DetailModel) ViewTab(tab *types.EnrichedTab, window types.RawWindow) string {
	if tab == nil {
		return ""
	}
	width := max(m.Width-2, 10)

	var b strings.Builder

	b.WriteString(labelStyle.Render("Title") + "\n")
	b.WriteString(valueStyle.Render(runewidth.Truncate(tabTitle(tab), width, "…")) + "\n\n")

	b.WriteString(labelStyle.Render("URL") + "\n")
	for _, line := range wrap(tab.URL, width) {
		b.WriteString(valueStyle.Render(line) + "\n")
	}
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("Domain") + "\n")
	b.WriteString(valueStyle.Render(tab.Domain) + "\n\n")

	b.WriteString(labelStyle.Render("Last Active") + "\n")
	b.WriteString(valueStyle.Render(tab.IdleText) + "\n\n")

	b.WriteString(labelStyle.Render("Window") + "\n")
	b.WriteString(valueStyle.Render(fmt.Sprintf("%s #%d · position %d", aggregate.WindowTitle(window), tab.WindowID, tab.Index+1)) + "\n\n")

	b.WriteString(labelStyle.Render("Tab ID") + "\n")
	b.WriteString(valueStyle.Render(fmt.Sprintf("%d", tab.ID)) + "\n")

	var statuses []string
	if tab.Active {
		statuses = append(statuses, activeStyle.Render("Active in its window"))
	}
	if tab.Pinned {
		statuses = append(statuses, "Pinned")
	}
	if tab.HasAudio {
		statuses = append(statuses, audioStyle.Render("Playing audio"))
	}
	if tab.IsMuted {
		statuses = append(statuses, "Muted")
	}
	if tab.IsLoading {
		statuses = append(statuses, loadingStyle.Render("Loading"))
	}
	if tab.IsGrouped {
		statuses = append(statuses, fmt.Sprintf("In tab group %d", tab.GroupID))
	}
	if tab.IsDuplicate {
		statuses = append(statuses, dupStyle.Render("Duplicate URL"))
	}
	if tab.IsStale {
		statuses = append(statuses, dimStyle.Render(fmt.Sprintf("Stale (%d days)", tab.StaleDays)))
	}

	if len(statuses) > 0 {
		b.WriteString("\n" + labelStyle.Render("Status") + "\n")
		for _, s := range statuses {
			b.WriteString(s + "\n")
		}
	}

	return b.String()
}

func (m DetailModel) ViewWindow(g *types.WindowGroup, sortKey types.SortKey, collapsed bool) string {
	if g == nil {
		return ""
	}

	var b strings.Builder

	b.WriteString(labelStyle.Render("Window") + "\n")
	b.WriteString(valueStyle.Render(fmt.Sprintf("%s #%d", aggregate.WindowTitle(g.Window), g.Window.ID)) + "\n\n")

	b.WriteString(labelStyle.Render("Type") + "\n")
	b.WriteString(valueStyle.Render(string(g.Window.Type)) + "\n\n")

	b.WriteString(labelStyle.Render("Tabs") + "\n")
	b.WriteString(valueStyle.Render(fmt.Sprintf("%d", len(g.Tabs))) + "\n\n")

	b.WriteString(labelStyle.Render("Sort") + "\n")
	b.WriteString(valueStyle.Render(string(sortKey)) + "\n\n")

	state := "expanded"
	if collapsed {
		state = "collapsed"
	}
	b.WriteString(labelStyle.Render("State") + "\n")
	b.WriteString(valueStyle.Render(state) + "\n")

	var audible, loading, dup int
	for _, tab := range g.Tabs {
		if tab.HasAudio {
			audible++
		}
		if tab.IsLoading {
			loading++
		}
		if tab.IsDuplicate {
			dup++
		}
	}
	if audible+loading+dup > 0 {
		b.WriteString("\n" + labelStyle.Render("Activity") + "\n")
		if audible > 0 {
			b.WriteString(fmt.Sprintf("  %d playing audio\n", audible))
		}
		if loading > 0 {
			b.WriteString(fmt.Sprintf("  %d loading\n", loading))
		}
		if dup > 0 {
			b.WriteString(fmt.Sprintf("  %d duplicates\n", dup))
		}
	}

	return b.String()
}

// ViewScrolled applies scroll offset and height truncation to the content string.
func (m *DetailModel) ViewScrolled(content string) string {
	if content == "" {
		return content
	}

	lines := strings.Split(content, "\n")
	m.ContentLen = len(lines)

	maxScroll := max(m.ContentLen-m.Height, 0)
	if m.Scroll > maxScroll {
		m.Scroll = maxScroll
	}
	if m.Scroll < 0 {
		m.Scroll = 0
	}

	end := min(m.Scroll+m.Height, len(lines))
	if m.Height <= 0 {
		end = len(lines)
	}
	return strings.Join(lines[m.Scroll:end], "\n")
}

// wrap splits s into chunks of at most width display cells.
func wrap(s string, width int) []string {
	if s == "" {
		return []string{""}
	}
	var lines []string
	var cur strings.Builder
	w := 0
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if w+rw > width && cur.Len() > 0 {
			lines = append(lines, cur.String())
			cur.Reset()
			w = 0
		}
		cur.WriteRune(r)
		w += rw
	}
	return append(lines, cur.String())
}
