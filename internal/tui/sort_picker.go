package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lotas/tabmon/internal/types"
)

type sortOption struct {
	Label string
	Key   types.SortKey
}

var sortOptions = []sortOption{
	{"Last active", types.SortLastActive},
	{"Title", types.SortTitle},
	{"Domain", types.SortDomain},
	{"Tab position", types.SortPosition},
}

// SortPicker is an overlay for choosing a sort key, either for one window
// or for the flat list.
type SortPicker struct {
	Global   bool // sorting the flat list rather than one window
	WindowID int
	Cursor   int
	Width    int
	Height   int
}

func NewSortPicker(global bool, windowID int, current types.SortKey) SortPicker {
	cursor := 0
	for i, opt := range sortOptions {
		if opt.Key == current {
			cursor = i
			break
		}
	}
	return SortPicker{Global: global, WindowID: windowID, Cursor: cursor}
}

func (m *SortPicker) MoveUp() {
	if m.Cursor > 0 {
		m.Cursor--
	}
}

func (m *SortPicker) MoveDown() {
	if m.Cursor < len(sortOptions)-1 {
		m.Cursor++
	}
}

// SelectByNumber moves the cursor to the 1-based option n.
func (m *SortPicker) SelectByNumber(n int) bool {
	if n < 1 || n > len(sortOptions) {
		return false
	}
	m.Cursor = n - 1
	return true
}

func (m SortPicker) Selected() types.SortKey {
	return sortOptions[m.Cursor].Key
}

func (m SortPicker) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	selectedStyle := lipgloss.NewStyle().Bold(true).Reverse(true).Padding(0, 1)
	normalStyle := lipgloss.NewStyle().Padding(0, 1)
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1, 2)

	title := fmt.Sprintf("Sort window #%d by:", m.WindowID)
	if m.Global {
		title = "Sort all tabs by:"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(title) + "\n\n")

	for i, opt := range sortOptions {
		label := fmt.Sprintf("%d. %s", i+1, opt.Label)
		if i == m.Cursor {
			label = selectedStyle.Render(label)
		} else {
			label = normalStyle.Render("  " + label)
		}
		b.WriteString(label + "\n")
	}

	b.WriteString("\n" + normalStyle.Render("↑↓ navigate · enter select · esc cancel"))

	return boxStyle.Render(b.String())
}
