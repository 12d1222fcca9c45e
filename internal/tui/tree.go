package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/lotas/tabmon/internal/aggregate"
	"github.com/lotas/tabmon/internal/types"
	"github.com/lotas/tabmon/internal/viewstate"
)

// TreeNode represents a visible row in the tree.
type TreeNode struct {
	Group *types.WindowGroup // non-nil for window headers
	Tab   *types.EnrichedTab // non-nil for tab rows
}

// TreeModel renders window groups as a collapsible tree, or the flat tab
// list when grouping is off. Collapse and selection come from the view state.
type TreeModel struct {
	Groups []types.WindowGroup
	Flat   []types.EnrichedTab
	State  viewstate.State
	Cursor int
	Offset int // scroll offset
	Width  int
	Height int
}

// VisibleNodes returns the flat list of currently visible nodes.
func (m TreeModel) VisibleNodes() []TreeNode {
	var nodes []TreeNode
	if !m.State.GroupByWindow {
		for i := range m.Flat {
			nodes = append(nodes, TreeNode{Tab: &m.Flat[i]})
		}
		return nodes
	}
	for gi := range m.Groups {
		g := &m.Groups[gi]
		nodes = append(nodes, TreeNode{Group: g})
		if m.State.IsCollapsed(g.Window.ID) {
			continue
		}
		for ti := range g.Tabs {
			nodes = append(nodes, TreeNode{Tab: &g.Tabs[ti]})
		}
	}
	return nodes
}

// VisibleTabIDs returns the ids of every tab row, including tabs hidden in
// collapsed windows.
func (m TreeModel) VisibleTabIDs() []int {
	var ids []int
	if !m.State.GroupByWindow {
		for _, t := range m.Flat {
			ids = append(ids, t.ID)
		}
		return ids
	}
	for _, g := range m.Groups {
		for _, t := range g.Tabs {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

// SelectedNode returns the node under the cursor, or nil.
func (m TreeModel) SelectedNode() *TreeNode {
	nodes := m.VisibleNodes()
	if m.Cursor >= 0 && m.Cursor < len(nodes) {
		return &nodes[m.Cursor]
	}
	return nil
}

// CursorWindowID returns the window of the node under the cursor.
func (m TreeModel) CursorWindowID() (int, bool) {
	node := m.SelectedNode()
	switch {
	case node == nil:
		return 0, false
	case node.Group != nil:
		return node.Group.Window.ID, true
	default:
		return node.Tab.WindowID, true
	}
}

// FocusTab moves the cursor to the row of tab id.
func (m *TreeModel) FocusTab(id int) bool {
	for i, n := range m.VisibleNodes() {
		if n.Tab != nil && n.Tab.ID == id {
			m.Cursor = i
			m.clampOffset()
			return true
		}
	}
	return false
}

// FocusWindow moves the cursor to the header of window id.
func (m *TreeModel) FocusWindow(id int) bool {
	for i, n := range m.VisibleNodes() {
		if n.Group != nil && n.Group.Window.ID == id {
			m.Cursor = i
			m.clampOffset()
			return true
		}
	}
	return false
}

// Clamp keeps the cursor on a visible row.
func (m *TreeModel) Clamp() {
	n := len(m.VisibleNodes())
	if m.Cursor >= n {
		m.Cursor = n - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	m.clampOffset()
}

func (m *TreeModel) rows() int {
	if m.Height-2 < 1 {
		return 1
	}
	return m.Height - 2 // account for padding
}

func (m *TreeModel) clampOffset() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.rows() {
		m.Offset = m.Cursor - m.rows() + 1
	}
	if m.Offset < 0 {
		m.Offset = 0
	}
}

// MoveUp moves the cursor up.
func (m *TreeModel) MoveUp() {
	if m.Cursor > 0 {
		m.Cursor--
	}
	m.clampOffset()
}

// MoveDown moves the cursor down.
func (m *TreeModel) MoveDown() {
	if m.Cursor < len(m.VisibleNodes())-1 {
		m.Cursor++
	}
	m.clampOffset()
}

// ParentHeader moves the cursor from a tab to its window header.
func (m *TreeModel) ParentHeader() {
	nodes := m.VisibleNodes()
	for i := m.Cursor - 1; i >= 0; i-- {
		if nodes[i].Group != nil {
			m.Cursor = i
			m.clampOffset()
			return
		}
	}
}

// FirstChild moves the cursor from an expanded header to its first tab.
func (m *TreeModel) FirstChild() {
	nodes := m.VisibleNodes()
	if m.Cursor+1 < len(nodes) && nodes[m.Cursor+1].Tab != nil {
		m.Cursor++
		m.clampOffset()
	}
}

var (
	cursorStyle   = lipgloss.NewStyle().Bold(true).Reverse(true)
	headerStyle   = lipgloss.NewStyle().Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	activeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))  // green
	audioStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("135")) // purple
	loadingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")) // orange
	dupStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))  // blue
)

// View renders the tree.
func (m TreeModel) View() string {
	nodes := m.VisibleNodes()
	if len(nodes) == 0 {
		return "No tabs found."
	}

	visibleRows := m.Height
	if visibleRows < 1 {
		visibleRows = 20
	}
	width := m.Width
	if width < 20 {
		width = 20
	}

	var b strings.Builder
	end := min(m.Offset+visibleRows, len(nodes))

	for i := m.Offset; i < end; i++ {
		node := nodes[i]
		var line string
		if node.Group != nil {
			line = m.headerLine(node.Group, width)
		} else {
			line = m.tabLine(node.Tab, width)
		}

		if i == m.Cursor {
			// Pad to full width for highlight
			line = cursorStyle.Render(padRight(line, width))
		}

		b.WriteString(line)
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (m TreeModel) headerLine(g *types.WindowGroup, width int) string {
	icon := "▼"
	if m.State.IsCollapsed(g.Window.ID) {
		icon = "▶"
	}
	n := len(g.Tabs)
	noun := "tabs"
	if n == 1 {
		noun = "tab"
	}
	label := fmt.Sprintf("%s %s #%d (%d %s) · %s", icon, aggregate.WindowTitle(g.Window), g.Window.ID, n, noun, m.State.SortFor(g.Window.ID))
	return headerStyle.Render(runewidth.Truncate(label, width, "…"))
}

// tabLine renders "<sel> <markers> <title>  <domain> · <idle>".
func (m TreeModel) tabLine(t *types.EnrichedTab, width int) string {
	prefix := "  "
	if m.State.GroupByWindow {
		prefix = "    "
	}
	sel := "○ "
	if m.State.IsSelected(t.ID) {
		sel = selectedStyle.Render("● ")
	}

	markers, markersWidth := tabMarkers(t)
	meta := fmt.Sprintf("  %s · %s", t.Domain, t.IdleText)
	titleWidth := width - runewidth.StringWidth(prefix) - 2 - markersWidth - runewidth.StringWidth(meta)
	if titleWidth < 10 {
		titleWidth = 10
		meta = ""
	}
	title := runewidth.Truncate(tabTitle(t), titleWidth, "…")
	return prefix + sel + markers + runewidth.FillRight(title, titleWidth) + dimStyle.Render(meta)
}

// tabMarkers returns the status glyphs for t and their display width.
func tabMarkers(t *types.EnrichedTab) (string, int) {
	var plain, styled strings.Builder
	add := func(glyph string, style lipgloss.Style) {
		plain.WriteString(glyph)
		styled.WriteString(style.Render(glyph))
	}
	if t.Active {
		add("*", activeStyle)
	}
	if t.Pinned {
		add("^", dimStyle)
	}
	if t.HasAudio {
		add("♪", audioStyle)
	}
	if t.IsMuted {
		add("m", audioStyle)
	}
	if t.IsLoading {
		add("…", loadingStyle)
	}
	if t.IsGrouped {
		add("g", dimStyle)
	}
	if t.IsDuplicate {
		add("⇄", dupStyle)
	}
	if t.IsStale {
		add("z", dimStyle)
	}
	if plain.Len() == 0 {
		return "", 0
	}
	styled.WriteString(" ")
	return styled.String(), runewidth.StringWidth(plain.String()) + 1
}

func tabTitle(t *types.EnrichedTab) string {
	if t.Title != "" {
		return t.Title
	}
	return "Untitled"
}

func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
