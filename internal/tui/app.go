package tui

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/lotas/tabmon/internal/aggregate"
	"github.com/lotas/tabmon/internal/analyzer"
	"github.com/lotas/tabmon/internal/applog"
	"github.com/lotas/tabmon/internal/source"
	"github.com/lotas/tabmon/internal/types"
	"github.com/lotas/tabmon/internal/viewstate"
)

// --- Messages ---

type snapshotMsg struct {
	snap *types.Snapshot
	err  error
}

type mutationMsg struct {
	op  string
	ids []int
	err error
}

type connectedMsg struct{ err error }

type copiedMsg struct {
	url string
	err error
}

// --- Command helpers ---

func fetchCmd(a *source.Adapter) tea.Cmd {
	return func() tea.Msg {
		snap, err := a.Fetch(context.Background())
		return snapshotMsg{snap: snap, err: err}
	}
}

func closeCmd(a *source.Adapter, ids []int) tea.Cmd {
	return func() tea.Msg {
		var err error
		if len(ids) == 1 {
			err = a.Close(context.Background(), ids[0])
		} else {
			err = a.CloseMany(context.Background(), ids)
		}
		return mutationMsg{op: "close", ids: ids, err: err}
	}
}

func activateCmd(a *source.Adapter, id int) tea.Cmd {
	return func() tea.Msg {
		err := a.Activate(context.Background(), id)
		return mutationMsg{op: "activate", ids: []int{id}, err: err}
	}
}

func waitCmd(wait func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return connectedMsg{err: wait(context.Background())}
	}
}

func copyCmd(url string) tea.Cmd {
	return func() tea.Msg {
		return copiedMsg{url: url, err: clipboard.WriteAll(url)}
	}
}

// Options configure a Model.
type Options struct {
	Sort          types.SortKey
	GroupByWindow bool

	// Wait, if set, runs before the first fetch, e.g. until the extension
	// connects. WaitMessage is shown meanwhile.
	Wait        func(context.Context) error
	WaitMessage string

	Now func() time.Time
}

// --- Model ---

type Model struct {
	adapter *source.Adapter
	opts    Options
	now     func() time.Time

	// Data
	snap  *types.Snapshot
	tabs  []types.EnrichedTab
	stats types.Stats
	state viewstate.State

	// UI state
	tree           TreeModel
	detail         DetailModel
	sortPicker     SortPicker
	showSortPicker bool
	filter         textinput.Model
	filtering      bool
	spinner        spinner.Model
	help           help.Model
	keys           keyMap

	waiting      bool // running Options.Wait
	loading      bool // a fetch is in flight
	refreshAfter bool // fetch again once the in-flight one lands
	err          error
	fetchFailed  bool // err came from a fetch, not a mutation
	status       string
	width        int
	height       int
}

func NewModel(adapter *source.Adapter, opts Options) Model {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "title or domain, *.glob for domains"
	ti.CharLimit = 200

	m := Model{
		adapter: adapter,
		opts:    opts,
		now:     now,
		state:   viewstate.New(opts.Sort, opts.GroupByWindow),
		spinner: sp,
		filter:  ti,
		help:    help.New(),
		keys:    defaultKeyMap(),
	}
	if opts.Wait != nil {
		m.waiting = true
	} else {
		m.loading = true
	}
	m.rebuildTree()
	return m
}

func (m Model) Init() tea.Cmd {
	if m.waiting {
		return tea.Batch(m.spinner.Tick, waitCmd(m.opts.Wait))
	}
	return tea.Batch(m.spinner.Tick, fetchCmd(m.adapter))
}

// refresh starts a fetch unless one is already running.
func (m *Model) refresh() tea.Cmd {
	if m.loading || m.waiting {
		return nil
	}
	m.loading = true
	return tea.Batch(fetchCmd(m.adapter), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.filter.Width = msg.Width - 4
		m.layout()
		return m, nil

	case spinner.TickMsg:
		if !m.loading && !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case connectedMsg:
		m.waiting = false
		if msg.err != nil {
			m.setError(msg.err, true)
			return m, nil
		}
		applog.Info("tui.connected", "source", m.adapter.Name())
		cmd := m.refresh()
		return m, cmd

	case snapshotMsg:
		m.applySnapshot(msg)
		if m.refreshAfter {
			m.refreshAfter = false
			cmd := m.refresh()
			return m, cmd
		}
		return m, nil

	case mutationMsg:
		if msg.err != nil {
			m.setError(msg.err, false)
		} else if msg.op == "close" {
			m.status = fmt.Sprintf("Closed %d %s", len(msg.ids), plural(len(msg.ids), "tab", "tabs"))
		}
		// The host is authoritative after any mutation.
		if m.loading {
			m.refreshAfter = true
			return m, nil
		}
		cmd := m.refresh()
		return m, cmd

	case copiedMsg:
		if msg.err != nil {
			m.setError(fmt.Errorf("copy to clipboard: %w", msg.err), false)
		} else {
			m.status = "Copied " + msg.url
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.filtering {
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// Filter input mode
	if m.filtering {
		switch msg.String() {
		case "enter":
			m.filtering = false
			m.filter.Blur()
		case "esc":
			m.filtering = false
			m.filter.Blur()
			m.filter.SetValue("")
			m.apply(viewstate.SetFilter{Query: ""})
		default:
			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(msg)
			m.apply(viewstate.SetFilter{Query: m.filter.Value()})
			return m, cmd
		}
		return m, nil
	}

	// Bulk close confirmation
	if m.state.PendingBulkClose {
		switch msg.String() {
		case "y", "Y", "enter":
			var eff viewstate.Effect
			m.state, eff = viewstate.Reduce(m.state, viewstate.ConfirmBulkClose{})
			applog.Info("tui.bulk_close", "tabs", eff.CloseIDs)
			m.removeTabs(eff.CloseIDs)
			return m, closeCmd(m.adapter, eff.CloseIDs)
		case "n", "N", "esc", "q":
			m.apply(viewstate.CancelBulkClose{})
		}
		return m, nil
	}

	// Sort picker mode
	if m.showSortPicker {
		switch msg.String() {
		case "up", "k":
			m.sortPicker.MoveUp()
		case "down", "j":
			m.sortPicker.MoveDown()
		case "enter":
			m.showSortPicker = false
			m.applySort(m.sortPicker)
		case "esc", "q":
			m.showSortPicker = false
		case "1", "2", "3", "4":
			if m.sortPicker.SelectByNumber(int(msg.String()[0] - '0')) {
				m.showSortPicker = false
				m.applySort(m.sortPicker)
			}
		}
		return m, nil
	}

	if m.help.ShowAll {
		m.help.ShowAll = false
		return m, nil
	}

	node := m.tree.SelectedNode()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		m.tree.MoveUp()
		m.detail.ResetScroll()

	case key.Matches(msg, m.keys.Down):
		m.tree.MoveDown()
		m.detail.ResetScroll()

	case key.Matches(msg, m.keys.Enter):
		if node == nil {
			return m, nil
		}
		if node.Tab != nil {
			return m, activateCmd(m.adapter, node.Tab.ID)
		}
		m.apply(viewstate.ToggleCollapse{WindowID: node.Group.Window.ID})

	case key.Matches(msg, m.keys.Collapse):
		switch {
		case node == nil:
		case node.Group != nil:
			if !m.state.IsCollapsed(node.Group.Window.ID) {
				m.apply(viewstate.ToggleCollapse{WindowID: node.Group.Window.ID})
			}
		default:
			m.tree.ParentHeader()
		}

	case key.Matches(msg, m.keys.Expand):
		if node == nil || node.Group == nil {
			return m, nil
		}
		if m.state.IsCollapsed(node.Group.Window.ID) {
			m.apply(viewstate.ToggleCollapse{WindowID: node.Group.Window.ID})
		} else {
			m.tree.FirstChild()
		}

	case key.Matches(msg, m.keys.Select):
		if node == nil || node.Tab == nil {
			return m, nil
		}
		id := node.Tab.ID
		m.apply(viewstate.Select{ID: id, On: !m.state.IsSelected(id)})
		m.tree.MoveDown()

	case key.Matches(msg, m.keys.SelectAll):
		ids := m.tree.VisibleTabIDs()
		all := len(ids) > 0
		for _, id := range ids {
			if !m.state.IsSelected(id) {
				all = false
				break
			}
		}
		m.apply(viewstate.SelectAll{IDs: ids, On: !all})

	case key.Matches(msg, m.keys.Close):
		if node == nil || node.Tab == nil {
			return m, nil
		}
		ids := []int{node.Tab.ID}
		m.removeTabs(ids)
		return m, closeCmd(m.adapter, ids)

	case key.Matches(msg, m.keys.BulkClose):
		m.apply(viewstate.RequestBulkClose{})

	case key.Matches(msg, m.keys.Sort):
		if !m.state.GroupByWindow {
			m.sortPicker = NewSortPicker(true, 0, m.state.GlobalSort)
		} else if id, ok := m.tree.CursorWindowID(); ok {
			m.sortPicker = NewSortPicker(false, id, m.state.SortFor(id))
		} else {
			return m, nil
		}
		m.sortPicker.Width = m.width
		m.sortPicker.Height = m.height
		m.showSortPicker = true

	case key.Matches(msg, m.keys.GroupToggle):
		m.apply(viewstate.ToggleGroupByWindow{})

	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		m.filter.SetValue(m.state.Filter)
		m.filter.CursorEnd()
		cmd := m.filter.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Copy):
		if node == nil || node.Tab == nil || node.Tab.URL == "" {
			return m, nil
		}
		return m, copyCmd(node.Tab.URL)

	case key.Matches(msg, m.keys.Refresh):
		m.status = ""
		cmd := m.refresh()
		return m, cmd

	case key.Matches(msg, m.keys.ScrollUp):
		m.detail.ScrollUp()

	case key.Matches(msg, m.keys.ScrollDown):
		m.detail.ScrollDown()

	case key.Matches(msg, m.keys.Esc):
		switch {
		case m.err != nil:
			m.err = nil
			m.fetchFailed = false
		case len(m.state.Selected) > 0:
			m.apply(viewstate.SelectAll{On: false})
		case m.state.Filter != "":
			m.filter.SetValue("")
			m.apply(viewstate.SetFilter{Query: ""})
		}

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = true
	}

	return m, nil
}

func (m *Model) applySort(p SortPicker) {
	if p.Global {
		m.apply(viewstate.SetGlobalSort{Key: p.Selected()})
		return
	}
	m.apply(viewstate.SetWindowSort{WindowID: p.WindowID, Key: p.Selected()})
}

func (m *Model) setError(err error, fromFetch bool) {
	m.err = err
	m.fetchFailed = fromFetch
	m.status = ""
}

// applySnapshot replaces all tab data with a fetch result. A failed fetch
// leaves the view empty.
func (m *Model) applySnapshot(msg snapshotMsg) {
	m.loading = false
	if msg.err != nil {
		m.setError(msg.err, true)
		m.snap = nil
		m.tabs = nil
		m.stats = types.Stats{}
	} else {
		if m.fetchFailed {
			m.err = nil
			m.fetchFailed = false
		}
		m.snap = msg.snap
		m.tabs, m.stats = analyzer.Analyze(msg.snap, m.now())
	}
	m.reconcile()
	m.rebuildTree()
}

// removeTabs drops ids from the local data ahead of the host confirming it.
func (m *Model) removeTabs(ids []int) {
	if len(ids) == 0 {
		return
	}
	gone := make(map[int]bool, len(ids))
	for _, id := range ids {
		gone[id] = true
	}
	m.tabs = slices.DeleteFunc(slices.Clone(m.tabs), func(t types.EnrichedTab) bool { return gone[t.ID] })
	analyzer.AnalyzeDuplicates(m.tabs)
	m.stats = analyzer.ComputeStats(m.tabs, m.windows())
	m.reconcile()
	m.rebuildTree()
}

func (m *Model) reconcile() {
	ids := make([]int, len(m.tabs))
	for i, t := range m.tabs {
		ids[i] = t.ID
	}
	m.state, _ = viewstate.Reduce(m.state, viewstate.Reconcile{CurrentIDs: ids})
}

func (m *Model) apply(a viewstate.Action) {
	m.state, _ = viewstate.Reduce(m.state, a)
	m.rebuildTree()
}

func (m Model) windows() []types.RawWindow {
	if m.snap == nil {
		return nil
	}
	return m.snap.Windows
}

// rebuildTree regroups, filters and sorts the tabs, keeping the cursor on the
// same row when it still exists.
func (m *Model) rebuildTree() {
	oldCursor := m.tree.Cursor
	oldOffset := m.tree.Offset
	prev := m.tree.SelectedNode()

	groups := aggregate.FilterGroups(aggregate.Group(m.tabs, m.windows()), m.state.Filter)
	groups = aggregate.SortGroups(groups, m.state.WindowSort, types.SortLastActive)
	flat := aggregate.Sort(aggregate.Flatten(groups), m.state.GlobalSort)

	m.tree = TreeModel{
		Groups: groups,
		Flat:   flat,
		State:  m.state,
		Cursor: oldCursor,
		Offset: oldOffset,
	}
	m.layout()

	switch {
	case prev == nil:
	case prev.Tab != nil:
		if m.tree.FocusTab(prev.Tab.ID) {
			return
		}
	case prev.Group != nil:
		if m.tree.FocusWindow(prev.Group.Window.ID) {
			return
		}
	}
	m.tree.Clamp()
}

// layout sizes the panes from the terminal size.
func (m *Model) layout() {
	treeWidth := m.width * 60 / 100
	paneHeight := m.height - 7 // bars, banner and help
	m.tree.Width = treeWidth
	m.tree.Height = paneHeight
	m.detail.Width = m.width - treeWidth - 4 // borders
	m.detail.Height = paneHeight
}

func (m Model) windowOf(id int) types.RawWindow {
	for _, g := range m.tree.Groups {
		if g.Window.ID == id {
			return g.Window
		}
	}
	return aggregate.Placeholder(id)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

var (
	errorBannerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("160")).Padding(0, 1)
	demoBannerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("16")).Background(lipgloss.Color("214")).Padding(0, 1)
	statusStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Padding(0, 1)
)

func (m Model) View() string {
	if m.waiting {
		return fmt.Sprintf("\n  %s %s\n\n  Press 'q' to quit.\n", m.spinner.View(), m.opts.WaitMessage)
	}

	if m.snap == nil && m.loading && m.err == nil {
		return fmt.Sprintf("\n  %s Loading tabs from %s...\n", m.spinner.View(), m.adapter.Name())
	}

	if m.showSortPicker {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.sortPicker.View())
	}

	if m.help.ShowAll {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.help.View(m.keys))
	}

	// Top bar
	topBarStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	sourceStr := "Source: " + m.adapter.Name()
	if m.snap != nil && m.snap.Live {
		sourceStr += " ●"
	}
	statsStr := fmt.Sprintf("%d tabs · %d windows", m.stats.TotalTabs, m.stats.TotalWindows)
	if m.stats.AudibleTabs > 0 {
		statsStr += fmt.Sprintf(" · %d audible", m.stats.AudibleTabs)
	}
	if m.stats.LoadingTabs > 0 {
		statsStr += fmt.Sprintf(" · %d loading", m.stats.LoadingTabs)
	}
	if m.stats.DuplicateTabs > 0 {
		statsStr += fmt.Sprintf(" · %d dup", m.stats.DuplicateTabs)
	}
	if m.stats.StaleTabs > 0 {
		statsStr += fmt.Sprintf(" · %d stale", m.stats.StaleTabs)
	}
	if n := len(m.state.Selected); n > 0 {
		statsStr += fmt.Sprintf(" · %d selected", n)
	}
	if !m.state.GroupByWindow {
		statsStr += " · flat, sort: " + string(m.state.GlobalSort)
	}
	if m.loading {
		statsStr += " " + m.spinner.View()
	}
	topBar := topBarStyle.Render(sourceStr + "  " + statsStr)

	// Banner
	var banner string
	switch {
	case m.err != nil:
		banner = errorBannerStyle.Render(source.Describe(m.err) + "  ·  r retry · esc dismiss")
	case m.snap != nil && !m.snap.Live:
		banner = demoBannerStyle.Render("Demo data: no browser connected. Close and select act locally only.")
	case m.status != "":
		banner = statusStyle.Render(m.status)
	}

	// Panes
	var panes string
	if m.state.PendingBulkClose {
		panes = lipgloss.Place(m.width, max(m.tree.Height, 5), lipgloss.Center, lipgloss.Center, m.confirmView())
	} else {
		treeBorder := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Width(m.tree.Width).
			Height(m.tree.Height)

		detailBorder := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Width(m.detail.Width).
			Height(m.detail.Height)

		var detailContent string
		if node := m.tree.SelectedNode(); node != nil {
			if node.Tab != nil {
				detailContent = m.detail.ViewTab(node.Tab, m.windowOf(node.Tab.WindowID))
			} else if node.Group != nil {
				id := node.Group.Window.ID
				detailContent = m.detail.ViewWindow(node.Group, m.state.SortFor(id), m.state.IsCollapsed(id))
			}
		}

		left := treeBorder.Render(m.tree.View())
		right := detailBorder.Render(m.detail.ViewScrolled(detailContent))
		panes = lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	}

	// Bottom bar
	var bottom string
	switch {
	case m.filtering:
		bottom = " " + m.filter.View()
	case m.state.Filter != "":
		bottom = dimStyle.Render(fmt.Sprintf(" filter: %s (esc clear) · ", m.state.Filter)) + m.help.View(m.keys)
	default:
		bottom = " " + m.help.View(m.keys)
	}

	parts := []string{topBar}
	if banner != "" {
		parts = append(parts, banner)
	}
	parts = append(parts, panes, bottom)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) confirmView() string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("160")).
		Padding(1, 2)
	n := len(m.state.Selected)
	ids := m.state.SelectedIDs()
	list := ""
	for i, id := range ids {
		if i == 5 {
			list += fmt.Sprintf("\n  … and %d more", len(ids)-5)
			break
		}
		title := "tab " + strconv.Itoa(id)
		for _, t := range m.tabs {
			if t.ID == id {
				title = runewidth.Truncate(tabTitle(&t), 60, "…")
				break
			}
		}
		list += "\n  • " + title
	}
	return boxStyle.Render(fmt.Sprintf("Close %d selected %s?\n%s\n\ny confirm · n cancel", n, plural(n, "tab", "tabs"), list))
}
