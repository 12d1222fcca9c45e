package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up          key.Binding
	Down        key.Binding
	Enter       key.Binding
	Collapse    key.Binding
	Expand      key.Binding
	Select      key.Binding
	SelectAll   key.Binding
	Close       key.Binding
	BulkClose   key.Binding
	Sort        key.Binding
	GroupToggle key.Binding
	Filter      key.Binding
	Copy        key.Binding
	Refresh     key.Binding
	ScrollUp    key.Binding
	ScrollDown  key.Binding
	Esc         key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Enter:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "go to tab / fold")),
		Collapse:    key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h", "collapse")),
		Expand:      key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l", "expand")),
		Select:      key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select")),
		SelectAll:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select all")),
		Close:       key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "close tab")),
		BulkClose:   key.NewBinding(key.WithKeys("X", "D"), key.WithHelp("X", "close selected")),
		Sort:        key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		GroupToggle: key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "group by window")),
		Filter:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		Copy:        key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy URL")),
		Refresh:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		ScrollUp:    key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll detail")),
		ScrollDown:  key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "scroll detail")),
		Esc:         key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Enter, k.Select, k.Close, k.BulkClose, k.Sort, k.Filter, k.Refresh, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Enter, k.Collapse, k.Expand},
		{k.Select, k.SelectAll, k.Close, k.BulkClose, k.Esc},
		{k.Sort, k.GroupToggle, k.Filter, k.Copy},
		{k.Refresh, k.ScrollUp, k.ScrollDown, k.Help, k.Quit},
	}
}
