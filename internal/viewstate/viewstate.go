// Package viewstate holds the UI state that survives refreshes: selection,
// collapsed windows, sort keys and a pending bulk close.
//
// State is a value. Reduce never modifies the State it is given; any set it
// changes is copied first, so older States can be kept and compared.
package viewstate

import (
	"maps"
	"slices"

	"github.com/lotas/tabmon/internal/types"
)

// State is the view state of one UI session.
type State struct {
	Selected         map[int]bool
	Collapsed        map[int]bool
	GlobalSort       types.SortKey
	WindowSort       map[int]types.SortKey
	PendingBulkClose bool

	GroupByWindow bool
	Filter        string
}

// New returns the initial state.
func New(sort types.SortKey, groupByWindow bool) State {
	if sort == "" {
		sort = types.SortLastActive
	}
	return State{
		Selected:      map[int]bool{},
		Collapsed:     map[int]bool{},
		GlobalSort:    sort,
		WindowSort:    map[int]types.SortKey{},
		GroupByWindow: groupByWindow,
	}
}

// IsSelected reports whether tab id is selected.
func (s State) IsSelected(id int) bool { return s.Selected[id] }

// IsCollapsed reports whether window id is collapsed.
func (s State) IsCollapsed(id int) bool { return s.Collapsed[id] }

// SelectedIDs returns the selected tab ids in ascending order.
func (s State) SelectedIDs() []int {
	return slices.Sorted(maps.Keys(s.Selected))
}

// SortFor returns the sort key for window id. Windows without their own key
// use lastActive.
func (s State) SortFor(windowID int) types.SortKey {
	if k, ok := s.WindowSort[windowID]; ok {
		return k
	}
	return types.SortLastActive
}

// Action is a state transition request.
type Action interface{ action() }

type (
	// Select adds or removes one tab from the selection.
	Select struct {
		ID int
		On bool
	}
	// SelectAll replaces the selection with IDs, or empties it.
	SelectAll struct {
		IDs []int
		On  bool
	}
	ToggleCollapse struct{ WindowID int }
	SetGlobalSort  struct{ Key types.SortKey }
	SetWindowSort  struct {
		WindowID int
		Key      types.SortKey
	}
	// RequestBulkClose asks for confirmation. Ignored with nothing selected.
	RequestBulkClose struct{}
	// ConfirmBulkClose emits the selected ids and clears the selection.
	ConfirmBulkClose struct{}
	CancelBulkClose  struct{}
	// Reconcile drops selected ids that are not in CurrentIDs.
	Reconcile struct{ CurrentIDs []int }

	ToggleGroupByWindow struct{}
	SetFilter           struct{ Query string }
)

func (Select) action()              {}
func (SelectAll) action()           {}
func (ToggleCollapse) action()      {}
func (SetGlobalSort) action()       {}
func (SetWindowSort) action()       {}
func (RequestBulkClose) action()    {}
func (ConfirmBulkClose) action()    {}
func (CancelBulkClose) action()     {}
func (Reconcile) action()           {}
func (ToggleGroupByWindow) action() {}
func (SetFilter) action()           {}

// Effect is work the caller must carry out after a transition.
type Effect struct {
	// CloseIDs lists tabs to close, ascending. Set only by ConfirmBulkClose.
	CloseIDs []int
}

// Reduce applies a to s and returns the next state.
func Reduce(s State, a Action) (State, Effect) {
	switch a := a.(type) {
	case Select:
		sel := maps.Clone(s.Selected)
		if sel == nil {
			sel = map[int]bool{}
		}
		if a.On {
			sel[a.ID] = true
		} else {
			delete(sel, a.ID)
		}
		s.Selected = sel

	case SelectAll:
		sel := map[int]bool{}
		if a.On {
			for _, id := range a.IDs {
				sel[id] = true
			}
		}
		s.Selected = sel

	case ToggleCollapse:
		col := maps.Clone(s.Collapsed)
		if col == nil {
			col = map[int]bool{}
		}
		if col[a.WindowID] {
			delete(col, a.WindowID)
		} else {
			col[a.WindowID] = true
		}
		s.Collapsed = col

	case SetGlobalSort:
		s.GlobalSort = a.Key

	case SetWindowSort:
		ws := maps.Clone(s.WindowSort)
		if ws == nil {
			ws = map[int]types.SortKey{}
		}
		ws[a.WindowID] = a.Key
		s.WindowSort = ws

	case RequestBulkClose:
		if len(s.Selected) > 0 {
			s.PendingBulkClose = true
		}

	case ConfirmBulkClose:
		eff := Effect{CloseIDs: s.SelectedIDs()}
		s.Selected = map[int]bool{}
		s.PendingBulkClose = false
		return s, eff

	case CancelBulkClose:
		s.PendingBulkClose = false

	case Reconcile:
		s = reconcile(s, a.CurrentIDs)

	case ToggleGroupByWindow:
		s.GroupByWindow = !s.GroupByWindow

	case SetFilter:
		s.Filter = a.Query
	}
	return s, Effect{}
}

func reconcile(s State, current []int) State {
	present := make(map[int]bool, len(current))
	for _, id := range current {
		present[id] = true
	}
	stale := false
	for id := range s.Selected {
		if !present[id] {
			stale = true
			break
		}
	}
	if !stale {
		return s
	}
	sel := make(map[int]bool, len(s.Selected))
	for id := range s.Selected {
		if present[id] {
			sel[id] = true
		}
	}
	s.Selected = sel
	if len(sel) == 0 {
		s.PendingBulkClose = false
	}
	return s
}
