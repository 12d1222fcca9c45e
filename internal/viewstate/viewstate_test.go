package viewstate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lotas/tabmon/internal/types"
)

func apply(s State, actions ...Action) State {
	for _, a := range actions {
		s, _ = Reduce(s, a)
	}
	return s
}

func TestNewDefaults(t *testing.T) {
	s := New("", true)
	assert.Equal(t, types.SortLastActive, s.GlobalSort)
	assert.True(t, s.GroupByWindow)
	assert.Empty(t, s.SelectedIDs())
	assert.False(t, s.PendingBulkClose)
}

func TestSelect(t *testing.T) {
	s := apply(New("", true), Select{ID: 3, On: true}, Select{ID: 1, On: true}, Select{ID: 3, On: false})
	assert.Equal(t, []int{1}, s.SelectedIDs())
	assert.True(t, s.IsSelected(1))
	assert.False(t, s.IsSelected(3))
}

func TestSelectAllReplacesSet(t *testing.T) {
	s := apply(New("", true), Select{ID: 99, On: true}, SelectAll{IDs: []int{1, 2, 3}, On: true})
	assert.Equal(t, []int{1, 2, 3}, s.SelectedIDs())

	s = apply(s, SelectAll{IDs: []int{1, 2, 3}, On: false})
	assert.Empty(t, s.SelectedIDs())
}

func TestTransitionsDoNotMutatePreviousState(t *testing.T) {
	before := apply(New("", true), Select{ID: 1, On: true})
	after := apply(before, Select{ID: 2, On: true}, ToggleCollapse{WindowID: 7}, SetWindowSort{WindowID: 7, Key: types.SortTitle})

	assert.Equal(t, []int{1}, before.SelectedIDs())
	assert.False(t, before.IsCollapsed(7))
	assert.Equal(t, types.SortLastActive, before.SortFor(7))

	assert.Equal(t, []int{1, 2}, after.SelectedIDs())
	assert.True(t, after.IsCollapsed(7))
	assert.Equal(t, types.SortTitle, after.SortFor(7))
}

func TestToggleCollapse(t *testing.T) {
	s := apply(New("", true), ToggleCollapse{WindowID: 4})
	assert.True(t, s.IsCollapsed(4))
	s = apply(s, ToggleCollapse{WindowID: 4})
	assert.False(t, s.IsCollapsed(4))
}

func TestSorts(t *testing.T) {
	s := apply(New("", true), SetGlobalSort{Key: types.SortDomain}, SetWindowSort{WindowID: 2, Key: types.SortPosition})
	assert.Equal(t, types.SortDomain, s.GlobalSort)
	assert.Equal(t, types.SortPosition, s.SortFor(2))
	assert.Equal(t, types.SortLastActive, s.SortFor(3))
}

func TestRequestBulkCloseEmptySelectionIsNoop(t *testing.T) {
	s, eff := Reduce(New("", true), RequestBulkClose{})
	assert.False(t, s.PendingBulkClose)
	assert.Empty(t, eff.CloseIDs)
}

func TestBulkCloseConfirm(t *testing.T) {
	s := apply(New("", true), Select{ID: 5, On: true}, Select{ID: 2, On: true}, RequestBulkClose{})
	assert.True(t, s.PendingBulkClose)

	s, eff := Reduce(s, ConfirmBulkClose{})
	assert.Equal(t, []int{2, 5}, eff.CloseIDs)
	assert.Empty(t, s.SelectedIDs())
	assert.False(t, s.PendingBulkClose)
}

func TestBulkCloseCancelKeepsSelection(t *testing.T) {
	s := apply(New("", true), Select{ID: 5, On: true}, RequestBulkClose{}, CancelBulkClose{})
	assert.False(t, s.PendingBulkClose)
	assert.Equal(t, []int{5}, s.SelectedIDs())
}

func TestReconcileAfterExternalClose(t *testing.T) {
	s := apply(New("", true), SelectAll{IDs: []int{1, 2, 3}, On: true})
	s = apply(s, Reconcile{CurrentIDs: []int{1, 3}})
	assert.Equal(t, []int{1, 3}, s.SelectedIDs())
}

func TestReconcileIsIdempotentSubset(t *testing.T) {
	cases := []struct {
		selected []int
		current  []int
	}{
		{nil, nil},
		{[]int{1, 2, 3}, nil},
		{[]int{1, 2, 3}, []int{2, 4, 6}},
		{[]int{7}, []int{7, 8}},
	}
	for _, tc := range cases {
		s := apply(New("", true), SelectAll{IDs: tc.selected, On: true})
		once := apply(s, Reconcile{CurrentIDs: tc.current})
		twice := apply(once, Reconcile{CurrentIDs: tc.current})
		assert.Equal(t, once.SelectedIDs(), twice.SelectedIDs())

		current := map[int]bool{}
		for _, id := range tc.current {
			current[id] = true
		}
		for _, id := range once.SelectedIDs() {
			assert.True(t, current[id], "id %d not in current", id)
		}
	}
}

func TestReconcileClearsPendingWhenNothingLeft(t *testing.T) {
	s := apply(New("", true), Select{ID: 1, On: true}, RequestBulkClose{}, Reconcile{CurrentIDs: []int{2}})
	assert.False(t, s.PendingBulkClose)
}

func TestGroupByWindowAndFilter(t *testing.T) {
	s := apply(New("", true), ToggleGroupByWindow{}, SetFilter{Query: "*.dev"})
	assert.False(t, s.GroupByWindow)
	assert.Equal(t, "*.dev", s.Filter)
}
