package cdp

import (
	"context"
	"errors"
	"testing"

	"github.com/chromedp/cdproto/target"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lotas/tabmon/internal/source"
	"github.com/lotas/tabmon/internal/types"
)

func TestRegistryKeepsIDsStable(t *testing.T) {
	r := newRegistry()
	first := []page{{targetID: "A"}, {targetID: "B"}}
	r.assign(first)
	assert.Equal(t, 1, first[0].tabID)
	assert.Equal(t, 2, first[1].tabID)

	second := []page{{targetID: "C"}, {targetID: "B"}}
	r.assign(second)
	assert.Equal(t, 3, second[0].tabID)
	assert.Equal(t, 2, second[1].tabID)

	_, ok := r.target(1)
	assert.False(t, ok, "A is gone and its id must be dropped")
	tid, ok := r.target(2)
	require.True(t, ok)
	assert.Equal(t, target.ID("B"), tid)

	r.forget("B")
	_, ok = r.target(2)
	assert.False(t, ok)
}

func TestAssembleGroupsPagesByWindow(t *testing.T) {
	pages := []page{
		{targetID: "a", tabID: 1, title: "Docs", url: "https://go.dev", windowID: 20},
		{targetID: "b", tabID: 2, title: "News", url: "https://news.example.com", windowID: 10},
		{targetID: "c", tabID: 3, title: "Mail", url: "https://mail.example.com", windowID: 20},
		{targetID: "d", tabID: 4, title: "DevTools", url: "devtools://devtools/bundled/inspector.html", windowID: 30},
	}

	windows, tabs := assemble(pages)
	require.Len(t, windows, 3)
	require.Len(t, tabs, 4)

	assert.Equal(t, 10, windows[0].ID)
	assert.False(t, windows[0].Focused)
	assert.Equal(t, 20, windows[1].ID)
	assert.True(t, windows[1].Focused)
	assert.Equal(t, types.WindowNormal, windows[1].Type)
	assert.Equal(t, types.WindowDevtools, windows[2].Type)

	w20 := windows[1].Tabs
	require.Len(t, w20, 2)
	assert.True(t, w20[0].Active)
	assert.False(t, w20[1].Active)
	assert.Equal(t, 1, w20[1].Index)

	for _, tab := range tabs {
		assert.Equal(t, types.UngroupedID, tab.GroupID)
		assert.Equal(t, types.StatusComplete, tab.Status)
	}
}

func TestAssembleEmpty(t *testing.T) {
	windows, tabs := assemble(nil)
	assert.Empty(t, windows)
	assert.Empty(t, tabs)
}

func TestMutationOnUnknownTab(t *testing.T) {
	h := New("")
	err := h.Activate(context.Background(), 42)
	var apiErr *source.APIError
	assert.True(t, errors.As(err, &apiErr))
}
