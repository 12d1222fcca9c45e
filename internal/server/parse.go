package server

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lotas/tabmon/internal/types"
)

type wireMutedInfo struct {
	Muted bool `json:"muted"`
}

type wireTab struct {
	ID           int           `json:"id"`
	URL          string        `json:"url"`
	Title        string        `json:"title"`
	FavIconURL   string        `json:"favIconUrl"`
	WindowID     int           `json:"windowId"`
	Active       bool          `json:"active"`
	Pinned       bool          `json:"pinned"`
	Audible      bool          `json:"audible"`
	MutedInfo    wireMutedInfo `json:"mutedInfo"`
	Status       string        `json:"status"`
	LastAccessed float64       `json:"lastAccessed"` // ms since epoch, fractional
	Index        int           `json:"index"`
	GroupID      *int          `json:"groupId"`
}

type wireWindow struct {
	ID        int       `json:"id"`
	Type      string    `json:"type"`
	Focused   bool      `json:"focused"`
	Incognito bool      `json:"incognito"`
	Tabs      []wireTab `json:"tabs"`
}

func (wt wireTab) raw() types.RawTab {
	tab := types.RawTab{
		ID:         wt.ID,
		Title:      wt.Title,
		URL:        wt.URL,
		FavIconURL: wt.FavIconURL,
		WindowID:   wt.WindowID,
		Active:     wt.Active,
		Pinned:     wt.Pinned,
		Audible:    wt.Audible,
		Muted:      wt.MutedInfo.Muted,
		Status:     types.LoadStatus(wt.Status),
		Index:      wt.Index,
		GroupID:    types.UngroupedID,
	}
	if wt.LastAccessed > 0 {
		tab.LastAccessed = time.UnixMicro(int64(wt.LastAccessed * 1000))
	}
	if wt.GroupID != nil {
		tab.GroupID = *wt.GroupID
	}
	return tab
}

// ParseTabs converts the "tabs" payload of a list-tabs reply.
func ParseTabs(raw json.RawMessage) ([]types.RawTab, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var wts []wireTab
	if err := json.Unmarshal(raw, &wts); err != nil {
		return nil, fmt.Errorf("parse tabs: %w", err)
	}
	tabs := make([]types.RawTab, 0, len(wts))
	for _, wt := range wts {
		tabs = append(tabs, wt.raw())
	}
	return tabs, nil
}

// ParseWindows converts the "windows" payload of a list-windows reply.
func ParseWindows(raw json.RawMessage) ([]types.RawWindow, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var wws []wireWindow
	if err := json.Unmarshal(raw, &wws); err != nil {
		return nil, fmt.Errorf("parse windows: %w", err)
	}
	windows := make([]types.RawWindow, 0, len(wws))
	for _, ww := range wws {
		w := types.RawWindow{
			ID:        ww.ID,
			Type:      types.WindowType(ww.Type),
			Focused:   ww.Focused,
			Incognito: ww.Incognito,
		}
		if w.Type == "" {
			w.Type = types.WindowNormal
		}
		for _, wt := range ww.Tabs {
			w.Tabs = append(w.Tabs, wt.raw())
		}
		windows = append(windows, w)
	}
	return windows, nil
}
