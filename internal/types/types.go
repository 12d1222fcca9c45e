package types

import "time"

// LoadStatus is the host-reported load state of a tab.
type LoadStatus string

const (
	StatusLoading  LoadStatus = "loading"
	StatusComplete LoadStatus = "complete"
	StatusUnloaded LoadStatus = "unloaded" // discarded by the browser
)

// WindowType is the host-reported kind of a window.
type WindowType string

const (
	WindowNormal   WindowType = "normal"
	WindowPopup    WindowType = "popup"
	WindowDevtools WindowType = "devtools"
)

// UngroupedID is the host sentinel for a tab outside any tab group.
const UngroupedID = -1

// RawTab is a tab exactly as reported by the host.
type RawTab struct {
	ID           int
	Title        string
	URL          string
	FavIconURL   string
	WindowID     int
	Active       bool
	Pinned       bool
	Audible      bool
	Muted        bool
	Status       LoadStatus
	LastAccessed time.Time // zero if the host did not report it
	Index        int
	GroupID      int // 0 or UngroupedID if ungrouped
}

// RawWindow is a window exactly as reported by the host.
type RawWindow struct {
	ID        int
	Type      WindowType
	Focused   bool
	Incognito bool
	Tabs      []RawTab // populated only when requested
}

// EnrichedTab is a RawTab plus display fields derived on every fetch.
type EnrichedTab struct {
	RawTab

	Idle       time.Duration
	IdleKnown  bool
	IdleText   string
	Domain     string
	IsLoading  bool
	IsComplete bool
	HasAudio   bool
	IsMuted    bool
	IsGrouped  bool
	WindowType WindowType

	// Analyzer findings
	IsDuplicate bool
	IsStale     bool
	StaleDays   int
}

// WindowGroup pairs a window with its tabs for one aggregation pass.
type WindowGroup struct {
	Window RawWindow
	Tabs   []EnrichedTab
}

// Snapshot is one fetch of the host's windows and tabs.
type Snapshot struct {
	Windows   []RawWindow
	Tabs      []RawTab
	Live      bool   // false when the demo snapshot stands in for a host
	Source    string // host name, e.g. "bridge", "cdp", "firefox", "demo"
	FetchedAt time.Time
}

// Profile represents a Firefox profile.
type Profile struct {
	Name       string
	Path       string // absolute path to profile directory
	IsDefault  bool
	IsRelative bool
}

// Stats holds aggregate statistics.
type Stats struct {
	TotalTabs     int
	TotalWindows  int
	AudibleTabs   int
	MutedTabs     int
	LoadingTabs   int
	PinnedTabs    int
	GroupedTabs   int
	DuplicateTabs int
	StaleTabs     int
}

// SortKey controls tab ordering.
type SortKey string

const (
	SortLastActive SortKey = "lastActive"
	SortTitle      SortKey = "title"
	SortDomain     SortKey = "domain"
	SortPosition   SortKey = "position"
)

// SortKeys lists every sort key in display order.
var SortKeys = []SortKey{SortLastActive, SortTitle, SortDomain, SortPosition}
