package analyzer

import (
	"fmt"
	"time"

	"github.com/lotas/tabmon/internal/applog"
	"github.com/lotas/tabmon/internal/format"
	"github.com/lotas/tabmon/internal/types"
)

// EnrichError describes why derivation failed for one tab. It is logged and
// never shown to the user.
type EnrichError struct {
	TabID  int
	Reason string
}

func (e *EnrichError) Error() string {
	return fmt.Sprintf("enrich tab %d: %s", e.TabID, e.Reason)
}

type enrichResult struct {
	tab types.EnrichedTab
	err error
}

// orDefault returns the derived tab, or raw with conservative display
// fields if derivation failed.
func (r enrichResult) orDefault(raw types.RawTab) types.EnrichedTab {
	if r.err == nil {
		return r.tab
	}
	return types.EnrichedTab{
		RawTab:     raw,
		IdleText:   format.Unknown,
		Domain:     format.Unknown,
		IsComplete: true,
		WindowType: types.WindowNormal,
	}
}

func derive(raw types.RawTab, windows []types.RawWindow, now time.Time) (res enrichResult) {
	defer func() {
		if r := recover(); r != nil {
			res = enrichResult{err: &EnrichError{TabID: raw.ID, Reason: fmt.Sprint(r)}}
		}
	}()

	if raw.ID < 0 {
		return enrichResult{err: &EnrichError{TabID: raw.ID, Reason: "negative tab id"}}
	}
	tab := types.EnrichedTab{
		RawTab:     raw,
		IdleText:   format.IdleSince(raw.LastAccessed, now),
		Domain:     format.Domain(raw.URL),
		IsLoading:  raw.Status == types.StatusLoading,
		IsComplete: raw.Status == types.StatusComplete,
		HasAudio:   raw.Audible,
		IsMuted:    raw.Muted,
		IsGrouped:  raw.GroupID != 0 && raw.GroupID != types.UngroupedID,
		WindowType: types.WindowNormal,
	}
	if !raw.LastAccessed.IsZero() {
		tab.Idle = now.Sub(raw.LastAccessed)
		tab.IdleKnown = true
	}
	for _, w := range windows {
		if w.ID == raw.WindowID && w.Type != "" {
			tab.WindowType = w.Type
			break
		}
	}
	return enrichResult{tab: tab}
}

// Enrich derives the display fields of raw. It never fails: a tab that cannot
// be derived comes back with Unknown labels and neutral flags.
func Enrich(raw types.RawTab, windows []types.RawWindow, now time.Time) types.EnrichedTab {
	return derive(raw, windows, now).orDefault(raw)
}

// EnrichAll enriches every tab, logging tabs that fell back to defaults.
func EnrichAll(raws []types.RawTab, windows []types.RawWindow, now time.Time) []types.EnrichedTab {
	out := make([]types.EnrichedTab, 0, len(raws))
	for _, raw := range raws {
		res := derive(raw, windows, now)
		if res.err != nil {
			applog.Warn("enrich.fallback", "tab", raw.ID, "reason", res.err)
		}
		out = append(out, res.orDefault(raw))
	}
	return out
}

// Analyze runs the full enrichment pass over a snapshot.
func Analyze(snap *types.Snapshot, now time.Time) ([]types.EnrichedTab, types.Stats) {
	if snap == nil {
		return nil, types.Stats{}
	}
	tabs := EnrichAll(snap.Tabs, snap.Windows, now)
	AnalyzeDuplicates(tabs)
	AnalyzeStale(tabs, StaleAfter)
	return tabs, ComputeStats(tabs, snap.Windows)
}
