package export

import (
	"encoding/json"
	"testing"
)

func TestJSON_Windows(t *testing.T) {
	result, err := JSON(sampleDoc())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed jsonExport
	if err := json.Unmarshal([]byte(result), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v\noutput:\n%s", err, result)
	}

	if parsed.Source != "bridge" || !parsed.Live {
		t.Errorf("expected live bridge export, got source=%q live=%v", parsed.Source, parsed.Live)
	}
	if parsed.Stats.Tabs != 3 || parsed.Stats.Windows != 2 || parsed.Stats.Pinned != 1 {
		t.Errorf("unexpected stats %+v", parsed.Stats)
	}
	if len(parsed.Windows) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(parsed.Windows))
	}

	w0 := parsed.Windows[0]
	if w0.ID != 5 || w0.Title != "Main Window (Active)" || !w0.Focused {
		t.Errorf("unexpected first window %+v", w0)
	}
	if len(w0.Tabs) != 2 {
		t.Fatalf("expected 2 tabs in window 5, got %d", len(w0.Tabs))
	}

	tab0 := w0.Tabs[0]
	if tab0.Domain != "go.dev" || tab0.Idle != "3d ago" || !tab0.Pinned {
		t.Errorf("unexpected tab0 %+v", tab0)
	}
	if tab0.LastAccessed == nil {
		t.Error("expected last_accessed on tab0")
	}

	tab1 := w0.Tabs[1]
	if tab1.Title != "https://example.com" {
		t.Errorf("expected title fallback to URL, got %q", tab1.Title)
	}
	if tab1.LastAccessed != nil {
		t.Errorf("expected no last_accessed, got %v", tab1.LastAccessed)
	}

	if parsed.Windows[1].Title != "Popup Window" || !parsed.Windows[1].Tabs[0].Audible {
		t.Errorf("unexpected popup window %+v", parsed.Windows[1])
	}
}

func TestJSON_Empty(t *testing.T) {
	result, err := JSON(Document{Source: "demo", ExportedAt: exportedAt})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed jsonExport
	if err := json.Unmarshal([]byte(result), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Live {
		t.Error("expected live=false")
	}
	if parsed.Windows == nil || len(parsed.Windows) != 0 {
		t.Errorf("expected empty windows array, got %v", parsed.Windows)
	}
}
