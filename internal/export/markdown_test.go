package export

import (
	"strings"
	"testing"

	"github.com/lotas/tabmon/internal/types"
)

func TestMarkdown_Windows(t *testing.T) {
	result := Markdown(sampleDoc())

	for _, want := range []string{
		"# Open Tabs (bridge)",
		"> Exported 2026-03-01 14:30\n",
		"## Main Window (Active) #5 (2 tabs)",
		"## Popup Window #2 (1 tab)",
		"- [Go docs](https://go.dev/doc) · go.dev · 3d ago (pinned)",
		"- [https://example.com](https://example.com) · example.com · Unknown\n",
		"- [Player](https://music.example.com) · music.example.com · 5m ago (playing audio)",
	} {
		if !strings.Contains(result, want) {
			t.Errorf("missing %q, got:\n%s", want, result)
		}
	}
}

func TestMarkdown_DemoAndUntitled(t *testing.T) {
	doc := Document{
		Source:     "demo",
		ExportedAt: exportedAt,
		Groups: []types.WindowGroup{{
			Window: types.RawWindow{ID: 1},
			Tabs:   []types.EnrichedTab{{RawTab: types.RawTab{ID: 9}, Domain: "Unknown", IdleText: "Unknown"}},
		}},
	}
	result := Markdown(doc)

	if !strings.Contains(result, "from demo data") {
		t.Errorf("expected demo marker, got:\n%s", result)
	}
	if !strings.Contains(result, "- [Untitled]()") {
		t.Errorf("expected Untitled fallback, got:\n%s", result)
	}
}
