package firefox

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lotas/tabmon/internal/types"
	"github.com/pierrec/lz4/v4"
)

// mozlz4 header: 8-byte magic "mozLz40\x00"
var mozLz4Magic = []byte("mozLz40\x00")

// DecompressMozLz4 decompresses data in Mozilla's mozlz4 format.
// The format is: 8-byte magic "mozLz40\x00" + 4-byte LE uint32 uncompressed size + lz4 block data.
func DecompressMozLz4(data []byte) ([]byte, error) {
	const headerSize = 12 // 8 magic + 4 size

	if len(data) < headerSize {
		return nil, fmt.Errorf("mozlz4: data too short (%d bytes)", len(data))
	}

	// Verify magic header.
	for i := 0; i < len(mozLz4Magic); i++ {
		if data[i] != mozLz4Magic[i] {
			return nil, fmt.Errorf("mozlz4: invalid header magic")
		}
	}

	// Read uncompressed size (4-byte little-endian uint32).
	uncompressedSize := binary.LittleEndian.Uint32(data[8:12])

	// Decompress using raw lz4 block decompression.
	dst := make([]byte, uncompressedSize)
	n, err := lz4.UncompressBlock(data[headerSize:], dst)
	if err != nil {
		return nil, fmt.Errorf("mozlz4: decompress failed: %w", err)
	}

	return dst[:n], nil
}

// Raw JSON types for Firefox session file parsing.
type rawEntry struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

type rawTab struct {
	Entries      []rawEntry `json:"entries"`
	Index        int        `json:"index"`
	LastAccessed int64      `json:"lastAccessed"`
	Image        string     `json:"image"`
	Group        string     `json:"groupId"`
	Pinned       bool       `json:"pinned"`
	Hidden       bool       `json:"hidden"`
	Muted        bool       `json:"muted"`
}

type rawWindow struct {
	Tabs      []rawTab `json:"tabs"`
	Selected  int      `json:"selected"` // 1-based index of the active tab
	IsPopup   bool     `json:"isPopup"`
	IsPrivate bool     `json:"isPrivate"`
}

type rawSession struct {
	Windows        []rawWindow `json:"windows"`
	SelectedWindow int         `json:"selectedWindow"` // 1-based
}

// ParseSession parses raw JSON session data into a snapshot.
//
// Session files carry no tab or window IDs, so both are numbered by position
// starting at 1. Named groups get small positive IDs in order of first use.
func ParseSession(data []byte) (*types.Snapshot, error) {
	var raw rawSession
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse session JSON: %w", err)
	}

	snap := &types.Snapshot{
		Source:    "firefox",
		Live:      true,
		FetchedAt: time.Now(),
	}
	groupIDs := make(map[string]int)
	nextTabID := 1

	for winIdx, window := range raw.Windows {
		w := types.RawWindow{
			ID:        winIdx + 1,
			Type:      types.WindowNormal,
			Focused:   winIdx+1 == raw.SelectedWindow,
			Incognito: window.IsPrivate,
		}
		if window.IsPopup {
			w.Type = types.WindowPopup
		}

		position := 0
		for tabIdx, rt := range window.Tabs {
			if len(rt.Entries) == 0 || rt.Hidden {
				continue
			}

			// index is 1-based; current page is entries[index-1].
			entryIdx := rt.Index - 1
			if entryIdx < 0 || entryIdx >= len(rt.Entries) {
				entryIdx = len(rt.Entries) - 1
			}
			entry := rt.Entries[entryIdx]

			tab := types.RawTab{
				ID:         nextTabID,
				URL:        entry.URL,
				Title:      entry.Title,
				FavIconURL: rt.Image,
				WindowID:   w.ID,
				Active:     tabIdx+1 == window.Selected,
				Pinned:     rt.Pinned,
				Muted:      rt.Muted,
				Status:     types.StatusComplete,
				Index:      position,
				GroupID:    types.UngroupedID,
			}
			if rt.LastAccessed > 0 {
				tab.LastAccessed = time.UnixMilli(rt.LastAccessed)
			}
			if rt.Group != "" {
				id, ok := groupIDs[rt.Group]
				if !ok {
					id = len(groupIDs) + 1
					groupIDs[rt.Group] = id
				}
				tab.GroupID = id
			}
			nextTabID++
			position++

			w.Tabs = append(w.Tabs, tab)
			snap.Tabs = append(snap.Tabs, tab)
		}
		snap.Windows = append(snap.Windows, w)
	}

	return snap, nil
}

// ReadSessionFile reads and parses the newest session file in profileDir.
func ReadSessionFile(profileDir string) (*types.Snapshot, error) {
	path := sessionFile(profileDir)
	if path == "" {
		return nil, fmt.Errorf("no session file found in %s", filepath.Join(profileDir, "sessionstore-backups"))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}

	decompressed, err := DecompressMozLz4(data)
	if err != nil {
		return nil, fmt.Errorf("decompress session file: %w", err)
	}

	return ParseSession(decompressed)
}
