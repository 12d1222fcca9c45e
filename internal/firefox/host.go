package firefox

import (
	"context"

	"github.com/lotas/tabmon/internal/source"
	"github.com/lotas/tabmon/internal/types"
)

// SessionHost serves windows and tabs from a profile's session file. Firefox
// flushes the file every few seconds, so each list call re-reads it.
// Mutations are not possible on a file and always fail.
type SessionHost struct {
	profileDir string
}

// NewSessionHost returns a host reading the session file under profileDir.
func NewSessionHost(profileDir string) *SessionHost {
	return &SessionHost{profileDir: profileDir}
}

func (h *SessionHost) Name() string { return "firefox" }

func (h *SessionHost) read(ctx context.Context) (*types.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ReadSessionFile(h.profileDir)
}

// ListWindows returns every window in the session. Tabs are dropped unless
// includeTabs is set.
func (h *SessionHost) ListWindows(ctx context.Context, includeTabs bool) ([]types.RawWindow, error) {
	snap, err := h.read(ctx)
	if err != nil {
		return nil, err
	}
	if !includeTabs {
		for i := range snap.Windows {
			snap.Windows[i].Tabs = nil
		}
	}
	return snap.Windows, nil
}

func (h *SessionHost) ListTabs(ctx context.Context) ([]types.RawTab, error) {
	snap, err := h.read(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Tabs, nil
}

func (h *SessionHost) Activate(ctx context.Context, id int) error {
	return readOnly("activate")
}

func (h *SessionHost) Close(ctx context.Context, id int) error {
	return readOnly("close")
}

func (h *SessionHost) CloseMany(ctx context.Context, ids []int) error {
	return readOnly("close-many")
}

func readOnly(op string) error {
	return &source.APIError{Op: op, Message: "read-only source: session files cannot be changed"}
}
