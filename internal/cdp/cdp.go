// Package cdp reads and controls the tabs of a Chromium browser over the
// Chrome DevTools Protocol. Start the browser with --remote-debugging-port.
package cdp

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/chromedp/cdproto/browser"
	cdpproto "github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"

	"github.com/lotas/tabmon/internal/applog"
	"github.com/lotas/tabmon/internal/source"
	"github.com/lotas/tabmon/internal/types"
)

// DefaultURL is the debugging endpoint Chromium opens with --remote-debugging-port=9222.
const DefaultURL = "ws://127.0.0.1:9222"

// Host implements source.Host over a remote debugging connection. The
// connection is opened on first use and reopened after it fails.
type Host struct {
	url string

	mu     sync.Mutex
	conn   *chromedp.Context
	cancel context.CancelFunc
	ids    *registry
}

// New returns a host for the debugging endpoint at url.
func New(url string) *Host {
	if url == "" {
		url = DefaultURL
	}
	return &Host{url: url, ids: newRegistry()}
}

func (h *Host) Name() string { return "cdp" }

// connect returns an executor bound to the browser connection. Targets
// allocates the browser without opening a tab of our own.
func (h *Host) connect() (*chromedp.Context, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conn != nil {
		return h.conn, nil
	}

	allocCtx, allocCancel := chromedp.NewRemoteAllocator(context.Background(), h.url)
	bctx, bcancel := chromedp.NewContext(allocCtx)
	cancel := func() {
		bcancel()
		allocCancel()
	}
	if _, err := chromedp.Targets(bctx); err != nil {
		cancel()
		applog.Error("cdp.connect", err, "url", h.url)
		return nil, fmt.Errorf("connect %s: %v: %w", h.url, err, source.ErrAPIUnavailable)
	}
	c := chromedp.FromContext(bctx)
	if c == nil || c.Browser == nil {
		cancel()
		return nil, fmt.Errorf("connect %s: no browser: %w", h.url, source.ErrAPIUnavailable)
	}
	applog.Info("cdp.connected", "url", h.url)
	h.conn = c
	h.cancel = cancel
	return c, nil
}

// reset drops a broken connection so the next call dials again.
func (h *Host) reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		h.cancel()
	}
	h.conn = nil
	h.cancel = nil
}

// Shutdown closes the debugging connection. The browser keeps running.
func (h *Host) Shutdown() {
	h.reset()
}

func (h *Host) executor(ctx context.Context) (context.Context, error) {
	c, err := h.connect()
	if err != nil {
		return nil, err
	}
	return cdpproto.WithExecutor(ctx, c.Browser), nil
}

// pages lists every page target with its window.
func (h *Host) pages(ctx context.Context) ([]page, error) {
	ectx, err := h.executor(ctx)
	if err != nil {
		return nil, err
	}
	infos, err := target.GetTargets().Do(ectx)
	if err != nil {
		h.reset()
		return nil, fmt.Errorf("get targets: %w", err)
	}

	var out []page
	for _, info := range infos {
		if info.Type != "page" {
			continue
		}
		windowID, _, err := browser.GetWindowForTarget().WithTargetID(info.TargetID).Do(ectx)
		if err != nil {
			// The target closed between the two calls.
			applog.Warn("cdp.window", "target", string(info.TargetID), "error", err)
			continue
		}
		out = append(out, page{
			targetID: info.TargetID,
			title:    info.Title,
			url:      info.URL,
			windowID: int(windowID),
		})
	}
	h.ids.assign(out)
	return out, nil
}

func (h *Host) ListWindows(ctx context.Context, includeTabs bool) ([]types.RawWindow, error) {
	pages, err := h.pages(ctx)
	if err != nil {
		return nil, err
	}
	windows, _ := assemble(pages)
	if !includeTabs {
		for i := range windows {
			windows[i].Tabs = nil
		}
	}
	return windows, nil
}

func (h *Host) ListTabs(ctx context.Context) ([]types.RawTab, error) {
	pages, err := h.pages(ctx)
	if err != nil {
		return nil, err
	}
	_, tabs := assemble(pages)
	return tabs, nil
}

func (h *Host) Activate(ctx context.Context, id int) error {
	tid, ok := h.ids.target(id)
	if !ok {
		return &source.APIError{Op: "activate", Message: fmt.Sprintf("no tab with id %d", id)}
	}
	ectx, err := h.executor(ctx)
	if err != nil {
		return err
	}
	return target.ActivateTarget(tid).Do(ectx)
}

func (h *Host) Close(ctx context.Context, id int) error {
	return h.CloseMany(ctx, []int{id})
}

// CloseMany closes each tab in turn and reports every id that failed.
func (h *Host) CloseMany(ctx context.Context, ids []int) error {
	ectx, err := h.executor(ctx)
	if err != nil {
		return err
	}
	var errs []error
	for _, id := range ids {
		tid, ok := h.ids.target(id)
		if !ok {
			errs = append(errs, fmt.Errorf("no tab with id %d", id))
			continue
		}
		if err := target.CloseTarget(tid).Do(ectx); err != nil {
			errs = append(errs, fmt.Errorf("tab %d: %w", id, err))
			continue
		}
		h.ids.forget(tid)
	}
	if len(errs) > 0 {
		return &source.APIError{Op: "close", Message: errors.Join(errs...).Error()}
	}
	return nil
}

// page is one page target and the window it lives in.
type page struct {
	targetID target.ID
	tabID    int
	title    string
	url      string
	windowID int
}

// registry hands out small stable integer ids for CDP target ids.
type registry struct {
	mu    sync.Mutex
	next  int
	byTID map[target.ID]int
	byID  map[int]target.ID
}

func newRegistry() *registry {
	return &registry{next: 1, byTID: make(map[target.ID]int), byID: make(map[int]target.ID)}
}

// assign sets tabID on every page and drops ids for targets that are gone.
func (r *registry) assign(pages []page) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[target.ID]bool, len(pages))
	for i := range pages {
		tid := pages[i].targetID
		seen[tid] = true
		id, ok := r.byTID[tid]
		if !ok {
			id = r.next
			r.next++
			r.byTID[tid] = id
			r.byID[id] = tid
		}
		pages[i].tabID = id
	}
	for tid, id := range r.byTID {
		if !seen[tid] {
			delete(r.byTID, tid)
			delete(r.byID, id)
		}
	}
}

func (r *registry) target(id int) (target.ID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tid, ok := r.byID[id]
	return tid, ok
}

func (r *registry) forget(tid target.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.byTID[tid]; ok {
		delete(r.byID, id)
		delete(r.byTID, tid)
	}
}

// assemble builds windows and tabs from pages in target order.
//
// CDP reports neither focus nor the active tab. Targets come back most
// recently used first, so the window of the first page is taken as focused
// and the first page of each window as its active tab.
func assemble(pages []page) ([]types.RawWindow, []types.RawTab) {
	byWindow := make(map[int]*types.RawWindow)
	var order []int
	var tabs []types.RawTab

	for i, p := range pages {
		w, ok := byWindow[p.windowID]
		if !ok {
			w = &types.RawWindow{
				ID:      p.windowID,
				Type:    types.WindowDevtools,
				Focused: i == 0,
			}
			byWindow[p.windowID] = w
			order = append(order, p.windowID)
		}
		if !strings.HasPrefix(p.url, "devtools://") {
			w.Type = types.WindowNormal
		}
		tab := types.RawTab{
			ID:       p.tabID,
			Title:    p.title,
			URL:      p.url,
			WindowID: p.windowID,
			Active:   len(w.Tabs) == 0,
			Status:   types.StatusComplete,
			Index:    len(w.Tabs),
			GroupID:  types.UngroupedID,
		}
		w.Tabs = append(w.Tabs, tab)
		tabs = append(tabs, tab)
	}

	sort.Ints(order)
	windows := make([]types.RawWindow, 0, len(order))
	for _, id := range order {
		windows = append(windows, *byWindow[id])
	}
	return windows, tabs
}
