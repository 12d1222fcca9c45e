// Package source fetches windows and tabs from a browser host and performs
// tab mutations on it. It is the only package that calls a Host.
package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lotas/tabmon/internal/applog"
	"github.com/lotas/tabmon/internal/types"
)

// DefaultTimeout bounds every host call.
const DefaultTimeout = 10 * time.Second

// Host is a browser backend. A host may report failure by returning an
// *APIError, an error wrapping ErrAPIUnavailable, or any other error; the
// adapter normalises all of them.
type Host interface {
	Name() string
	ListWindows(ctx context.Context, includeTabs bool) ([]types.RawWindow, error)
	ListTabs(ctx context.Context) ([]types.RawTab, error)
	Activate(ctx context.Context, id int) error
	Close(ctx context.Context, id int) error
	CloseMany(ctx context.Context, ids []int) error
}

// Adapter wraps a Host with timeouts and error translation.
type Adapter struct {
	host         Host
	timeout      time.Duration
	demoFallback bool
	demo         demoState
	now          func() time.Time
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithTimeout sets the per-call host timeout.
func WithTimeout(d time.Duration) Option {
	return func(a *Adapter) { a.timeout = d }
}

// WithDemoFallback serves the demo snapshot instead of failing with
// ErrAPIUnavailable, both for a nil host and for a host that reports it
// cannot be reached. Mutations then apply to the demo data.
func WithDemoFallback(on bool) Option {
	return func(a *Adapter) { a.demoFallback = on }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(a *Adapter) { a.now = now }
}

// New returns an Adapter for host. A nil host means no browser API exists.
func New(host Host, opts ...Option) *Adapter {
	a := &Adapter{
		host:    host,
		timeout: DefaultTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Live reports whether the adapter talks to a real host.
func (a *Adapter) Live() bool {
	return a.host != nil
}

// Name returns the host name, or "demo" when there is none.
func (a *Adapter) Name() string {
	if a.host == nil {
		return "demo"
	}
	return a.host.Name()
}

// Fetch queries all windows (with tabs) and all tabs from the host.
func (a *Adapter) Fetch(ctx context.Context) (*types.Snapshot, error) {
	if a.host == nil {
		if a.demoFallback {
			applog.Info("fetch.demo")
			return a.demo.fetch(a.now()), nil
		}
		return nil, fmt.Errorf("fetch: %w", ErrAPIUnavailable)
	}

	applog.Info("fetch.start", "source", a.host.Name())
	start := a.now()

	var windows []types.RawWindow
	var tabs []types.RawTab
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		windows, err = race(gctx, a.timeout, "list-windows", func(ctx context.Context) ([]types.RawWindow, error) {
			return a.host.ListWindows(ctx, true)
		})
		return err
	})
	g.Go(func() error {
		var err error
		tabs, err = race(gctx, a.timeout, "list-tabs", a.host.ListTabs)
		return err
	})
	if err := g.Wait(); err != nil {
		if a.fallBack(err) {
			applog.Warn("fetch.demo", "source", a.host.Name(), "error", err)
			return a.demo.fetch(a.now()), nil
		}
		applog.Error("fetch.failed", err, "source", a.host.Name())
		return nil, err
	}

	applog.Info("fetch.done", "source", a.host.Name(), "windows", len(windows), "tabs", len(tabs),
		"took", a.now().Sub(start))
	return &types.Snapshot{
		Windows:   windows,
		Tabs:      tabs,
		Live:      true,
		Source:    a.host.Name(),
		FetchedAt: a.now(),
	}, nil
}

// Activate focuses tab id in its window.
func (a *Adapter) Activate(ctx context.Context, id int) error {
	return a.mutate(ctx, "activate", []int{id}, func(ctx context.Context) error {
		return a.host.Activate(ctx, id)
	})
}

// Close closes a single tab.
func (a *Adapter) Close(ctx context.Context, id int) error {
	return a.mutate(ctx, "close", []int{id}, func(ctx context.Context) error {
		return a.host.Close(ctx, id)
	})
}

// CloseMany closes all ids in one host call. An empty list is a no-op.
func (a *Adapter) CloseMany(ctx context.Context, ids []int) error {
	if len(ids) == 0 {
		return nil
	}
	return a.mutate(ctx, "close-many", ids, func(ctx context.Context) error {
		return a.host.CloseMany(ctx, ids)
	})
}

func (a *Adapter) mutate(ctx context.Context, op string, ids []int, call func(context.Context) error) error {
	if a.host == nil {
		if a.demoFallback {
			applog.Info("host.demo", "op", op, "tabs", ids)
			a.demo.apply(op, ids, a.now())
			return nil
		}
		return fmt.Errorf("%s: %w", op, ErrAPIUnavailable)
	}
	_, err := race(ctx, a.timeout, op, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, call(ctx)
	})
	if err != nil {
		if a.fallBack(err) {
			applog.Warn("host.demo", "op", op, "tabs", ids, "error", err)
			a.demo.apply(op, ids, a.now())
			return nil
		}
		applog.Error("host."+op, err, "tabs", ids)
		return err
	}
	applog.Info("host."+op, "tabs", ids)
	return nil
}

// fallBack reports whether err means the host is unreachable and the demo
// data should stand in for it.
func (a *Adapter) fallBack(err error) bool {
	return a.demoFallback && errors.Is(err, ErrAPIUnavailable)
}

// race runs call against a timer. The first to settle wins; a late host
// answer is discarded.
func race[T any](ctx context.Context, timeout time.Duration, op string, call func(context.Context) (T, error)) (T, error) {
	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := call(ctx)
		done <- result{v, err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var zero T
	select {
	case r := <-done:
		if r.err != nil {
			return zero, translate(op, r.err)
		}
		return r.v, nil
	case <-timer.C:
		return zero, fmt.Errorf("%s: %w after %s", op, ErrAPITimeout, timeout)
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
