package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lotas/tabmon/internal/aggregate"
	"github.com/lotas/tabmon/internal/analyzer"
	"github.com/lotas/tabmon/internal/applog"
	"github.com/lotas/tabmon/internal/cdp"
	"github.com/lotas/tabmon/internal/config"
	"github.com/lotas/tabmon/internal/export"
	"github.com/lotas/tabmon/internal/firefox"
	"github.com/lotas/tabmon/internal/server"
	"github.com/lotas/tabmon/internal/source"
	"github.com/lotas/tabmon/internal/tui"
	"github.com/lotas/tabmon/internal/types"
)

// connectWait bounds how long CLI subcommands wait for the extension.
const connectWait = 10 * time.Second

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "list":
			runList(os.Args[2:])
			return
		case "export":
			runExport(os.Args[2:])
			return
		case "close":
			runClose(os.Args[2:])
			return
		case "profiles":
			runProfiles()
			return
		case "help", "--help", "-h":
			printHelp()
			return
		}
	}

	fs := flag.NewFlagSet("tabmon", flag.ExitOnError)
	sf := addSourceFlags(fs)
	sortFlag := fs.String("sort", "", "Sort key for the flat view: lastActive, title, domain, position")
	flat := fs.Bool("flat", false, "Start with one flat list instead of grouping by window")
	fs.Parse(os.Args[1:])

	cfg := loadConfig(fs, sf)
	defer applog.Close()
	if *sortFlag != "" {
		cfg.View.Sort = *sortFlag
	}
	if *flat {
		cfg.View.GroupByWindow = false
	}
	sortKey, err := aggregate.ParseSortKey(cfg.View.Sort)
	if err != nil {
		fail(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opened, err := openSource(ctx, cfg)
	if err != nil {
		fail(err)
	}
	defer opened.close()

	opts := tui.Options{
		Sort:          sortKey,
		GroupByWindow: cfg.View.GroupByWindow,
	}
	if opened.srv != nil {
		opts.Wait = opened.srv.WaitConnected
		opts.WaitMessage = fmt.Sprintf("Waiting for extension connection on :%d...", opened.srv.Port())
	}

	p := tea.NewProgram(tui.NewModel(opened.adapter, opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fail(err)
	}
}

func printHelp() {
	fmt.Print(`tabmon: browser tab monitor

Usage:
  tabmon                                   Start the TUI (default)
    --source <name>        demo, bridge, cdp or firefox (default: demo)
    --port <n>             WebSocket port for the extension bridge (default: 19192)
    --cdp-url <url>        DevTools endpoint for the cdp source (default: ws://127.0.0.1:9222)
    --profile <name>       Firefox profile for the firefox source
    --sort <key>           lastActive, title, domain or position
    --flat                 Start with a flat list instead of windows
    --config <path>        Config file (default: ~/.config/tabmon/config.yaml)

  tabmon list                              Print tabs grouped by window
    --sort <key>           Sort key within each window
    --flat                 One list across all windows
    --filter <query>       Fuzzy title/domain match, or a glob like *.github.com

  tabmon export                            Export tabs to stdout or file
    --json                 Export as JSON instead of markdown
    --out <file>           Output file path (default: stdout)

  tabmon close <id>...                     Close tabs by ID

  tabmon profiles                          List Firefox profiles

  list, export and close accept the same source flags as the TUI.

Environment:
  TABMON_SOURCE    Default source (overridden by --source)
  TABMON_PORT      Bridge port (overridden by --port)
  TABMON_CDP_URL   DevTools endpoint (overridden by --cdp-url)
  TABMON_PROFILE   Firefox profile (overridden by --profile)
  TABMON_LOG_DIR   Log directory (default: ~/.local/share/tabmon)
`)
}

// sourceFlags are the flags shared by the TUI and every subcommand that
// talks to a browser.
type sourceFlags struct {
	config  *string
	source  *string
	port    *int
	cdpURL  *string
	profile *string
}

func addSourceFlags(fs *flag.FlagSet) sourceFlags {
	return sourceFlags{
		config:  fs.String("config", "", "Config file path"),
		source:  fs.String("source", "", "Tab source: demo, bridge, cdp or firefox"),
		port:    fs.Int("port", 0, "WebSocket port for the extension bridge"),
		cdpURL:  fs.String("cdp-url", "", "DevTools endpoint for the cdp source"),
		profile: fs.String("profile", "", "Firefox profile name"),
	}
}

// loadConfig resolves flag > env > file > default and starts logging.
func loadConfig(fs *flag.FlagSet, sf sourceFlags) *config.Config {
	cfg, err := config.LoadOptional(*sf.config)
	if err != nil {
		fail(err)
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		fail(err)
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "source":
			cfg.Source = *sf.source
		case "port":
			cfg.Bridge.Port = *sf.port
		case "cdp-url":
			cfg.CDP.URL = *sf.cdpURL
		case "profile":
			cfg.Firefox.Profile = *sf.profile
		}
	})
	if err := cfg.Validate(); err != nil {
		fail(err)
	}

	if dir, err := config.ExpandPath(cfg.Logging.Dir); err == nil {
		if err := applog.Init(dir); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
		}
	}
	return cfg
}

type openedSource struct {
	adapter *source.Adapter
	srv     *server.Server // set for the bridge source
	close   func()
}

// openSource builds the host named by cfg.Source and wraps it in an adapter.
// The bridge server starts listening immediately; ctx stops it.
func openSource(ctx context.Context, cfg *config.Config) (*openedSource, error) {
	opts := []source.Option{
		source.WithTimeout(cfg.Timeout()),
		source.WithDemoFallback(cfg.Fetch.DemoFallback),
	}
	out := &openedSource{close: func() {}}

	switch cfg.Source {
	case config.SourceDemo:
		out.adapter = source.New(nil, source.WithTimeout(cfg.Timeout()), source.WithDemoFallback(true))

	case config.SourceBridge:
		srv := server.New(cfg.Bridge.Port)
		go func() {
			if err := srv.ListenAndServe(ctx); err != nil {
				applog.Error("server.listen", err, "port", cfg.Bridge.Port)
			}
		}()
		out.srv = srv
		out.adapter = source.New(srv, opts...)

	case config.SourceCDP:
		host := cdp.New(cfg.CDP.URL)
		out.close = host.Shutdown
		out.adapter = source.New(host, opts...)

	case config.SourceFirefox:
		profiles, err := firefox.DiscoverProfiles()
		if err != nil {
			return nil, fmt.Errorf("discover profiles: %w", err)
		}
		profile, err := firefox.SelectProfile(profiles, cfg.Firefox.Profile)
		if err != nil {
			return nil, err
		}
		applog.Info("firefox.profile", "name", profile.Name, "path", profile.Path)
		out.adapter = source.New(firefox.NewSessionHost(profile.Path), opts...)
	}
	return out, nil
}

// openCLISource is openSource for one-shot subcommands: it waits for the
// extension before returning.
func openCLISource(ctx context.Context, cfg *config.Config) *openedSource {
	opened, err := openSource(ctx, cfg)
	if err != nil {
		fail(err)
	}
	if opened.srv != nil {
		fmt.Fprintf(os.Stderr, "Waiting for extension on port %d...\n", opened.srv.Port())
		wctx, cancel := context.WithTimeout(ctx, connectWait)
		defer cancel()
		if err := opened.srv.WaitConnected(wctx); err != nil {
			opened.close()
			fail(fmt.Errorf("timed out waiting for extension (%s)", connectWait))
		}
	}
	return opened
}

// fetchGroups fetches, enriches and groups the host's tabs.
func fetchGroups(ctx context.Context, a *source.Adapter) (*types.Snapshot, []types.WindowGroup, types.Stats, error) {
	snap, err := a.Fetch(ctx)
	if err != nil {
		return nil, nil, types.Stats{}, err
	}
	tabs, stats := analyzer.Analyze(snap, time.Now())
	return snap, aggregate.Group(tabs, snap.Windows), stats, nil
}

func runList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	sf := addSourceFlags(fs)
	sortFlag := fs.String("sort", "lastActive", "Sort key: lastActive, title, domain, position")
	flat := fs.Bool("flat", false, "One list across all windows")
	filter := fs.String("filter", "", "Fuzzy title/domain match, or a domain glob")
	fs.Parse(args)

	key, err := aggregate.ParseSortKey(*sortFlag)
	if err != nil {
		fail(err)
	}
	cfg := loadConfig(fs, sf)
	defer applog.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	opened := openCLISource(ctx, cfg)
	defer opened.close()

	_, groups, stats, err := fetchGroups(ctx, opened.adapter)
	if err != nil {
		fail(err)
	}
	groups = aggregate.FilterGroups(groups, *filter)

	if *flat {
		for _, t := range aggregate.Sort(aggregate.Flatten(groups), key) {
			printTab(t, "")
		}
	} else {
		for _, g := range aggregate.SortGroups(groups, nil, key) {
			fmt.Printf("%s #%d (%d tabs)\n", aggregate.WindowTitle(g.Window), g.Window.ID, len(g.Tabs))
			for _, t := range g.Tabs {
				printTab(t, "  ")
			}
		}
	}
	fmt.Fprintf(os.Stderr, "%d tabs in %d windows (%s)\n", stats.TotalTabs, stats.TotalWindows, opened.adapter.Name())
}

func printTab(t types.EnrichedTab, indent string) {
	title := t.Title
	if title == "" {
		title = "Untitled"
	}
	var marks []string
	if t.Active {
		marks = append(marks, "active")
	}
	if t.Pinned {
		marks = append(marks, "pinned")
	}
	if t.IsDuplicate {
		marks = append(marks, "duplicate")
	}
	if t.IsStale {
		marks = append(marks, fmt.Sprintf("stale %dd", t.StaleDays))
	}
	suffix := ""
	if len(marks) > 0 {
		suffix = " [" + strings.Join(marks, ", ") + "]"
	}
	fmt.Printf("%s%6d  %s  (%s, %s)%s\n", indent, t.ID, title, t.Domain, t.IdleText, suffix)
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	sf := addSourceFlags(fs)
	jsonFlag := fs.Bool("json", false, "Export as JSON instead of markdown")
	outFile := fs.String("out", "", "Output file path (default: stdout)")
	fs.Parse(args)

	cfg := loadConfig(fs, sf)
	defer applog.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	opened := openCLISource(ctx, cfg)
	defer opened.close()

	snap, groups, stats, err := fetchGroups(ctx, opened.adapter)
	if err != nil {
		fail(err)
	}
	doc := export.Document{
		Source:     snap.Source,
		Live:       snap.Live,
		ExportedAt: time.Now(),
		Groups:     aggregate.SortGroups(groups, nil, types.SortPosition),
		Stats:      stats,
	}

	var output string
	if *jsonFlag {
		output, err = export.JSON(doc)
		if err != nil {
			fail(fmt.Errorf("generating JSON: %w", err))
		}
	} else {
		output = export.Markdown(doc)
	}

	if *outFile != "" {
		if err := os.WriteFile(*outFile, []byte(output), 0644); err != nil {
			fail(fmt.Errorf("writing file: %w", err))
		}
		fmt.Fprintf(os.Stderr, "Exported %d tabs to %s\n", stats.TotalTabs, *outFile)
	} else {
		fmt.Print(output)
	}
}

func runClose(args []string) {
	fs := flag.NewFlagSet("close", flag.ExitOnError)
	sf := addSourceFlags(fs)
	fs.Parse(reorderArgs(args))

	if fs.NArg() == 0 {
		fail(fmt.Errorf("usage: tabmon close <id>..."))
	}
	ids := make([]int, 0, fs.NArg())
	for _, arg := range fs.Args() {
		id, err := strconv.Atoi(arg)
		if err != nil {
			fail(fmt.Errorf("invalid tab ID %q", arg))
		}
		ids = append(ids, id)
	}

	cfg := loadConfig(fs, sf)
	defer applog.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	opened := openCLISource(ctx, cfg)
	defer opened.close()

	if err := opened.adapter.CloseMany(ctx, ids); err != nil {
		fail(fmt.Errorf("%s", source.Describe(err)))
	}
	fmt.Printf("Closed %d tabs\n", len(ids))
}

func runProfiles() {
	profiles, err := firefox.DiscoverProfiles()
	if err != nil {
		fail(fmt.Errorf("discovering Firefox profiles: %w", err))
	}
	if len(profiles) == 0 {
		fmt.Fprintln(os.Stderr, "No Firefox profiles found.")
		os.Exit(1)
	}

	for _, p := range profiles {
		suffix := ""
		if p.IsDefault {
			suffix = " [default]"
		}
		fmt.Printf("%s (%s)%s\n", p.Name, p.Path, suffix)
	}
}

// reorderArgs moves flag arguments before positional arguments so that
// flag.Parse handles them correctly (it stops at the first non-flag arg).
func reorderArgs(args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		if strings.HasPrefix(args[i], "-") {
			flags = append(flags, args[i])
			if !strings.Contains(args[i], "=") && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				flags = append(flags, args[i+1])
				i++
			}
		} else {
			positional = append(positional, args[i])
		}
	}
	return append(flags, positional...)
}

func fail(err error) {
	applog.Error("cli.fail", err)
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
