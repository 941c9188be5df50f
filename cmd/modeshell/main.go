// Package main is the entry point for the modeshell demo.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/dshills/modeshell/internal/app"
	"github.com/dshills/modeshell/internal/config"
	"github.com/dshills/modeshell/internal/input/keymap"
	"github.com/dshills/modeshell/internal/terminal"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// hint is one entry of the help footer. seq is the key sequence it
// advertises and action what the default table does with its last key.
type hint struct {
	text   string
	label  string
	seq    []string
	action keymap.Action
}

var hints = []hint{
	{"j/k", "scroll", []string{"j"}, keymap.ActionScrollDown},
	{"Tab", "focus", []string{"<Tab>"}, keymap.ActionPassThrough},
	{"<Space>n", "tab", []string{"<Space>", "n"}, keymap.ActionNewTab},
	{"<C-w>", "close", []string{"<C-w>"}, keymap.ActionCloseView},
	{"<Space>q", "quit", []string{"<Space>", "q"}, keymap.ActionQuit},
	{"F12", "inspector", []string{"<F12>"}, keymap.ActionToggleInspector},
}

func footer() string {
	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = h.text + " " + h.label
	}
	return strings.Join(parts, "  ")
}

func main() {
	os.Exit(run())
}

func run() int {
	opts, listKeys := parseFlags()

	if opts.ConfigPath == "" {
		opts.ConfigPath = config.Discover(config.DefaultDirs()...)
	}

	if listKeys {
		return printKeys(opts.ConfigPath)
	}

	shell, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer shell.Close()

	screen, err := terminal.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize terminal: %v\n", err)
		return 1
	}
	defer screen.Shutdown()
	screen.SetFooter(footer())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = shell.Run(ctx, screen.Keys(ctx), func(st app.Status) {
		screen.Draw(st.Lines())
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		// The terminal is still in raw mode here; restore it first.
		screen.Shutdown()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags() (app.Options, bool) {
	var opts app.Options
	var showVersion bool
	var listKeys bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file (TOML or YAML)")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.BoolVar(&opts.Debug, "debug", false, "Log every dispatch decision")
	flag.BoolVar(&opts.Debug, "d", false, "Log every dispatch decision (shorthand)")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.BoolVar(&opts.Watch, "watch", false, "Reload the configuration file when it changes")
	flag.BoolVar(&listKeys, "list-keys", false, "Print the key table and exit")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "modeshell - modal keyboard dispatch for a browser shell\n\n")
		fmt.Fprintf(os.Stderr, "Usage: modeshell [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment:\n")
		for _, name := range config.EnvNames() {
			fmt.Fprintf(os.Stderr, "  %s\n", name)
		}
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  modeshell                      Use the discovered configuration\n")
		fmt.Fprintf(os.Stderr, "  modeshell -c keys.toml -watch  Reload keys.toml on change\n")
		fmt.Fprintf(os.Stderr, "  modeshell -list-keys           Show the effective key table\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("modeshell %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if opts.LogLevel != "" && !slices.Contains(config.LogLevels, opts.LogLevel) {
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.LogLevel)
		os.Exit(1)
	}

	return opts, listKeys
}

// printKeys writes the effective key table and the bindable actions to
// stdout.
func printKeys(path string) int {
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	table, err := cfg.Table()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if cfg.Path != "" {
		fmt.Printf("# %s\n", cfg.Path)
	}
	fmt.Printf("leader %s\n\n", table.Leader().VimString())

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MODES\tKEY\tLEADER\tACTION\tPROPAGATION")
	for _, e := range table.Entries() {
		compose := ""
		if e.Composing == keymap.ComposeOnly {
			compose = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			e.Modes, e.Token.VimString(), compose, e.Action, e.Propagation)
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "ACTION\tDESCRIPTION")
	for _, a := range keymap.Actions() {
		fmt.Fprintf(tw, "%s\t%s\n", a, a.Description())
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
