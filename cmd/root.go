// Package cmd implements the CLI command structure for tasklist.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasklist-go/internal/config"
	"github.com/nibzard/tasklist-go/internal/logging"
	"github.com/nibzard/tasklist-go/internal/storage"
	"github.com/nibzard/tasklist-go/internal/store"
	"github.com/nibzard/tasklist-go/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// session carries what every subcommand needs.
type session struct {
	cws    *config.ConfigWithSources
	cfg    *config.Config
	args   []string
	out    io.Writer
	logger *log.Logger
}

// Run executes the tasklist CLI.
func Run(ctx context.Context, args []string) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("tasklist", flag.ContinueOnError)
	fs.Usage = func() {
		printUsage(fs, os.Stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	// Global flags
	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := cws.Config
	if *help {
		printUsage(fs, os.Stdout)
		return nil
	}
	if *showVersion {
		return versionCommand(os.Stdout)
	}

	// Determine the subcommand. With no arguments the interactive UI runs
	// on a terminal and the list is printed otherwise.
	subcommand := "ls"
	if ui.IsTTY(os.Stdout) {
		subcommand = "tui"
	}
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 && !strings.HasPrefix(remainingArgs[0], "-") {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	switch subcommand {
	case "version":
		return versionCommand(os.Stdout)
	case "help":
		if len(remainingArgs) > 0 && remainingArgs[0] == "config" {
			fmt.Fprint(os.Stdout, config.ExampleConfig())
			return nil
		}
		printUsage(fs, os.Stdout)
		return nil
	}

	commands := map[string]func(ctx context.Context, s *session, st *store.Store) error{
		"tui":    tuiCommand,
		"add":    addCommand,
		"ls":     lsCommand,
		"toggle": toggleCommand,
		"edit":   editCommand,
		"rm":     rmCommand,
		"clear":  clearCommand,
		"stats":  statsCommand,
	}

	logger, closer := logging.New(logging.OptionsFromStrings(
		cfg.LogLevel, cfg.LogFormat, cfg.LogFile, cfg.LogTimestamps, cfg.LogMaxSizeMB, cfg.LogMaxBackups,
	))
	defer closer.Close()

	s := &session{cws: cws, cfg: cfg, args: remainingArgs, out: os.Stdout, logger: logger}
	if subcommand == "doctor" {
		return doctorCommand(s)
	}

	command, ok := commands[subcommand]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, os.Stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}

	st, backend, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer backend.Close()

	logger.Debug("running command", "command", subcommand, "storage", cfg.Storage, "key", st.Key())
	return command(ctx, s, st)
}

// openStore opens the configured backend and loads the task list from it.
func openStore(cfg *config.Config, logger *log.Logger) (*store.Store, storage.Backend, error) {
	backend, err := storage.Open(cfg.StorageKind(), cfg.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s storage: %w", cfg.Storage, err)
	}
	st := store.New(backend, cfg.StorageKey, store.WithLogger(logger))
	st.Load()
	return st, backend, nil
}

// tuiCommand launches the interactive UI.
func tuiCommand(ctx context.Context, s *session, st *store.Store) error {
	fs := flag.NewFlagSet("tasklist tui", flag.ContinueOnError)
	if err := fs.Parse(s.args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return ui.RunTUI(ctx, st, ui.Options{
		Query:           s.cfg.Query(),
		DefaultPriority: s.cfg.Priority(),
		TickInterval:    s.cfg.TickInterval(),
		Location:        storage.Location(s.cfg.StorageKind(), s.cfg.DataDir, s.cfg.StorageKey),
	})
}

func versionCommand(w io.Writer) error {
	fmt.Fprintf(w, "tasklist version %s\n", Version)
	return nil
}

func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "tasklist - a small local task list")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  tasklist [global options] [command] [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  tui                 Launch the interactive UI (default on a terminal)")
	fmt.Fprintln(w, "  add [-p prio] text  Add a task")
	fmt.Fprintln(w, "  ls                  List tasks, newest first (default otherwise)")
	fmt.Fprintln(w, "  toggle <id>         Toggle a task between active and completed")
	fmt.Fprintln(w, "  edit <id>           Change a task's text, priority, or completion")
	fmt.Fprintln(w, "  rm <id>             Delete a task")
	fmt.Fprintln(w, "  clear -yes          Delete every task")
	fmt.Fprintln(w, "  stats               Show counts and completion percentage")
	fmt.Fprintln(w, "  doctor [-v]         Check configuration and stored data")
	fmt.Fprintln(w, "  version             Show version information")
	fmt.Fprintln(w, "  help [config]       Show this help message or an example config file")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Ids may be abbreviated to any unique prefix.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Ls Options:")
	fmt.Fprintln(w, "  -status string")
	fmt.Fprintln(w, "        Filter by status (all|active|completed)")
	fmt.Fprintln(w, "  -priority string")
	fmt.Fprintln(w, "        Filter by priority (all|low|medium|high)")
	fmt.Fprintln(w, "  -q string")
	fmt.Fprintln(w, "        Case-insensitive text search")
	fmt.Fprintln(w, "  -format string")
	fmt.Fprintln(w, "        Output format (text|json|yaml)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Edit Options:")
	fmt.Fprintln(w, "  -text string   New text")
	fmt.Fprintln(w, "  -p string      New priority (low|medium|high)")
	fmt.Fprintln(w, "  -done string   Completion state (true|false)")
}
