package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/erazemk/barstock/internal/config"
	"github.com/erazemk/barstock/internal/db"
	"github.com/erazemk/barstock/internal/inventory"
	"github.com/erazemk/barstock/internal/seed"
	"github.com/erazemk/barstock/internal/store"
)

// levelRouter is a slog.Handler that writes records to the console at the
// configured level and, when a log file is open, to the file at every level.
// Stdout is reserved for command output, so the console is stderr.
type levelRouter struct {
	console slog.Handler
	file    slog.Handler
}

func (lr *levelRouter) Enabled(ctx context.Context, level slog.Level) bool {
	return lr.console.Enabled(ctx, level) || (lr.file != nil && lr.file.Enabled(ctx, level))
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	if lr.console.Enabled(ctx, r.Level) {
		errs = append(errs, lr.console.Handle(ctx, r.Clone()))
	}
	if lr.file != nil && lr.file.Enabled(ctx, r.Level) {
		errs = append(errs, lr.file.Handle(ctx, r.Clone()))
	}
	return errors.Join(errs...)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := &levelRouter{console: lr.console.WithAttrs(attrs)}
	if lr.file != nil {
		next.file = lr.file.WithAttrs(attrs)
	}
	return next
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	next := &levelRouter{console: lr.console.WithGroup(name)}
	if lr.file != nil {
		next.file = lr.file.WithGroup(name)
	}
	return next
}

// setupLogger builds the command logger. Records at or above level go to
// stderr. If logPath is non-empty, every record down to DEBUG is also
// appended to that file. Returns a cleanup function that closes the log file
// (if opened).
func setupLogger(stderr io.Writer, logPath string, level slog.Level) (*slog.Logger, func(), error) {
	handler := &levelRouter{
		console: slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}),
	}
	cleanup := func() {}

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		handler.file = slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})
	}

	return slog.New(handler), cleanup, nil
}

const usage = `Usage: barstock [flags] <command> [arguments]

Flags:
  -d, -db <path>          SQLite database path (default: barstock.sqlite3)
  -l, -log <path>         log file path (default: no file, stderr only)
  -c, -config <path>      config file (default: barstock.yaml if present)
  -no-seed                do not seed an empty database on start
  -h, -help               show this help and exit

Commands:
  list [-category c] [-type t] [-status s] [-json]   list items
  get <id> [-json]                                   show one item
  add -name <name> -category <category> [fields]     add an item
  edit <id> [fields]                                 change item fields
  move <id> [qty]                                    move stock from storage to bar
  return <id> [qty]                                  move stock from bar to storage
  remove-bar <id> [qty]                              remove stock at the bar
  remove-storage <id> [qty]                          remove stock from storage
  restock <id> <qty>                                 add delivered stock to storage
  adjust <id> [-bar n] [-storage n]                  adjust quantities, stopping at zero
  take <id> [qty]                                    restock the bar from storage
  cycle <id>                                         advance the bar stock status
  status <id> <Full|Moderate|Low|Out>                set the bar stock status
  at-bar <id> <true|false>                           set the stocked-at-bar flag
  classify -type <type> <id>...                      set the item type of many items
  facets                                             list categories and item types
  summary                                            show stock counts
  seed [-f file]                                     seed an empty database
  clear -yes                                         delete every item
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one barstock invocation and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("barstock", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var dbPath string
	fs.StringVar(&dbPath, "db", "", "")
	fs.StringVar(&dbPath, "d", "", "")

	var logPath string
	fs.StringVar(&logPath, "log", "", "")
	fs.StringVar(&logPath, "l", "", "")

	var configFile string
	fs.StringVar(&configFile, "config", "", "")
	fs.StringVar(&configFile, "c", "", "")

	noSeed := fs.Bool("no-seed", false, "")

	fs.Usage = func() { fmt.Fprint(stdout, usage) }

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}
	cmd, ok := lookupCommand(fs.Arg(0))
	if !ok {
		fmt.Fprintf(stderr, "unknown command: %s\n", fs.Arg(0))
		fs.Usage()
		return 2
	}

	cfg, err := config.Load(config.Options{ConfigFile: configFile})
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if logPath != "" {
		cfg.LogPath = logPath
	}
	if *noSeed {
		cfg.SeedOnStart = false
	}

	logger, closeLog, err := setupLogger(stderr, cfg.LogPath, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	defer closeLog()

	a, err := openApp(ctx, cfg, logger, stdout)
	if err != nil {
		logger.Error("failed to open inventory", "error", err)
		return 1
	}
	defer a.close()

	if err := cmd.run(ctx, a, fs.Args()[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(stderr, "%v\n", err)
			fmt.Fprintf(stderr, "usage: barstock %s\n", cmd.usage)
			return 2
		}
		logger.Error("command failed", "command", cmd.name, "error", err)
		return 1
	}
	return 0
}

// app is the wiring shared by every command.
type app struct {
	out   io.Writer
	close func()
	coll  *store.Collection
	store *inventory.Store
}

func openApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) (*app, error) {
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(ctx, database); err != nil {
		database.Close()
		return nil, err
	}
	logger.Debug("database ready", "path", cfg.DBPath)

	coll, err := store.NewCollection(database, cfg.CacheSize)
	if err != nil {
		database.Close()
		return nil, err
	}

	if cfg.SeedOnStart {
		rows, err := seed.LoadFixtures()
		if err != nil {
			database.Close()
			return nil, err
		}
		seeded, err := seed.SeedIfEmpty(ctx, coll, rows)
		if err != nil {
			database.Close()
			return nil, err
		}
		if seeded {
			logger.Info("seeded empty database", "items", len(rows))
		}
	}

	s := inventory.NewStore(coll, logger)
	if err := s.Start(ctx); err != nil {
		database.Close()
		return nil, err
	}

	return &app{
		out:   out,
		coll:  coll,
		store: s,
		close: func() {
			s.Close()
			database.Close()
		},
	}, nil
}

func lookupCommand(name string) (command, bool) {
	name = strings.ToLower(name)
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}
