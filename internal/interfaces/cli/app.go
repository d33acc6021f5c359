// Package cli implements the retailctl command line: session commands,
// resource CRUD, dashboard reports, demo data seeding and the gateway.
package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/noman2111ni/Retail-Managment-System/internal/application/store"
	"github.com/noman2111ni/Retail-Managment-System/internal/domain/shared"
	"github.com/noman2111ni/Retail-Managment-System/internal/infrastructure/config"
	"github.com/noman2111ni/Retail-Managment-System/internal/infrastructure/logger"
	"github.com/noman2111ni/Retail-Managment-System/internal/infrastructure/metrics"
)

// Exit codes.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// Version information (populated at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// App runs retailctl commands against the given streams.
type App struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	reader *bufio.Reader
}

// New creates an App.
func New(stdin io.Reader, stdout, stderr io.Writer) *App {
	return &App{
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
		reader: bufio.NewReader(stdin),
	}
}

// env is what a command runs with.
type env struct {
	cfg     *config.Config
	log     *zap.Logger
	metrics *metrics.Recorder
	store   *store.Store
	out     *Printer
	app     *App
}

type command struct {
	name    string
	args    string
	summary string
	run     func(ctx context.Context, e *env, args []string) error
}

func commands() []command {
	return []command{
		{"login", "[-u USER] [-p PASSWORD]", "Log in and store the token pair", runLogin},
		{"logout", "", "Forget the stored session", runLogout},
		{"register", "-u USER -email EMAIL [-role ROLE]", "Create an account", runRegister},
		{"status", "", "Show the current session", runStatus},
		{"resources", "", "List resource names", runResources},
		{"list", "RESOURCE", "Fetch and print every record", runList},
		{"get", "RESOURCE ID", "Fetch one record", runGet},
		{"create", "RESOURCE -data JSON | -file PATH", "Create a record", runCreate},
		{"update", "RESOURCE ID -data JSON | -file PATH", "Replace a record", runUpdate},
		{"delete", "RESOURCE ID", "Delete a record", runDelete},
		{"report", "weekly|categories|summary", "Print a dashboard report", runReport},
		{"seed", "[-branches N] [-vendors N] [-products N]", "Create fake demo records", runSeed},
		{"serve", "[-addr ADDR]", "Run the dashboard gateway", runServe},
	}
}

// Run executes one command line and returns the exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("retailctl", flag.ContinueOnError)
	fs.SetOutput(a.Stderr)
	var (
		configPath  string
		output      string
		verbose     bool
		showVersion bool
	)
	fs.StringVar(&configPath, "config", "", "Path to retailctl.toml")
	fs.StringVar(&configPath, "c", "", "Path to retailctl.toml (shorthand)")
	fs.StringVar(&output, "o", FormatTable, "Output format: table, json or yaml")
	fs.StringVar(&output, "output", FormatTable, "Output format (long form)")
	fs.BoolVar(&verbose, "v", false, "Enable debug logging")
	fs.BoolVar(&showVersion, "version", false, "Show version information")
	fs.Usage = func() { a.printUsage(fs) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitOK
		}
		return ExitUsage
	}

	if showVersion {
		fmt.Fprintf(a.Stdout, "retailctl %s (built %s)\n", Version, BuildTime)
		return ExitOK
	}
	if fs.NArg() == 0 {
		a.printUsage(fs)
		return ExitUsage
	}

	name := fs.Arg(0)
	if name == "help" {
		a.printUsage(fs)
		return ExitOK
	}
	var cmd *command
	for _, c := range commands() {
		if c.name == name {
			cmd = &c
			break
		}
	}
	if cmd == nil {
		fmt.Fprintf(a.Stderr, "Error: unknown command %q\n\n", name)
		a.printUsage(fs)
		return ExitUsage
	}

	out, err := NewPrinter(output, a.Stdout)
	if err != nil {
		return a.fail(err)
	}

	e, err := a.setup(ctx, configPath, verbose)
	if err != nil {
		return a.fail(err)
	}
	e.out = out
	defer e.close()

	if err := cmd.run(ctx, e, fs.Args()[1:]); err != nil {
		var ue *usageError
		if errors.As(err, &ue) {
			fmt.Fprintf(a.Stderr, "Error: %v\nUsage: retailctl %s %s\n", err, cmd.name, cmd.args)
			return ExitUsage
		}
		return a.fail(err)
	}
	return ExitOK
}

func (a *App) setup(ctx context.Context, configPath string, verbose bool) (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logCfg := &logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}
	if verbose {
		logCfg.Level = "debug"
	}
	log, err := logger.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	log = log.With(zap.String("app", cfg.App.Name))

	m := metrics.NewRecorder()
	st, err := store.Open(ctx, cfg, log, m)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}

	return &env{cfg: cfg, log: log, metrics: m, store: st, app: a}, nil
}

func (e *env) close() {
	if err := e.store.Close(); err != nil {
		e.log.Warn("Failed to close session store", zap.Error(err))
	}
	_ = e.log.Sync()
}

func (a *App) fail(err error) int {
	var ue *usageError
	if errors.As(err, &ue) {
		fmt.Fprintf(a.Stderr, "Error: %v\n", err)
		return ExitUsage
	}
	fmt.Fprintf(a.Stderr, "Error: %v\n", err)
	switch {
	case errors.Is(err, shared.ErrReauthRequired), errors.Is(err, shared.ErrNotAuthenticated):
		fmt.Fprintln(a.Stderr, "Run 'retailctl login' to sign in again.")
	}
	return ExitError
}

func (a *App) printUsage(fs *flag.FlagSet) {
	w := a.Stderr
	fmt.Fprintln(w, "retailctl - Retail Management API client")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "USAGE:")
	fmt.Fprintln(w, "    retailctl [global options] COMMAND [arguments]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "COMMANDS:")
	for _, c := range commands() {
		usage := strings.TrimSpace(c.name + " " + c.args)
		fmt.Fprintf(w, "    %-45s %s\n", usage, c.summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "GLOBAL OPTIONS:")
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Configuration is read from retailctl.toml and RETAIL_* environment variables,")
	fmt.Fprintln(w, "e.g. RETAIL_API_BASE_URL=http://localhost:8000/api/")
}

// parseArgs parses fs allowing flags after positional arguments.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, usageErrorf("%v", err)
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

func newFlagSet(name string, w io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(w)
	return fs
}
