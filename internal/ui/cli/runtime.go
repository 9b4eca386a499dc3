package cli

import (
	"bytes"
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
	"time"

	coreapp "ifacescan/internal/core/app"
	"ifacescan/internal/core/config"
	domainerrors "ifacescan/internal/core/errors"
	"ifacescan/internal/data/history"
	"ifacescan/internal/engine/usage"
	"ifacescan/internal/shared/observability"
	"ifacescan/internal/shared/util"
	"ifacescan/internal/shared/version"
	"ifacescan/internal/ui/report"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func Run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return RunWithIO(ctx, args, os.Stdout, os.Stderr)
}

// RunWithIO is Run with explicit streams. The report goes to stdout; logs
// and diagnostics go to stderr.
func RunWithIO(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseOptions(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintln(stderr, err.Error())
		return exitUsage
	}

	if opts.version {
		fmt.Fprintf(stdout, "ifacescan %s\n", version.Version)
		return exitOK
	}

	configureLogging(stderr, opts.debug)

	cwd, err := os.Getwd()
	if err != nil {
		slog.Error("failed to detect working directory", "error", err)
		return exitFailure
	}

	cfg, cfgPath, err := loadConfig(opts.configPath, cwd)
	if err != nil {
		slog.Error("failed to load config", "path", cfgPath, "error", err)
		return exitFailure
	}
	if cfgPath != "" {
		slog.Debug("loaded config", "path", cfgPath)
	}
	if err := applyFlagOverrides(opts, cfg); err != nil {
		fmt.Fprintln(stderr, err.Error())
		return exitUsage
	}

	if opts.historyList > 0 {
		return runHistoryList(ctx, cfg, opts, stdout)
	}
	if opts.historyShow != "" {
		return runHistoryShow(ctx, cfg, opts, stdout, stderr)
	}

	if len(opts.args) != 3 {
		fmt.Fprintln(stderr, usageLine)
		return exitUsage
	}
	interfaceName, libraryName, rootPath := opts.args[0], opts.args[1], opts.args[2]

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfig{
		ServiceName:  cfg.Observability.ServiceName,
		Version:      version.Version,
		OTLPEndpoint: cfg.Observability.OTLPEndpoint,
		OTLPInsecure: cfg.Observability.OTLPInsecure,
	})
	if err != nil {
		slog.Error("failed to initialize tracing", "error", err)
		return exitFailure
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			slog.Warn("tracing shutdown failed", "error", err)
		}
	}()

	a, err := coreapp.New(cfg)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return exitFailure
	}
	defer a.Close(context.Background())

	if cfg.History.Enabled {
		store, err := history.Open(cfg.History.Path, cfg.History.BusyTimeout)
		if err != nil {
			slog.Error("history setup failed", "path", cfg.History.Path, "error", err)
			return exitFailure
		}
		a.SetHistoryStore(store)
	}

	if addr := cfg.Observability.MetricsAddr; addr != "" {
		server := NewObservabilityServer(addr, coreapp.NewHealthService(a))
		if err := server.Start(ctx); err != nil {
			slog.Error("failed to start observability server", "error", err)
			return exitFailure
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Stop(stopCtx)
		}()
	}

	scanOpts, err := scanOptions(cfg)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return exitUsage
	}
	renderOpts := renderOptions(cfg, stdout, opts.output)

	emit := func(result coreapp.ScanResult) error {
		logParseFailures(result)
		if cfg.History.Enabled {
			id, err := a.RecordScan(ctx, result)
			if err != nil {
				return err
			}
			slog.Debug("recorded scan", "id", id)
		}
		return writeReport(stdout, opts.output, result, renderOpts)
	}

	if opts.watch {
		err := a.Watch(ctx, interfaceName, libraryName, rootPath, scanOpts, func(result coreapp.ScanResult) {
			if err := emit(result); err != nil {
				slog.Error("failed to publish scan result", "error", err)
			}
		})
		if err != nil {
			return reportError(stderr, err)
		}
		return exitOK
	}

	result, err := a.Scan(ctx, interfaceName, libraryName, rootPath, scanOpts)
	if err != nil {
		return reportError(stderr, err)
	}
	if err := emit(result); err != nil {
		slog.Error("failed to publish scan result", "error", err)
		return exitFailure
	}
	return exitOK
}

func configureLogging(w io.Writer, debug bool) {
	logLevel := slog.LevelInfo
	if debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
}

// loadConfig reads an explicit path, or the first discovered default file,
// or falls back to built-in defaults. Environment overrides apply last.
func loadConfig(path, cwd string) (*config.Config, string, error) {
	if path == "" {
		path = config.Discover(cwd)
	}
	var (
		cfg *config.Config
		err error
	)
	if path == "" {
		cfg = config.DefaultConfig()
	} else if cfg, err = config.Load(path); err != nil {
		return nil, path, err
	}
	config.ApplyEnvOverrides(cfg)
	if err := config.Validate(cfg); err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

func applyFlagOverrides(opts cliOptions, cfg *config.Config) error {
	if opts.format != "" {
		f, err := report.ParseFormat(opts.format)
		if err != nil {
			return err
		}
		cfg.Output.Format = string(f)
	}
	if opts.color != "" {
		cfg.Output.Color = strings.ToLower(opts.color)
	}
	if opts.kind != "" {
		kind, err := usage.ParseTargetKind(opts.kind)
		if err != nil {
			return err
		}
		cfg.Match.Kind = string(kind)
	}
	if opts.workers > 0 {
		cfg.Scan.Workers = opts.workers
	}
	if opts.noFallback {
		off := false
		cfg.Match.ShortNameFallback = &off
	}
	if opts.history {
		cfg.History.Enabled = true
	}
	if opts.metricsAddr != "" {
		cfg.Observability.MetricsAddr = opts.metricsAddr
	}
	if opts.showLines {
		cfg.Output.ShowLines = true
	}
	if opts.verbose {
		cfg.Output.ShowContext = true
	}
	return config.Validate(cfg)
}

func scanOptions(cfg *config.Config) (coreapp.Options, error) {
	kind, err := usage.ParseTargetKind(cfg.Match.Kind)
	if err != nil {
		return coreapp.Options{}, err
	}
	return coreapp.Options{
		IncludeLine:              cfg.Output.ShowLines,
		IncludeContext:           cfg.Output.ShowContext,
		Kind:                     kind,
		Workers:                  cfg.Scan.Workers,
		DisableShortNameFallback: !cfg.Match.FallbackEnabled(),
	}, nil
}

func renderOptions(cfg *config.Config, stdout io.Writer, output string) report.Options {
	format, err := report.ParseFormat(cfg.Output.Format)
	if err != nil {
		format = report.FormatText
	}
	color := false
	if output == "" {
		color = report.ColorEnabled(cfg.Output.Color, stdout)
	}
	return report.Options{
		Format:      format,
		Color:       color,
		ShowLines:   cfg.Output.ShowLines,
		ShowContext: cfg.Output.ShowContext,
	}
}

func writeReport(stdout io.Writer, output string, result coreapp.ScanResult, opts report.Options) error {
	if output == "" {
		return report.Render(stdout, result, opts)
	}
	var buf bytes.Buffer
	if err := report.Render(&buf, result, opts); err != nil {
		return err
	}
	if err := util.WriteFileWithDirs(output, buf.Bytes(), 0o644); err != nil {
		return domainerrors.IOFailure(err, output)
	}
	slog.Info("report written", "path", output, "matches", len(result.Matches))
	return nil
}

func logParseFailures(result coreapp.ScanResult) {
	for _, f := range result.ParseFailures {
		slog.Warn("skipped unparsable file", "path", f.Path, "line", f.Line, "error", f.Reason)
	}
}

// reportError prints err and maps validation problems to the usage exit code.
func reportError(stderr io.Writer, err error) int {
	if errors.Is(err, context.Canceled) {
		return exitFailure
	}
	fmt.Fprintf(stderr, "error: %v\n", err)
	code, _ := domainerrors.CodeOf(err)
	slog.Debug("command failed", "code", code, "error", err)
	if code == domainerrors.CodeValidationError {
		return exitUsage
	}
	return exitFailure
}

func runHistoryList(ctx context.Context, cfg *config.Config, opts cliOptions, stdout io.Writer) int {
	filter := history.ScanFilter{Limit: opts.historyList}
	switch len(opts.args) {
	case 0:
	case 2:
		filter.Interface, filter.Library = opts.args[0], opts.args[1]
	default:
		slog.Error("--history-list accepts no positional arguments or INTERFACE LIBRARY")
		return exitUsage
	}

	store, err := history.Open(cfg.History.Path, cfg.History.BusyTimeout)
	if err != nil {
		slog.Error("history setup failed", "path", cfg.History.Path, "error", err)
		return exitFailure
	}
	defer store.Close()

	runs, err := store.ListScans(ctx, filter)
	if err != nil {
		slog.Error("failed to list history", "error", err)
		return exitFailure
	}
	if len(runs) == 0 {
		fmt.Fprintln(stdout, "No recorded scans.")
		return exitOK
	}
	fmt.Fprintln(stdout, formatHistoryTable(runs))
	return exitOK
}

// runHistoryShow renders a recorded run in the configured report format.
func runHistoryShow(ctx context.Context, cfg *config.Config, opts cliOptions, stdout, stderr io.Writer) int {
	if len(opts.args) != 0 {
		fmt.Fprintln(stderr, "--history-show takes no positional arguments")
		return exitUsage
	}

	a, err := coreapp.New(cfg)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return exitFailure
	}
	defer a.Close(context.Background())

	store, err := history.Open(cfg.History.Path, cfg.History.BusyTimeout)
	if err != nil {
		slog.Error("history setup failed", "path", cfg.History.Path, "error", err)
		return exitFailure
	}
	a.SetHistoryStore(store)

	result, err := a.LoadScan(ctx, opts.historyShow)
	if err != nil {
		return reportError(stderr, err)
	}
	if err := writeReport(stdout, opts.output, result, renderOptions(cfg, stdout, opts.output)); err != nil {
		slog.Error("failed to publish scan result", "error", err)
		return exitFailure
	}
	return exitOK
}

func formatHistoryTable(runs []history.ScanRecord) string {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			r.ID,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Target(),
			r.Root,
			fmt.Sprintf("%d", r.MatchCount),
			fmt.Sprintf("%d", r.FilesScanned),
			fmt.Sprintf("%d", r.ParseFailureCount),
		})
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "STARTED", "TARGET", "ROOT", "MATCHES", "FILES", "SKIPPED").
		Rows(rows...).
		String()
}
