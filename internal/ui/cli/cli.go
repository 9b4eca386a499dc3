package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

const usageLine = "usage: ifacescan [flags] INTERFACE LIBRARY PATH"

type cliOptions struct {
	configPath  string
	showLines   bool
	verbose     bool
	kind        string
	format      string
	output      string
	workers     int
	noFallback  bool
	color       string
	watch       bool
	history     bool
	historyList int
	historyShow string
	metricsAddr string
	debug       bool
	version     bool
	args        []string
}

// parseOptions accepts flags before, between, or after the positional
// arguments.
func parseOptions(args []string, stderr io.Writer) (cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("ifacescan", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, usageLine)
		fmt.Fprintln(stderr, "\nReports where LIBRARY.INTERFACE is called or subclassed in the Python files under PATH.\n\nflags:")
		fs.PrintDefaults()
	}

	fs.StringVar(&opts.configPath, "config", "", "Path to config file (default: ./ifacescan.toml or ./data/config/ifacescan.toml)")
	fs.BoolVar(&opts.showLines, "show-lines", false, "Show line numbers where the interface is used")
	fs.BoolVar(&opts.verbose, "verbose", false, "Show the source context of every usage")
	fs.StringVar(&opts.kind, "kind", "", "Interface kind: auto, function or class (default from config)")
	fs.StringVar(&opts.format, "format", "", "Output format: text, json, tsv, markdown or sarif (default from config)")
	fs.StringVar(&opts.output, "output", "", "Write the report to this file instead of stdout")
	fs.IntVar(&opts.workers, "workers", 0, "Concurrent file workers (0: config or GOMAXPROCS)")
	fs.BoolVar(&opts.noFallback, "no-fallback", false, "Disable the bare short-name fallback match")
	fs.StringVar(&opts.color, "color", "", "Color mode: auto, always or never (default from config)")
	fs.BoolVar(&opts.watch, "watch", false, "Re-scan and re-report whenever source files change")
	fs.BoolVar(&opts.history, "history", false, "Record the run in the local history database")
	fs.IntVar(&opts.historyList, "history-list", 0, "Print the N most recent recorded runs and exit")
	fs.StringVar(&opts.historyShow, "history-show", "", "Render the recorded run with this ID and exit")
	fs.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve /metrics and /health on this address")
	fs.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")

	rest := args
	for {
		if err := fs.Parse(rest); err != nil {
			return cliOptions{}, err
		}
		if fs.NArg() == 0 {
			break
		}
		opts.args = append(opts.args, fs.Arg(0))
		rest = fs.Args()[1:]
	}

	if opts.workers < 0 {
		return cliOptions{}, fmt.Errorf("--workers must be >= 0")
	}
	if opts.historyList < 0 {
		return cliOptions{}, fmt.Errorf("--history-list must be >= 0")
	}
	if opts.historyList > 0 && opts.historyShow != "" {
		return cliOptions{}, fmt.Errorf("--history-list and --history-show cannot be combined")
	}
	switch strings.ToLower(opts.color) {
	case "", "auto", "always", "never":
	default:
		return cliOptions{}, fmt.Errorf("--color must be auto, always or never")
	}
	return opts, nil
}
