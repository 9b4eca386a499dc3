package app

import (
	"context"
	"runtime"

	"ifacescan/internal/core/config"
	"ifacescan/internal/core/ports"
	"ifacescan/internal/engine/parser"
	"ifacescan/internal/engine/usage"
	"ifacescan/internal/shared/util"

	"github.com/gobwas/glob"
)

type App struct {
	Config *config.Config
	Parser *parser.Parser

	excludeDirs  []glob.Glob
	excludeFiles []glob.Glob
	limiter      *util.Limiter
	history      ports.HistoryStore
}

// New builds an App from cfg; a nil cfg selects DefaultConfig.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	loader, err := parser.NewGrammarLoader(cfg.Scan.Extensions)
	if err != nil {
		return nil, err
	}
	excludeDirs, err := util.CompileGlobs("exclude.dirs", cfg.Exclude.Dirs)
	if err != nil {
		return nil, err
	}
	excludeFiles, err := util.CompileGlobs("exclude.files", cfg.Exclude.Files)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:       cfg,
		Parser:       parser.NewParser(loader),
		excludeDirs:  excludeDirs,
		excludeFiles: excludeFiles,
		limiter:      util.NewThrottle(cfg.Scan.FilesPerSecond),
	}, nil
}

// SetHistoryStore enables recording of scan runs.
func (a *App) SetHistoryStore(store ports.HistoryStore) {
	a.history = store
}

func (a *App) HistoryStore() ports.HistoryStore {
	return a.history
}

func (a *App) Close(ctx context.Context) error {
	if a == nil || a.history == nil {
		return nil
	}
	err := a.history.Close()
	a.history = nil
	return err
}

// Scan runs a one-off scan with the default configuration.
func Scan(ctx context.Context, interfaceName, libraryName, rootPath string, opts Options) (ScanResult, error) {
	a, err := New(nil)
	if err != nil {
		return ScanResult{}, err
	}
	defer a.Close(ctx)
	return a.Scan(ctx, interfaceName, libraryName, rootPath, opts)
}

// Target validates the names and resolves the kind, falling back to
// match.kind when opts.Kind is empty.
func (a *App) Target(interfaceName, libraryName string, opts Options) (usage.TargetSpec, error) {
	kind := opts.Kind
	if kind == "" {
		parsed, err := usage.ParseTargetKind(a.Config.Match.Kind)
		if err != nil {
			return usage.TargetSpec{}, err
		}
		kind = parsed
	}
	return usage.NewTargetSpec(interfaceName, libraryName, kind)
}

func (a *App) scanOptions(opts Options) usage.ScanOptions {
	return usage.ScanOptions{
		IncludeLine:       opts.IncludeLine,
		IncludeContext:    opts.IncludeContext,
		ShortNameFallback: a.Config.Match.FallbackEnabled() && !opts.DisableShortNameFallback,
	}
}

func (a *App) workers(opts Options) int {
	if opts.Workers > 0 {
		return opts.Workers
	}
	if a.Config.Scan.Workers > 0 {
		return a.Config.Scan.Workers
	}
	return runtime.GOMAXPROCS(0)
}
