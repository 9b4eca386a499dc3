package usage

import (
	"context"
	"log/slog"

	"ifacescan/internal/engine/parser"
)

// Analyze parses content and returns the file's matches. A parse failure is
// returned unchanged (errors.CodeParseFailure) so the caller decides whether
// to recover.
func Analyze(p *parser.Parser, path string, content []byte, target TargetSpec, opts ScanOptions) ([]UsageMatch, error) {
	file, err := p.ParseFile(path, content)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	aliases := Bind(file)
	logBindings(path, aliases, target, opts)
	return ScanFile(file, aliases, target, opts), nil
}

// logBindings shows which local names resolve to the target and which star
// imports may feed the short-name fallback.
func logBindings(path string, aliases AliasMap, target TargetSpec, opts ScanOptions) {
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	slog.Debug("bound imports",
		"path", path,
		"bindings", len(aliases.Bindings()),
		"target_names", aliases.LocalNamesFor(target.Qualified()),
		"star_imports", aliases.StarImports(),
		"fallback", opts.ShortNameFallback,
	)
}
