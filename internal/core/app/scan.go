package app

import (
	"context"
	"log/slog"
	"os"
	"time"

	"ifacescan/internal/core/errors"
	"ifacescan/internal/engine/parser"
	"ifacescan/internal/engine/usage"
	"ifacescan/internal/shared/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// fileOutcome is the per-file result slot filled by one worker.
type fileOutcome struct {
	matches []usage.UsageMatch
	skipped *SkippedFile
}

// Scan reports every use of libraryName.interfaceName under rootPath.
// Parse failures are recorded in ParseFailures; I/O failures abort the scan.
func (a *App) Scan(ctx context.Context, interfaceName, libraryName, rootPath string, opts Options) (ScanResult, error) {
	target, err := a.Target(interfaceName, libraryName, opts)
	if err != nil {
		return ScanResult{}, err
	}

	ctx, span := observability.Tracer.Start(ctx, "app.Scan", trace.WithAttributes(
		attribute.String("target", target.Qualified()),
		attribute.String("root", rootPath),
	))
	defer span.End()

	started := time.Now()
	files, err := a.CollectFiles(ctx, rootPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "collect files")
		return ScanResult{}, errors.AddContext(err, errors.CtxOperation, "collect_files")
	}

	outcomes, err := a.analyzeFiles(ctx, files, target, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "analyze files")
		return ScanResult{}, err
	}

	result := assemble(target, rootPath, files, outcomes)
	result.StartedAt = started.UTC()
	result.Duration = time.Since(started)
	observability.ScanDuration.WithLabelValues("full").Observe(result.Duration.Seconds())
	span.SetAttributes(
		attribute.Int("files", result.FilesScanned),
		attribute.Int("matches", len(result.Matches)),
	)
	slog.Debug("scan complete", "target", target.Qualified(), "files", result.FilesScanned, "matches", len(result.Matches))
	return result, nil
}

// analyzeFiles runs one task per file on a bounded errgroup. Each task writes
// only its own slot, so the returned slice is in input order.
func (a *App) analyzeFiles(ctx context.Context, files []string, target usage.TargetSpec, opts Options) ([]fileOutcome, error) {
	outcomes := make([]fileOutcome, len(files))
	scanOpts := a.scanOptions(opts)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers(opts))
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if a.limiter != nil {
				if err := a.limiter.Wait(gctx, 1); err != nil {
					return err
				}
			}
			content, err := os.ReadFile(path)
			if err != nil {
				return errors.IOFailure(err, path)
			}
			outcome, err := a.analyzeContent(path, content, target, scanOpts)
			if err != nil {
				return err
			}
			outcomes[i] = outcome
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

func (a *App) analyzeContent(path string, content []byte, target usage.TargetSpec, opts usage.ScanOptions) (fileOutcome, error) {
	started := time.Now()
	matches, err := usage.Analyze(a.Parser, path, content, target, opts)
	observability.ParsingDuration.WithLabelValues(parser.LanguagePython).Observe(time.Since(started).Seconds())
	observability.FilesScannedTotal.Inc()

	if err != nil {
		if !errors.IsCode(err, errors.CodeParseFailure) {
			return fileOutcome{}, errors.AddContext(err, errors.CtxPath, path)
		}
		skipped := skippedFrom(path, err)
		observability.ParseFailuresTotal.Inc()
		slog.Debug("skipping unparsable file", "path", path, "line", skipped.Line, "error", skipped.Reason)
		return fileOutcome{skipped: &skipped}, nil
	}

	for _, m := range matches {
		observability.MatchesTotal.WithLabelValues(string(m.Kind)).Inc()
	}
	return fileOutcome{matches: matches}, nil
}

func skippedFrom(path string, err error) SkippedFile {
	skipped := SkippedFile{Path: path, Reason: err.Error()}
	var de *errors.DomainError
	if errors.As(err, &de) {
		skipped.Reason = de.Message
		if line, ok := de.Context[errors.CtxLine].(int); ok {
			skipped.Line = line
		}
	}
	return skipped
}

func assemble(target usage.TargetSpec, root string, files []string, outcomes []fileOutcome) ScanResult {
	result := ScanResult{
		Target:       target,
		Root:         root,
		Matches:      make([]usage.UsageMatch, 0),
		FilesScanned: len(files),
	}
	for _, outcome := range outcomes {
		result.Matches = append(result.Matches, outcome.matches...)
		if outcome.skipped != nil {
			result.ParseFailures = append(result.ParseFailures, *outcome.skipped)
		}
	}
	return result
}
