package app

import (
	"context"

	"ifacescan/internal/core/errors"
	"ifacescan/internal/data/history"
	"ifacescan/internal/engine/usage"
)

// RecordScan persists result through the configured history store and
// returns the run ID.
func (a *App) RecordScan(ctx context.Context, result ScanResult) (string, error) {
	if a.history == nil {
		return "", errors.New(errors.CodeNotSupported, "history store is not configured")
	}

	rec := history.ScanRecord{
		Interface:         result.Target.InterfaceName,
		Library:           result.Target.LibraryName,
		Kind:              string(result.Target.Kind),
		Root:              result.Root,
		StartedAt:         result.StartedAt,
		Duration:          result.Duration,
		FilesScanned:      result.FilesScanned,
		ParseFailureCount: len(result.ParseFailures),
	}
	matches := make([]history.MatchRecord, 0, len(result.Matches))
	for _, m := range result.Matches {
		matches = append(matches, history.MatchRecord{
			Path:       m.FilePath,
			Line:       m.Line,
			Kind:       string(m.Kind),
			SourceText: m.SourceText,
		})
	}

	id, err := a.history.SaveScan(ctx, rec, matches)
	if err != nil {
		return "", errors.AddContext(err, errors.CtxOperation, "record_scan")
	}
	return id, nil
}

// ListHistory returns recorded runs, newest first.
func (a *App) ListHistory(ctx context.Context, filter history.ScanFilter) ([]history.ScanRecord, error) {
	if a.history == nil {
		return nil, errors.New(errors.CodeNotSupported, "history store is not configured")
	}
	return a.history.ListScans(ctx, filter)
}

// LoadScan rebuilds a recorded run as a ScanResult so it can be rendered like
// a fresh one. Only the parse failure count was stored, so ParseFailures is
// empty.
func (a *App) LoadScan(ctx context.Context, scanID string) (ScanResult, error) {
	if a.history == nil {
		return ScanResult{}, errors.New(errors.CodeNotSupported, "history store is not configured")
	}
	rec, err := a.history.GetScan(ctx, scanID)
	if err != nil {
		return ScanResult{}, err
	}
	stored, err := a.history.LoadMatches(ctx, scanID)
	if err != nil {
		return ScanResult{}, err
	}

	target, err := usage.NewTargetSpec(rec.Interface, rec.Library, usage.TargetKind(rec.Kind))
	if err != nil {
		return ScanResult{}, errors.AddContext(err, errors.CtxOperation, "load_scan")
	}
	matches := make([]usage.UsageMatch, 0, len(stored))
	for _, m := range stored {
		matches = append(matches, usage.UsageMatch{
			FilePath:   m.Path,
			Line:       m.Line,
			Kind:       usage.MatchKind(m.Kind),
			SourceText: m.SourceText,
		})
	}
	return ScanResult{
		Target:       target,
		Root:         rec.Root,
		Matches:      matches,
		FilesScanned: rec.FilesScanned,
		StartedAt:    rec.StartedAt,
		Duration:     rec.Duration,
	}, nil
}
