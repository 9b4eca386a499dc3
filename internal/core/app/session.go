package app

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"ifacescan/internal/engine/usage"
	"ifacescan/internal/shared/observability"
)

// Session keeps per-file outcomes of a scan so that later refreshes only
// re-analyze changed or newly discovered files.
type Session struct {
	app    *App
	target usage.TargetSpec
	root   string
	opts   Options

	mu       sync.Mutex
	outcomes map[string]fileOutcome
	last     ScanResult
}

// NewSession performs the initial full scan.
func (a *App) NewSession(ctx context.Context, interfaceName, libraryName, rootPath string, opts Options) (*Session, error) {
	target, err := a.Target(interfaceName, libraryName, opts)
	if err != nil {
		return nil, err
	}
	s := &Session{
		app:      a,
		target:   target,
		root:     rootPath,
		opts:     opts,
		outcomes: make(map[string]fileOutcome),
	}
	if _, err := s.refresh(ctx, nil, true); err != nil {
		return nil, err
	}
	return s, nil
}

// Result returns the most recent assembled result.
func (s *Session) Result() ScanResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Refresh re-analyzes the changed paths plus any file not seen before, drops
// files that disappeared, and returns the reassembled ordered result.
func (s *Session) Refresh(ctx context.Context, changed []string) (ScanResult, error) {
	return s.refresh(ctx, changed, false)
}

func (s *Session) refresh(ctx context.Context, changed []string, full bool) (ScanResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	started := time.Now()
	files, err := s.app.CollectFiles(ctx, s.root)
	if err != nil {
		return ScanResult{}, err
	}

	dirty := make(map[string]bool, len(changed))
	for _, path := range changed {
		dirty[filepath.Clean(path)] = true
	}

	stale := make([]string, 0)
	present := make(map[string]bool, len(files))
	for _, path := range files {
		present[path] = true
		if _, cached := s.outcomes[path]; full || !cached || dirty[filepath.Clean(path)] {
			stale = append(stale, path)
		}
	}
	for path := range s.outcomes {
		if !present[path] {
			delete(s.outcomes, path)
		}
	}

	fresh, err := s.app.analyzeFiles(ctx, stale, s.target, s.opts)
	if err != nil {
		return ScanResult{}, err
	}
	for i, path := range stale {
		s.outcomes[path] = fresh[i]
	}

	ordered := make([]fileOutcome, len(files))
	for i, path := range files {
		ordered[i] = s.outcomes[path]
	}
	result := assemble(s.target, s.root, files, ordered)
	result.StartedAt = started.UTC()
	result.Duration = time.Since(started)

	mode := "incremental"
	if full {
		mode = "full"
	}
	observability.ScanDuration.WithLabelValues(mode).Observe(result.Duration.Seconds())
	s.last = result
	return result, nil
}
