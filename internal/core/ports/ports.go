package ports

import (
	"context"

	"ifacescan/internal/data/history"
)

// HistoryStore abstracts persistence of scan runs for the history workflow.
type HistoryStore interface {
	SaveScan(ctx context.Context, rec history.ScanRecord, matches []history.MatchRecord) (string, error)
	ListScans(ctx context.Context, filter history.ScanFilter) ([]history.ScanRecord, error)
	GetScan(ctx context.Context, scanID string) (history.ScanRecord, error)
	LoadMatches(ctx context.Context, scanID string) ([]history.MatchRecord, error)
	Close() error
}

// FileWatcher delivers batches of changed paths to the callback it was built with.
type FileWatcher interface {
	Watch(roots []string) error
	Close() error
}

var _ HistoryStore = (*history.Store)(nil)
