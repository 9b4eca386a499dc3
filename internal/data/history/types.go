package history

import "time"

// SchemaVersion is the highest migration this build knows how to apply.
const SchemaVersion = 1

// ScanRecord summarizes one recorded scan run.
type ScanRecord struct {
	ID                string
	Interface         string
	Library           string
	Kind              string
	Root              string
	StartedAt         time.Time
	Duration          time.Duration
	FilesScanned      int
	MatchCount        int
	ParseFailureCount int
}

// Target returns the qualified "library.interface" name the run looked for.
func (r ScanRecord) Target() string {
	return r.Library + "." + r.Interface
}

// MatchRecord is one usage site stored with a scan. Ordinal preserves the
// report order.
type MatchRecord struct {
	Ordinal    int
	Path       string
	Line       int
	Kind       string
	SourceText string
}

// ScanFilter narrows ListScans. Empty fields match everything; Limit <= 0
// means no limit.
type ScanFilter struct {
	Library   string
	Interface string
	Limit     int
}
