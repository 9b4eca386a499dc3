package app

import (
	"time"

	"ifacescan/internal/engine/usage"
)

// Options tunes a single scan. Zero values select the configured defaults.
type Options struct {
	IncludeLine    bool
	IncludeContext bool
	Kind           usage.TargetKind
	// Workers overrides scan.workers when > 0.
	Workers                  int
	DisableShortNameFallback bool
}

// SkippedFile is a file that failed to parse and contributed no matches.
type SkippedFile struct {
	Path   string `json:"path"`
	Line   int    `json:"line,omitempty"`
	Reason string `json:"reason"`
}

// ScanResult is the ordered outcome of a scan: files in traversal order and
// matches within a file in source order.
type ScanResult struct {
	Target        usage.TargetSpec
	Root          string
	Matches       []usage.UsageMatch
	FilesScanned  int
	ParseFailures []SkippedFile
	StartedAt     time.Time
	Duration      time.Duration
}

// Used reports whether at least one match was found.
func (r ScanResult) Used() bool {
	return len(r.Matches) > 0
}

// Files lists the distinct files containing matches, in result order.
func (r ScanResult) Files() []string {
	seen := make(map[string]bool, len(r.Matches))
	files := make([]string, 0)
	for _, m := range r.Matches {
		if seen[m.FilePath] {
			continue
		}
		seen[m.FilePath] = true
		files = append(files, m.FilePath)
	}
	return files
}

func (r ScanResult) CountByKind() map[usage.MatchKind]int {
	counts := make(map[usage.MatchKind]int, 2)
	for _, m := range r.Matches {
		counts[m.Kind]++
	}
	return counts
}
