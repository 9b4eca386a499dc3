package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ifacescan_parsing_seconds",
		Help:    "Time spent parsing a source file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	FilesScannedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ifacescan_files_scanned_total",
		Help: "Total number of source files analyzed.",
	})

	ParseFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ifacescan_parse_failures_total",
		Help: "Total number of files skipped because they could not be parsed.",
	})

	MatchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ifacescan_matches_total",
		Help: "Total number of usage sites reported, by match kind.",
	}, []string{"kind"})

	ScanDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ifacescan_scan_seconds",
		Help:    "Time spent on a full or incremental scan.",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ifacescan_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	HistoryWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ifacescan_history_writes_total",
		Help: "Total number of scan history writes, by outcome.",
	}, []string{"outcome"})
)
