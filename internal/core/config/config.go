package config

import (
	"time"
)

type Config struct {
	Version       int           `toml:"version"`
	Scan          Scan          `toml:"scan"`
	Match         Match         `toml:"match"`
	Exclude       Exclude       `toml:"exclude"`
	Output        Output        `toml:"output"`
	History       History       `toml:"history"`
	Watch         Watch         `toml:"watch"`
	Observability Observability `toml:"observability"`
}

type Scan struct {
	Extensions []string `toml:"extensions"`
	// Workers bounds concurrent per-file analysis; 0 means GOMAXPROCS.
	Workers int `toml:"workers"`
	// FilesPerSecond throttles file reads when > 0.
	FilesPerSecond float64 `toml:"files_per_second"`
}

type Match struct {
	Kind              string `toml:"kind"`
	ShortNameFallback *bool  `toml:"short_name_fallback"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

type Output struct {
	Format      string `toml:"format"`
	Color       string `toml:"color"`
	ShowLines   bool   `toml:"show_lines"`
	ShowContext bool   `toml:"show_context"`
}

type History struct {
	Enabled     bool          `toml:"enabled"`
	Path        string        `toml:"path"`
	BusyTimeout time.Duration `toml:"busy_timeout"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
}

type Observability struct {
	MetricsAddr  string `toml:"metrics_addr"`
	OTLPEndpoint string `toml:"otlp_endpoint"`
	OTLPInsecure bool   `toml:"otlp_insecure"`
	ServiceName  string `toml:"service_name"`
}

func (m Match) FallbackEnabled() bool {
	if m.ShortNameFallback == nil {
		return true
	}
	return *m.ShortNameFallback
}

// DefaultConfig returns the configuration used when no file is found.
func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}
