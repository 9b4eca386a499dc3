package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const DefaultFileName = "ifacescan.toml"

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	applyDefaults(&cfg)
	normalize(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Discover returns the first existing default config path under cwd, or ""
// when none exists.
func Discover(cwd string) string {
	candidates := []string{
		filepath.Join(cwd, DefaultFileName),
		filepath.Join(cwd, "data", "config", DefaultFileName),
	}
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return filepath.Clean(candidate)
		}
	}
	return ""
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}
	if len(cfg.Scan.Extensions) == 0 {
		cfg.Scan.Extensions = []string{".py"}
	}
	if strings.TrimSpace(cfg.Match.Kind) == "" {
		cfg.Match.Kind = "auto"
	}
	if strings.TrimSpace(cfg.Output.Format) == "" {
		cfg.Output.Format = "text"
	}
	if strings.TrimSpace(cfg.Output.Color) == "" {
		cfg.Output.Color = "auto"
	}
	if strings.TrimSpace(cfg.History.Path) == "" {
		cfg.History.Path = filepath.Join("data", "state", "history.db")
	}
	if cfg.History.BusyTimeout <= 0 {
		cfg.History.BusyTimeout = 2 * time.Second
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if strings.TrimSpace(cfg.Observability.ServiceName) == "" {
		cfg.Observability.ServiceName = "ifacescan"
	}
}

func normalize(cfg *Config) {
	cfg.Match.Kind = strings.ToLower(strings.TrimSpace(cfg.Match.Kind))
	cfg.Output.Format = strings.ToLower(strings.TrimSpace(cfg.Output.Format))
	cfg.Output.Color = strings.ToLower(strings.TrimSpace(cfg.Output.Color))
	cfg.History.Path = strings.TrimSpace(cfg.History.Path)
	cfg.Observability.MetricsAddr = strings.TrimSpace(cfg.Observability.MetricsAddr)
	cfg.Observability.OTLPEndpoint = strings.TrimSpace(cfg.Observability.OTLPEndpoint)

	exts := make([]string, 0, len(cfg.Scan.Extensions))
	for _, ext := range cfg.Scan.Extensions {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		exts = append(exts, ext)
	}
	cfg.Scan.Extensions = exts
}
