package config

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

var (
	validFormats = map[string]bool{"text": true, "json": true, "tsv": true, "markdown": true, "sarif": true}
	validColors  = map[string]bool{"auto": true, "always": true, "never": true}
	validKinds   = map[string]bool{"auto": true, "function": true, "class": true}
)

func Validate(cfg *Config) error {
	if err := validateVersion(cfg); err != nil {
		return err
	}
	if err := validateScan(cfg); err != nil {
		return err
	}
	if err := validateExclude(cfg); err != nil {
		return err
	}
	if err := validateOutput(cfg); err != nil {
		return err
	}
	if !validKinds[cfg.Match.Kind] {
		return fmt.Errorf("match.kind must be one of: auto, function, class (got %q)", cfg.Match.Kind)
	}
	if cfg.History.Enabled && strings.TrimSpace(cfg.History.Path) == "" {
		return fmt.Errorf("history.path must not be empty when history.enabled=true")
	}
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	return nil
}

func validateVersion(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validateScan(cfg *Config) error {
	if len(cfg.Scan.Extensions) == 0 {
		return fmt.Errorf("scan.extensions must list at least one extension")
	}
	for i, ext := range cfg.Scan.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("scan.extensions[%d] must start with a dot, got %q", i, ext)
		}
	}
	if cfg.Scan.Workers < 0 {
		return fmt.Errorf("scan.workers must be >= 0, got %d", cfg.Scan.Workers)
	}
	if cfg.Scan.FilesPerSecond < 0 {
		return fmt.Errorf("scan.files_per_second must be >= 0, got %v", cfg.Scan.FilesPerSecond)
	}
	return nil
}

func validateExclude(cfg *Config) error {
	for i, pattern := range cfg.Exclude.Dirs {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("exclude.dirs[%d] invalid pattern %q: %w", i, pattern, err)
		}
	}
	for i, pattern := range cfg.Exclude.Files {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("exclude.files[%d] invalid pattern %q: %w", i, pattern, err)
		}
	}
	return nil
}

func validateOutput(cfg *Config) error {
	if !validFormats[cfg.Output.Format] {
		return fmt.Errorf("output.format must be one of: text, json, tsv, markdown, sarif (got %q)", cfg.Output.Format)
	}
	if !validColors[cfg.Output.Color] {
		return fmt.Errorf("output.color must be one of: auto, always, never (got %q)", cfg.Output.Color)
	}
	return nil
}
