package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies IFACESCAN_<SECTION>_<KEY> environment variables.
func ApplyEnvOverrides(cfg *Config) {
	setEnvInt(&cfg.Scan.Workers, "IFACESCAN_SCAN_WORKERS")
	setEnvFloat64(&cfg.Scan.FilesPerSecond, "IFACESCAN_SCAN_FILES_PER_SECOND")
	setEnvList(&cfg.Scan.Extensions, "IFACESCAN_SCAN_EXTENSIONS")

	setEnvString(&cfg.Match.Kind, "IFACESCAN_MATCH_KIND")
	if val, ok := os.LookupEnv("IFACESCAN_MATCH_SHORT_NAME_FALLBACK"); ok {
		if b, err := strconv.ParseBool(strings.ToLower(val)); err == nil {
			slog.Debug("applying env override", "key", "IFACESCAN_MATCH_SHORT_NAME_FALLBACK", "value", val)
			cfg.Match.ShortNameFallback = &b
		}
	}

	setEnvList(&cfg.Exclude.Dirs, "IFACESCAN_EXCLUDE_DIRS")
	setEnvList(&cfg.Exclude.Files, "IFACESCAN_EXCLUDE_FILES")

	setEnvString(&cfg.Output.Format, "IFACESCAN_OUTPUT_FORMAT")
	setEnvString(&cfg.Output.Color, "IFACESCAN_OUTPUT_COLOR")

	setEnvBool(&cfg.History.Enabled, "IFACESCAN_HISTORY_ENABLED")
	setEnvString(&cfg.History.Path, "IFACESCAN_HISTORY_PATH")
	setEnvDuration(&cfg.History.BusyTimeout, "IFACESCAN_HISTORY_BUSY_TIMEOUT")

	setEnvDuration(&cfg.Watch.Debounce, "IFACESCAN_WATCH_DEBOUNCE")

	setEnvString(&cfg.Observability.MetricsAddr, "IFACESCAN_OBSERVABILITY_METRICS_ADDR")
	setEnvString(&cfg.Observability.OTLPEndpoint, "IFACESCAN_OBSERVABILITY_OTLP_ENDPOINT")
	setEnvBool(&cfg.Observability.OTLPInsecure, "IFACESCAN_OBSERVABILITY_OTLP_INSECURE")

	normalize(cfg)
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

// setEnvList splits a comma-separated value.
func setEnvList(target *[]string, key string) {
	val, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	slog.Debug("applying env override", "key", key, "value", val)
	*target = out
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(strings.ToLower(val)); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = b
		}
	}
}

func setEnvFloat64(target *float64, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = f
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = d
		}
	}
}
