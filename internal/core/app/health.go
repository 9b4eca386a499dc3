package app

import (
	"context"
	"strconv"
	"strings"
	"time"

	"ifacescan/internal/data/history"
)

type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]string `json:"components"`
}

type HealthService struct {
	app *App
}

func NewHealthService(app *App) *HealthService {
	return &HealthService{app: app}
}

func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:     "up",
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]string),
	}

	if s.app == nil || s.app.Parser == nil {
		status.Status = "degraded"
		status.Components["parser"] = "missing"
		return status
	}
	status.Components["parser"] = "ok (" + strings.Join(s.app.Parser.Loader().SupportedExtensions(), ",") + ")"
	status.Components["parsers_in_use"] = strconv.Itoa(s.app.Parser.Leased())

	switch {
	case s.app.history != nil:
		if _, err := s.app.history.ListScans(ctx, history.ScanFilter{Limit: 1}); err != nil {
			status.Status = "degraded"
			status.Components["history"] = "error: " + err.Error()
		} else {
			status.Components["history"] = "ok"
		}
	case s.app.Config.History.Enabled:
		status.Status = "degraded"
		status.Components["history"] = "missing but enabled in config"
	default:
		status.Components["history"] = "disabled"
	}

	return status
}
