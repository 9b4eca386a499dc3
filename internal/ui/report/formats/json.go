package formats

import (
	"encoding/json"

	"ifacescan/internal/core/app"
	"ifacescan/internal/engine/usage"
)

type jsonReport struct {
	Target        string             `json:"target"`
	Library       string             `json:"library"`
	Interface     string             `json:"interface"`
	Kind          string             `json:"kind"`
	Root          string             `json:"root"`
	Used          bool               `json:"used"`
	FilesScanned  int                `json:"files_scanned"`
	DurationMS    int64              `json:"duration_ms"`
	Matches       []usage.UsageMatch `json:"matches"`
	ParseFailures []app.SkippedFile  `json:"parse_failures"`
}

func GenerateJSON(result app.ScanResult) ([]byte, error) {
	report := jsonReport{
		Target:        result.Target.Qualified(),
		Library:       result.Target.LibraryName,
		Interface:     result.Target.InterfaceName,
		Kind:          string(result.Target.Kind),
		Root:          result.Root,
		Used:          result.Used(),
		FilesScanned:  result.FilesScanned,
		DurationMS:    result.Duration.Milliseconds(),
		Matches:       result.Matches,
		ParseFailures: result.ParseFailures,
	}
	if report.Matches == nil {
		report.Matches = []usage.UsageMatch{}
	}
	if report.ParseFailures == nil {
		report.ParseFailures = []app.SkippedFile{}
	}
	return json.MarshalIndent(report, "", "  ")
}
