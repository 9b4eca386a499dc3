package formats

import (
	"encoding/json"
	"fmt"

	"ifacescan/internal/core/app"
	"ifacescan/internal/engine/usage"
	"ifacescan/internal/shared/version"
)

// SARIF v2.1.0 schema – see https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json

const (
	sarifSchema  = "https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json"
	sarifVersion = "2.1.0"

	ruleIDUsage = "IFACE001"
)

type sarifReport struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool          sarifTool           `json:"tool"`
	Results       []sarifResult       `json:"results"`
	Notifications []sarifNotification `json:"toolExecutionNotifications,omitempty"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string                 `json:"id"`
	Name             string                 `json:"name"`
	ShortDescription sarifMessage           `json:"shortDescription"`
	DefaultConfig    sarifRuleDefaultConfig `json:"defaultConfiguration"`
}

type sarifRuleDefaultConfig struct {
	Level string `json:"level"`
}

type sarifResult struct {
	RuleID     string            `json:"ruleId"`
	Level      string            `json:"level"`
	Message    sarifMessage      `json:"message"`
	Locations  []sarifLocation   `json:"locations,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
}

type sarifNotification struct {
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           *sarifRegion          `json:"region,omitempty"`
}

type sarifArtifactLocation struct {
	URI       string `json:"uri"`
	URIBaseID string `json:"uriBaseId"`
}

type sarifRegion struct {
	StartLine int           `json:"startLine,omitempty"`
	Snippet   *sarifMessage `json:"snippet,omitempty"`
}

// GenerateSARIF builds a SARIF v2.1.0 document with one IFACE001 result per
// usage site. File URIs are made relative to the scan root. Parse failures
// become tool execution notifications.
func GenerateSARIF(result app.ScanResult) ([]byte, error) {
	target := result.Target.Qualified()
	results := make([]sarifResult, 0, len(result.Matches))
	for _, m := range result.Matches {
		msg := fmt.Sprintf("%s is called here", target)
		if m.Kind == usage.MatchSubclassBase {
			msg = fmt.Sprintf("%s is used as a base class here", target)
		}
		loc := fileLocation(result.Root, m.FilePath, m.Line)
		if m.SourceText != "" && loc.PhysicalLocation.Region != nil {
			loc.PhysicalLocation.Region.Snippet = &sarifMessage{Text: m.SourceText}
		}
		results = append(results, sarifResult{
			RuleID:     ruleIDUsage,
			Level:      "note",
			Message:    sarifMessage{Text: msg},
			Locations:  []sarifLocation{loc},
			Properties: map[string]string{"kind": string(m.Kind)},
		})
	}

	notifications := make([]sarifNotification, 0, len(result.ParseFailures))
	for _, f := range result.ParseFailures {
		notifications = append(notifications, sarifNotification{
			Level:     "warning",
			Message:   sarifMessage{Text: "file skipped: " + f.Reason},
			Locations: []sarifLocation{fileLocation(result.Root, f.Path, f.Line)},
		})
	}

	report := sarifReport{
		Schema:  sarifSchema,
		Version: sarifVersion,
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:    "ifacescan",
						Version: version.Version,
						Rules: []sarifRule{{
							ID:               ruleIDUsage,
							Name:             "InterfaceUsage",
							ShortDescription: sarifMessage{Text: "A library interface is referenced by a call or a class base."},
							DefaultConfig:    sarifRuleDefaultConfig{Level: "note"},
						}},
					},
				},
				Results:       results,
				Notifications: notifications,
			},
		},
	}

	return json.MarshalIndent(report, "", "  ")
}

func fileLocation(root, path string, line int) sarifLocation {
	loc := sarifLocation{
		PhysicalLocation: sarifPhysicalLocation{
			ArtifactLocation: sarifArtifactLocation{
				URI:       relativeURI(root, path),
				URIBaseID: "%SRCROOT%",
			},
		},
	}
	if line > 0 {
		loc.PhysicalLocation.Region = &sarifRegion{StartLine: line}
	}
	return loc
}
