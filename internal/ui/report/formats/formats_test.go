package formats

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"ifacescan/internal/core/app"
	"ifacescan/internal/engine/usage"
)

func sampleResult() app.ScanResult {
	return app.ScanResult{
		Target: usage.TargetSpec{InterfaceName: "MyClass", LibraryName: "mylib", Kind: usage.KindAuto},
		Root:   "/project",
		Matches: []usage.UsageMatch{
			{FilePath: "/project/pkg/a.py", Line: 3, Kind: usage.MatchCall, SourceText: "MyClass(x=1)"},
			{FilePath: "/project/pkg/b.py", Line: 7, Kind: usage.MatchSubclassBase, SourceText: "class Foo(MyClass)"},
		},
		FilesScanned:  4,
		ParseFailures: []app.SkippedFile{{Path: "/project/broken.py", Line: 2, Reason: "invalid syntax at line 2 column 12"}},
		Duration:      1500 * time.Millisecond,
	}
}

func TestGenerateSARIF(t *testing.T) {
	data, err := GenerateSARIF(sampleResult())
	if err != nil {
		t.Fatalf("GenerateSARIF returned error: %v", err)
	}
	var report sarifReport
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if report.Schema != sarifSchema || report.Version != sarifVersion {
		t.Errorf("unexpected header %q %q", report.Schema, report.Version)
	}
	run := report.Runs[0]
	if len(run.Tool.Driver.Rules) != 1 || run.Tool.Driver.Rules[0].ID != ruleIDUsage {
		t.Fatalf("expected the IFACE001 rule, got %+v", run.Tool.Driver.Rules)
	}
	if len(run.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(run.Results))
	}
	first := run.Results[0].Locations[0].PhysicalLocation
	if first.ArtifactLocation.URI != "pkg/a.py" {
		t.Errorf("uri = %q, want pkg/a.py", first.ArtifactLocation.URI)
	}
	if first.Region == nil || first.Region.StartLine != 3 || first.Region.Snippet.Text != "MyClass(x=1)" {
		t.Errorf("unexpected region %+v", first.Region)
	}
	if !strings.Contains(run.Results[1].Message.Text, "base class") {
		t.Errorf("unexpected message %q", run.Results[1].Message.Text)
	}
	if len(run.Notifications) != 1 {
		t.Errorf("expected one notification, got %d", len(run.Notifications))
	}
}

func TestGenerateSARIF_NoLineOmitsRegion(t *testing.T) {
	result := sampleResult()
	result.Matches = []usage.UsageMatch{{FilePath: "/project/a.py", Kind: usage.MatchCall}}
	result.ParseFailures = nil

	data, err := GenerateSARIF(result)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "region") {
		t.Errorf("expected no region without line detail:\n%s", data)
	}
	if strings.Contains(string(data), "toolExecutionNotifications") {
		t.Errorf("expected notifications to be omitted")
	}
}

func TestGenerateTSV(t *testing.T) {
	out, err := GenerateTSV(sampleResult())
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + 3 rows, got %d:\n%s", len(lines), out)
	}
	if lines[0] != "Type\tTarget\tFile\tLine\tContext" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if lines[1] != "call\tmylib.MyClass\t/project/pkg/a.py\t3\tMyClass(x=1)" {
		t.Errorf("unexpected row %q", lines[1])
	}
	if !strings.HasPrefix(lines[3], "parse_failure\t") {
		t.Errorf("unexpected failure row %q", lines[3])
	}
}

func TestGenerateJSON(t *testing.T) {
	data, err := GenerateJSON(app.ScanResult{
		Target: usage.TargetSpec{InterfaceName: "f", LibraryName: "lib", Kind: usage.KindFunction},
		Root:   "src",
	})
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["target"] != "lib.f" || decoded["used"] != false {
		t.Errorf("unexpected document %v", decoded)
	}
	if matches, ok := decoded["matches"].([]any); !ok || len(matches) != 0 {
		t.Errorf("expected empty matches array, got %v", decoded["matches"])
	}

	data, err = GenerateJSON(sampleResult())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"kind": "subclass-base"`) || !strings.Contains(string(data), `"duration_ms": 1500`) {
		t.Errorf("unexpected JSON:\n%s", data)
	}
}

func TestGenerateMarkdown(t *testing.T) {
	out, err := GenerateMarkdown(sampleResult(), MarkdownReportOptions{
		GeneratedAt: time.Date(2026, 2, 13, 10, 0, 0, 0, time.UTC),
		ShowLines:   true,
		ShowContext: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"generated_at: 2026-02-13T10:00:00Z",
		"# Usage of `mylib.MyClass`",
		"| Calls | 1 |",
		"| Subclass Bases | 1 |",
		"| `pkg/a.py` | call | 3 | `MyClass(x=1)` |",
		"## Skipped Files",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in markdown:\n%s", want, out)
		}
	}
}

func TestGenerateMarkdown_NotUsed(t *testing.T) {
	out, err := GenerateMarkdown(app.ScanResult{
		Target: usage.TargetSpec{InterfaceName: "f", LibraryName: "lib"},
		Root:   "src",
	}, MarkdownReportOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "_lib.f is not used in src._") {
		t.Errorf("unexpected markdown:\n%s", out)
	}
}

func TestRelativeURI(t *testing.T) {
	cases := []struct{ root, path, want string }{
		{"/project", "/project/a/b.py", "a/b.py"},
		{"/project/a.py", "/project/a.py", "a.py"},
		{"/project", "/elsewhere/c.py", "/elsewhere/c.py"},
		{"", "/x/y.py", "/x/y.py"},
		{"src", "src/m.py", "m.py"},
	}
	for _, tc := range cases {
		if got := relativeURI(tc.root, tc.path); got != tc.want {
			t.Errorf("relativeURI(%q, %q) = %q, want %q", tc.root, tc.path, got, tc.want)
		}
	}
}

func TestEscapeTableCell(t *testing.T) {
	if got := escapeTableCell("a|b\n  c\td"); got != "a\\|b c d" {
		t.Errorf("escapeTableCell = %q", got)
	}
}
