package formats

import (
	"fmt"
	"strings"
	"time"

	"ifacescan/internal/core/app"
	"ifacescan/internal/engine/usage"
	"ifacescan/internal/shared/version"
)

type MarkdownReportOptions struct {
	GeneratedAt time.Time
	ShowLines   bool
	ShowContext bool
}

func GenerateMarkdown(result app.ScanResult, opts MarkdownReportOptions) (string, error) {
	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = time.Now().UTC()
	}
	target := result.Target.Qualified()

	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("title: Interface Usage Report\n")
	b.WriteString("target: " + target + "\n")
	b.WriteString("generated_at: " + opts.GeneratedAt.UTC().Format(time.RFC3339) + "\n")
	b.WriteString("version: " + nonEmpty(version.Version, "unknown") + "\n")
	b.WriteString("---\n\n")

	b.WriteString(fmt.Sprintf("# Usage of `%s`\n\n", target))

	counts := result.CountByKind()
	b.WriteString("## Summary\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("| --- | --- |\n")
	b.WriteString(fmt.Sprintf("| Root | `%s` |\n", escapeTableCell(result.Root)))
	b.WriteString(fmt.Sprintf("| Files Scanned | %d |\n", result.FilesScanned))
	b.WriteString(fmt.Sprintf("| Files Using Target | %d |\n", len(result.Files())))
	b.WriteString(fmt.Sprintf("| Calls | %d |\n", counts[usage.MatchCall]))
	b.WriteString(fmt.Sprintf("| Subclass Bases | %d |\n", counts[usage.MatchSubclassBase]))
	b.WriteString(fmt.Sprintf("| Skipped Files | %d |\n\n", len(result.ParseFailures)))

	b.WriteString("## Usages\n")
	if !result.Used() {
		b.WriteString(fmt.Sprintf("_%s is not used in %s._\n", target, nonEmpty(result.Root, "the scanned tree")))
	} else {
		header := "| File | Kind |"
		sep := "| --- | --- |"
		if opts.ShowLines {
			header += " Line |"
			sep += " --- |"
		}
		if opts.ShowContext {
			header += " Context |"
			sep += " --- |"
		}
		b.WriteString(header + "\n" + sep + "\n")
		for _, m := range result.Matches {
			row := fmt.Sprintf("| `%s` | %s |", escapeTableCell(relativeURI(result.Root, m.FilePath)), m.Kind)
			if opts.ShowLines {
				row += fmt.Sprintf(" %s |", lineCell(m.Line))
			}
			if opts.ShowContext {
				ctx := ""
				if m.SourceText != "" {
					ctx = "`" + escapeTableCell(m.SourceText) + "`"
				}
				row += " " + ctx + " |"
			}
			b.WriteString(row + "\n")
		}
	}

	if len(result.ParseFailures) > 0 {
		b.WriteString("\n## Skipped Files\n")
		b.WriteString("| File | Line | Reason |\n")
		b.WriteString("| --- | --- | --- |\n")
		for _, f := range result.ParseFailures {
			b.WriteString(fmt.Sprintf("| `%s` | %s | %s |\n",
				escapeTableCell(relativeURI(result.Root, f.Path)), lineCell(f.Line), escapeTableCell(f.Reason)))
		}
	}

	return b.String(), nil
}
