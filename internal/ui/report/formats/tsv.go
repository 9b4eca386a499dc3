package formats

import (
	"fmt"
	"strings"

	"ifacescan/internal/core/app"
)

// GenerateTSV emits one row per match followed by one row per skipped file.
// Line is empty when it was not requested.
func GenerateTSV(result app.ScanResult) (string, error) {
	var buf strings.Builder

	buf.WriteString("Type\tTarget\tFile\tLine\tContext\n")
	target := result.Target.Qualified()
	for _, m := range result.Matches {
		buf.WriteString(fmt.Sprintf("%s\t%s\t%s\t%s\t%s\n",
			m.Kind,
			target,
			m.FilePath,
			lineCell(m.Line),
			singleLine(m.SourceText),
		))
	}
	for _, f := range result.ParseFailures {
		buf.WriteString(fmt.Sprintf("parse_failure\t%s\t%s\t%s\t%s\n",
			target,
			f.Path,
			lineCell(f.Line),
			singleLine(f.Reason),
		))
	}

	return buf.String(), nil
}

func lineCell(line int) string {
	if line <= 0 {
		return ""
	}
	return fmt.Sprintf("%d", line)
}
