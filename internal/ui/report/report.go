package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"ifacescan/internal/core/app"
	"ifacescan/internal/core/errors"
	"ifacescan/internal/ui/report/formats"

	"github.com/mattn/go-isatty"
)

type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatTSV      Format = "tsv"
	FormatMarkdown Format = "markdown"
	FormatSARIF    Format = "sarif"
)

func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatTSV, FormatMarkdown, FormatSARIF:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	}
	return "", errors.New(errors.CodeValidationError, fmt.Sprintf("unknown output format %q", raw))
}

// Options controls rendering. ShowLines and ShowContext only affect the text
// and markdown layouts; machine formats always carry what the result holds.
type Options struct {
	Format      Format
	Color       bool
	ShowLines   bool
	ShowContext bool
}

// Render writes result to w in the requested format.
func Render(w io.Writer, result app.ScanResult, opts Options) error {
	var (
		out string
		err error
	)
	switch opts.Format {
	case FormatText, "":
		out = RenderText(result, opts)
	case FormatJSON:
		var data []byte
		data, err = formats.GenerateJSON(result)
		out = string(data) + "\n"
	case FormatTSV:
		out, err = formats.GenerateTSV(result)
	case FormatMarkdown:
		out, err = formats.GenerateMarkdown(result, formats.MarkdownReportOptions{
			ShowLines:   opts.ShowLines,
			ShowContext: opts.ShowContext,
		})
	case FormatSARIF:
		var data []byte
		data, err = formats.GenerateSARIF(result)
		out = string(data) + "\n"
	default:
		return errors.New(errors.CodeValidationError, fmt.Sprintf("unknown output format %q", opts.Format))
	}
	if err != nil {
		return fmt.Errorf("render %s report: %w", opts.Format, err)
	}
	_, err = io.WriteString(w, out)
	return err
}

// ColorEnabled resolves an auto|always|never mode for w. Auto enables color
// only on a terminal and when NO_COLOR is unset.
func ColorEnabled(mode string, w io.Writer) bool {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
