package report

import (
	"fmt"
	"io"
	"strings"

	"ifacescan/internal/core/app"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

type textStyles struct {
	header  lipgloss.Style
	missing lipgloss.Style
	path    lipgloss.Style
	line    lipgloss.Style
	context lipgloss.Style
}

func newTextStyles(color bool) textStyles {
	r := lipgloss.NewRenderer(io.Discard)
	if color {
		r.SetColorProfile(termenv.ANSI256)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	return textStyles{
		header:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("#3B82F6")),
		missing: r.NewStyle().Foreground(lipgloss.Color("#FBBF24")),
		path:    r.NewStyle().Foreground(lipgloss.Color("#10B981")),
		line:    r.NewStyle().Faint(true),
		context: r.NewStyle().Italic(true).TabWidth(lipgloss.NoTabConversion),
	}
}

// RenderText produces the plain listing:
//
//	Interface lib.name is used in:
//	- path (line N)
//	  Context: ...
//
// or "Interface lib.name is not used in PATH".
func RenderText(result app.ScanResult, opts Options) string {
	st := newTextStyles(opts.Color)
	target := result.Target.Qualified()

	var b strings.Builder
	if !result.Used() {
		b.WriteString(st.missing.Render(fmt.Sprintf("Interface %s is not used in %s", target, result.Root)))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(st.header.Render(fmt.Sprintf("Interface %s is used in:", target)))
	b.WriteString("\n")
	for _, m := range result.Matches {
		b.WriteString("- ")
		b.WriteString(st.path.Render(m.FilePath))
		if opts.ShowLines && m.Line > 0 {
			b.WriteString(" ")
			b.WriteString(st.line.Render(fmt.Sprintf("(line %d)", m.Line)))
		}
		if opts.ShowContext && m.SourceText != "" {
			b.WriteString("\n  Context: ")
			b.WriteString(st.context.Render(m.SourceText))
		}
		b.WriteString("\n")
	}
	return b.String()
}
