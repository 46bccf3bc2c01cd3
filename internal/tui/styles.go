package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"

	"github.com/Zachkp/crtfolio/internal/catalog"
	"github.com/Zachkp/crtfolio/internal/transcript"
)

type styles struct {
	output lipgloss.Style
	echo   lipgloss.Style
	accent lipgloss.Style
	dim    lipgloss.Style
	input  lipgloss.Style
	cursor lipgloss.Style
	status lipgloss.Style
}

func newStyles(t catalog.Theme) styles {
	fg := lipgloss.Color(t.Foreground)
	accent := lipgloss.Color(t.Accent)
	dim := lipgloss.Color(t.Dim)
	return styles{
		output: lipgloss.NewStyle().Foreground(fg),
		echo:   lipgloss.NewStyle().Foreground(accent),
		accent: lipgloss.NewStyle().Foreground(accent).Bold(true),
		dim:    lipgloss.NewStyle().Foreground(dim),
		input:  lipgloss.NewStyle().Foreground(fg),
		cursor: lipgloss.NewStyle().Foreground(fg).Blink(true),
		status: lipgloss.NewStyle().Foreground(dim).Italic(true),
	}
}

func (m *Model) setTheme(t catalog.Theme) {
	m.styles = newStyles(t)
	if m.ready {
		m.viewport.SetContent(m.renderTranscript())
	}
}

func (m *Model) renderTranscript() string {
	entries := m.ctl.Entries()
	lines := make([]string, 0, len(entries))
	for i, e := range entries {
		text := m.visibleText(i, e)
		if m.width > 0 {
			// wordwrap keeps words whole; wrap then hard-breaks anything
			// still too long, like URLs
			text = wrap.String(wordwrap.String(text, m.width), m.width)
		}
		style := m.styles.output
		if e.Kind == transcript.Input {
			style = m.styles.echo
		}
		lines = append(lines, renderLines(style, text))
	}
	return strings.Join(lines, "\n")
}

// renderLines styles each line on its own so colors survive viewport
// slicing.
func renderLines(style lipgloss.Style, text string) string {
	parts := strings.Split(text, "\n")
	for i, p := range parts {
		parts[i] = style.Render(p)
	}
	return strings.Join(parts, "\n")
}
