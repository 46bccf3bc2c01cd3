package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Zachkp/crtfolio/internal/session"
	"github.com/Zachkp/crtfolio/internal/transcript"
)

// revealBurst is how many runes each typewriter tick adds.
const revealBurst = 4

// startReveal begins typing out a newly appended animated output entry.
// Entries that were already on screen, like a restored session, render
// whole. Boot lines are typed by the controller itself.
func (m *Model) startReveal() tea.Cmd {
	entries := m.ctl.Entries()
	n := len(entries)
	grew := n > m.seen
	m.seen = n
	if m.reveal >= n {
		m.reveal = -1
	}
	if !grew || m.ctl.Mode() == session.ModeBooting {
		return nil
	}
	last := entries[n-1]
	if last.Kind != transcript.Output || !last.Animated {
		return nil
	}
	m.reveal, m.revealText, m.shown = n-1, last.Text, 0
	m.revealGen++
	return m.revealTick()
}

func (m *Model) revealTick() tea.Cmd {
	gen := m.revealGen
	return tea.Tick(m.cfg.TypeDelay, func(time.Time) tea.Msg { return revealTickMsg{gen: gen} })
}

func (m *Model) revealStep(gen int) tea.Cmd {
	if gen != m.revealGen || m.reveal < 0 {
		return nil
	}
	m.shown += revealBurst
	var next tea.Cmd
	if m.shown >= len([]rune(m.revealText)) {
		m.reveal = -1
	} else {
		next = m.revealTick()
	}
	if m.ready {
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
	}
	return next
}

// visibleText is what the typewriter has revealed of entry i so far.
func (m *Model) visibleText(i int, e transcript.Entry) string {
	if i != m.reveal || e.Text != m.revealText {
		return e.Text
	}
	runes := []rune(e.Text)
	return string(runes[:min(m.shown, len(runes))])
}
