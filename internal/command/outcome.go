// Package command turns a raw input line into an Outcome: text to display,
// a panel to open, a control action, or a hand-off to the chat.
package command

import "github.com/Zachkp/crtfolio/internal/panel"

// OutcomeKind tags the Outcome variant.
type OutcomeKind int

const (
	// Forward means the input is not a command and goes to the chat.
	Forward OutcomeKind = iota
	// Display carries literal text for the transcript.
	Display
	// OpenPanel asks the session to open Panel.
	OpenPanel
	// ClearTranscript empties the transcript.
	ClearTranscript
	// ResetConfirm asks the user to confirm forgetting the saved conversation.
	ResetConfirm
	// ApplyTheme switches to the theme named in Text.
	ApplyTheme
)

func (k OutcomeKind) String() string {
	switch k {
	case Display:
		return "display"
	case OpenPanel:
		return "open-panel"
	case ClearTranscript:
		return "clear"
	case ResetConfirm:
		return "reset-confirm"
	case ApplyTheme:
		return "theme"
	default:
		return "forward"
	}
}

// Outcome is the result of dispatching one line.
type Outcome struct {
	Kind  OutcomeKind
	Text  string
	Panel panel.Kind
}

func display(text string) Outcome { return Outcome{Kind: Display, Text: text} }
func openPanel(k panel.Kind) Outcome { return Outcome{Kind: OpenPanel, Panel: k} }
func forward() Outcome { return Outcome{Kind: Forward} }
func control(k OutcomeKind) Outcome { return Outcome{Kind: k} }
func applyTheme(name string) Outcome { return Outcome{Kind: ApplyTheme, Text: name} }
