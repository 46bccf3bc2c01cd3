package session

import (
	"github.com/Zachkp/crtfolio/internal/catalog"
	"github.com/Zachkp/crtfolio/internal/chat"
)

// Effect is work the controller asks its host to perform. The controller
// never does I/O itself; the host runs effects and reports back through
// HistoryLoaded and the Stream* methods.
type Effect interface {
	effect()
}

// SendChat starts a streamed reply for Messages.
type SendChat struct {
	Messages []chat.Message
}

// LoadHistory reads the persisted transcript.
type LoadHistory struct{}

// ClearStorage deletes the persisted transcript.
type ClearStorage struct{}

// OpenURL opens URL outside the terminal.
type OpenURL struct {
	URL string
}

// SetTheme switches the terminal colors.
type SetTheme struct {
	Theme catalog.Theme
}

func (SendChat) effect()     {}
func (LoadHistory) effect()  {}
func (ClearStorage) effect() {}
func (OpenURL) effect()      {}
func (SetTheme) effect()     {}
