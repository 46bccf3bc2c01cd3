// Package session holds the terminal's input/output state machine. It is
// pure: keystrokes and host callbacks go in, transcript changes and Effects
// come out.
package session

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/Zachkp/crtfolio/internal/boot"
	"github.com/Zachkp/crtfolio/internal/catalog"
	"github.com/Zachkp/crtfolio/internal/chat"
	"github.com/Zachkp/crtfolio/internal/command"
	"github.com/Zachkp/crtfolio/internal/panel"
	"github.com/Zachkp/crtfolio/internal/transcript"
)

// Mode is the controller's exclusive input mode.
type Mode int

const (
	ModeBooting Mode = iota
	ModeRestorePrompt
	ModeReady
	ModeResetConfirm
	ModePanel
)

func (m Mode) String() string {
	switch m {
	case ModeBooting:
		return "booting"
	case ModeRestorePrompt:
		return "restore-prompt"
	case ModeReady:
		return "ready"
	case ModeResetConfirm:
		return "reset-confirm"
	case ModePanel:
		return "panel"
	default:
		return "unknown"
	}
}

// Lines printed by the controller itself.
const (
	RestoreQuestion = "> Previous session found.\n> [1] Restore previous session\n> [2] Start new session"
	Restored        = "> Previous session restored."
	StartedNew      = "> Starting new session."
	InvalidOption   = "> Invalid option. Please choose 1 or 2."
	ResetQuestion   = "> Clear all conversation history? This cannot be undone. (y/N)"
	ResetDone       = "> Conversation history cleared."
	ResetCancelled  = "> Reset cancelled."
)

// Options configures a Controller.
type Options struct {
	Catalog *catalog.Catalog
	// Now defaults to time.Now.
	Now  func() time.Time
	City string
	// Restore defaults to PolicyPrompt.
	Restore Policy
	// HistoryTurns caps the user/assistant pairs sent with each chat turn.
	HistoryTurns int
}

// Controller is one visitor's terminal session.
type Controller struct {
	opts       Options
	dispatcher *command.Dispatcher
	log        *transcript.Transcript
	mode       Mode

	typer     *boot.Typewriter
	loading   bool
	bootedAt  time.Time
	saved     []transcript.Entry
	interacts bool

	input    string
	history  []string
	histPos  int
	panel    *panel.Panel
	panelAt  int
	theme    catalog.Theme
	waiting  bool
	streamAt int
	revision uint64
}

func New(opts Options) *Controller {
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Restore == "" {
		opts.Restore = PolicyPrompt
	}
	c := &Controller{
		opts:       opts,
		dispatcher: command.NewDispatcher(),
		log:        transcript.New(),
		mode:       ModeBooting,
		typer:      boot.NewTypewriter(boot.Script(opts.City)),
		streamAt:   -1,
	}
	if len(opts.Catalog.Themes) > 0 {
		c.theme = opts.Catalog.Themes[0]
	}
	return c
}

func (c *Controller) Mode() Mode { return c.mode }

// Booted reports whether the boot sequence and history check are finished.
func (c *Controller) Booted() bool {
	return c.mode != ModeBooting
}

func (c *Controller) Waiting() bool { return c.waiting }

func (c *Controller) Input() string { return c.input }

// Interacted reports whether the visitor has submitted anything yet.
func (c *Controller) Interacted() bool { return c.interacts }

func (c *Controller) Theme() catalog.Theme { return c.theme }

// Panel returns the open panel, or nil.
func (c *Controller) Panel() *panel.Panel { return c.panel }

// Entries returns a copy of the transcript.
func (c *Controller) Entries() []transcript.Entry { return c.log.Entries() }

// Revision increases on every transcript change.
func (c *Controller) Revision() uint64 { return c.revision }

func (c *Controller) touch() { c.revision++ }

func (c *Controller) out(text string) {
	c.log.Append(transcript.Out(text))
	c.touch()
}

func (c *Controller) echo(text string) {
	c.log.Append(transcript.In("> " + text))
	c.touch()
}

// BootTick reveals the next boot character. After the last line it asks
// for the persisted history once.
func (c *Controller) BootTick() []Effect {
	if c.mode != ModeBooting || c.loading {
		return nil
	}
	if !c.typer.Done() {
		idx, visible, _ := c.typer.Step()
		if idx >= c.log.Len() {
			c.log.Append(transcript.Entry{Kind: transcript.Output, Text: visible, Animated: true})
		} else {
			c.log.ReplaceAt(idx, transcript.Entry{Kind: transcript.Output, Text: visible, Animated: true})
		}
		c.touch()
		if !c.typer.Done() {
			return nil
		}
	}
	c.loading = true
	c.bootedAt = c.opts.Now()
	return []Effect{LoadHistory{}}
}

// HistoryLoaded finishes booting with the persisted transcript, which may
// be empty.
func (c *Controller) HistoryLoaded(entries []transcript.Entry) {
	if c.mode != ModeBooting || !c.loading {
		return
	}
	c.loading = false
	if len(entries) == 0 {
		c.mode = ModeReady
		return
	}
	switch c.opts.Restore {
	case PolicyAuto:
		c.restore(entries)
		c.mode = ModeReady
	case PolicyNever:
		c.mode = ModeReady
	default:
		c.saved = entries
		c.out(RestoreQuestion)
		c.mode = ModeRestorePrompt
	}
}

func (c *Controller) restore(entries []transcript.Entry) {
	c.log.Replace(entries)
	c.out(Restored)
}

// Type inserts text at the end of the input line.
func (c *Controller) Type(text string) {
	if c.waiting || c.mode == ModeBooting || c.mode == ModePanel {
		return
	}
	c.input += strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return ' '
		}
		if !unicode.IsPrint(r) {
			return -1
		}
		return r
	}, text)
}

// Key handles one named key press. While a reply is streaming the stream
// and transcript are left alone; esc only clears the input line.
func (c *Controller) Key(key string) []Effect {
	if c.waiting {
		if key == "esc" {
			c.input = ""
		}
		return nil
	}
	if c.mode == ModeBooting {
		return nil
	}
	if c.mode == ModePanel {
		return c.panelKey(key)
	}

	switch key {
	case "enter":
		return c.submit()
	case "backspace":
		if c.input != "" {
			_, size := utf8.DecodeLastRuneInString(c.input)
			c.input = c.input[:len(c.input)-size]
		}
	case "ctrl+u", "esc":
		c.input = ""
	case "ctrl+l":
		if c.mode == ModeReady {
			c.log.Clear()
			c.touch()
		}
	case "up":
		if c.mode == ModeReady && c.histPos > 0 {
			c.histPos--
			c.input = c.history[c.histPos]
		}
	case "down":
		if c.mode != ModeReady {
			break
		}
		if c.histPos < len(c.history)-1 {
			c.histPos++
			c.input = c.history[c.histPos]
		} else {
			c.histPos = len(c.history)
			c.input = ""
		}
	case "space":
		c.Type(" ")
	default:
		if utf8.RuneCountInString(key) == 1 {
			c.Type(key)
		}
	}
	return nil
}

func (c *Controller) submit() []Effect {
	text := strings.TrimSpace(c.input)
	c.input = ""
	if text == "" {
		return nil
	}
	c.interacts = true

	switch c.mode {
	case ModeRestorePrompt:
		c.echo(text)
		switch text {
		case "1":
			c.restore(c.saved)
		case "2":
			c.out(StartedNew)
		default:
			c.out(InvalidOption)
			return nil
		}
		c.saved = nil
		c.mode = ModeReady
		return nil

	case ModeResetConfirm:
		c.echo(text)
		c.mode = ModeReady
		if answer := strings.ToLower(text); answer == "y" || answer == "yes" {
			c.log.Clear()
			c.out(ResetDone)
			return []Effect{ClearStorage{}}
		}
		c.out(ResetCancelled)
		return nil
	}

	c.echo(text)
	c.remember(text)
	return c.run(text)
}

func (c *Controller) remember(line string) {
	if n := len(c.history); n == 0 || c.history[n-1] != line {
		c.history = append(c.history, line)
	}
	c.histPos = len(c.history)
}

func (c *Controller) env() command.Env {
	return command.Env{
		Catalog: c.opts.Catalog,
		Now:     c.opts.Now(),
		Booted:  c.bootedAt,
		History: append([]string(nil), c.history...),
		City:    c.opts.City,
	}
}

func (c *Controller) run(line string) []Effect {
	out := c.dispatcher.Dispatch(c.env(), line)
	switch out.Kind {
	case command.Display:
		if out.Text != "" {
			c.log.Append(transcript.Entry{Kind: transcript.Output, Text: out.Text, Animated: true})
			c.touch()
		}
	case command.OpenPanel:
		c.openPanel(out.Panel)
	case command.ClearTranscript:
		c.log.Clear()
		c.touch()
	case command.ResetConfirm:
		c.out(ResetQuestion)
		c.mode = ModeResetConfirm
	case command.ApplyTheme:
		if t, ok := c.opts.Catalog.Theme(out.Text); ok {
			return c.applyTheme(t)
		}
	case command.Forward:
		return c.startChat()
	}
	return nil
}

func (c *Controller) applyTheme(t catalog.Theme) []Effect {
	c.theme = t
	c.out("> Theme set to " + t.Name + ".")
	return []Effect{SetTheme{Theme: t}}
}

func (c *Controller) startChat() []Effect {
	c.waiting = true
	c.streamAt = -1
	msgs := chat.CapHistory(chat.FromTranscript(c.log.Entries()), c.opts.HistoryTurns)
	return []Effect{SendChat{Messages: msgs}}
}

// StreamUpdate shows the reply received so far. The first update appends
// the in-progress entry; later ones replace it.
func (c *Controller) StreamUpdate(full string) {
	if !c.waiting {
		return
	}
	e := transcript.Out("> " + full)
	if c.streamAt < 0 || !c.log.ReplaceAt(c.streamAt, e) {
		c.streamAt = c.log.Append(e)
	}
	c.touch()
}

// StreamDone finalizes the reply and unlocks input.
func (c *Controller) StreamDone() {
	c.waiting = false
	c.streamAt = -1
}

// StreamFailed replaces the in-progress entry with an error line and
// unlocks input. The visitor has to resend.
func (c *Controller) StreamFailed(msg string) {
	if !c.waiting {
		return
	}
	e := transcript.Out("> Error: " + msg)
	if c.streamAt < 0 || !c.log.ReplaceAt(c.streamAt, e) {
		c.log.Append(e)
	}
	c.touch()
	c.StreamDone()
}

func (c *Controller) openPanel(kind panel.Kind) {
	if c.panel != nil {
		c.closePanel()
	}
	c.panel = panel.Open(kind, c.opts.Catalog)
	c.panelAt = c.log.Len()
	c.out(c.panel.Render())
	c.mode = ModePanel
}

// closePanel drops the panel render so the transcript is back to what it
// was before the panel opened.
func (c *Controller) closePanel() {
	c.log.Truncate(c.panelAt)
	c.panel = nil
	c.mode = ModeReady
	c.touch()
}

func (c *Controller) panelKey(key string) []Effect {
	act := c.panel.HandleKey(key)
	switch act.Kind {
	case panel.ActRender:
		c.log.ReplaceAt(c.panelAt, transcript.Out(c.panel.Render()))
		c.touch()
	case panel.ActClose:
		c.closePanel()
	case panel.ActOpenURL:
		return []Effect{OpenURL{URL: act.URL}}
	case panel.ActRun:
		c.closePanel()
		c.echo(act.Command)
		c.remember(act.Command)
		return c.run(act.Command)
	case panel.ActPlay:
		c.closePanel()
		c.out("> ♪ Now playing: " + act.Track.Name)
		return []Effect{OpenURL{URL: act.Track.URL}}
	case panel.ActSetTheme:
		c.closePanel()
		return c.applyTheme(act.Theme)
	}
	return nil
}
