// Package tui runs the terminal portfolio as a bubbletea program. All
// session behavior lives in session.Controller; this package feeds it keys
// and timers, carries out the effects it returns, and draws the result.
package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/Zachkp/crtfolio/internal/boot"
	"github.com/Zachkp/crtfolio/internal/chat"
	"github.com/Zachkp/crtfolio/internal/persist"
	"github.com/Zachkp/crtfolio/internal/session"
	"github.com/Zachkp/crtfolio/internal/transcript"
)

// Streamer sends a chat history and reports the accumulated reply.
type Streamer interface {
	Stream(ctx context.Context, msgs []chat.Message, onText func(full string)) error
}

// Config wires a Model.
type Config struct {
	Controller *session.Controller
	Chat       Streamer
	Store      persist.Store
	StorageKey string
	// TypeDelay is the boot typewriter speed. Defaults to boot.CharDelay.
	TypeDelay    time.Duration
	SaveDebounce time.Duration
	// OpenURL defaults to the platform browser opener.
	OpenURL func(url string) error
	Logger  *zap.Logger
}

type bootTickMsg struct{}

type revealTickMsg struct{ gen int }

type historyMsg struct{ entries []transcript.Entry }

type streamMsg struct {
	id   int
	full string
}

type streamEnd struct {
	id  int
	err error
}

type openedMsg struct {
	url string
	err error
}

type Model struct {
	ctx    context.Context
	cancel context.CancelFunc
	cfg    Config
	ctl    *session.Controller
	saver  *persist.Saver
	logger *zap.Logger

	spinner  spinner.Model
	viewport viewport.Model
	styles   styles
	width    int
	height   int
	ready    bool

	stream       chan tea.Msg
	streamID     int
	streamCancel context.CancelFunc
	lastRev      uint64
	status       string

	// typewriter state for the newest animated output entry
	seen       int
	reveal     int
	revealText string
	shown      int
	revealGen  int
}

func New(cfg Config) *Model {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.TypeDelay <= 0 {
		cfg.TypeDelay = boot.CharDelay
	}
	if cfg.SaveDebounce <= 0 {
		cfg.SaveDebounce = persist.DefaultDelay
	}
	if cfg.StorageKey == "" {
		cfg.StorageKey = persist.DefaultKey
	}
	if cfg.OpenURL == nil {
		cfg.OpenURL = openBrowser
	}
	if cfg.Controller == nil {
		cfg.Controller = session.New(session.Options{})
	}
	ctx, cancel := context.WithCancel(context.Background())

	m := &Model{
		ctx:      ctx,
		cancel:   cancel,
		cfg:      cfg,
		ctl:      cfg.Controller,
		logger:   cfg.Logger,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		viewport: viewport.New(0, 0),
		reveal:   -1,
	}
	if cfg.Store != nil {
		m.saver = persist.NewSaver(cfg.Store, cfg.StorageKey, cfg.SaveDebounce, cfg.Logger)
	}
	m.setTheme(m.ctl.Theme())
	return m
}

func (m *Model) Init() tea.Cmd {
	return m.bootTick()
}

func (m *Model) bootTick() tea.Cmd {
	return tea.Tick(m.cfg.TypeDelay, func(time.Time) tea.Msg { return bootTickMsg{} })
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-2, 1)
		m.ready = true
		cmds = append(cmds, m.refresh(true))

	case bootTickMsg:
		effects := m.ctl.BootTick()
		if len(effects) == 0 && m.ctl.Mode() == session.ModeBooting {
			cmds = append(cmds, m.bootTick())
		}
		cmds = append(cmds, m.run(effects)...)

	case revealTickMsg:
		cmds = append(cmds, m.revealStep(msg.gen))

	case historyMsg:
		m.ctl.HistoryLoaded(msg.entries)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "ctrl+d":
			return m, m.quit()
		case "pgup":
			m.viewport.ScrollUp(max(m.viewport.Height/2, 1))
		case "pgdown":
			m.viewport.ScrollDown(max(m.viewport.Height/2, 1))
		default:
			if msg.Type == tea.KeyRunes && (msg.Paste || len(msg.Runes) > 1) {
				m.ctl.Type(string(msg.Runes))
			} else {
				cmds = append(cmds, m.run(m.ctl.Key(msg.String()))...)
			}
		}

	case tea.MouseMsg:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.viewport.ScrollUp(3)
		case tea.MouseButtonWheelDown:
			m.viewport.ScrollDown(3)
		}

	case streamMsg:
		if msg.id != m.streamID {
			break
		}
		m.ctl.StreamUpdate(msg.full)
		cmds = append(cmds, m.waitStream())

	case streamEnd:
		if msg.id != m.streamID {
			break
		}
		m.endStream()
		if msg.err != nil {
			m.logger.Warn("chat stream failed", zap.Error(msg.err))
			m.ctl.StreamFailed(chat.ErrorText(msg.err))
		} else {
			m.ctl.StreamDone()
		}

	case openedMsg:
		if msg.err != nil {
			m.logger.Debug("could not open browser", zap.String("url", msg.url), zap.Error(msg.err))
			m.status = "open " + msg.url
		} else {
			m.status = "opened " + msg.url
		}

	case spinner.TickMsg:
		if m.ctl.Waiting() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	cmds = append(cmds, m.refresh(false))
	return m, tea.Batch(cmds...)
}

// refresh redraws the transcript when the controller changed and schedules
// a save. Nothing is saved while booting, while the restore question is
// pending, or while a panel is open; closing a panel changes the revision
// again.
func (m *Model) refresh(force bool) tea.Cmd {
	rev := m.ctl.Revision()
	if rev == m.lastRev && !force {
		return nil
	}
	changed := rev != m.lastRev
	m.lastRev = rev
	cmd := m.startReveal()
	if m.ready {
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
	}
	if changed && m.saver != nil && persistable(m.ctl.Mode()) {
		m.saver.Schedule(m.ctl.Entries())
	}
	return cmd
}

func persistable(mode session.Mode) bool {
	return mode == session.ModeReady || mode == session.ModeResetConfirm
}

func (m *Model) quit() tea.Cmd {
	m.cancel()
	if m.saver != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := m.saver.Flush(ctx); err != nil {
			m.logger.Warn("final save failed", zap.Error(err))
		}
	}
	return tea.Quit
}

func (m *Model) View() string {
	if !m.ready {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.promptLine())
	b.WriteString("\n")
	b.WriteString(m.styles.status.Render(m.statusLine()))
	return b.String()
}

func (m *Model) promptLine() string {
	switch {
	case m.ctl.Mode() == session.ModeBooting:
		return ""
	case m.ctl.Waiting():
		return m.styles.accent.Render(m.spinner.View() + " thinking...")
	case m.ctl.Mode() == session.ModePanel:
		return m.styles.dim.Render("↑/↓ select · enter choose · esc close")
	}
	return m.styles.accent.Render("> ") + m.styles.input.Render(m.ctl.Input()) + m.styles.cursor.Render("█")
}

func (m *Model) statusLine() string {
	if m.status != "" {
		return m.status
	}
	return "theme " + m.ctl.Theme().Name + " · pgup/pgdn scroll · ctrl+c quit"
}
