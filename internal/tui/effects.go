package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/Zachkp/crtfolio/internal/chat"
	"github.com/Zachkp/crtfolio/internal/persist"
	"github.com/Zachkp/crtfolio/internal/session"
)

// run turns controller effects into commands.
func (m *Model) run(effects []session.Effect) []tea.Cmd {
	var cmds []tea.Cmd
	for _, eff := range effects {
		switch e := eff.(type) {
		case session.SendChat:
			cmds = append(cmds, m.sendChat(e.Messages), m.spinner.Tick)
		case session.LoadHistory:
			cmds = append(cmds, m.loadHistory())
		case session.ClearStorage:
			cmds = append(cmds, m.clearStorage())
		case session.OpenURL:
			cmds = append(cmds, m.openURL(e.URL))
		case session.SetTheme:
			m.setTheme(e.Theme)
		}
	}
	return cmds
}

// sendChat streams the reply on a goroutine. Updates come back through
// m.stream one message at a time; streamEnd is always the last one. Every
// stream gets a new id so messages from a superseded one are dropped.
func (m *Model) sendChat(msgs []chat.Message) tea.Cmd {
	m.endStream()
	m.streamID++
	id := m.streamID
	if m.cfg.Chat == nil {
		return func() tea.Msg { return streamEnd{id: id, err: chat.ErrNotConfigured} }
	}

	ctx, cancel := context.WithCancel(m.ctx)
	ch := make(chan tea.Msg, 16)
	m.stream, m.streamCancel = ch, cancel
	client := m.cfg.Chat
	go func() {
		defer close(ch)
		err := client.Stream(ctx, msgs, func(full string) {
			select {
			case ch <- streamMsg{id: id, full: full}:
			case <-ctx.Done():
			}
		})
		select {
		case ch <- streamEnd{id: id, err: err}:
		case <-ctx.Done():
		}
	}()
	return m.waitStream()
}

// endStream releases the finished stream's context.
func (m *Model) endStream() {
	if m.streamCancel != nil {
		m.streamCancel()
	}
	m.stream, m.streamCancel = nil, nil
}

func (m *Model) waitStream() tea.Cmd {
	ch := m.stream
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

func (m *Model) loadHistory() tea.Cmd {
	store, key, logger := m.cfg.Store, m.cfg.StorageKey, m.logger
	return func() tea.Msg {
		if store == nil {
			return historyMsg{}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return historyMsg{entries: persist.LoadTranscript(ctx, store, key, logger)}
	}
}

func (m *Model) clearStorage() tea.Cmd {
	saver, logger := m.saver, m.logger
	if saver == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := saver.Clear(ctx); err != nil {
			logger.Warn("clearing stored history failed", zap.Error(err))
		}
		return nil
	}
}

func (m *Model) openURL(url string) tea.Cmd {
	open := m.cfg.OpenURL
	return func() tea.Msg {
		return openedMsg{url: url, err: open(url)}
	}
}
