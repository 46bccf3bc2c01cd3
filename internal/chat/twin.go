package chat

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Persona supplies the system prompt that frames every reply.
type Persona interface {
	Prompt() string
}

// StaticPersona is a fixed prompt.
type StaticPersona string

func (p StaticPersona) Prompt() string { return string(p) }

// Twin answers visitor messages in character.
type Twin struct {
	provider Provider
	persona  Persona
	turns    int
	timeout  time.Duration
	logger   *zap.Logger
}

type TwinOption func(*Twin)

// WithHistoryTurns caps how many user/assistant pairs reach the provider.
func WithHistoryTurns(n int) TwinOption {
	return func(t *Twin) { t.turns = n }
}

// WithTimeout bounds a single reply.
func WithTimeout(d time.Duration) TwinOption {
	return func(t *Twin) { t.timeout = d }
}

func WithLogger(l *zap.Logger) TwinOption {
	return func(t *Twin) { t.logger = l }
}

func NewTwin(provider Provider, persona Persona, opts ...TwinOption) *Twin {
	t := &Twin{
		provider: provider,
		persona:  persona,
		turns:    10,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Reply streams the answer to the last user message in msgs.
func (t *Twin) Reply(ctx context.Context, msgs []Message, onDelta func(string) error) error {
	msgs = CapHistory(msgs, t.turns)
	if err := validate(msgs); err != nil {
		return err
	}
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	start := time.Now()
	chars := 0
	err := t.provider.Stream(ctx, t.persona.Prompt(), msgs, func(delta string) error {
		chars += len(delta)
		return onDelta(delta)
	})
	t.logger.Debug("twin reply",
		zap.String("provider", t.provider.Name()),
		zap.Int("history", len(msgs)),
		zap.Int("chars", chars),
		zap.Duration("took", time.Since(start)),
		zap.Error(err),
	)
	return err
}
