// Package persist saves the terminal transcript between visits.
package persist

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Zachkp/crtfolio/internal/transcript"
)

// DefaultKey is the storage key of the transcript.
const DefaultKey = "terminal-conversation-history"

// DefaultDelay is how long Schedule waits for more changes before writing.
const DefaultDelay = time.Second

// Store is a small key/value blob store.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// LoadTranscript reads the saved transcript. Missing or corrupt data yields
// an empty transcript; malformed entries are dropped.
func LoadTranscript(ctx context.Context, store Store, key string, logger *zap.Logger) []transcript.Entry {
	data, err := store.Load(ctx, key)
	if err != nil {
		logger.Debug("no saved transcript", zap.String("key", key), zap.Error(err))
		return nil
	}
	if len(data) == 0 {
		return nil
	}
	entries, err := transcript.Decode(data)
	if err != nil {
		logger.Warn("discarding corrupt transcript", zap.String("key", key), zap.Error(err))
		return nil
	}
	return entries
}

// Saver coalesces transcript changes into one write per quiet period. The
// last scheduled transcript wins.
type Saver struct {
	store  Store
	key    string
	delay  time.Duration
	logger *zap.Logger

	mu      sync.Mutex
	timer   *time.Timer
	pending []transcript.Entry
	dirty   bool

	writeMu sync.Mutex
}

func NewSaver(store Store, key string, delay time.Duration, logger *zap.Logger) *Saver {
	if key == "" {
		key = DefaultKey
	}
	if delay <= 0 {
		delay = DefaultDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Saver{store: store, key: key, delay: delay, logger: logger}
}

// Schedule queues entries for saving, restarting the debounce window.
func (s *Saver) Schedule(entries []transcript.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = append(s.pending[:0:0], entries...)
	s.dirty = true
	if s.timer == nil {
		s.timer = time.AfterFunc(s.delay, s.fire)
		return
	}
	s.timer.Reset(s.delay)
}

func (s *Saver) fire() {
	if err := s.Flush(context.Background()); err != nil {
		s.logger.Warn("failed to save transcript", zap.Error(err))
	}
}

// Flush writes any pending transcript now.
func (s *Saver) Flush(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return nil
	}
	entries := s.pending
	s.pending, s.dirty = nil, false
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()

	data, err := transcript.Encode(entries)
	if err != nil {
		return err
	}
	if err := s.store.Save(ctx, s.key, data); err != nil {
		return err
	}
	s.logger.Debug("saved transcript", zap.Int("entries", len(entries)))
	return nil
}

// Clear drops any pending write and deletes the saved transcript.
func (s *Saver) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.pending, s.dirty = nil, false
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.store.Delete(ctx, s.key)
}
