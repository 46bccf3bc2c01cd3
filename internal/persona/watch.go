package persona

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ReloadDelay coalesces the burst of events editors produce on save.
const ReloadDelay = 100 * time.Millisecond

// Watch reloads the persona whenever its file is written, until ctx is
// done. It returns immediately for the embedded persona.
func (p *Persona) Watch(ctx context.Context) error {
	if p.path == "" {
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	// editors replace files on save, so watch the directory
	if err := w.Add(filepath.Dir(p.path)); err != nil {
		w.Close()
		return fmt.Errorf("watching %s: %w", filepath.Dir(p.path), err)
	}

	go p.loop(ctx, w)
	return nil
}

func (p *Persona) loop(ctx context.Context, w *fsnotify.Watcher) {
	defer w.Close()

	name := filepath.Base(p.path)
	timer := time.NewTimer(ReloadDelay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != name || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(ReloadDelay)
		case <-timer.C:
			if err := p.Reload(); err != nil {
				p.logger.Warn("persona reload failed, keeping previous prompt", zap.Error(err))
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			p.logger.Warn("persona watcher error", zap.Error(err))
		}
	}
}
