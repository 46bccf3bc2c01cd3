// Package persona provides the system prompt of the digital twin.
package persona

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
)

//go:embed digital-twin.md
var defaultPrompt string

// Default returns the embedded persona.
func Default() string { return defaultPrompt }

// Persona holds the current prompt. It is safe for concurrent use.
type Persona struct {
	path   string
	logger *zap.Logger

	mu     sync.RWMutex
	prompt string
}

// Load reads the prompt from path, or uses the embedded persona when path
// is empty.
func Load(path string, logger *zap.Logger) (*Persona, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Persona{path: path, logger: logger, prompt: defaultPrompt}
	if path == "" {
		return p, nil
	}
	if err := p.Reload(); err != nil {
		return nil, err
	}
	return p, nil
}

// Prompt returns the current system prompt.
func (p *Persona) Prompt() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.prompt
}

// Path is the override file, or "" for the embedded persona.
func (p *Persona) Path() string { return p.path }

// Reload re-reads the override file. An empty file is rejected and the
// previous prompt kept.
func (p *Persona) Reload() error {
	if p.path == "" {
		return nil
	}
	data, err := os.ReadFile(p.path)
	if err != nil {
		return fmt.Errorf("reading persona: %w", err)
	}
	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return fmt.Errorf("persona file %s is empty", p.path)
	}

	p.mu.Lock()
	p.prompt = prompt
	p.mu.Unlock()
	p.logger.Info("persona loaded", zap.String("path", p.path), zap.Int("bytes", len(prompt)))
	return nil
}
