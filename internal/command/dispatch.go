package command

import (
	"fmt"
	"strings"
)

// Prefix marks a slash command.
const Prefix = "/"

// Dispatcher resolves input lines against a Registry.
type Dispatcher struct {
	registry *Registry
}

// NewDispatcher returns a dispatcher over the built-in registry.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{registry: NewRegistry()}
}

// Registry exposes the underlying registry.
func (d *Dispatcher) Registry() *Registry { return d.registry }

// Dispatch resolves one line. Known commands and aliases run their handler;
// an unknown token with the slash prefix yields a not-found hint; everything
// else is forwarded to the chat.
func (d *Dispatcher) Dispatch(env Env, raw string) Outcome {
	fields := strings.Fields(strings.TrimSpace(raw))
	if len(fields) == 0 {
		return display("")
	}
	name, args := fields[0], fields[1:]

	if cmd := d.registry.Get(name); cmd != nil {
		return cmd.Handler(env, args)
	}
	if strings.HasPrefix(name, Prefix) {
		return display(NotFound(name))
	}
	return forward()
}

// NotFound is the hint shown for an unknown slash command.
func NotFound(name string) string {
	return fmt.Sprintf("Command not found: %s\nType /help for available commands.", name)
}
