package command

import (
	"sort"
	"time"

	"github.com/Zachkp/crtfolio/internal/catalog"
)

// Env is the read-only context a command runs against.
type Env struct {
	Catalog *catalog.Catalog
	Now     time.Time
	Booted  time.Time
	// History holds the lines typed this session, oldest first.
	History []string
	City    string
}

// Handler executes a command with its arguments (the tokens after the name).
type Handler func(env Env, args []string) Outcome

// Command is one registered slash command or terminal builtin.
type Command struct {
	Name    string
	Aliases []string
	Handler Handler
}

// Registry holds commands by name and alias.
type Registry struct {
	commands map[string]*Command
	aliases  map[string]*Command
}

// NewRegistry returns a registry with every slash command and builtin.
func NewRegistry() *Registry {
	r := &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]*Command),
	}
	r.registerSlashCommands()
	r.registerBuiltins()
	return r
}

// Register adds cmd, replacing any command of the same name.
func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	for _, alias := range cmd.Aliases {
		r.aliases[alias] = cmd
	}
}

// Get looks a command up by exact name or alias. Matching is
// case-sensitive so a sentence starting with "Clear" or "Which" still
// reaches the chat.
func (r *Registry) Get(name string) *Command {
	if cmd, ok := r.commands[name]; ok {
		return cmd
	}
	return r.aliases[name]
}

// Names returns all command names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
