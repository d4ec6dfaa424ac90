package commands

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Registry holds registered commands.
type Registry struct {
	mu   sync.RWMutex
	cmds map[string]Command // name and aliases map to command
}

// NewRegistry creates a new command registry.
func NewRegistry() *Registry {
	return &Registry{
		cmds: make(map[string]Command),
	}
}

// Register adds a command to the registry.
// Names and aliases share one namespace, so an alias may not shadow another
// command's name and a name may not take over an existing alias.
func (r *Registry) Register(c Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := append([]string{c.Name()}, c.Aliases()...)
	for i, name := range names {
		if name == "" || strings.HasPrefix(name, "-") {
			return fmt.Errorf("invalid command name %q for %s", name, c.Name())
		}
		if slices.Contains(names[:i], name) {
			return fmt.Errorf("command %s lists %s twice", c.Name(), name)
		}
		if other, exists := r.cmds[name]; exists {
			return fmt.Errorf("command name %s of %s already used by %s", name, c.Name(), other.Name())
		}
	}

	for _, name := range names {
		r.cmds[name] = c
	}
	return nil
}

// Find looks up a command by name or alias.
func (r *Registry) Find(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.cmds[name]
	return cmd, ok
}

// All returns all unique commands sorted by name.
func (r *Registry) All() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []Command
	for name, cmd := range r.cmds {
		if name == cmd.Name() {
			result = append(result, cmd)
		}
	}
	slices.SortFunc(result, func(a, b Command) int { return strings.Compare(a.Name(), b.Name()) })
	return result
}

// Group is a set of commands with the same session requirement.
type Group struct {
	Title    string
	Commands []Command
}

// Groups splits All into commands that need a session, commands that manage
// or skip one, and standalone commands. Empty groups are left out.
func (r *Registry) Groups() []Group {
	groups := []Group{
		{Title: "Need a login or guest session"},
		{Title: "Session and tools"},
		{Title: "Standalone"},
	}
	for _, cmd := range r.All() {
		switch {
		case IsStandalone(cmd):
			groups[2].Commands = append(groups[2].Commands, cmd)
		case cmd.NeedsAuth():
			groups[0].Commands = append(groups[0].Commands, cmd)
		default:
			groups[1].Commands = append(groups[1].Commands, cmd)
		}
	}
	return slices.DeleteFunc(groups, func(g Group) bool { return len(g.Commands) == 0 })
}

// DefaultRegistry is the global command registry.
var DefaultRegistry = NewRegistry()

// Register adds a command to the default registry.
func Register(c Command) {
	if err := DefaultRegistry.Register(c); err != nil {
		panic(err)
	}
}
