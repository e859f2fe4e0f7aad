package bot

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
)

// Categories for organizing commands in help output.
const (
	CategoryDice       = "dice"
	CategoryMemory     = "memory"
	CategoryCharacters = "characters"
	CategoryGURPS      = "gurps"
	CategoryRandom     = "random"
	CategoryAdmin      = "admin"
	CategorySystem     = "system"
)

// HandlerFunc runs a command and returns the reply to post. A returned error
// is shown to the user prefixed with the command name.
type HandlerFunc func(ctx context.Context, req *Request) (Reply, error)

// Command defines a user-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Usage describes the arguments, e.g. "<keyword> <text>".
	Usage string
	// Help is the short help text.
	Help string
	// Category groups the command in help output.
	Category string
	// Handler runs the command.
	Handler HandlerFunc
}

// Registry maps command names and aliases to Command definitions.
type Registry struct {
	commands map[string]*Command // canonical name → command
	aliases  map[string]string   // alias → canonical name
}

// NewRegistry creates a Registry populated with the given commands.
// Names and aliases are matched case-insensitively.
//
// Precondition: No two commands may share a canonical name or alias.
// Postcondition: Returns a Registry or an error on name/alias collisions.
func NewRegistry(cmds []Command) (*Registry, error) {
	r := &Registry{
		commands: make(map[string]*Command, len(cmds)),
		aliases:  make(map[string]string),
	}

	for i := range cmds {
		cmd := &cmds[i]
		name := strings.ToLower(cmd.Name)
		if name == "" {
			return nil, fmt.Errorf("command %d has no name", i)
		}
		if _, exists := r.commands[name]; exists {
			return nil, fmt.Errorf("duplicate command name: %q", name)
		}
		if _, exists := r.aliases[name]; exists {
			return nil, fmt.Errorf("command name %q conflicts with an existing alias", name)
		}
		r.commands[name] = cmd

		for _, alias := range cmd.Aliases {
			alias = strings.ToLower(alias)
			if _, exists := r.commands[alias]; exists {
				return nil, fmt.Errorf("alias %q conflicts with command name %q", alias, alias)
			}
			if existing, exists := r.aliases[alias]; exists {
				return nil, fmt.Errorf("duplicate alias %q: used by %q and %q", alias, existing, name)
			}
			r.aliases[alias] = name
		}
	}

	return r, nil
}

// Resolve looks up a command by name or alias.
//
// Postcondition: Returns (command, true) if found, or (nil, false).
func (r *Registry) Resolve(input string) (*Command, bool) {
	input = strings.ToLower(input)
	if cmd, ok := r.commands[input]; ok {
		return cmd, true
	}
	if canonical, ok := r.aliases[input]; ok {
		return r.commands[canonical], true
	}
	return nil, false
}

// Commands returns all registered commands sorted by name.
func (r *Registry) Commands() []*Command {
	result := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		result = append(result, cmd)
	}
	slices.SortFunc(result, func(a, b *Command) int { return cmp.Compare(a.Name, b.Name) })
	return result
}

// CommandsByCategory returns commands grouped by category, each group sorted by name.
func (r *Registry) CommandsByCategory() map[string][]*Command {
	categories := make(map[string][]*Command)
	for _, cmd := range r.Commands() {
		categories[cmd.Category] = append(categories[cmd.Category], cmd)
	}
	return categories
}
