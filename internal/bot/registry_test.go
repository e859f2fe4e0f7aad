package bot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func noop(context.Context, *Request) (Reply, error) { return Reply{}, nil }

func TestDefaultRegistry(t *testing.T) {
	r := newHarness(t).bot.Registry()
	assert.NotNil(t, r)
	assert.Greater(t, len(r.Commands()), 0)
}

func TestResolve_CanonicalName(t *testing.T) {
	r := newHarness(t).bot.Registry()

	cmd, ok := r.Resolve("roll")
	assert.True(t, ok)
	assert.Equal(t, "roll", cmd.Name)
	assert.Equal(t, CategoryDice, cmd.Category)
}

func TestResolve_AliasAndCase(t *testing.T) {
	r := newHarness(t).bot.Registry()

	tests := []struct {
		input string
		name  string
	}{
		{"r", "roll"},
		{"R", "roll"},
		{"tracker", "ct"},
		{"size", "sm"},
		{"speed", "sr"},
		{"range", "sr"},
		{"super", "linear"},
		{"react", "reaction"},
		{"pick", "choose"},
		{"coin", "flip"},
		{"ask", "8ball"},
		{"?", "help"},
	}
	for _, tt := range tests {
		cmd, ok := r.Resolve(tt.input)
		require.True(t, ok, "input %q not found", tt.input)
		assert.Equal(t, tt.name, cmd.Name, "input %q", tt.input)
	}
}

func TestResolve_NotFound(t *testing.T) {
	r := newHarness(t).bot.Registry()

	_, ok := r.Resolve("teleport")
	assert.False(t, ok)
}

func TestNewRegistry_DuplicateName(t *testing.T) {
	_, err := NewRegistry([]Command{
		{Name: "test", Handler: noop},
		{Name: "TEST", Handler: noop},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate command name")
}

func TestNewRegistry_DuplicateAlias(t *testing.T) {
	_, err := NewRegistry([]Command{
		{Name: "test1", Aliases: []string{"t"}, Handler: noop},
		{Name: "test2", Aliases: []string{"t"}, Handler: noop},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate alias")
}

func TestNewRegistry_AliasShadowsName(t *testing.T) {
	_, err := NewRegistry([]Command{
		{Name: "test", Handler: noop},
		{Name: "other", Aliases: []string{"test"}, Handler: noop},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conflicts with command name")
}

func TestNewRegistry_EmptyName(t *testing.T) {
	_, err := NewRegistry([]Command{{Handler: noop}})
	assert.Error(t, err)
}

func TestCommandsByCategory(t *testing.T) {
	r := newHarness(t).bot.Registry()
	cats := r.CommandsByCategory()

	for _, c := range categoryOrder {
		assert.Contains(t, cats, c)
	}
	assert.Len(t, cats[CategoryDice], 1)
	assert.Len(t, cats[CategoryMemory], 10)
	assert.Len(t, cats[CategoryGURPS], 5)
}

func TestTrackerRegistry_ShadowsMemorySet(t *testing.T) {
	b := newHarness(t).bot

	top, ok := b.registry.Resolve("set")
	require.True(t, ok)
	assert.Equal(t, CategoryMemory, top.Category)

	sub, ok := b.tracker.Resolve("set")
	require.True(t, ok)
	assert.Equal(t, `"<name>" <attribute> <value> [maximum] [comment]`, sub.Usage)
}

func TestPropertyAllAliasesResolveToCanonical(t *testing.T) {
	r := newHarness(t).bot.Registry()
	cmds := r.Commands()
	rapid.Check(t, func(t *rapid.T) {
		idx := rapid.IntRange(0, len(cmds)-1).Draw(t, "cmd_idx")
		cmd := cmds[idx]

		resolved, ok := r.Resolve(cmd.Name)
		if !ok {
			t.Fatalf("canonical name %q did not resolve", cmd.Name)
		}
		if resolved.Name != cmd.Name {
			t.Fatalf("canonical name %q resolved to %q", cmd.Name, resolved.Name)
		}

		for _, alias := range cmd.Aliases {
			aliasResolved, ok := r.Resolve(alias)
			if !ok {
				t.Fatalf("alias %q did not resolve", alias)
			}
			if aliasResolved.Name != cmd.Name {
				t.Fatalf("alias %q resolved to %q, expected %q", alias, aliasResolved.Name, cmd.Name)
			}
		}
	})
}
