package gurps

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/dicebot/internal/dice"
)

// ErrUnknownTable is returned when a reaction roll names a table that is not loaded.
var ErrUnknownTable = errors.New("unknown reaction table")

// DefaultTable is the reaction table used when none is named.
const DefaultTable = "general"

//go:embed reactions.yaml
var defaultReactions []byte

// Level is a reaction result band, ordered from worst to best.
type Level int

const (
	Disastrous Level = iota
	VeryBad
	Bad
	Poor
	Neutral
	Good
	VeryGood
	Excellent
)

var levelKeys = map[string]Level{
	"disastrous": Disastrous,
	"very_bad":   VeryBad,
	"bad":        Bad,
	"poor":       Poor,
	"neutral":    Neutral,
	"good":       Good,
	"very_good":  VeryGood,
	"excellent":  Excellent,
}

// String returns the display name of the level.
func (l Level) String() string {
	switch l {
	case Disastrous:
		return "Disastrous"
	case VeryBad:
		return "Very Bad"
	case Bad:
		return "Bad"
	case Poor:
		return "Poor"
	case Neutral:
		return "Neutral"
	case Good:
		return "Good"
	case VeryGood:
		return "Very Good"
	case Excellent:
		return "Excellent"
	default:
		return "Unknown"
	}
}

// LevelFor maps a modified 3d6 reaction total onto its band.
func LevelFor(total int64) Level {
	switch {
	case total > 18:
		return Excellent
	case total > 15:
		return VeryGood
	case total > 12:
		return Good
	case total > 9:
		return Neutral
	case total > 6:
		return Poor
	case total > 3:
		return Bad
	case total > 0:
		return VeryBad
	default:
		return Disastrous
	}
}

// ReactionTables maps a table name to the text shown for each level.
type ReactionTables map[string]map[Level]string

// LoadReactionTables parses YAML of the form
//
//	general:
//	  excellent: text
//	  very_good: text
//
// Postcondition: every table carries all eight levels, or a non-nil error is returned.
func LoadReactionTables(data []byte) (ReactionTables, error) {
	var raw map[string]map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing reaction tables: %w", err)
	}
	tables := make(ReactionTables, len(raw))
	for name, entries := range raw {
		table := make(map[Level]string, len(levelKeys))
		for key, text := range entries {
			level, ok := levelKeys[key]
			if !ok {
				return nil, fmt.Errorf("reaction table %q: unknown level %q", name, key)
			}
			table[level] = text
		}
		if len(table) != len(levelKeys) {
			return nil, fmt.Errorf("reaction table %q: expected %d levels, got %d", name, len(levelKeys), len(table))
		}
		tables[strings.ToLower(name)] = table
	}
	return tables, nil
}

// Names returns the table names in sorted order.
func (t ReactionTables) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Reaction is the result of one reaction roll.
type Reaction struct {
	Table string
	Total int64
	Level Level
	Text  string
}

// String renders the reaction as a chat reply.
func (r Reaction) String() string {
	return fmt.Sprintf("You got a %s reaction.\n%s", r.Level, r.Text)
}

// Reactor rolls reaction checks against a set of tables.
type Reactor struct {
	engine *dice.Engine
	tables ReactionTables
}

// NewReactor returns a Reactor over the built-in reaction tables.
//
// Precondition: engine must be non-nil.
func NewReactor(engine *dice.Engine) (*Reactor, error) {
	tables, err := LoadReactionTables(defaultReactions)
	if err != nil {
		return nil, err
	}
	return &Reactor{engine: engine, tables: tables}, nil
}

// Tables returns the loaded reaction tables.
func (r *Reactor) Tables() ReactionTables {
	return r.tables
}

// React rolls 3d6+modifier and looks the result up in table. An empty table
// name selects DefaultTable.
//
// Postcondition: returns ErrUnknownTable when table is not loaded.
func (r *Reactor) React(table string, modifier int) (Reaction, error) {
	if table == "" {
		table = DefaultTable
	}
	table = strings.ToLower(table)
	entries, ok := r.tables[table]
	if !ok {
		return Reaction{}, fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	set, err := r.engine.RollExpr(fmt.Sprintf("3d6%+d", modifier))
	if err != nil {
		return Reaction{}, fmt.Errorf("rolling reaction: %w", err)
	}
	total := set[0].Total
	level := LevelFor(total)
	return Reaction{Table: table, Total: total, Level: level, Text: entries[level]}, nil
}
