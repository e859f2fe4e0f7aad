// Package storage defines the persistent records used by the bot and the
// store interfaces implemented by the postgres and memory backends.
package storage

import (
	"context"
	"errors"
	"time"
)

// Store errors shared by every backend.
var (
	// ErrNotFound is returned when a lookup yields no record.
	ErrNotFound = errors.New("not found")
	// ErrExists is returned when an insert collides with an existing record.
	ErrExists = errors.New("already exists")
	// ErrDenied is returned when the caller may not modify a record.
	ErrDenied = errors.New("permission denied")
)

// Keyword is a remembered topic and its options.
type Keyword struct {
	Name  string
	Owner string
	// Bareword keywords answer when their name is posted without a prefix.
	Bareword bool
	// Hidden keywords are only visible to their owner.
	Hidden bool
	// Protect restricts edits to the owner.
	Protect bool
	// Shuffle randomizes definition order on recall.
	Shuffle bool
}

// Locked reports whether only the owner may edit the keyword.
func (k Keyword) Locked() bool { return k.Hidden || k.Protect }

// Definition is one remembered fact about a Keyword.
type Definition struct {
	Keyword   string
	Text      string
	Submitter string
	CreatedAt time.Time
	// Embedded definitions are image links rather than text.
	Embedded bool
}

// KeywordStore persists keywords and their definitions.
type KeywordStore interface {
	// Keyword returns the named keyword or ErrNotFound.
	Keyword(ctx context.Context, name string) (Keyword, error)
	// AddKeyword inserts kw or returns ErrExists.
	AddKeyword(ctx context.Context, kw Keyword) error
	// UpdateKeyword replaces the options and owner of an existing keyword or returns ErrNotFound.
	UpdateKeyword(ctx context.Context, kw Keyword) error
	// FindKeywords returns keywords whose name contains partial, case-insensitively.
	FindKeywords(ctx context.Context, partial string) ([]Keyword, error)
	// Bareword returns a random definition of a bareword keyword or ErrNotFound.
	Bareword(ctx context.Context, name string) (Definition, error)
	// Definitions returns every definition of keyword in insertion order.
	Definitions(ctx context.Context, keyword string) ([]Definition, error)
	// FindDefinitions returns the definitions of keyword containing partial, case-insensitively.
	FindDefinitions(ctx context.Context, keyword, partial string) ([]Definition, error)
	// AddDefinition inserts def or returns ErrExists.
	AddDefinition(ctx context.Context, def Definition) error
	// DeleteDefinition removes one definition or returns ErrNotFound.
	DeleteDefinition(ctx context.Context, keyword, text string) error
}

// PrefixScope says whether a stored prefix applies to a guild or a channel.
type PrefixScope string

const (
	ScopeGuild   PrefixScope = "guild"
	ScopeChannel PrefixScope = "channel"
)

// PrefixKey identifies a stored prefix.
type PrefixKey struct {
	Scope PrefixScope
	ID    string
}

// PrefixStore persists per-guild and per-channel command prefixes.
type PrefixStore interface {
	// Prefixes returns every stored prefix.
	Prefixes(ctx context.Context) (map[PrefixKey]string, error)
	// SetPrefix inserts or replaces a prefix.
	SetPrefix(ctx context.Context, key PrefixKey, prefix string) error
	// DeletePrefix removes a prefix; deleting a missing prefix is not an error.
	DeletePrefix(ctx context.Context, key PrefixKey) error
}

// Character is a tracked character sheet, unique per (Name, Channel).
type Character struct {
	ID        int64
	Name      string
	Channel   string
	Owner     string
	Comment   string
	UpdatedAt time.Time
}

// Attribute is a numeric character statistic. Maximum is zero when unbounded.
type Attribute struct {
	Name    string
	Value   int32
	Maximum int32
}

// Note is a free-text character annotation.
type Note struct {
	Name string
	Text string
}

// CharacterStore persists characters, their attributes and notes, and the
// game master claimed for each channel.
type CharacterStore interface {
	// AddCharacter inserts ch and returns it with ID set, or ErrExists.
	AddCharacter(ctx context.Context, ch Character) (Character, error)
	// Character returns the character named name in channel or ErrNotFound.
	Character(ctx context.Context, name, channel string) (Character, error)
	// Characters lists the characters tracked in channel ordered by name.
	Characters(ctx context.Context, channel string) ([]Character, error)
	// DeleteCharacter removes a character with its attributes and notes, or returns ErrNotFound.
	DeleteCharacter(ctx context.Context, id int64) error
	// TouchCharacter records comment and the current time on the character.
	TouchCharacter(ctx context.Context, id int64, comment string) error

	// Attribute returns one attribute or ErrNotFound.
	Attribute(ctx context.Context, id int64, name string) (Attribute, error)
	// Attributes lists a character's attributes ordered by name.
	Attributes(ctx context.Context, id int64) ([]Attribute, error)
	// SetAttribute inserts or replaces an attribute.
	SetAttribute(ctx context.Context, id int64, attr Attribute) error
	// DeleteAttribute removes an attribute or returns ErrNotFound.
	DeleteAttribute(ctx context.Context, id int64, name string) error

	// Notes lists a character's notes ordered by name.
	Notes(ctx context.Context, id int64) ([]Note, error)
	// SetNote inserts or replaces a note.
	SetNote(ctx context.Context, id int64, note Note) error
	// DeleteNote removes a note or returns ErrNotFound.
	DeleteNote(ctx context.Context, id int64, name string) error

	// GameMaster returns the user that claimed channel or ErrNotFound.
	GameMaster(ctx context.Context, channel string) (string, error)
	// SetGameMaster records user as the channel's game master.
	SetGameMaster(ctx context.Context, channel, user string) error
	// ClearGameMaster removes the channel's game master.
	ClearGameMaster(ctx context.Context, channel string) error
}

// Stores groups every store the bot needs.
type Stores struct {
	Keywords   KeywordStore
	Prefixes   PrefixStore
	Characters CharacterStore
}
