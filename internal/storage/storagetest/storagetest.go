// Package storagetest holds behavioral tests every storage backend must pass.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/dicebot/internal/storage"
)

// TestKeywordStore exercises s, which must start empty.
func TestKeywordStore(t *testing.T, s storage.KeywordStore) {
	ctx := context.Background()

	_, err := s.Keyword(ctx, "dragon")
	require.ErrorIs(t, err, storage.ErrNotFound)

	kw := storage.Keyword{Name: "dragon", Owner: "alice", Shuffle: true}
	require.NoError(t, s.AddKeyword(ctx, kw))
	require.ErrorIs(t, s.AddKeyword(ctx, kw), storage.ErrExists)

	got, err := s.Keyword(ctx, "dragon")
	require.NoError(t, err)
	assert.Equal(t, kw, got)

	require.NoError(t, s.AddDefinition(ctx, storage.Definition{Keyword: "dragon", Text: "Breathes fire.", Submitter: "alice"}))
	require.NoError(t, s.AddDefinition(ctx, storage.Definition{Keyword: "dragon", Text: "Hoards GOLD.", Submitter: "bob"}))
	err = s.AddDefinition(ctx, storage.Definition{Keyword: "dragon", Text: "Breathes fire.", Submitter: "bob"})
	require.ErrorIs(t, err, storage.ErrExists)

	defs, err := s.Definitions(ctx, "dragon")
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, "Breathes fire.", defs[0].Text)
	assert.Equal(t, "bob", defs[1].Submitter)
	assert.False(t, defs[0].CreatedAt.IsZero())

	found, err := s.FindDefinitions(ctx, "dragon", "gold")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Hoards GOLD.", found[0].Text)

	require.NoError(t, s.AddKeyword(ctx, storage.Keyword{Name: "dragonfly", Owner: "bob"}))
	kws, err := s.FindKeywords(ctx, "DRAGON")
	require.NoError(t, err)
	require.Len(t, kws, 2)
	assert.Equal(t, "dragon", kws[0].Name)
	assert.Equal(t, "dragonfly", kws[1].Name)

	_, err = s.Bareword(ctx, "dragon")
	assert.ErrorIs(t, err, storage.ErrNotFound, "not a bareword yet")
	kw.Bareword = true
	kw.Owner = "bob"
	require.NoError(t, s.UpdateKeyword(ctx, kw))
	def, err := s.Bareword(ctx, "dragon")
	require.NoError(t, err)
	assert.Contains(t, []string{"Breathes fire.", "Hoards GOLD."}, def.Text)

	got, err = s.Keyword(ctx, "dragon")
	require.NoError(t, err)
	assert.Equal(t, "bob", got.Owner)
	assert.True(t, got.Bareword)

	assert.ErrorIs(t, s.UpdateKeyword(ctx, storage.Keyword{Name: "wyvern"}), storage.ErrNotFound)

	require.NoError(t, s.DeleteDefinition(ctx, "dragon", "Breathes fire."))
	assert.ErrorIs(t, s.DeleteDefinition(ctx, "dragon", "Breathes fire."), storage.ErrNotFound)
	defs, err = s.Definitions(ctx, "dragon")
	require.NoError(t, err)
	assert.Len(t, defs, 1)
}

// TestPrefixStore exercises s, which must start empty.
func TestPrefixStore(t *testing.T, s storage.PrefixStore) {
	ctx := context.Background()

	all, err := s.Prefixes(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	guild := storage.PrefixKey{Scope: storage.ScopeGuild, ID: "g1"}
	channel := storage.PrefixKey{Scope: storage.ScopeChannel, ID: "g1"}
	require.NoError(t, s.SetPrefix(ctx, guild, "!"))
	require.NoError(t, s.SetPrefix(ctx, channel, "?"))
	require.NoError(t, s.SetPrefix(ctx, guild, "."))

	all, err = s.Prefixes(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[storage.PrefixKey]string{guild: ".", channel: "?"}, all)

	require.NoError(t, s.DeletePrefix(ctx, channel))
	require.NoError(t, s.DeletePrefix(ctx, channel), "deleting a missing prefix is not an error")
	all, err = s.Prefixes(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

// TestCharacterStore exercises s, which must start empty.
func TestCharacterStore(t *testing.T, s storage.CharacterStore) {
	ctx := context.Background()

	ch, err := s.AddCharacter(ctx, storage.Character{Name: "Rook", Channel: "c1", Owner: "alice", Comment: "thief"})
	require.NoError(t, err)
	assert.NotZero(t, ch.ID)
	assert.False(t, ch.UpdatedAt.IsZero())

	_, err = s.AddCharacter(ctx, storage.Character{Name: "Rook", Channel: "c1", Owner: "bob"})
	require.ErrorIs(t, err, storage.ErrExists)
	other, err := s.AddCharacter(ctx, storage.Character{Name: "Rook", Channel: "c2", Owner: "bob"})
	require.NoError(t, err, "names are unique per channel")

	got, err := s.Character(ctx, "Rook", "c1")
	require.NoError(t, err)
	assert.Equal(t, ch.ID, got.ID)
	assert.Equal(t, "alice", got.Owner)
	_, err = s.Character(ctx, "Rook", "c3")
	require.ErrorIs(t, err, storage.ErrNotFound)

	_, err = s.AddCharacter(ctx, storage.Character{Name: "Ash", Channel: "c1", Owner: "bob"})
	require.NoError(t, err)
	list, err := s.Characters(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Ash", list[0].Name)

	require.NoError(t, s.SetAttribute(ctx, ch.ID, storage.Attribute{Name: "HP", Value: 10, Maximum: 12}))
	require.NoError(t, s.SetAttribute(ctx, ch.ID, storage.Attribute{Name: "FP", Value: 9}))
	require.NoError(t, s.SetAttribute(ctx, ch.ID, storage.Attribute{Name: "HP", Value: 7, Maximum: 12}))
	attr, err := s.Attribute(ctx, ch.ID, "HP")
	require.NoError(t, err)
	assert.Equal(t, storage.Attribute{Name: "HP", Value: 7, Maximum: 12}, attr)
	attrs, err := s.Attributes(ctx, ch.ID)
	require.NoError(t, err)
	assert.Equal(t, []storage.Attribute{{Name: "FP", Value: 9}, {Name: "HP", Value: 7, Maximum: 12}}, attrs)

	require.NoError(t, s.DeleteAttribute(ctx, ch.ID, "FP"))
	assert.ErrorIs(t, s.DeleteAttribute(ctx, ch.ID, "FP"), storage.ErrNotFound)
	_, err = s.Attribute(ctx, ch.ID, "FP")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.SetNote(ctx, ch.ID, storage.Note{Name: "loot", Text: "a ruby"}))
	require.NoError(t, s.SetNote(ctx, ch.ID, storage.Note{Name: "loot", Text: "two rubies"}))
	notes, err := s.Notes(ctx, ch.ID)
	require.NoError(t, err)
	assert.Equal(t, []storage.Note{{Name: "loot", Text: "two rubies"}}, notes)
	require.NoError(t, s.DeleteNote(ctx, ch.ID, "loot"))
	assert.ErrorIs(t, s.DeleteNote(ctx, ch.ID, "loot"), storage.ErrNotFound)

	require.NoError(t, s.TouchCharacter(ctx, ch.ID, "sneaking"))
	got, err = s.Character(ctx, "Rook", "c1")
	require.NoError(t, err)
	assert.Equal(t, "sneaking", got.Comment)

	require.NoError(t, s.DeleteCharacter(ctx, ch.ID))
	assert.ErrorIs(t, s.DeleteCharacter(ctx, ch.ID), storage.ErrNotFound)
	assert.ErrorIs(t, s.TouchCharacter(ctx, ch.ID, ""), storage.ErrNotFound)
	_, err = s.Character(ctx, "Rook", "c2")
	require.NoError(t, err, "deleting one channel's character leaves the other")
	_ = other

	_, err = s.GameMaster(ctx, "c1")
	require.ErrorIs(t, err, storage.ErrNotFound)
	require.NoError(t, s.SetGameMaster(ctx, "c1", "carol"))
	gm, err := s.GameMaster(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "carol", gm)
	require.NoError(t, s.ClearGameMaster(ctx, "c1"))
	_, err = s.GameMaster(ctx, "c1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
