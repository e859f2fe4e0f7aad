package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/dicebot/internal/dice"
	"github.com/cory-johannsen/dicebot/internal/storage"
	"github.com/cory-johannsen/dicebot/internal/storage/memory"
	"github.com/cory-johannsen/dicebot/internal/storage/storagetest"
)

func TestKeywordStore(t *testing.T) {
	storagetest.TestKeywordStore(t, memory.New(dice.NewSeededSource(1)))
}

func TestPrefixStore(t *testing.T) {
	storagetest.TestPrefixStore(t, memory.New(dice.NewSeededSource(1)))
}

func TestCharacterStore(t *testing.T) {
	storagetest.TestCharacterStore(t, memory.New(dice.NewSeededSource(1)))
}

func TestAddDefinition_UnknownKeyword(t *testing.T) {
	s := memory.New(dice.NewSeededSource(1))
	err := s.AddDefinition(context.Background(), storage.Definition{Keyword: "ghost", Text: "boo"})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDefinitions_ReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := memory.New(dice.NewSeededSource(1))
	require.NoError(t, s.AddKeyword(ctx, storage.Keyword{Name: "k"}))
	require.NoError(t, s.AddDefinition(ctx, storage.Definition{Keyword: "k", Text: "one"}))

	defs, err := s.Definitions(ctx, "k")
	require.NoError(t, err)
	defs[0].Text = "mutated"

	again, err := s.Definitions(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "one", again[0].Text)
}
