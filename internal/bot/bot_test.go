package bot

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/dicebot/internal/config"
)

func TestHandleMessage_IgnoresChatter(t *testing.T) {
	h := newHarness(t)
	for _, content := range []string{"", "   ", "hello there", "!nosuchcommand", "roll 1d6"} {
		_, ok := h.say(content)
		assert.False(t, ok, "content %q", content)
	}
}

func TestRoll_FormatsHeaderAndLines(t *testing.T) {
	h := newHarness(t)
	h.src.push(2, 3)
	reply := h.expect("!roll 2d6+1 # attack",
		"**alice rolled:** _attack_\n```\n2d6[3, 4] + 1 (Total: 8)\n```")
	assert.Equal(t, "m1", reply.ID)
	assert.Equal(t, "c1", reply.ChannelID)
	assert.Equal(t, []string{EmojiReroll}, reply.Reactions)
}

func TestRoll_EmptySegmentsRollDefault(t *testing.T) {
	h := newHarness(t)
	h.expect("!roll", "**alice rolled:**\n```\n3d6[1, 1, 1] (Total: 3)\n```")
	h.expect("!r 1d4; ;1d6",
		"**alice rolled:**\n```\n1d4[1] (Total: 1)\n3d6[1, 1, 1] (Total: 3)\n1d6[1] (Total: 1)\n```")
}

func TestRoll_RepeatAndVersus(t *testing.T) {
	h := newHarness(t)
	h.src.push(3, 4, 5, 0, 1, 2)
	h.expect("!roll r2 3d6 vs 12",
		"**alice rolled:**\n```\n"+
			"3d6[4, 5, 6] (Total: 15 vs 12: Failure by 3)\n"+
			"3d6[1, 2, 3] (Total:  6 vs 12: Success by 6)\n```")
}

func TestRoll_ErrorAbortsReply(t *testing.T) {
	h := newHarness(t)
	reply := h.expect("!roll 1d6; 1d6/0", `roll: "1d6/0": division by zero`)
	assert.Empty(t, reply.Reactions)
}

func TestRoll_RespectsConfiguredLimits(t *testing.T) {
	h := newHarness(t, func(c *config.BotConfig) {
		c.MaxDice = 10
		c.MaxRepeat = 2
	})
	reply, ok := h.say("!roll 11d6")
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(reply.Content, `roll: "11d6": invalid dice`), reply.Content)

	h.expect("!roll r3 1d6", `roll: "r3 1d6": invalid repeat: count must be 1-2, got 3`)
}

func TestReroll_ConsumesCacheEntry(t *testing.T) {
	h := newHarness(t)
	first := h.expect("!roll 1d6 # hit", "**alice rolled:** _hit_\n```\n1d6[1] (Total: 1)\n```")

	h.src.push(5)
	ctx := context.Background()
	effect := h.bot.HandleReaction(ctx, Reaction{
		MessageID: first.ID, ChannelID: "c1", UserID: "u2", UserName: "bob", Emoji: EmojiReroll, BotMessage: true,
	})
	require.Len(t, effect.Replies, 1)
	assert.Equal(t, first.ID, effect.Unreact)
	second := effect.Replies[0]
	assert.Equal(t, "**bob rolled:** _hit_\n```\n1d6[6] (Total: 6)\n```", second.Content)
	assert.Equal(t, []string{EmojiReroll}, second.Reactions)

	again := h.bot.HandleReaction(ctx, Reaction{MessageID: first.ID, ChannelID: "c1", Emoji: EmojiReroll})
	assert.Equal(t, Effect{}, again)

	chained := h.bot.HandleReaction(ctx, Reaction{MessageID: second.ID, ChannelID: "c1", UserName: "carol", Emoji: EmojiReroll})
	require.Len(t, chained.Replies, 1)
	assert.True(t, strings.HasPrefix(chained.Replies[0].Content, "**carol rolled:** _hit_"))
}

func TestDeleteReaction(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	assert.Equal(t, Effect{Delete: "m9"}, h.bot.HandleReaction(ctx, Reaction{MessageID: "m9", Emoji: EmojiDelete, BotMessage: true}))
	assert.Equal(t, Effect{}, h.bot.HandleReaction(ctx, Reaction{MessageID: "m9", Emoji: EmojiDelete}))
	assert.Equal(t, Effect{}, h.bot.HandleReaction(ctx, Reaction{MessageID: "m9", Emoji: "👍", BotMessage: true}))
}

func TestUsageErrors(t *testing.T) {
	h := newHarness(t)
	h.expect("!remember onlykeyword", "Usage: `!remember <keyword> <text>`")
	h.expect("!st", "Usage: `!st <ST>`")
}

func TestOwnerAndPrefix(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	h := newHarness(t, func(c *config.BotConfig) { c.OwnerPasswordHash = hash })

	h.expect("!prefix ?", "Sorry, only an owner may change the prefix. Sign in with `owner <password>`.")
	h.expect("!owner nope", "Sorry, that password is wrong.")
	h.expect("!owner hunter2", "Signed in as an owner.")
	h.expect("!owner", "You are signed in as an owner.")

	h.expect("!prefix ?", "Changed prefix to `?`.")
	_, ok := h.say("!roll 1d1")
	assert.False(t, ok, "old prefix no longer dispatches")
	h.expect("?roll 1d1", "**alice rolled:**\n```\n1d1[1] (Total: 1)\n```")

	h.expect("?prefix channel $", "Changed prefix to `$`.")
	h.expect("$flip", "Edge!")
	reply, ok := h.bot.HandleMessage(context.Background(), Message{GuildID: "g1", ChannelID: "c2", AuthorID: "u1", Content: "?flip"})
	require.True(t, ok, "other channels keep the guild prefix")
	assert.Equal(t, "Edge!", reply.Content)

	h.expect("$prefix channel", "Changed prefix from `$` to default.")
	h.expect("?prefix !", "Changed prefix from `?` to `!`.")

	h.expect("!owner logout", "Signed out.")
	h.expect("!prefix ?", "Sorry, only an owner may change the prefix. Sign in with `owner <password>`.")

	prefixes, err := h.store.Prefixes(context.Background())
	require.NoError(t, err)
	assert.Len(t, prefixes, 1)
}

func TestOwner_DisabledWithoutHash(t *testing.T) {
	h := newHarness(t)
	h.expect("!owner anything", "Owner commands are disabled.")
}

func TestPrefix_DirectMessagesUseChannelScope(t *testing.T) {
	hash, err := HashPassword("pw")
	require.NoError(t, err)
	h := newHarness(t, func(c *config.BotConfig) { c.OwnerPasswordHash = hash })
	ctx := context.Background()
	dm := Message{ChannelID: "dm1", AuthorID: "u1", AuthorName: "alice"}

	dm.Content = "!owner pw"
	_, ok := h.bot.HandleMessage(ctx, dm)
	require.True(t, ok)
	dm.Content = "!prefix >"
	reply, ok := h.bot.HandleMessage(ctx, dm)
	require.True(t, ok)
	assert.Equal(t, "Changed prefix to `>`.", reply.Content)

	prefix, err := h.bot.prefixes.Lookup(ctx, "", "dm1")
	require.NoError(t, err)
	assert.Equal(t, ">", prefix)
}

func TestBareword(t *testing.T) {
	h := newHarness(t)
	h.expect("!remember Greeting Hello, traveller!", "Entry added for greeting.")
	_, ok := h.say("greeting")
	assert.False(t, ok, "keywords are not barewords by default")

	h.expect("!set greeting bareword", "Options changed for greeting.")
	h.expect("GREETING", "Hello, traveller!")
}

func TestHelp(t *testing.T) {
	h := newHarness(t)
	reply, ok := h.say("!help")
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(reply.Content, "**dice**: roll\n**memory**: "), reply.Content)
	assert.Contains(t, reply.Content, "**gurps**: linear, reaction, sm, sr, st")
	assert.True(t, strings.HasSuffix(reply.Content, "Use `!help <command>` for details."))

	h.expect("!help r", "`!roll [expr][; expr...] [# comment]`: Roll dice expressions such as `4d6b3`, `r3 2d6+1` or `3d6 vs 12`.\nAliases: r")
	h.expect("!? bogus", "Sorry, I don't know the command `bogus`.")

	reply, ok = h.say("!help ct")
	require.True(t, ok)
	assert.Contains(t, reply.Content, "`!ct claim`: Claim or release the channel GM role.")
	assert.Contains(t, reply.Content, "`!ct track \"<name>\" [comment]`: Track a character's statistics.")
}
