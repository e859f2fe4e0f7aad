package bot

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_Lifecycle(t *testing.T) {
	h := newHarness(t)
	h.expect(`!ct track "Sir Robin" brave, mostly`, "Now tracking Sir Robin.")
	h.expect(`!ct track "Sir Robin"`, "I'm already tracking Sir Robin.")

	h.expect(`!ct set "Sir Robin" HP 10 12 took a hit`, "Set HP for Sir Robin to 10/12.")
	h.expect(`!ct set "Sir Robin" HP 8`, "Set HP for Sir Robin to 8/12.")
	h.expect(`!ct set "Sir Robin" FP 9`, "Set FP for Sir Robin to 9.")
	h.expect(`!ct add "Sir Robin" HP 3`, "Set HP for Sir Robin to 11/12.")
	h.expect(`!ct dec "Sir Robin" FP 4 ran away`, "Set FP for Sir Robin to 5.")
	h.expect(`!ct inc "Sir Robin" Luck 1`, "Sorry, I'm not tracking Luck for Sir Robin.")
	h.expect(`!ct note "Sir Robin" Minstrels sing of his deeds`, "Added note on Minstrels for Sir Robin.")

	reply, ok := h.say(`!ct view "Sir Robin"`)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(reply.Content, "**[Sir Robin]** ("), reply.Content)
	assert.True(t, strings.HasSuffix(reply.Content, "```\nFP: 5\nHP: 11/12\nMinstrels: sing of his deeds\n```"), reply.Content)

	h.expect(`!ct del "Sir Robin" Minstrels`, "Stopped tracking Minstrels for Sir Robin.")
	h.expect(`!ct del "Sir Robin" FP`, "Stopped tracking FP for Sir Robin.")
	h.expect(`!ct del "Sir Robin" FP`, "Sorry, I'm not tracking FP for Sir Robin.")

	reply, ok = h.say(`!ct show "Sir Robin"`)
	require.True(t, ok)
	assert.True(t, strings.HasSuffix(reply.Content, "```\nHP: 11/12\nNo notes.\n```"), reply.Content)

	h.expect("!ct list", "Tracking: Sir Robin")
	h.expect(`!ct forget "Sir Robin"`, "No longer tracking Sir Robin.")
	h.expect("!ct list", "I'm not tracking anyone here.")
	h.expect(`!ct view "Sir Robin"`, "Sorry, I'm not tracking Sir Robin.")
}

func TestTracker_SheetComment(t *testing.T) {
	h := newHarness(t)
	h.expect("!ct track Tim the enchanter", "Now tracking Tim.")
	reply, ok := h.say("!ct view Tim")
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(reply.Content, "**[Tim]** the enchanter ("), reply.Content)
	assert.True(t, strings.HasSuffix(reply.Content, "```\nNothing currently tracked.\nNo notes.\n```"), reply.Content)

	h.expect("!ct set Tim MP 20 casting fire", "Set MP for Tim to 20.")
	reply, ok = h.say("!ct view Tim")
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(reply.Content, "**[Tim]** casting fire ("), reply.Content)
}

func TestTracker_Permissions(t *testing.T) {
	h := newHarness(t)
	h.expect("!ct track Arthur", "Now tracking Arthur.")
	h.expectAs("u2", "bob", "!ct set Arthur HP 5", "Sorry, you're not allowed to edit Arthur.")
	h.expectAs("u2", "bob", "!ct forget Arthur", "Sorry, you're not allowed to edit Arthur.")

	h.expectAs("u2", "bob", "!ct claim", "Updated GM for #c1.")
	h.expect("!ct gm", "Sorry, #c1 already has a GM.")
	h.expectAs("u2", "bob", "!ct set Arthur HP 5", "Set HP for Arthur to 5.")

	h.expectAs("u2", "bob", "!ct claim", "Updated GM for #c1.")
	h.expectAs("u2", "bob", "!ct sub Arthur HP 1", "Sorry, you're not allowed to edit Arthur.")

	gm, err := h.store.GameMaster(context.Background(), "c1")
	assert.Error(t, err)
	assert.Empty(t, gm)
}

func TestTracker_CharactersArePerChannel(t *testing.T) {
	h := newHarness(t)
	h.expect("!ct track Lancelot", "Now tracking Lancelot.")
	reply, ok := h.bot.HandleMessage(context.Background(), Message{
		GuildID: "g1", ChannelID: "c2", AuthorID: "u1", Content: "!ct view Lancelot",
	})
	require.True(t, ok)
	assert.Equal(t, "Sorry, I'm not tracking Lancelot.", reply.Content)
}

func TestTracker_Usage(t *testing.T) {
	h := newHarness(t)
	h.expect("!ct", "Usage: `!ct <track|forget|set|add|sub|note|del|view|list|claim> ...`")
	h.expect("!ct dance", "Sorry, I don't know the tracker command `dance`.")
	h.expect("!ct set Bedevere HP", "Usage: `!ct set \"<name>\" <attribute> <value> [maximum] [comment]`")
	h.expect("!ct track Bedevere", "Now tracking Bedevere.")
	h.expect("!ct add Bedevere HP lots", "Usage: `!ct add \"<name>\" <attribute> <modifier> [comment]`")
	h.expect("!ct set Galahad HP 3", "Sorry, I'm not tracking Galahad.")
}
