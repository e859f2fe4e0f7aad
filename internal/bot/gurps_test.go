package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGurps_Strength(t *testing.T) {
	h := newHarness(t)
	h.expect("!st 10", "**ST** 10: **Basic Lift** 20; **Damage** *Thr* 1d-2, *Sw* 1d")
	h.expect("!st ten", "Usage: `!st <ST>`")
	h.expect("!st 10 12", "Usage: `!st <ST>`")
}

func TestGurps_SizeAndSpeedRange(t *testing.T) {
	h := newHarness(t)
	h.expect("!sm 30 ft", "4")
	h.expect("!size 10yd", "4")
	h.expect("!sr 30 ft", "-4")
	h.expect("!range 10 yards", "-4")
	h.expect("!sm", "Usage: `!sm <measure>`")

	reply, ok := h.say("!sm bogus")
	require.True(t, ok)
	assert.Contains(t, reply.Content, "sm: invalid measurement")
}

func TestGurps_Linear(t *testing.T) {
	h := newHarness(t)
	h.expect("!linear 5", "Size: 5; Linear Value: 15")
	h.expect("!super 0", "Size: 0; Linear Value: 2")
}

func TestGurps_Reaction(t *testing.T) {
	h := newHarness(t)
	h.src.push(3, 3, 2)
	h.expect("!reaction +2",
		"You got a Good reaction.\nThe NPC likes the PCs and is helpful within reasonable, everyday limits.")

	h.src.push(0, 0, 0)
	h.expect("!react combat -4",
		"You got a Disastrous reaction.\nThe NPCs attack viciously, asking no quarter and giving none.")
}

func TestGurps_ReactionUnknownTable(t *testing.T) {
	h := newHarness(t)
	h.expect("!reaction seduction",
		`reaction: unknown reaction table: "seduction" (tables: admission, aid, combat, commercial, confrontation, general, hiring)`)
	h.expect("!reaction combat aid", "Usage: `!reaction [modifier] [table]`")
}
