package bot

import (
	"context"
	"fmt"
	"strings"
)

// commands returns every top-level command the bot understands.
func (b *Bot) commands() []Command {
	return []Command{
		// Dice
		{Name: "roll", Aliases: []string{"r"}, Usage: "[expr][; expr...] [# comment]", Help: "Roll dice expressions such as `4d6b3`, `r3 2d6+1` or `3d6 vs 12`.", Category: CategoryDice, Handler: b.cmdRoll},

		// Memory
		{Name: "remember", Usage: "<keyword> <text>", Help: "Add a new keyword definition.", Category: CategoryMemory, Handler: b.cmdRemember},
		{Name: "embed", Usage: "<keyword> <image url>", Help: "Add a new keyword image.", Category: CategoryMemory, Handler: b.cmdEmbed},
		{Name: "forget", Usage: "<keyword> <text>", Help: "Forget a specific keyword definition.", Category: CategoryMemory, Handler: b.cmdForget},
		{Name: "recall", Usage: "<keyword>", Help: "Retrieve a keyword's definitions.", Category: CategoryMemory, Handler: b.cmdRecall},
		{Name: "match", Usage: "<keyword> <text>", Help: "Match against a keyword's definitions.", Category: CategoryMemory, Handler: b.cmdMatch},
		{Name: "find", Usage: "<partial>", Help: "Find keywords by partial name.", Category: CategoryMemory, Handler: b.cmdFind},
		{Name: "next", Help: "Show the current keyword's next definition.", Category: CategoryMemory, Handler: b.cmdNext},
		{Name: "prev", Help: "Show the current keyword's previous definition.", Category: CategoryMemory, Handler: b.cmdPrev},
		{Name: "details", Help: "Show who submitted the current definition and when.", Category: CategoryMemory, Handler: b.cmdDetails},
		{Name: "set", Usage: "<keyword> <bareword|hidden|protect|shuffle>...", Help: "Toggle keyword options.", Category: CategoryMemory, Handler: b.cmdSet},

		// Characters
		{Name: "ct", Aliases: []string{"tracker"}, Usage: "<track|forget|set|add|sub|note|del|view|list|claim> ...", Help: "Track character statistics. `help ct` lists the subcommands.", Category: CategoryCharacters, Handler: b.cmdTracker},

		// GURPS
		{Name: "st", Usage: "<ST>", Help: "Calculate Basic Lift and damage for a given ST.", Category: CategoryGURPS, Handler: b.cmdStrength},
		{Name: "sm", Aliases: []string{"size"}, Usage: "<measure>", Help: "Calculate the size modifier for a measurement such as `30 ft`.", Category: CategoryGURPS, Handler: b.cmdSize},
		{Name: "sr", Aliases: []string{"speed", "range"}, Usage: "<measure>", Help: "Calculate the speed/range penalty for a measurement.", Category: CategoryGURPS, Handler: b.cmdSpeedRange},
		{Name: "linear", Aliases: []string{"super"}, Usage: "<SM>", Help: "Calculate the linear value for a size/range modifier.", Category: CategoryGURPS, Handler: b.cmdLinear},
		{Name: "reaction", Aliases: []string{"react"}, Usage: "[modifier] [table]", Help: "Roll a reaction against a reaction table.", Category: CategoryGURPS, Handler: b.cmdReaction},

		// Random
		{Name: "choose", Aliases: []string{"decide", "pick"}, Usage: "<a>, <b>, or <c>", Help: "Choose between comma-delimited options.", Category: CategoryRandom, Handler: b.cmdChoose},
		{Name: "flip", Aliases: []string{"coin"}, Help: "Flip a coin.", Category: CategoryRandom, Handler: b.cmdFlip},
		{Name: "8ball", Aliases: []string{"ask", "eight"}, Usage: "<question>", Help: "Ask the Magic 8-Ball a yes-or-no question.", Category: CategoryRandom, Handler: b.cmdEightBall},

		// Admin
		{Name: "owner", Usage: "<password>|logout", Help: "Sign in as the bot owner.", Category: CategoryAdmin, Handler: b.cmdOwner},
		{Name: "prefix", Usage: "[channel] [new prefix]", Help: "Change the command prefix for this guild or channel.", Category: CategoryAdmin, Handler: b.cmdPrefix},

		// System
		{Name: "help", Aliases: []string{"?"}, Usage: "[command]", Help: "List commands or describe one.", Category: CategorySystem, Handler: b.cmdHelp},
	}
}

var categoryOrder = []string{
	CategoryDice, CategoryMemory, CategoryCharacters, CategoryGURPS,
	CategoryRandom, CategoryAdmin, CategorySystem,
}

func (b *Bot) cmdHelp(_ context.Context, req *Request) (Reply, error) {
	channel := req.Message.ChannelID
	if req.Args.Len() > 0 {
		cmd, ok := b.registry.Resolve(req.Args.At(0))
		if !ok {
			return b.reply(channel, fmt.Sprintf("Sorry, I don't know the command `%s`.", req.Args.At(0))), nil
		}
		return b.reply(channel, describe(req.Prefix, cmd, b.tracker)), nil
	}

	var sb strings.Builder
	byCategory := b.registry.CommandsByCategory()
	for _, cat := range categoryOrder {
		cmds := byCategory[cat]
		if len(cmds) == 0 {
			continue
		}
		names := make([]string, len(cmds))
		for i, cmd := range cmds {
			names[i] = cmd.Name
		}
		fmt.Fprintf(&sb, "**%s**: %s\n", cat, strings.Join(names, ", "))
	}
	fmt.Fprintf(&sb, "Use `%shelp <command>` for details.", req.Prefix)
	return b.reply(channel, sb.String()), nil
}

func describe(prefix string, cmd *Command, tracker *Registry) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "`%s`: %s", usageLine(prefix+cmd.Name, cmd.Usage), cmd.Help)
	if len(cmd.Aliases) > 0 {
		fmt.Fprintf(&sb, "\nAliases: %s", strings.Join(cmd.Aliases, ", "))
	}
	if cmd.Name == "ct" {
		for _, sub := range tracker.Commands() {
			fmt.Fprintf(&sb, "\n`%s`: %s", usageLine(prefix+"ct "+sub.Name, sub.Usage), sub.Help)
		}
	}
	return sb.String()
}

func usageLine(invocation, usage string) string {
	if usage == "" {
		return invocation
	}
	return invocation + " " + usage
}
