package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/cory-johannsen/dicebot/internal/gurps"
)

func (b *Bot) cmdStrength(_ context.Context, req *Request) (Reply, error) {
	st, err := strconv.Atoi(req.Args.At(0))
	if err != nil || req.Args.Len() != 1 {
		return Reply{}, ErrUsage
	}
	return b.reply(req.Message.ChannelID, gurps.CalcStrength(st).String()), nil
}

func (b *Bot) cmdSize(_ context.Context, req *Request) (Reply, error) {
	if req.RawArgs == "" {
		return Reply{}, ErrUsage
	}
	yards, err := gurps.ParseYards(req.RawArgs)
	if err != nil {
		return Reply{}, err
	}
	return b.reply(req.Message.ChannelID, strconv.Itoa(gurps.SizeModifier(yards))), nil
}

func (b *Bot) cmdSpeedRange(_ context.Context, req *Request) (Reply, error) {
	if req.RawArgs == "" {
		return Reply{}, ErrUsage
	}
	yards, err := gurps.ParseYards(req.RawArgs)
	if err != nil {
		return Reply{}, err
	}
	return b.reply(req.Message.ChannelID, strconv.Itoa(gurps.SpeedRange(yards))), nil
}

func (b *Bot) cmdLinear(_ context.Context, req *Request) (Reply, error) {
	sm, err := strconv.Atoi(req.Args.At(0))
	if err != nil || req.Args.Len() != 1 {
		return Reply{}, ErrUsage
	}
	return b.reply(req.Message.ChannelID, gurps.FormatLinear(sm)), nil
}

// cmdReaction accepts an optional signed modifier and an optional table
// name in either order.
func (b *Bot) cmdReaction(_ context.Context, req *Request) (Reply, error) {
	var (
		modifier int
		table    string
	)
	for _, arg := range req.Args.Strings() {
		if n, err := strconv.Atoi(arg); err == nil {
			modifier = n
			continue
		}
		if table != "" {
			return Reply{}, ErrUsage
		}
		table = arg
	}
	r, err := b.reactor.React(table, modifier)
	if err != nil {
		return Reply{}, fmt.Errorf("%w (tables: %s)", err, strings.Join(b.reactor.Tables().Names(), ", "))
	}
	return b.reply(req.Message.ChannelID, r.String()), nil
}
