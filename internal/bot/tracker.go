package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cory-johannsen/dicebot/internal/storage"
)

// trackerCommands are the subcommands of the ct command.
func (b *Bot) trackerCommands() []Command {
	return []Command{
		{Name: "track", Usage: `"<name>" [comment]`, Help: "Track a character's statistics.", Handler: b.ctTrack},
		{Name: "forget", Aliases: []string{"untrack"}, Usage: `"<name>"`, Help: "Stop tracking a character.", Handler: b.ctForget},
		{Name: "set", Usage: `"<name>" <attribute> <value> [maximum] [comment]`, Help: "Add or set a character attribute.", Handler: b.ctSet},
		{Name: "add", Aliases: []string{"inc"}, Usage: `"<name>" <attribute> <modifier> [comment]`, Help: "Add to a character attribute.", Handler: b.ctAdd},
		{Name: "sub", Aliases: []string{"dec"}, Usage: `"<name>" <attribute> <modifier> [comment]`, Help: "Subtract from a character attribute.", Handler: b.ctSub},
		{Name: "note", Usage: `"<name>" <note> <text...>`, Help: "Add or edit a character note.", Handler: b.ctNote},
		{Name: "del", Usage: `"<name>" <attribute|note> [comment]`, Help: "Delete a character attribute or note.", Handler: b.ctDel},
		{Name: "view", Aliases: []string{"show"}, Usage: `"<name>"`, Help: "Show a character sheet.", Handler: b.ctView},
		{Name: "list", Help: "List the characters tracked in this channel.", Handler: b.ctList},
		{Name: "claim", Aliases: []string{"gm"}, Help: "Claim or release the channel GM role.", Handler: b.ctClaim},
	}
}

func (b *Bot) cmdTracker(ctx context.Context, req *Request) (Reply, error) {
	if req.Args.Len() == 0 {
		return Reply{}, ErrUsage
	}
	sub, ok := b.tracker.Resolve(req.Args.At(0))
	if !ok {
		return b.reply(req.Message.ChannelID, fmt.Sprintf("Sorry, I don't know the tracker command `%s`.", req.Args.At(0))), nil
	}
	subReq := *req
	subReq.Name = req.Args.At(0)
	subReq.Command = sub
	subReq.RawArgs = req.Args.Rest(1)
	subReq.Args = ParseArgs(subReq.RawArgs)

	reply, err := sub.Handler(ctx, &subReq)
	if errors.Is(err, ErrUsage) {
		return b.reply(req.Message.ChannelID, fmt.Sprintf("Usage: `%s`", usageLine(req.Prefix+req.Command.Name+" "+sub.Name, sub.Usage))), nil
	}
	return reply, err
}

func notTracking(who string) string { return fmt.Sprintf("Sorry, I'm not tracking %s.", who) }

func notAllowed(who string) string { return fmt.Sprintf("Sorry, you're not allowed to edit %s.", who) }

// editable loads who in the request channel and checks the author may edit
// it. On a user-facing refusal the reply is returned with ok false.
func (b *Bot) editable(ctx context.Context, req *Request, who string) (storage.Character, Reply, bool, error) {
	msg := req.Message
	ch, err := b.stores.Characters.Character(ctx, who, msg.ChannelID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return ch, b.reply(msg.ChannelID, notTracking(who)), false, nil
	case err != nil:
		return ch, Reply{}, false, fmt.Errorf("loading character: %w", err)
	}

	allowed := msg.AuthorID == ch.Owner
	if !allowed {
		gm, err := b.stores.Characters.GameMaster(ctx, msg.ChannelID)
		switch {
		case errors.Is(err, storage.ErrNotFound):
		case err != nil:
			return ch, Reply{}, false, fmt.Errorf("loading game master: %w", err)
		default:
			allowed = gm == msg.AuthorID
		}
	}
	if !allowed {
		return ch, b.reply(msg.ChannelID, notAllowed(who)), false, nil
	}
	return ch, Reply{}, true, nil
}

func (b *Bot) touch(ctx context.Context, ch storage.Character, comment string) error {
	if err := b.stores.Characters.TouchCharacter(ctx, ch.ID, strings.TrimSpace(comment)); err != nil {
		return fmt.Errorf("updating character: %w", err)
	}
	return nil
}

func parseValue(s string) (int32, error) {
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrUsage, s)
	}
	return int32(v), nil
}

func formatAttribute(a storage.Attribute) string {
	if a.Maximum == 0 {
		return fmt.Sprintf("%d", a.Value)
	}
	return fmt.Sprintf("%d/%d", a.Value, a.Maximum)
}

func (b *Bot) ctTrack(ctx context.Context, req *Request) (Reply, error) {
	if req.Args.Len() < 1 {
		return Reply{}, ErrUsage
	}
	msg := req.Message
	who := req.Args.At(0)
	_, err := b.stores.Characters.AddCharacter(ctx, storage.Character{
		Name:    who,
		Channel: msg.ChannelID,
		Owner:   msg.AuthorID,
		Comment: req.Args.Rest(1),
	})
	switch {
	case errors.Is(err, storage.ErrExists):
		return b.reply(msg.ChannelID, fmt.Sprintf("I'm already tracking %s.", who)), nil
	case err != nil:
		return Reply{}, fmt.Errorf("adding character: %w", err)
	}
	return b.reply(msg.ChannelID, fmt.Sprintf("Now tracking %s.", who)), nil
}

func (b *Bot) ctForget(ctx context.Context, req *Request) (Reply, error) {
	if req.Args.Len() < 1 {
		return Reply{}, ErrUsage
	}
	who := req.Args.At(0)
	ch, refusal, ok, err := b.editable(ctx, req, who)
	if !ok {
		return refusal, err
	}
	if err := b.stores.Characters.DeleteCharacter(ctx, ch.ID); err != nil {
		return Reply{}, fmt.Errorf("deleting character: %w", err)
	}
	return b.reply(req.Message.ChannelID, fmt.Sprintf("No longer tracking %s.", who)), nil
}

func (b *Bot) ctSet(ctx context.Context, req *Request) (Reply, error) {
	if req.Args.Len() < 3 {
		return Reply{}, ErrUsage
	}
	who, name := req.Args.At(0), req.Args.At(1)
	value, err := parseValue(req.Args.At(2))
	if err != nil {
		return Reply{}, err
	}
	maximum, maxErr := parseValue(req.Args.At(3))
	comment := req.Args.Rest(3)
	if maxErr == nil {
		comment = req.Args.Rest(4)
	}

	ch, refusal, ok, err := b.editable(ctx, req, who)
	if !ok {
		return refusal, err
	}

	attr := storage.Attribute{Name: name, Value: value, Maximum: maximum}
	if maxErr != nil {
		prev, err := b.stores.Characters.Attribute(ctx, ch.ID, name)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			attr.Maximum = 0
		case err != nil:
			return Reply{}, fmt.Errorf("loading attribute: %w", err)
		default:
			attr.Maximum = prev.Maximum
		}
	}
	if err := b.stores.Characters.SetAttribute(ctx, ch.ID, attr); err != nil {
		return Reply{}, fmt.Errorf("setting attribute: %w", err)
	}
	if err := b.touch(ctx, ch, comment); err != nil {
		return Reply{}, err
	}
	return b.reply(req.Message.ChannelID, fmt.Sprintf("Set %s for %s to %s.", name, who, formatAttribute(attr))), nil
}

func (b *Bot) ctAdd(ctx context.Context, req *Request) (Reply, error) {
	return b.adjust(ctx, req, 1)
}

func (b *Bot) ctSub(ctx context.Context, req *Request) (Reply, error) {
	return b.adjust(ctx, req, -1)
}

func (b *Bot) adjust(ctx context.Context, req *Request, sign int32) (Reply, error) {
	if req.Args.Len() < 3 {
		return Reply{}, ErrUsage
	}
	who, name := req.Args.At(0), req.Args.At(1)
	delta, err := parseValue(req.Args.At(2))
	if err != nil {
		return Reply{}, err
	}

	ch, refusal, ok, err := b.editable(ctx, req, who)
	if !ok {
		return refusal, err
	}
	attr, err := b.stores.Characters.Attribute(ctx, ch.ID, name)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return b.reply(req.Message.ChannelID, fmt.Sprintf("Sorry, I'm not tracking %s for %s.", name, who)), nil
	case err != nil:
		return Reply{}, fmt.Errorf("loading attribute: %w", err)
	}
	attr.Value += sign * delta
	if err := b.stores.Characters.SetAttribute(ctx, ch.ID, attr); err != nil {
		return Reply{}, fmt.Errorf("setting attribute: %w", err)
	}
	if err := b.touch(ctx, ch, req.Args.Rest(3)); err != nil {
		return Reply{}, err
	}
	return b.reply(req.Message.ChannelID, fmt.Sprintf("Set %s for %s to %s.", attr.Name, who, formatAttribute(attr))), nil
}

func (b *Bot) ctNote(ctx context.Context, req *Request) (Reply, error) {
	if req.Args.Len() < 3 {
		return Reply{}, ErrUsage
	}
	who, name := req.Args.At(0), req.Args.At(1)
	ch, refusal, ok, err := b.editable(ctx, req, who)
	if !ok {
		return refusal, err
	}
	if err := b.stores.Characters.SetNote(ctx, ch.ID, storage.Note{Name: name, Text: req.Args.Rest(2)}); err != nil {
		return Reply{}, fmt.Errorf("setting note: %w", err)
	}
	if err := b.touch(ctx, ch, ""); err != nil {
		return Reply{}, err
	}
	return b.reply(req.Message.ChannelID, fmt.Sprintf("Added note on %s for %s.", name, who)), nil
}

func (b *Bot) ctDel(ctx context.Context, req *Request) (Reply, error) {
	if req.Args.Len() < 2 {
		return Reply{}, ErrUsage
	}
	who, name := req.Args.At(0), req.Args.At(1)
	ch, refusal, ok, err := b.editable(ctx, req, who)
	if !ok {
		return refusal, err
	}

	err = b.stores.Characters.DeleteAttribute(ctx, ch.ID, name)
	if errors.Is(err, storage.ErrNotFound) {
		err = b.stores.Characters.DeleteNote(ctx, ch.ID, name)
	}
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return b.reply(req.Message.ChannelID, fmt.Sprintf("Sorry, I'm not tracking %s for %s.", name, who)), nil
	case err != nil:
		return Reply{}, fmt.Errorf("deleting %s: %w", name, err)
	}
	if err := b.touch(ctx, ch, req.Args.Rest(2)); err != nil {
		return Reply{}, err
	}
	return b.reply(req.Message.ChannelID, fmt.Sprintf("Stopped tracking %s for %s.", name, who)), nil
}

func (b *Bot) ctView(ctx context.Context, req *Request) (Reply, error) {
	if req.Args.Len() < 1 {
		return Reply{}, ErrUsage
	}
	msg := req.Message
	who := req.Args.At(0)
	ch, err := b.stores.Characters.Character(ctx, who, msg.ChannelID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return b.reply(msg.ChannelID, notTracking(who)), nil
	case err != nil:
		return Reply{}, fmt.Errorf("loading character: %w", err)
	}
	sheet, err := b.renderSheet(ctx, ch)
	if err != nil {
		return Reply{}, err
	}
	return b.reply(msg.ChannelID, sheet), nil
}

// renderSheet formats a character with its attributes and notes.
func (b *Bot) renderSheet(ctx context.Context, ch storage.Character) (string, error) {
	attrs, err := b.stores.Characters.Attributes(ctx, ch.ID)
	if err != nil {
		return "", fmt.Errorf("loading attributes: %w", err)
	}
	notes, err := b.stores.Characters.Notes(ctx, ch.ID)
	if err != nil {
		return "", fmt.Errorf("loading notes: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "**[%s]**", ch.Name)
	if ch.Comment != "" {
		fmt.Fprintf(&sb, " %s", ch.Comment)
	}
	fmt.Fprintf(&sb, " (%s)\n```\n", ch.UpdatedAt.UTC().Format(time.RFC3339))
	if len(attrs) == 0 {
		sb.WriteString("Nothing currently tracked.\n")
	}
	for _, a := range attrs {
		fmt.Fprintf(&sb, "%s: %s\n", a.Name, formatAttribute(a))
	}
	if len(notes) == 0 {
		sb.WriteString("No notes.\n")
	}
	for _, n := range notes {
		fmt.Fprintf(&sb, "%s: %s\n", n.Name, n.Text)
	}
	sb.WriteString("```")
	return sb.String(), nil
}

func (b *Bot) ctList(ctx context.Context, req *Request) (Reply, error) {
	msg := req.Message
	chars, err := b.stores.Characters.Characters(ctx, msg.ChannelID)
	if err != nil {
		return Reply{}, fmt.Errorf("listing characters: %w", err)
	}
	if len(chars) == 0 {
		return b.reply(msg.ChannelID, "I'm not tracking anyone here."), nil
	}
	names := make([]string, len(chars))
	for i, ch := range chars {
		names[i] = ch.Name
	}
	return b.reply(msg.ChannelID, "Tracking: "+strings.Join(names, ", ")), nil
}

func (b *Bot) ctClaim(ctx context.Context, req *Request) (Reply, error) {
	msg := req.Message
	gm, err := b.stores.Characters.GameMaster(ctx, msg.ChannelID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		if err := b.stores.Characters.SetGameMaster(ctx, msg.ChannelID, msg.AuthorID); err != nil {
			return Reply{}, fmt.Errorf("claiming channel: %w", err)
		}
	case err != nil:
		return Reply{}, fmt.Errorf("loading game master: %w", err)
	case gm == msg.AuthorID:
		if err := b.stores.Characters.ClearGameMaster(ctx, msg.ChannelID); err != nil {
			return Reply{}, fmt.Errorf("releasing channel: %w", err)
		}
	default:
		return b.reply(msg.ChannelID, fmt.Sprintf("Sorry, #%s already has a GM.", msg.ChannelID)), nil
	}
	return b.reply(msg.ChannelID, fmt.Sprintf("Updated GM for #%s.", msg.ChannelID)), nil
}
