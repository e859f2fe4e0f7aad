package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/cory-johannsen/dicebot/internal/storage"
)

// foldKeyword normalizes a keyword name so lookups ignore case.
func foldKeyword(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// cursor is the definition list a channel is browsing with next and prev.
type cursor struct {
	idx  int
	defs []storage.Definition
}

func (b *Bot) setCursor(channelID string, defs []storage.Definition) storage.Definition {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cursors[channelID] = &cursor{defs: defs}
	return defs[0]
}

// moveCursor steps the channel's cursor by delta, wrapping at either end.
func (b *Bot) moveCursor(channelID string, delta int) (storage.Definition, int, int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.cursors[channelID]
	if !ok {
		return storage.Definition{}, 0, 0, false
	}
	n := len(c.defs)
	c.idx = ((c.idx+delta)%n + n) % n
	return c.defs[c.idx], c.idx, n, true
}

func (b *Bot) definitionReply(channelID string, def storage.Definition) Reply {
	if def.Embedded {
		return Reply{ID: b.newID(), ChannelID: channelID, Embed: def.Text}
	}
	return b.reply(channelID, def.Text)
}

func (b *Bot) shuffle(defs []storage.Definition) {
	for i := len(defs) - 1; i > 0; i-- {
		j := b.src.Intn(i + 1)
		defs[i], defs[j] = defs[j], defs[i]
	}
}

func canEdit(kw storage.Keyword, user string) bool {
	return !kw.Locked() || kw.Owner == user
}

func canView(kw storage.Keyword, user string) bool {
	return !kw.Hidden || kw.Owner == user
}

func (b *Bot) cmdRemember(ctx context.Context, req *Request) (Reply, error) {
	return b.addEntry(ctx, req, false)
}

func (b *Bot) cmdEmbed(ctx context.Context, req *Request) (Reply, error) {
	return b.addEntry(ctx, req, true)
}

func (b *Bot) addEntry(ctx context.Context, req *Request, embedded bool) (Reply, error) {
	if req.Args.Len() < 2 {
		return Reply{}, ErrUsage
	}
	msg := req.Message
	name := foldKeyword(req.Args.At(0))
	text := req.Args.Rest(1)

	kw, err := b.stores.Keywords.Keyword(ctx, name)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		kw = storage.Keyword{Name: name, Owner: msg.AuthorID, Shuffle: true}
		if err := b.stores.Keywords.AddKeyword(ctx, kw); err != nil && !errors.Is(err, storage.ErrExists) {
			return Reply{}, fmt.Errorf("adding keyword: %w", err)
		}
	case err != nil:
		return Reply{}, fmt.Errorf("loading keyword: %w", err)
	}

	if !canEdit(kw, msg.AuthorID) {
		return b.reply(msg.ChannelID, fmt.Sprintf("Sorry, you're not allowed to edit `%s`.", name)), nil
	}

	err = b.stores.Keywords.AddDefinition(ctx, storage.Definition{
		Keyword:   name,
		Text:      text,
		Submitter: msg.AuthorID,
		CreatedAt: time.Now(),
		Embedded:  embedded,
	})
	switch {
	case errors.Is(err, storage.ErrExists):
		return b.reply(msg.ChannelID, fmt.Sprintf("Sorry, I already know that about `%s`.", name)), nil
	case err != nil:
		return Reply{}, fmt.Errorf("adding definition: %w", err)
	}
	return b.reply(msg.ChannelID, fmt.Sprintf("Entry added for %s.", name)), nil
}

func (b *Bot) cmdForget(ctx context.Context, req *Request) (Reply, error) {
	if req.Args.Len() < 2 {
		return Reply{}, ErrUsage
	}
	msg := req.Message
	name := foldKeyword(req.Args.At(0))

	kw, err := b.stores.Keywords.Keyword(ctx, name)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return b.reply(msg.ChannelID, fmt.Sprintf("Sorry, I don't know anything about `%s`.", name)), nil
	case err != nil:
		return Reply{}, fmt.Errorf("loading keyword: %w", err)
	}
	if !canEdit(kw, msg.AuthorID) {
		return b.reply(msg.ChannelID, fmt.Sprintf("Sorry, you're not allowed to edit `%s`.", name)), nil
	}

	err = b.stores.Keywords.DeleteDefinition(ctx, name, req.Args.Rest(1))
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return b.reply(msg.ChannelID, fmt.Sprintf("Sorry, I don't know that about `%s`.", name)), nil
	case err != nil:
		return Reply{}, fmt.Errorf("deleting definition: %w", err)
	}
	return b.reply(msg.ChannelID, fmt.Sprintf("Entry removed for %s.", name)), nil
}

func (b *Bot) cmdRecall(ctx context.Context, req *Request) (Reply, error) {
	if req.Args.Len() < 1 {
		return Reply{}, ErrUsage
	}
	return b.browse(ctx, req, foldKeyword(req.Args.At(0)), "")
}

func (b *Bot) cmdMatch(ctx context.Context, req *Request) (Reply, error) {
	if req.Args.Len() < 2 {
		return Reply{}, ErrUsage
	}
	return b.browse(ctx, req, foldKeyword(req.Args.At(0)), req.Args.Rest(1))
}

// browse loads the definitions of name (those containing partial, when
// given) and starts the channel's cursor on the first one.
func (b *Bot) browse(ctx context.Context, req *Request, name, partial string) (Reply, error) {
	msg := req.Message
	unknown := fmt.Sprintf("Sorry, I don't know anything about `%s`.", name)
	if partial != "" {
		unknown = fmt.Sprintf("Sorry, I don't know anything about `%s` matching `%s`.", name, partial)
	}

	kw, err := b.stores.Keywords.Keyword(ctx, name)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return b.reply(msg.ChannelID, unknown), nil
	case err != nil:
		return Reply{}, fmt.Errorf("loading keyword: %w", err)
	}
	if !canView(kw, msg.AuthorID) {
		return b.reply(msg.ChannelID, fmt.Sprintf("Sorry, you're not allowed to view `%s`.", name)), nil
	}

	var defs []storage.Definition
	if partial == "" {
		defs, err = b.stores.Keywords.Definitions(ctx, name)
	} else {
		defs, err = b.stores.Keywords.FindDefinitions(ctx, name, partial)
	}
	if err != nil {
		return Reply{}, fmt.Errorf("loading definitions: %w", err)
	}
	if len(defs) == 0 {
		return b.reply(msg.ChannelID, unknown), nil
	}
	if kw.Shuffle {
		b.shuffle(defs)
	}
	return b.definitionReply(msg.ChannelID, b.setCursor(msg.ChannelID, defs)), nil
}

func (b *Bot) cmdNext(_ context.Context, req *Request) (Reply, error) {
	return b.step(req, 1), nil
}

func (b *Bot) cmdPrev(_ context.Context, req *Request) (Reply, error) {
	return b.step(req, -1), nil
}

func (b *Bot) step(req *Request, delta int) Reply {
	def, _, _, ok := b.moveCursor(req.Message.ChannelID, delta)
	if !ok {
		return Reply{}
	}
	return b.definitionReply(req.Message.ChannelID, def)
}

func (b *Bot) cmdDetails(_ context.Context, req *Request) (Reply, error) {
	def, idx, n, ok := b.moveCursor(req.Message.ChannelID, 0)
	if !ok {
		return Reply{}, nil
	}
	return b.reply(req.Message.ChannelID, fmt.Sprintf("%s (%d/%d) submitted by %s at %s.",
		def.Keyword, idx+1, n, def.Submitter, def.CreatedAt.UTC().Format(time.RFC3339))), nil
}

func (b *Bot) cmdFind(ctx context.Context, req *Request) (Reply, error) {
	if req.Args.Len() < 1 {
		return Reply{}, ErrUsage
	}
	msg := req.Message
	partial := foldKeyword(req.Args.Rest(0))
	found, err := b.stores.Keywords.FindKeywords(ctx, partial)
	if err != nil {
		return Reply{}, fmt.Errorf("finding keywords: %w", err)
	}
	names := make([]string, 0, len(found))
	for _, kw := range found {
		if canView(kw, msg.AuthorID) {
			names = append(names, kw.Name)
		}
	}
	if len(names) == 0 {
		return b.reply(msg.ChannelID, fmt.Sprintf("Sorry, I didn't find any keywords matching `%s`.", partial)), nil
	}
	return b.reply(msg.ChannelID, fmt.Sprintf("I found the following keywords: `%s`", strings.Join(names, "`, `"))), nil
}

func (b *Bot) cmdSet(ctx context.Context, req *Request) (Reply, error) {
	if req.Args.Len() < 2 {
		return Reply{}, ErrUsage
	}
	msg := req.Message
	name := foldKeyword(req.Args.At(0))

	kw, err := b.stores.Keywords.Keyword(ctx, name)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return b.reply(msg.ChannelID, fmt.Sprintf("Sorry, I don't know anything about `%s`.", name)), nil
	case err != nil:
		return Reply{}, fmt.Errorf("loading keyword: %w", err)
	}
	if !canEdit(kw, msg.AuthorID) {
		return b.reply(msg.ChannelID, fmt.Sprintf("Sorry, you're not allowed to edit `%s`.", name)), nil
	}

	for _, opt := range req.Args.Strings()[1:] {
		switch strings.ToLower(opt) {
		case "bareword":
			kw.Bareword = !kw.Bareword
		case "hidden":
			kw.Hidden = !kw.Hidden
		case "protect":
			kw.Protect = !kw.Protect
		case "shuffle":
			kw.Shuffle = !kw.Shuffle
		default:
			return b.reply(msg.ChannelID, fmt.Sprintf("Sorry, I don't recognize the option `%s`.", opt)), nil
		}
	}
	kw.Owner = msg.AuthorID

	if err := b.stores.Keywords.UpdateKeyword(ctx, kw); err != nil {
		return Reply{}, fmt.Errorf("updating keyword: %w", err)
	}
	return b.reply(msg.ChannelID, fmt.Sprintf("Options changed for %s.", name)), nil
}
