package bot

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dicebot/internal/bot/reroll"
)

// defaultExpression is rolled for an empty roll segment.
const defaultExpression = "3d6"

// rollContent evaluates input for name. Text after the first '#' is a
// comment; the rest splits on ';' and newlines into independent expressions.
func (b *Bot) rollContent(name, input string) (string, error) {
	expr, comment, hasComment := strings.Cut(input, "#")
	header := fmt.Sprintf("**%s rolled:**", name)
	if hasComment {
		if c := strings.TrimSpace(comment); c != "" {
			header += " _" + c + "_"
		}
	}

	segments := strings.Split(strings.ReplaceAll(expr, "\n", ";"), ";")
	lines := make([]string, 0, len(segments))
	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			seg = defaultExpression
		}
		out, err := b.roller.Evaluate(seg)
		if err != nil {
			return "", fmt.Errorf("%q: %w", seg, err)
		}
		lines = append(lines, out)
	}
	return header + "\n```\n" + strings.Join(lines, "\n") + "\n```", nil
}

// rollReply rolls input and remembers it so the reply can be rerolled.
func (b *Bot) rollReply(ctx context.Context, channelID, name, input string) (Reply, error) {
	content, err := b.rollContent(name, input)
	if err != nil {
		return Reply{}, err
	}
	reply := b.reply(channelID, content, EmojiReroll)
	if err := b.rerolls.Put(ctx, reply.ID, reroll.Entry{Input: input, AuthorName: name}); err != nil {
		b.logger.Warn("caching roll for reroll", zap.String("reply_id", reply.ID), zap.Error(err))
		reply.Reactions = nil
	}
	return reply, nil
}

func (b *Bot) cmdRoll(ctx context.Context, req *Request) (Reply, error) {
	return b.rollReply(ctx, req.Message.ChannelID, req.Message.AuthorName, req.RawArgs)
}

// reroll rolls the cached input behind a reply again for the reacting user.
// The cache entry is consumed.
func (b *Bot) reroll(ctx context.Context, re Reaction) Effect {
	entry, ok, err := b.rerolls.Take(ctx, re.MessageID)
	if err != nil {
		b.logger.Warn("reading reroll cache", zap.String("message_id", re.MessageID), zap.Error(err))
		return Effect{}
	}
	if !ok {
		b.logger.Info("die roll is not in the reroll cache", zap.String("message_id", re.MessageID))
		return Effect{}
	}

	b.logger.Debug("rerolling",
		zap.String("message_id", re.MessageID),
		zap.String("input", entry.Input),
		zap.String("original_author", entry.AuthorName),
		zap.String("user_id", re.UserID),
	)
	reply, err := b.rollReply(ctx, re.ChannelID, re.UserName, entry.Input)
	if err != nil {
		b.logger.Warn("rerolling", zap.String("message_id", re.MessageID), zap.Error(err))
		return Effect{Unreact: re.MessageID}
	}
	return Effect{Replies: []Reply{reply}, Unreact: re.MessageID}
}
