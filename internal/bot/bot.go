// Package bot implements the chat bot that fronts the dice engine: prefix
// handling, command dispatch, and the roll, memory, character tracking,
// GURPS and random commands.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dicebot/internal/bot/reroll"
	"github.com/cory-johannsen/dicebot/internal/config"
	"github.com/cory-johannsen/dicebot/internal/dice"
	"github.com/cory-johannsen/dicebot/internal/gurps"
	"github.com/cory-johannsen/dicebot/internal/storage"
)

// Reaction emoji the bot understands.
const (
	EmojiReroll = "🎲"
	EmojiDelete = "❌"
)

// ErrUsage is returned by handlers when the arguments do not fit the command.
var ErrUsage = errors.New("usage")

// Message is an incoming chat message.
type Message struct {
	ID string
	// GuildID is empty for messages outside any guild.
	GuildID    string
	ChannelID  string
	AuthorID   string
	AuthorName string
	Content    string
}

// Reply is a message the bot posts.
type Reply struct {
	ID        string
	ChannelID string
	Content   string
	// Embed is an image link shown instead of (or after) Content.
	Embed     string
	Reactions []string
}

// Empty reports whether the reply carries nothing to post.
func (r Reply) Empty() bool { return r.Content == "" && r.Embed == "" }

// Reaction is a user adding an emoji to a message.
type Reaction struct {
	MessageID string
	ChannelID string
	UserID    string
	UserName  string
	Emoji     string
	// BotMessage is true when the reacted-to message was posted by the bot.
	BotMessage bool
}

// Effect is what the transport must do in response to a reaction.
type Effect struct {
	// Replies are new messages to post.
	Replies []Reply
	// Delete is the id of a bot message to remove.
	Delete string
	// Unreact is the id of a message whose reroll reaction should be cleared.
	Unreact string
}

// Request is one command invocation.
type Request struct {
	Message Message
	// Prefix is the prefix that was in effect for the message.
	Prefix string
	// Name is the command name as typed.
	Name    string
	Command *Command
	Args    Args
	RawArgs string
}

// Deps are the collaborators a Bot needs.
type Deps struct {
	Stores  storage.Stores
	Rerolls reroll.Store
	// Source drives every random choice the bot makes.
	Source dice.Source
}

// Bot dispatches chat messages to commands.
type Bot struct {
	cfg      config.BotConfig
	stores   storage.Stores
	rerolls  reroll.Store
	src      dice.Source
	roller   *dice.LoggedRoller
	reactor  *gurps.Reactor
	answers  []string
	registry *Registry
	tracker  *Registry
	prefixes *prefixCache
	owners   *ownerAuth
	logger   *zap.Logger
	newID    func() string

	mu      sync.Mutex
	cursors map[string]*cursor // channel id → memory browsing state
}

// New creates a Bot.
//
// Precondition: every field of deps must be non-nil; logger must be non-nil.
// Postcondition: Returns a Bot ready to handle messages, or an error when the
// built-in tables fail to load.
func New(cfg config.BotConfig, deps Deps, logger *zap.Logger) (*Bot, error) {
	engine := dice.NewEngine(deps.Source, dice.WithLimits(cfg.MaxDice, cfg.MaxRepeat))
	reactor, err := gurps.NewReactor(engine)
	if err != nil {
		return nil, fmt.Errorf("loading reaction tables: %w", err)
	}
	answers, err := loadAnswers()
	if err != nil {
		return nil, err
	}
	b := &Bot{
		cfg:      cfg,
		stores:   deps.Stores,
		rerolls:  deps.Rerolls,
		src:      deps.Source,
		roller:   dice.NewLoggedRoller(engine, logger.Named("dice")),
		reactor:  reactor,
		answers:  answers,
		prefixes: newPrefixCache(deps.Stores.Prefixes, cfg.DefaultPrefix),
		owners:   newOwnerAuth(cfg.OwnerPasswordHash),
		logger:   logger,
		newID:    uuid.NewString,
		cursors:  make(map[string]*cursor),
	}
	b.registry, err = NewRegistry(b.commands())
	if err != nil {
		return nil, fmt.Errorf("building command registry: %w", err)
	}
	b.tracker, err = NewRegistry(b.trackerCommands())
	if err != nil {
		return nil, fmt.Errorf("building tracker registry: %w", err)
	}
	return b, nil
}

// Registry returns the bot's command registry.
func (b *Bot) Registry() *Registry { return b.registry }

// Prefix returns the command prefix in effect for a channel.
func (b *Bot) Prefix(ctx context.Context, guildID, channelID string) string {
	prefix, err := b.prefixes.Lookup(ctx, guildID, channelID)
	if err != nil {
		b.logger.Warn("loading prefixes", zap.Error(err))
	}
	return prefix
}

// HandleMessage dispatches msg and returns the reply to post.
//
// Postcondition: ok is false when the message needs no reply.
func (b *Bot) HandleMessage(ctx context.Context, msg Message) (Reply, bool) {
	content := strings.TrimSpace(msg.Content)
	if content == "" {
		return Reply{}, false
	}

	prefix := b.Prefix(ctx, msg.GuildID, msg.ChannelID)
	rest, found := strings.CutPrefix(content, prefix)
	if !found || prefix == "" && !b.looksLikeCommand(content) {
		return b.bareword(ctx, msg, content)
	}

	parsed := ParseLine(rest)
	cmd, ok := b.registry.Resolve(parsed.Command)
	if !ok {
		b.logger.Debug("unknown command",
			zap.String("command", parsed.Command),
			zap.String("channel_id", msg.ChannelID),
		)
		return Reply{}, false
	}

	req := &Request{
		Message: msg,
		Prefix:  prefix,
		Name:    parsed.Command,
		Command: cmd,
		Args:    parsed.Args,
		RawArgs: parsed.RawArgs,
	}
	return b.run(ctx, req)
}

// looksLikeCommand reports whether content starts with a registered command
// name, for channels configured with an empty prefix.
func (b *Bot) looksLikeCommand(content string) bool {
	_, ok := b.registry.Resolve(ParseLine(content).Command)
	return ok
}

func (b *Bot) run(ctx context.Context, req *Request) (Reply, bool) {
	b.logger.Debug("dispatching command",
		zap.String("command", req.Command.Name),
		zap.String("author_id", req.Message.AuthorID),
		zap.String("channel_id", req.Message.ChannelID),
	)

	reply, err := req.Command.Handler(ctx, req)
	if err != nil {
		return b.reply(req.Message.ChannelID, b.renderError(req, err)), true
	}
	if reply.Empty() {
		return Reply{}, false
	}
	if reply.ID == "" {
		reply.ID = b.newID()
	}
	if reply.ChannelID == "" {
		reply.ChannelID = req.Message.ChannelID
	}
	return reply, true
}

func (b *Bot) renderError(req *Request, err error) string {
	if errors.Is(err, ErrUsage) {
		return fmt.Sprintf("Usage: `%s`", usageLine(req.Prefix+req.Command.Name, req.Command.Usage))
	}
	if isUserError(err) {
		b.logger.Debug("command rejected", zap.String("command", req.Command.Name), zap.Error(err))
	} else {
		b.logger.Warn("command failed", zap.String("command", req.Command.Name), zap.Error(err))
	}
	return fmt.Sprintf("%s: %v", req.Command.Name, err)
}

func isUserError(err error) bool {
	for _, target := range []error{
		dice.ErrEmptyExpression, dice.ErrIntegerFormat, dice.ErrDivisionByZero,
		dice.ErrInvalidExponent, dice.ErrInvalidDice, dice.ErrInvalidRepeat, dice.ErrOverflow,
		gurps.ErrInvalidMeasure, gurps.ErrUnknownTable,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// bareword answers a message that exactly names a bareword keyword.
func (b *Bot) bareword(ctx context.Context, msg Message, content string) (Reply, bool) {
	def, err := b.stores.Keywords.Bareword(ctx, foldKeyword(content))
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			b.logger.Warn("bareword lookup", zap.Error(err))
		}
		return Reply{}, false
	}
	return b.definitionReply(msg.ChannelID, def), true
}

// HandleReaction reacts to an emoji added to a message.
func (b *Bot) HandleReaction(ctx context.Context, re Reaction) Effect {
	switch re.Emoji {
	case EmojiReroll:
		return b.reroll(ctx, re)
	case EmojiDelete:
		if !re.BotMessage {
			return Effect{}
		}
		b.logger.Debug("deleting reply",
			zap.String("message_id", re.MessageID),
			zap.String("user_id", re.UserID),
		)
		return Effect{Delete: re.MessageID}
	default:
		b.logger.Debug("unknown reaction", zap.String("emoji", re.Emoji))
		return Effect{}
	}
}

func (b *Bot) reply(channelID, content string, reactions ...string) Reply {
	return Reply{
		ID:        b.newID(),
		ChannelID: channelID,
		Content:   content,
		Reactions: reactions,
	}
}
