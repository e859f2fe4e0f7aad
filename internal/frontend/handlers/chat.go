package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dicebot/internal/bot"
	"github.com/cory-johannsen/dicebot/internal/config"
	"github.com/cory-johannsen/dicebot/internal/frontend/telnet"
)

// Dispatcher answers chat messages and reactions.
type Dispatcher interface {
	Prefix(ctx context.Context, guildID, channelID string) string
	HandleMessage(ctx context.Context, msg bot.Message) (bot.Reply, bool)
	HandleReaction(ctx context.Context, re bot.Reaction) bot.Effect
}

const welcomeBanner = telnet.Bold + telnet.BrightCyan + `dicebot console` + telnet.Reset + `
Lines you type are posted to your channel; bot commands work as in any chat.
Type ` + telnet.Green + `/help` + telnet.Reset + ` for console commands.`

const consoleHelp = `Console commands:
  /join <channel>       Switch channel.
  /who                  List who is in your channel.
  /react <id> <emoji>   React to a message, e.g. /react 3f2a 🎲 to reroll.
  /owner                Sign in as the bot owner without echoing the password.
  /quit                 Disconnect.`

// ChatHandler implements telnet.SessionHandler. Each session picks a name,
// joins the configured channel and then chats until it quits.
type ChatHandler struct {
	bot     Dispatcher
	hub     *Hub
	guild   string
	channel string
	logger  *zap.Logger
	newID   func() string
}

// NewChatHandler creates a ChatHandler.
//
// Precondition: dispatcher, hub and logger must be non-nil; cfg.Channel must be non-empty.
func NewChatHandler(cfg config.ConsoleConfig, dispatcher Dispatcher, hub *Hub, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		bot:     dispatcher,
		hub:     hub,
		guild:   cfg.Guild,
		channel: cfg.Channel,
		logger:  logger,
		newID:   uuid.NewString,
	}
}

// HandleSession implements telnet.SessionHandler.
//
// Postcondition: Returns nil on /quit, ctx.Err() when the acceptor stopped
// the session, or the read error that ended it.
func (h *ChatHandler) HandleSession(ctx context.Context, conn *telnet.Conn) error {
	start := time.Now()
	addr := conn.RemoteAddr().String()

	if err := conn.WriteLine(welcomeBanner); err != nil {
		return fmt.Errorf("sending welcome: %w", err)
	}
	name, err := h.askName(conn)
	if err != nil {
		return h.ended(ctx, err)
	}

	m := &member{id: h.newID(), name: name, conn: conn}
	h.enter(m, h.channel)
	defer func() {
		if channel := h.hub.leave(m); channel != "" {
			h.hub.broadcast(channel, notice("%s has left #%s.", m.name, channel), nil)
		}
	}()
	h.logger.Info("console user joined",
		zap.String("remote_addr", addr),
		zap.String("user_id", m.id),
		zap.String("name", m.name),
	)

	for {
		line, err := conn.ReadLine()
		if err != nil {
			return h.ended(ctx, err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "/") {
			h.chat(ctx, m, line)
			continue
		}
		if quit := h.console(ctx, m, line); quit {
			_ = conn.WriteLine(telnet.Colorize(telnet.Cyan, "Goodbye!"))
			h.logger.Info("console user quit",
				zap.String("user_id", m.id),
				zap.Duration("session_duration", time.Since(start)),
			)
			return nil
		}
	}
}

func (h *ChatHandler) ended(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return fmt.Errorf("reading input: %w", err)
}

func (h *ChatHandler) askName(conn *telnet.Conn) (string, error) {
	for {
		if err := conn.WritePrompt("Name: "); err != nil {
			return "", fmt.Errorf("writing prompt: %w", err)
		}
		line, err := conn.ReadLine()
		if err != nil {
			return "", err
		}
		if name := strings.TrimSpace(line); name != "" && !strings.ContainsAny(name, " \t") {
			return name, nil
		}
		_ = conn.WriteLine("Names are a single word.")
	}
}

// enter moves m into channel and announces the move on both sides.
func (h *ChatHandler) enter(m *member, channel string) {
	if previous := h.hub.join(m, channel); previous != "" {
		h.hub.broadcast(previous, notice("%s has left #%s.", m.name, previous), nil)
	}
	h.hub.broadcast(channel, notice("%s has joined #%s.", m.name, channel), m)
	_ = m.conn.WriteLine(notice("Now chatting in #%s.", channel))
}

// chat posts line to m's channel and hands it to the bot.
func (h *ChatHandler) chat(ctx context.Context, m *member, line string) {
	channel := h.hub.channelOf(m)
	h.hub.broadcast(channel, telnet.Colorize(telnet.BrightWhite, "<"+m.name+">")+" "+line, m)

	reply, ok := h.bot.HandleMessage(ctx, bot.Message{
		ID:         h.newID(),
		GuildID:    h.guild,
		ChannelID:  channel,
		AuthorID:   m.id,
		AuthorName: m.name,
		Content:    line,
	})
	if ok {
		h.post(reply)
	}
}

// post shows a bot reply to its channel.
func (h *ChatHandler) post(reply bot.Reply) {
	h.hub.recordPost(reply.ID, reply.ChannelID)
	h.hub.broadcast(reply.ChannelID, FormatReply(reply), nil)
}

// console runs a slash command and reports whether the session should end.
func (h *ChatHandler) console(ctx context.Context, m *member, line string) bool {
	fields := strings.Fields(line)
	switch strings.ToLower(fields[0]) {
	case "/quit", "/exit":
		return true
	case "/help":
		_ = m.conn.WriteLine(consoleHelp)
	case "/who":
		channel := h.hub.channelOf(m)
		_ = m.conn.WriteLine(notice("In #%s: %s", channel, strings.Join(h.hub.names(channel), ", ")))
	case "/join":
		if len(fields) != 2 {
			_ = m.conn.WriteLine("Usage: /join <channel>")
			break
		}
		h.enter(m, strings.TrimPrefix(fields[1], "#"))
	case "/react":
		if len(fields) != 3 {
			_ = m.conn.WriteLine("Usage: /react <id> <emoji>")
			break
		}
		h.react(ctx, m, fields[1], fields[2])
	case "/owner":
		h.owner(ctx, m)
	default:
		_ = m.conn.WriteLine(fmt.Sprintf("Unknown console command %s. Type /help.", fields[0]))
	}
	return false
}

// react hands a reaction to the bot and applies the resulting effect.
func (h *ChatHandler) react(ctx context.Context, m *member, messageID, emoji string) {
	channel, posted := h.hub.postChannel(messageID)
	if !posted {
		channel = h.hub.channelOf(m)
	}
	effect := h.bot.HandleReaction(ctx, bot.Reaction{
		MessageID:  messageID,
		ChannelID:  channel,
		UserID:     m.id,
		UserName:   m.name,
		Emoji:      emoji,
		BotMessage: posted,
	})

	for _, reply := range effect.Replies {
		h.post(reply)
	}
	if effect.Delete != "" {
		if ch, ok := h.hub.removePost(effect.Delete); ok {
			h.hub.broadcast(ch, notice("message [%s] was deleted", effect.Delete), nil)
		}
	}
	if effect.Unreact != "" {
		_ = m.conn.WriteLine(notice("your %s on [%s] was cleared", emoji, effect.Unreact))
	}
}

// owner reads the owner password without echo and sends the owner command
// in m's private channel, so the password never reaches other sessions.
func (h *ChatHandler) owner(ctx context.Context, m *member) {
	if err := m.conn.WritePrompt("Password: "); err != nil {
		return
	}
	password, err := m.conn.ReadSecret()
	if err != nil || strings.TrimSpace(password) == "" {
		return
	}

	private := "dm:" + m.id
	reply, ok := h.bot.HandleMessage(ctx, bot.Message{
		ID:         h.newID(),
		ChannelID:  private,
		AuthorID:   m.id,
		AuthorName: m.name,
		Content:    h.bot.Prefix(ctx, "", private) + "owner " + strings.TrimSpace(password),
	})
	if ok {
		_ = m.conn.WriteLine(FormatReply(reply))
	}
}

// FormatReply renders a bot reply as console text: the reply id in brackets,
// the markdown-styled content, the embed link and any reaction hint.
func FormatReply(reply bot.Reply) string {
	var b strings.Builder
	b.WriteString(telnet.Colorize(telnet.Bold, "["+reply.ID+"]"))
	b.WriteString(" ")
	body := telnet.RenderMarkdown(reply.Content)
	if reply.Embed != "" {
		if body != "" {
			body += "\n"
		}
		body += telnet.Colorize(telnet.Underline, reply.Embed)
	}
	b.WriteString(body)
	if len(reply.Reactions) > 0 {
		b.WriteString("\n")
		b.WriteString(telnet.Colorize(telnet.Dim,
			fmt.Sprintf("  react with %s: /react %s <emoji>", strings.Join(reply.Reactions, " "), reply.ID)))
	}
	return b.String()
}

func notice(format string, args ...any) string {
	return telnet.Colorize(telnet.Dim, "* "+fmt.Sprintf(format, args...))
}
