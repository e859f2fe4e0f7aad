package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dicebot/internal/storage"
)

// prefixCache resolves the command prefix for a message, loading every
// stored prefix on first use.
type prefixCache struct {
	store    storage.PrefixStore
	fallback string

	mu       sync.Mutex
	loaded   bool
	prefixes map[storage.PrefixKey]string
}

func newPrefixCache(store storage.PrefixStore, fallback string) *prefixCache {
	return &prefixCache{store: store, fallback: fallback}
}

func (c *prefixCache) load(ctx context.Context) error {
	if c.loaded {
		return nil
	}
	prefixes, err := c.store.Prefixes(ctx)
	if err != nil {
		return err
	}
	c.prefixes = prefixes
	c.loaded = true
	return nil
}

// Lookup returns the channel prefix, else the guild prefix, else the default.
// On a load failure the default prefix is returned with the error.
func (c *prefixCache) Lookup(ctx context.Context, guildID, channelID string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(ctx); err != nil {
		return c.fallback, err
	}
	if p, ok := c.prefixes[storage.PrefixKey{Scope: storage.ScopeChannel, ID: channelID}]; ok {
		return p, nil
	}
	if guildID != "" {
		if p, ok := c.prefixes[storage.PrefixKey{Scope: storage.ScopeGuild, ID: guildID}]; ok {
			return p, nil
		}
	}
	return c.fallback, nil
}

// Set stores prefix under key; an empty prefix removes the entry. It returns
// the previous prefix, if any.
func (c *prefixCache) Set(ctx context.Context, key storage.PrefixKey, prefix string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(ctx); err != nil {
		return "", err
	}
	if prefix == "" {
		if err := c.store.DeletePrefix(ctx, key); err != nil {
			return "", err
		}
	} else if err := c.store.SetPrefix(ctx, key, prefix); err != nil {
		return "", err
	}
	old := c.prefixes[key]
	if prefix == "" {
		delete(c.prefixes, key)
	} else {
		c.prefixes[key] = prefix
	}
	return old, nil
}

func (b *Bot) cmdPrefix(ctx context.Context, req *Request) (Reply, error) {
	msg := req.Message
	if !b.owners.isOwner(msg.AuthorID) {
		return b.reply(msg.ChannelID, "Sorry, only an owner may change the prefix. Sign in with `owner <password>`."), nil
	}

	key := storage.PrefixKey{Scope: storage.ScopeGuild, ID: msg.GuildID}
	prefix := req.RawArgs
	channelScope := strings.EqualFold(req.Args.At(0), "channel")
	if channelScope {
		prefix = req.Args.Rest(1)
	}
	if channelScope || msg.GuildID == "" {
		key = storage.PrefixKey{Scope: storage.ScopeChannel, ID: msg.ChannelID}
	}
	prefix = strings.TrimSpace(prefix)

	old, err := b.prefixes.Set(ctx, key, prefix)
	if err != nil {
		return Reply{}, fmt.Errorf("storing prefix: %w", err)
	}
	b.logger.Info("prefix changed",
		zap.String("scope", string(key.Scope)),
		zap.String("id", key.ID),
		zap.String("old", old),
		zap.String("new", prefix),
	)

	var content string
	switch {
	case old != "" && prefix == "":
		content = fmt.Sprintf("Changed prefix from `%s` to default.", old)
	case old != "":
		content = fmt.Sprintf("Changed prefix from `%s` to `%s`.", old, prefix)
	case prefix == "":
		content = "The prefix has not been changed."
	default:
		content = fmt.Sprintf("Changed prefix to `%s`.", prefix)
	}
	return b.reply(msg.ChannelID, content), nil
}
