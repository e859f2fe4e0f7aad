// Package handlers runs chat console sessions: channel membership, chat
// broadcast and the hand-off of chat lines and reactions to the bot.
package handlers

import (
	"slices"
	"sync"

	"github.com/cory-johannsen/dicebot/internal/frontend/telnet"
)

// maxTrackedPosts bounds how many bot replies the hub remembers for
// reactions and deletes.
const maxTrackedPosts = 1024

// member is one connected session.
type member struct {
	id   string
	name string
	conn *telnet.Conn
	// channel is guarded by Hub.mu.
	channel string
}

// Hub tracks which sessions are in which channel and which messages were
// posted by the bot.
type Hub struct {
	mu       sync.Mutex
	channels map[string]map[*member]struct{}
	posts    map[string]string // bot reply id → channel
	order    []string
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{
		channels: make(map[string]map[*member]struct{}),
		posts:    make(map[string]string),
	}
}

// join moves m into channel and returns the channel it left, if any.
func (h *Hub) join(m *member, channel string) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	previous := m.channel
	h.removeLocked(m)
	if h.channels[channel] == nil {
		h.channels[channel] = make(map[*member]struct{})
	}
	h.channels[channel][m] = struct{}{}
	m.channel = channel
	return previous
}

// leave removes m from its channel and returns that channel.
func (h *Hub) leave(m *member) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	channel := m.channel
	h.removeLocked(m)
	m.channel = ""
	return channel
}

func (h *Hub) removeLocked(m *member) {
	members := h.channels[m.channel]
	delete(members, m)
	if len(members) == 0 {
		delete(h.channels, m.channel)
	}
}

// channelOf returns the channel m is in.
func (h *Hub) channelOf(m *member) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return m.channel
}

// names returns the sorted member names of channel.
func (h *Hub) names(channel string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	names := make([]string, 0, len(h.channels[channel]))
	for m := range h.channels[channel] {
		names = append(names, m.name)
	}
	slices.Sort(names)
	return names
}

// broadcast writes line to every member of channel except skip. Write
// failures are left for the failing session's own read loop to notice.
func (h *Hub) broadcast(channel, line string, skip *member) {
	h.mu.Lock()
	targets := make([]*member, 0, len(h.channels[channel]))
	for m := range h.channels[channel] {
		if m != skip {
			targets = append(targets, m)
		}
	}
	h.mu.Unlock()

	for _, m := range targets {
		_ = m.conn.WriteLine(line)
	}
}

// recordPost remembers that the bot posted id in channel.
func (h *Hub) recordPost(id, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.posts[id]; !ok {
		h.order = append(h.order, id)
	}
	h.posts[id] = channel
	for len(h.order) > maxTrackedPosts {
		delete(h.posts, h.order[0])
		h.order = h.order[1:]
	}
}

// postChannel returns the channel of a bot post.
func (h *Hub) postChannel(id string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	channel, ok := h.posts[id]
	return channel, ok
}

// removePost forgets a bot post and returns the channel it was in.
func (h *Hub) removePost(id string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	channel, ok := h.posts[id]
	if !ok {
		return "", false
	}
	delete(h.posts, id)
	h.order = slices.DeleteFunc(h.order, func(o string) bool { return o == id })
	return channel, true
}
