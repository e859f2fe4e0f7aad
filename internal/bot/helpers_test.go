package bot

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/dicebot/internal/bot/reroll"
	"github.com/cory-johannsen/dicebot/internal/config"
	"github.com/cory-johannsen/dicebot/internal/storage/memory"
)

// queueSource returns queued values from Intn, then zero once the queue is
// empty. A queued value outside [0, n) panics.
type queueSource struct {
	mu     sync.Mutex
	values []int
}

func (q *queueSource) push(values ...int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.values = append(q.values, values...)
}

func (q *queueSource) Intn(n int) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.values) == 0 {
		return 0
	}
	v := q.values[0]
	q.values = q.values[1:]
	if v < 0 || v >= n {
		panic(fmt.Sprintf("queueSource: %d outside [0, %d)", v, n))
	}
	return v
}

type harness struct {
	t     *testing.T
	bot   *Bot
	src   *queueSource
	store *memory.Store
	ids   int
}

func newHarness(t *testing.T, mutate ...func(*config.BotConfig)) *harness {
	t.Helper()
	cfg := config.BotConfig{DefaultPrefix: "!", MaxDice: 1000, MaxRepeat: 20}
	for _, m := range mutate {
		m(&cfg)
	}
	src := &queueSource{}
	store := memory.New(src)
	b, err := New(cfg, Deps{
		Stores:  store.Stores(),
		Rerolls: reroll.NewMemoryStore(16),
		Source:  src,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)

	h := &harness{t: t, bot: b, src: src, store: store}
	b.newID = func() string {
		h.ids++
		return fmt.Sprintf("m%d", h.ids)
	}
	return h
}

// say sends content as user u1 in channel c1 of guild g1.
func (h *harness) say(content string) (Reply, bool) {
	return h.sayAs("u1", "alice", content)
}

func (h *harness) sayAs(userID, name, content string) (Reply, bool) {
	h.t.Helper()
	return h.bot.HandleMessage(context.Background(), Message{
		ID:         "in",
		GuildID:    "g1",
		ChannelID:  "c1",
		AuthorID:   userID,
		AuthorName: name,
		Content:    content,
	})
}

// expect sends content as u1 and asserts the reply text.
func (h *harness) expect(content, want string) Reply {
	h.t.Helper()
	return h.expectAs("u1", "alice", content, want)
}

func (h *harness) expectAs(userID, name, content, want string) Reply {
	h.t.Helper()
	reply, ok := h.sayAs(userID, name, content)
	require.True(h.t, ok, "no reply to %q", content)
	require.Equal(h.t, want, reply.Content, "reply to %q", content)
	return reply
}
