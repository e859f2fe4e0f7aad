package telnet

import (
	"bufio"
	"context"
	"net"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/dicebot/internal/config"
)

const wait = 2 * time.Second

// echoHandler echoes lines until the client sends "quit".
type echoHandler struct {
	sessions atomic.Int32
}

func (h *echoHandler) HandleSession(_ context.Context, conn *Conn) error {
	h.sessions.Add(1)
	for {
		line, err := conn.ReadLine()
		if err != nil {
			return err
		}
		if line == "quit" {
			_ = conn.WriteLine("bye")
			return nil
		}
		_ = conn.WriteLine("echo: " + line)
	}
}

// deafHandler reads until the connection fails and never looks at ctx.
type deafHandler struct {
	started chan struct{}
}

func (h *deafHandler) HandleSession(_ context.Context, conn *Conn) error {
	h.started <- struct{}{}
	for {
		if _, err := conn.ReadLine(); err != nil {
			return err
		}
	}
}

func testConfig() config.ConsoleConfig {
	return config.ConsoleConfig{
		Host:         "127.0.0.1",
		Port:         0,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		Channel:      "lobby",
	}
}

// startAcceptor serves handler on a free port and stops it on cleanup. The
// returned channel yields ListenAndServe's result.
func startAcceptor(t *testing.T, cfg config.ConsoleConfig, handler SessionHandler) (*Acceptor, <-chan error) {
	t.Helper()
	acc := NewAcceptor(cfg, handler, zaptest.NewLogger(t))
	errCh := make(chan error, 1)
	go func() { errCh <- acc.ListenAndServe() }()
	require.Eventually(t, func() bool { return acc.IsRunning() && acc.Addr() != "" }, wait, 5*time.Millisecond)
	t.Cleanup(acc.Stop)
	return acc, errCh
}

type client struct {
	t      *testing.T
	conn   net.Conn
	reader *bufio.Reader
}

func dial(t *testing.T, acc *Acceptor) *client {
	t.Helper()
	conn, err := net.DialTimeout("tcp", acc.Addr(), wait)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &client{t: t, conn: conn, reader: bufio.NewReader(conn)}
}

func (c *client) send(line string) {
	c.t.Helper()
	_, err := c.conn.Write([]byte(line + "\r\n"))
	require.NoError(c.t, err)
}

// readUntil reads until substr shows up, failing the test on error or timeout.
func (c *client) readUntil(substr string) string {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(wait))
	var buf strings.Builder
	for !strings.Contains(buf.String(), substr) {
		b, err := c.reader.ReadByte()
		require.NoError(c.t, err, "waiting for %q, got %q", substr, buf.String())
		buf.WriteByte(b)
	}
	return buf.String()
}

// readToEOF drains the connection and returns what was left, failing the
// test if the server keeps it open.
func (c *client) readToEOF() string {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(wait))
	var buf strings.Builder
	_, err := c.reader.WriteTo(&buf)
	require.NoError(c.t, err, "connection still open after %q", buf.String())
	return buf.String()
}

func TestAcceptor_EchoSession(t *testing.T) {
	handler := &echoHandler{}
	acc, errCh := startAcceptor(t, testConfig(), handler)

	c := dial(t, acc)
	c.send("hello")
	c.readUntil("echo: hello")
	c.send("quit")
	c.readUntil("bye")
	c.readToEOF()

	assert.Eventually(t, func() bool { return acc.Active() == 0 }, wait, 5*time.Millisecond)
	acc.Stop()
	assert.NoError(t, <-errCh)
	assert.Equal(t, int32(1), handler.sessions.Load())
	assert.False(t, acc.IsRunning())
}

func TestAcceptor_StopSaysGoodbyeToOpenSessions(t *testing.T) {
	handler := &deafHandler{started: make(chan struct{}, 2)}
	acc, errCh := startAcceptor(t, testConfig(), handler)

	clients := []*client{dial(t, acc), dial(t, acc)}
	for range clients {
		select {
		case <-handler.started:
		case <-time.After(wait):
			t.Fatal("session did not start")
		}
	}
	assert.Equal(t, 2, acc.Active())

	stopped := make(chan struct{})
	go func() {
		acc.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(wait):
		t.Fatal("Stop waited on a handler that ignores its context")
	}

	for _, c := range clients {
		assert.Contains(t, StripANSI(c.readToEOF()), ShutdownNotice)
	}
	assert.Equal(t, 0, acc.Active())
	assert.NoError(t, <-errCh)
}

func TestAcceptor_RefusesWhenFull(t *testing.T) {
	cfg := testConfig()
	cfg.MaxSessions = 1
	handler := &echoHandler{}
	acc, _ := startAcceptor(t, cfg, handler)

	first := dial(t, acc)
	first.send("ping")
	first.readUntil("echo: ping")

	second := dial(t, acc)
	assert.Contains(t, StripANSI(second.readToEOF()), FullNotice)
	assert.Equal(t, 1, acc.Active())

	first.send("quit")
	first.readUntil("bye")
	assert.Eventually(t, func() bool { return acc.Active() == 0 }, wait, 5*time.Millisecond)

	third := dial(t, acc)
	third.send("again")
	third.readUntil("echo: again")
	assert.Equal(t, int32(2), handler.sessions.Load())
}

func TestAcceptor_StopBeforeListen(t *testing.T) {
	acc := NewAcceptor(testConfig(), &echoHandler{}, zaptest.NewLogger(t))
	acc.Stop()
	acc.Stop()

	assert.NoError(t, acc.ListenAndServe())
	assert.False(t, acc.IsRunning())
	assert.Empty(t, acc.Addr())
}

func TestAcceptor_ListenError(t *testing.T) {
	cfg := testConfig()
	cfg.Port = -1
	err := NewAcceptor(cfg, &echoHandler{}, zaptest.NewLogger(t)).ListenAndServe()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listening on 127.0.0.1:-1")
}
