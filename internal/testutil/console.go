package testutil

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/cory-johannsen/dicebot/internal/frontend/telnet"
)

// ConsoleClient is a line-oriented client for the chat console.
type ConsoleClient struct {
	conn   net.Conn
	reader *bufio.Reader
	t      *testing.T
}

// NewConsoleClient dials the given address and returns a test client.
//
// Precondition: addr must be a valid "host:port" string with a listening server.
// Postcondition: Returns a connected ConsoleClient or fails the test.
func NewConsoleClient(t *testing.T, addr string) *ConsoleClient {
	t.Helper()
	start := time.Now()

	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		t.Fatalf("connecting to %s: %v [%s]", addr, err, time.Since(start))
	}
	t.Cleanup(func() { conn.Close() })

	return &ConsoleClient{conn: conn, reader: bufio.NewReader(conn), t: t}
}

// ReadUntil reads until substr appears or timeout elapses and returns
// everything read, including the match.
//
// Precondition: substr must be non-empty.
func (c *ConsoleClient) ReadUntil(substr string, timeout time.Duration) string {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(timeout))

	var buf strings.Builder
	for {
		b, err := c.reader.ReadByte()
		if err != nil {
			c.t.Fatalf("reading until %q: got %q, error: %v", substr, buf.String(), err)
		}
		buf.WriteByte(b)
		if strings.Contains(buf.String(), substr) {
			return buf.String()
		}
	}
}

// Reply is a bot reply line "[<id>] <content>".
type Reply struct {
	ID      string
	Content string
}

// ReadReply skips lines until one is a bot reply header and returns it with
// ANSI styling removed. Continuation lines of a multi-line reply are left
// unread.
func (c *ConsoleClient) ReadReply(timeout time.Duration) Reply {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(timeout))
	for {
		line, err := c.reader.ReadString('\n')
		if err != nil {
			c.t.Fatalf("reading reply: %v", err)
		}
		line = telnet.StripANSI(strings.TrimRight(line, "\r\n"))
		if !strings.HasPrefix(line, "[") {
			continue
		}
		id, content, ok := strings.Cut(line[1:], "] ")
		if !ok {
			continue
		}
		return Reply{ID: id, Content: content}
	}
}

// Send writes a line of text to the server, appending \r\n.
//
// Precondition: text should not contain trailing newline characters.
func (c *ConsoleClient) Send(text string) {
	c.t.Helper()
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if _, err := fmt.Fprintf(c.conn, "%s\r\n", text); err != nil {
		c.t.Fatalf("sending %q: %v", text, err)
	}
}

// Close closes the underlying connection.
func (c *ConsoleClient) Close() {
	c.conn.Close()
}
