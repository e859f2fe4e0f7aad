package telnet

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dicebot/internal/config"
)

// Notices the acceptor writes on its own, outside any session.
const (
	ShutdownNotice = "Server shutting down. Goodbye!"
	FullNotice     = "The console is full. Try again later."
)

// SessionHandler runs one console session. HandleSession returns when the
// client leaves, the connection fails or ctx is cancelled.
type SessionHandler interface {
	HandleSession(ctx context.Context, conn *Conn) error
}

// Acceptor accepts console connections and runs a SessionHandler for each,
// up to cfg.MaxSessions at a time. Stopping it says goodbye to every open
// session and closes it.
type Acceptor struct {
	cfg     config.ConsoleConfig
	handler SessionHandler
	logger  *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	listener net.Listener
	sessions map[*Conn]struct{}
	stopped  bool
}

// NewAcceptor creates a console acceptor. Port 0 picks a free port; Addr
// reports it once listening.
//
// Precondition: handler and logger must be non-nil.
func NewAcceptor(cfg config.ConsoleConfig, handler SessionHandler, logger *zap.Logger) *Acceptor {
	ctx, cancel := context.WithCancel(context.Background())
	return &Acceptor{
		cfg:      cfg,
		handler:  handler,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[*Conn]struct{}),
	}
}

// ListenAndServe accepts connections until Stop is called.
//
// Postcondition: Returns nil after Stop, or the error that prevented listening.
func (a *Acceptor) ListenAndServe() error {
	listener, err := net.Listen("tcp", a.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", a.cfg.Addr(), err)
	}

	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		return listener.Close()
	}
	a.listener = listener
	a.mu.Unlock()

	a.logger.Info("console listening",
		zap.String("addr", listener.Addr().String()),
		zap.Int("max_sessions", a.cfg.MaxSessions),
	)

	for {
		raw, err := listener.Accept()
		if err != nil {
			if a.ctx.Err() != nil {
				return nil
			}
			a.logger.Error("accepting connection", zap.Error(err))
			continue
		}

		conn := NewConn(raw, a.cfg.ReadTimeout, a.cfg.WriteTimeout)
		if notice := a.admit(conn); notice != "" {
			a.logger.Warn("refusing connection",
				zap.String("remote_addr", raw.RemoteAddr().String()),
				zap.String("reason", notice),
			)
			_ = conn.WriteLine(Colorize(Yellow, notice))
			_ = conn.Close()
			continue
		}
		go a.serve(conn)
	}
}

// admit registers conn as a session. It returns the notice to send instead
// when the acceptor is stopping or full.
func (a *Acceptor) admit(conn *Conn) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch {
	case a.stopped:
		return ShutdownNotice
	case a.cfg.MaxSessions > 0 && len(a.sessions) >= a.cfg.MaxSessions:
		return FullNotice
	}
	a.sessions[conn] = struct{}{}
	a.wg.Add(1)
	return ""
}

func (a *Acceptor) release(conn *Conn) {
	a.mu.Lock()
	delete(a.sessions, conn)
	a.mu.Unlock()
	_ = conn.Close()
}

func (a *Acceptor) serve(conn *Conn) {
	defer a.wg.Done()
	defer a.release(conn)
	start := time.Now()
	addr := conn.RemoteAddr().String()
	a.logger.Info("client connected",
		zap.String("remote_addr", addr),
		zap.Int("active", a.Active()),
	)

	if err := conn.Negotiate(); err != nil {
		a.logger.Error("telnet negotiation failed", zap.String("remote_addr", addr), zap.Error(err))
		return
	}

	err := a.handler.HandleSession(a.ctx, conn)
	a.logger.Info("session ended",
		zap.String("remote_addr", addr),
		zap.Duration("duration", time.Since(start)),
		zap.NamedError("cause", err),
	)
}

// Stop closes the listener, writes ShutdownNotice to every open session,
// closes them and waits for their handlers to return. It is safe to call
// more than once, and before ListenAndServe.
func (a *Acceptor) Stop() {
	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		return
	}
	a.stopped = true
	a.cancel()
	if a.listener != nil {
		_ = a.listener.Close()
	}
	open := make([]*Conn, 0, len(a.sessions))
	for conn := range a.sessions {
		open = append(open, conn)
	}
	a.mu.Unlock()

	// Closing unblocks handlers stuck in ReadLine whether or not they watch ctx.
	for _, conn := range open {
		_ = conn.WriteLine(Colorize(Yellow, ShutdownNotice))
		_ = conn.Close()
	}
	a.wg.Wait()

	a.logger.Info("console stopped", zap.Int("sessions_closed", len(open)))
}

// Addr returns the listening address, or "" before the listener is up.
func (a *Acceptor) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener != nil {
		return a.listener.Addr().String()
	}
	return ""
}

// Active returns the number of open sessions.
func (a *Acceptor) Active() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.sessions)
}

// IsRunning reports whether the acceptor is accepting connections.
func (a *Acceptor) IsRunning() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.listener != nil && !a.stopped
}
