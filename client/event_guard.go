package client

import (
	"log/slog"
	"sync"
)

type streamState int

const (
	stateUnopened streamState = iota
	stateOpen
	stateTerminated
)

func (s streamState) String() string {
	switch s {
	case stateUnopened:
		return "unopened"
	case stateOpen:
		return "open"
	case stateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// eventGuard forwards transport events to a Listener while holding the
// Unopened -> Open -> Terminated ordering. The mutex is held for the duration
// of each callback so no two callbacks ever overlap.
type eventGuard struct {
	listener Listener
	state    streamState
	mu       sync.Mutex
	logger   *slog.Logger
}

func newEventGuard(listener Listener, logger *slog.Logger) *eventGuard {
	return &eventGuard{
		listener: listener,
		state:    stateUnopened,
		logger:   logger,
	}
}

func (g *eventGuard) open(ws WebSocket) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != stateUnopened {
		g.logger.Warn("Dropping open event", "state", g.state)
		return
	}
	g.state = stateOpen
	g.listener.OnOpen(ws)
}

func (g *eventGuard) text(ws WebSocket, data string, last bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != stateOpen {
		g.logger.Debug("Dropping text message", "state", g.state)
		return
	}
	g.listener.OnText(ws, data, last)
}

func (g *eventGuard) binary(ws WebSocket, data []byte, last bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != stateOpen {
		g.logger.Debug("Dropping binary message", "state", g.state)
		return
	}
	g.listener.OnBinary(ws, data, last)
}

func (g *eventGuard) fail(ws WebSocket, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == stateTerminated {
		g.logger.Debug("Dropping error after termination", "error", err)
		return
	}
	g.state = stateTerminated
	g.listener.OnError(ws, err)
}

func (g *eventGuard) close(ws WebSocket, statusCode int, reason string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == stateTerminated {
		g.logger.Debug("Dropping close after termination", "code", statusCode, "reason", reason)
		return
	}
	g.state = stateTerminated
	g.listener.OnClose(ws, statusCode, reason)
}

func (g *eventGuard) current() streamState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}
