package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"trade-listener/metrics"
)

const (
	Name           = "trade-listener-go"
	Version        = "0.1.0"
	Keepalive      = true
	ReadLimitBytes = 655350
)

var (
	Timeout      = time.Second * 40
	CloseTimeout = time.Second * 5

	errStopped = errors.New("stream stopped by client")
)

// WsConfig webservice configuration
type WsConfig struct {
	endpoint            string
	handshakeTimeout    time.Duration
	closeTimeout        time.Duration
	enableCompression   bool
	keepConnectionAlive bool
}

type WebsocketStreamClient struct {
	config *WsConfig
	logger *slog.Logger
}

type StreamClient interface {
	// Connect dials the stream and starts delivering events to listener. A
	// handshake failure is reported to listener.OnError and returned. Closing
	// stopCh ends the stream with a normal close; doneCh is closed once the
	// terminal event has been delivered.
	Connect(ctx context.Context, listener Listener) (doneCh, stopCh chan struct{}, err error)
}

func NewWebsocketStreamClient(baseURL string, handshakeTimeout time.Duration, logger *slog.Logger) StreamClient {
	if handshakeTimeout <= 0 {
		handshakeTimeout = Timeout
	}
	return &WebsocketStreamClient{
		config: &WsConfig{
			endpoint:            baseURL,
			handshakeTimeout:    handshakeTimeout,
			closeTimeout:        CloseTimeout,
			enableCompression:   false,
			keepConnectionAlive: Keepalive,
		},
		logger: logger,
	}
}

func (ws *WebsocketStreamClient) Connect(ctx context.Context, listener Listener) (doneCh, stopCh chan struct{}, err error) {
	guard := newEventGuard(listener, ws.logger)
	socket := newStreamSocket()

	conn, err := ws.connect(ctx)
	if err != nil {
		guard.fail(socket, err)
		return nil, nil, fmt.Errorf("failed to connect to %s: %w", ws.config.endpoint, err)
	}
	socket.conn = conn

	ws.logger.Debug("WebSocket connected successfully", "endpoint", ws.config.endpoint)
	guard.open(socket)

	doneCh = make(chan struct{})
	stopCh = make(chan struct{})

	go ws.manageConnection(socket, guard, doneCh, stopCh)

	return doneCh, stopCh, nil
}

func (ws *WebsocketStreamClient) connect(ctx context.Context) (*websocket.Conn, error) {
	dialer := websocket.Dialer{
		Proxy:             http.ProxyFromEnvironment,
		HandshakeTimeout:  ws.config.handshakeTimeout,
		EnableCompression: ws.config.enableCompression,
	}

	headers := http.Header{}
	headers.Add("User-Agent", fmt.Sprintf("%s/%s", Name, Version))

	ws.logger.Debug("Connecting to websocket endpoint", "endpoint", ws.config.endpoint)
	conn, resp, err := dialer.DialContext(ctx, ws.config.endpoint, headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("%w: status %d", err, resp.StatusCode)
		}
		return nil, err
	}

	conn.SetReadLimit(ReadLimitBytes)

	if ws.config.keepConnectionAlive {
		ws.keepAlive(conn)
	}

	return conn, nil
}

func (ws *WebsocketStreamClient) keepAlive(c *websocket.Conn) {
	// ping handler to keep connection alive
	c.SetPingHandler(func(pingData string) error {
		ws.logger.Debug("websocket client ping received", "pingData", pingData)
		err := c.WriteControl(websocket.PongMessage, []byte(pingData), time.Now().Add(time.Second))
		if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
			ws.logger.Warn("Failed to send pong response", "error", err)
			return err
		}
		return nil
	})
}

func (ws *WebsocketStreamClient) manageConnection(socket *streamSocket, guard *eventGuard, doneCh, stopCh chan struct{}) {
	defer close(doneCh)
	defer socket.conn.Close()

	readDone := make(chan error, 1)
	go func() {
		readDone <- ws.processIncomingMessages(socket, guard, stopCh)
	}()

	select {
	case err := <-readDone:
		if errors.Is(err, errStopped) {
			ws.sendClose(socket.conn)
		}
		ws.terminate(socket, guard, err)
	case <-stopCh:
		ws.logger.Debug("Received stop signal closing websocket connection")
		ws.sendClose(socket.conn)

		select {
		case err := <-readDone:
			// a dropped connection after our close frame is still a client close
			var closeErr *websocket.CloseError
			if !errors.As(err, &closeErr) || closeErr.Code == websocket.CloseAbnormalClosure {
				err = errStopped
			}
			ws.terminate(socket, guard, err)
		case <-time.After(ws.config.closeTimeout):
			ws.logger.Warn("Timed out waiting for close frame", "timeout", ws.config.closeTimeout)
			socket.conn.Close()
			<-readDone
			ws.terminate(socket, guard, errStopped)
		}
	}
}

func (ws *WebsocketStreamClient) sendClose(conn *websocket.Conn) {
	err := conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		ws.logger.Error("Failed to close websocket connection", "error", err)
	}
}

// processIncomingMessages reads one message per unit of demand until the
// connection fails, is closed, or stopCh is closed while no demand is pending.
func (ws *WebsocketStreamClient) processIncomingMessages(socket *streamSocket, guard *eventGuard, stopCh chan struct{}) error {
	for {
		if !socket.acquire(stopCh) {
			return errStopped
		}

		messageType, message, err := socket.conn.ReadMessage()
		if err != nil {
			return err
		}

		// gorilla/websocket hands over whole messages, fragments are already joined
		switch messageType {
		case websocket.TextMessage:
			guard.text(socket, string(message), true)
		case websocket.BinaryMessage:
			guard.binary(socket, message, true)
		}
	}
}

func (ws *WebsocketStreamClient) terminate(socket *streamSocket, guard *eventGuard, err error) {
	var closeErr *websocket.CloseError
	switch {
	case errors.Is(err, errStopped):
		guard.close(socket, websocket.CloseNormalClosure, "closed by client")
	case errors.As(err, &closeErr) && closeErr.Code != websocket.CloseAbnormalClosure:
		guard.close(socket, closeErr.Code, closeErr.Text)
	default:
		guard.fail(socket, err)
	}
}

// streamSocket is the WebSocket handle for one connection. Demand is a credit
// counter consumed by the read loop, one unit per delivered message.
type streamSocket struct {
	conn   *websocket.Conn
	demand int64
	wake   chan struct{}
	mu     sync.Mutex
}

func newStreamSocket() *streamSocket {
	return &streamSocket{
		wake: make(chan struct{}, 1),
	}
}

func (s *streamSocket) Request(n int64) {
	if n <= 0 {
		return
	}

	s.mu.Lock()
	s.demand += n
	s.mu.Unlock()
	metrics.OnDemand(n)

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// acquire blocks until a unit of demand is available and takes it. It returns
// false if stopCh is closed first.
func (s *streamSocket) acquire(stopCh <-chan struct{}) bool {
	for {
		s.mu.Lock()
		if s.demand > 0 {
			s.demand--
			s.mu.Unlock()
			return true
		}
		s.mu.Unlock()

		select {
		case <-s.wake:
		case <-stopCh:
			return false
		}
	}
}

func (s *streamSocket) pending() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.demand
}
