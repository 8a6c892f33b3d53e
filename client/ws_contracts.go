package client

// WebSocket is the connection handle handed to a Listener. The transport uses
// explicit flow control: no message is delivered unless it has been requested.
type WebSocket interface {
	// Request asks for n more messages. Non-positive values are ignored.
	Request(n int64)
}

// Listener receives the events of a single stream connection. Events are
// delivered one at a time, in order: OnOpen, any number of OnText/OnBinary,
// then at most one of OnError or OnClose.
type Listener interface {
	OnOpen(ws WebSocket)
	OnText(ws WebSocket, data string, last bool)
	OnBinary(ws WebSocket, data []byte, last bool)
	OnError(ws WebSocket, err error)
	OnClose(ws WebSocket, statusCode int, reason string)
}
