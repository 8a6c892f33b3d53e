package client

import (
	"log/slog"

	"trade-listener/config"
)

// NewTradeStreamClient returns a stream client for the configured symbol's
// trade stream.
func NewTradeStreamClient(config *config.Config, logger *slog.Logger) StreamClient {
	return NewWebsocketStreamClient(config.StreamURL(), config.Binance.HandshakeTimeout, logger)
}
