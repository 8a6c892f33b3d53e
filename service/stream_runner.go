package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"trade-listener/client"
	"trade-listener/config"
	"trade-listener/data"
	"trade-listener/models"
)

// ErrStreamTerminated is returned by Run when the stream ended on its own,
// through a transport error or a close from the remote end.
var ErrStreamTerminated = errors.New("trade stream terminated")

type BinanceStreamRunner struct {
	config       *config.Config
	priceClient  client.PriceClient
	streamClient client.StreamClient
	tradeStore   data.TradeStore
	logger       *slog.Logger
}

type StreamRunner interface {
	LoadLatestPrice(ctx context.Context) error
	Run(ctx context.Context) error
}

func NewBinanceStreamRunner(
	config *config.Config,
	priceClient client.PriceClient,
	streamClient client.StreamClient,
	tradeStore data.TradeStore,
	logger *slog.Logger,
) StreamRunner {
	return &BinanceStreamRunner{
		config:       config,
		priceClient:  priceClient,
		streamClient: streamClient,
		tradeStore:   tradeStore,
		logger:       logger,
	}
}

// LoadLatestPrice seeds the trade store with the current ticker price so the
// HTTP surface has a value before the first trade arrives.
func (sr *BinanceStreamRunner) LoadLatestPrice(ctx context.Context) error {
	symbol := sr.config.TickerSymbol()
	sr.logger.Debug("Loading latest price", "symbol", symbol)

	ticker, err := sr.priceClient.GetLiveTickerPrice(ctx, symbol)
	if err != nil {
		sr.logger.Error("Error loading latest price", "symbol", symbol, "error", err)
		return err
	}

	sr.tradeStore.Seed(ticker.Price)
	sr.logger.Debug("Finished loading latest price", "symbol", symbol, "price", ticker.Price)
	return nil
}

// Run connects the stream and blocks until it terminates or ctx is cancelled.
// On cancellation the stream is closed normally and Run returns nil.
func (sr *BinanceStreamRunner) Run(ctx context.Context) error {
	sr.logger.Info("Starting trade stream", "endpoint", sr.config.StreamURL())

	listener := NewStreamListener(sr.logger, sr.TradeEventHandler)
	doneCh, stopCh, err := sr.streamClient.Connect(ctx, listener)
	if err != nil {
		return fmt.Errorf("failed to start trade stream: %w", err)
	}

	select {
	case <-doneCh:
		return ErrStreamTerminated
	case <-ctx.Done():
		sr.logger.Info("Stopping trade stream")
		close(stopCh)
		<-doneCh
		return nil
	}
}

func (sr *BinanceStreamRunner) TradeEventHandler(trade models.Trade) {
	select {
	case sr.tradeStore.GetTradeUpdateChannel() <- trade:
	case <-sr.tradeStore.GetDoneChannel():
	case <-time.After(100 * time.Millisecond):
		// Timeout - channel blocked for too long
		sr.logger.Warn("Trade update timeout", "price", trade.Price)
	}
}
