package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
	"trade-listener/client"
	configure "trade-listener/config"
	"trade-listener/data"
	"trade-listener/service"
)

const configPath = "config/config.yaml"

func main() {
	os.Exit(run())
}

func run() int {
	config, configErr := configure.LoadConfigOrDefault(configPath)
	if configErr != nil {
		slog.Error("Failed to load config file", "path", configPath, "error", configErr)
		return 1
	}

	level, _ := configure.ParseLevel(config.Logging.Level)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tradeStore := data.NewInMemoryTradeStore(config.TickerSymbol(), logger)
	tradeStore.Start()
	defer tradeStore.Shutdown()

	streamRunner := service.NewBinanceStreamRunner(
		config,
		client.NewBinanceClient(config),
		client.NewTradeStreamClient(config, logger),
		tradeStore,
		logger,
	)

	if config.Binance.ApiUrl != "" {
		if err := streamRunner.LoadLatestPrice(ctx); err != nil {
			logger.Warn("Continuing without an initial price", "error", err)
		}
	}

	var server *Server
	serverDone := make(chan struct{})
	if config.HttpEnabled() {
		server = NewServer(config.Http.Addr, SetupRoutes(tradeStore, logger), logger)
		go func() {
			defer close(serverDone)
			if err := server.Start(); err != nil {
				logger.Error("Server error", "error", err)
			}
		}()
	} else {
		close(serverDone)
	}

	// blocks until the stream terminates or a shutdown signal arrives
	streamErr := streamRunner.Run(ctx)
	if streamErr == nil {
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if server != nil {
		if err := server.Stop(shutdownCtx); err != nil {
			logger.Error("Failed to stop server gracefully", "error", err)
		}
	}

	select {
	case <-serverDone:
		logger.Info("HTTP server stopped")
	case <-shutdownCtx.Done():
		logger.Warn("HTTP server shutdown timeout")
	}

	if streamErr != nil {
		if errors.Is(streamErr, service.ErrStreamTerminated) {
			logger.Error("Trade stream ended", "error", streamErr)
		} else {
			logger.Error("Failed to run trade stream", "error", streamErr)
		}
		return 1
	}

	logger.Info("Graceful shutdown completed")
	return 0
}
