package main

import (
	"log/slog"
	"net/http"
	"trade-listener/controllers"
	"trade-listener/data"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes configures all the HTTP routes for the application
func SetupRoutes(tradeStore data.TradeStore, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	priceController := controllers.NewPriceController(tradeStore, logger)
	priceViewController := controllers.NewPriceWsViewController()

	mux.HandleFunc("/api/price", priceController.GetLatestPrice)
	mux.HandleFunc("/ws/price", priceController.WebSocketPrice)
	mux.HandleFunc("/price", priceViewController.ServePricePage)

	mux.Handle("/metrics", promhttp.Handler())

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","service":"trade-listener"}`))
	})

	return mux
}
