package controllers

import (
	"log/slog"
	"net/http"
	"time"
	"trade-listener/data"
	"trade-listener/models"

	"github.com/gorilla/websocket"
	"github.com/segmentio/encoding/json"
)

// PriceResponse is the body of GET /api/price
type PriceResponse struct {
	Data models.PriceTicker `json:"data"`
}

type PriceController struct {
	tradeStore data.TradeStore
	upgrader   *websocket.Upgrader
	logger     *slog.Logger
}

// NewPriceController creates a new price controller
func NewPriceController(tradeStore data.TradeStore, logger *slog.Logger) *PriceController {
	return &PriceController{
		tradeStore: tradeStore,
		upgrader: &websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: logger,
	}
}

// Http

// GetLatestPrice handles GET request for the latest streamed price
func (pc *PriceController) GetLatestPrice(w http.ResponseWriter, r *http.Request) {
	// Set CORS headers for web clients
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	// Handle preflight OPTIONS request
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	latest := pc.tradeStore.GetLatest()
	if latest.IsEmpty() {
		http.Error(w, "No price received yet", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(PriceResponse{Data: latest}); err != nil {
		pc.logger.Error("Failed to encode price data", "error", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// Websocket

// WebSocketPrice streams every change of the latest price to the client
func (pc *PriceController) WebSocketPrice(w http.ResponseWriter, r *http.Request) {
	conn, err := pc.upgrader.Upgrade(w, r, nil)
	if err != nil {
		pc.logger.Error("Failed to upgrade websocket connection", "error", err)
		return
	}

	defer func(conn *websocket.Conn) {
		if connCloseErr := conn.Close(); connCloseErr != nil {
			pc.logger.Debug("Failed to close websocket connection", "error", connCloseErr)
		}
	}(conn)

	pc.logger.Debug("New Connection established", "address", conn.RemoteAddr())

	tickerChannel := pc.tradeStore.Subscribe()
	defer pc.tradeStore.Unsubscribe(tickerChannel)

	connClosed := make(chan struct{})
	go func() {
		defer close(connClosed)

		// Read messages to detect disconnection
		for {
			if _, _, readErr := conn.ReadMessage(); readErr != nil {
				if websocket.IsUnexpectedCloseError(readErr, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					pc.logger.Debug("WebSocket read error", "error", readErr)
				}
				return
			}
		}
	}()

	pingTicker := time.NewTicker(30 * time.Second)
	defer pingTicker.Stop()

	// Forward price updates to the client, the first one is the current snapshot
	for {
		select {
		case <-pc.tradeStore.GetDoneChannel():
			pc.logger.Debug("Received shutdown from trade store")
			return
		case ticker, ok := <-tickerChannel:
			if !ok {
				return
			}
			if writeErr := pc.writeTicker(conn, ticker); writeErr != nil {
				pc.logger.Error("Failed to send price update", "error", writeErr)
				return
			}
		case <-pingTicker.C:
			if pingErr := conn.WriteMessage(websocket.PingMessage, nil); pingErr != nil {
				pc.logger.Error("Failed to send ping", "error", pingErr)
				return
			}
		case <-connClosed:
			pc.logger.Debug("WebSocket connection closed", "address", r.RemoteAddr)
			return
		case <-r.Context().Done():
			pc.logger.Debug("WebSocket client disconnected", "address", r.RemoteAddr)
			return
		}
	}
}

func (pc *PriceController) writeTicker(conn *websocket.Conn, ticker models.PriceTicker) error {
	payload, err := json.Marshal(ticker)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, payload)
}
