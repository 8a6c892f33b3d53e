package service

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/tidwall/gjson"

	"trade-listener/client"
	"trade-listener/metrics"
	"trade-listener/models"
)

const (
	priceKey     = "p"
	tradeTimeKey = "T"
)

// ErrInvalidTradeMessage covers every reason a message cannot be read as a
// trade: malformed JSON, a non-object document, or a missing or non-scalar key.
var ErrInvalidTradeMessage = errors.New("invalid trade message")

// TradeHandler is called with every trade that was parsed and logged
type TradeHandler func(trade models.Trade)

// StreamListener logs the price and trade time of every trade message and
// keeps the stream flowing by requesting the next message after each one.
type StreamListener struct {
	logger  *slog.Logger
	onTrade TradeHandler
}

var _ client.Listener = (*StreamListener)(nil)

// NewStreamListener creates a listener. onTrade may be nil.
func NewStreamListener(logger *slog.Logger, onTrade TradeHandler) *StreamListener {
	return &StreamListener{
		logger:  logger,
		onTrade: onTrade,
	}
}

func (l *StreamListener) OnOpen(ws client.WebSocket) {
	l.logger.Info("WebSocket connection established")
	metrics.OnOpen()
	ws.Request(1) // first message
}

func (l *StreamListener) OnText(ws client.WebSocket, data string, last bool) {
	// the stream stalls unless every message is followed by a new request
	defer ws.Request(1)

	trade, err := ParseTrade(data)
	metrics.OnText(err == nil)
	if err != nil {
		l.logger.Error("Failed to parse message", "message", data, "error", err)
		return
	}

	l.logger.Info("Price received", "price", trade.Price, "trade_time", trade.TradeTime)
	if l.onTrade != nil {
		l.onTrade(trade)
	}
}

func (l *StreamListener) OnBinary(ws client.WebSocket, data []byte, last bool) {
	defer ws.Request(1)

	metrics.OnBinary()
	l.logger.Debug("Ignoring binary message", "size", len(data))
}

func (l *StreamListener) OnError(ws client.WebSocket, err error) {
	metrics.OnError()
	l.logger.Error("WebSocket error", "error", err, "detail", fmt.Sprintf("%+v", err))
}

func (l *StreamListener) OnClose(ws client.WebSocket, statusCode int, reason string) {
	metrics.OnClose(statusCode)
	l.logger.Info("WebSocket closed", "code", statusCode, "reason", reason)
}

// ParseTrade extracts the price and trade time from a trade stream message.
// String and number values are returned as their exact text.
func ParseTrade(message string) (models.Trade, error) {
	if !gjson.Valid(message) {
		return models.Trade{}, fmt.Errorf("%w: malformed JSON", ErrInvalidTradeMessage)
	}

	result := gjson.Parse(message)
	if !result.IsObject() {
		return models.Trade{}, fmt.Errorf("%w: not a JSON object", ErrInvalidTradeMessage)
	}

	price, err := scalarText(result, priceKey)
	if err != nil {
		return models.Trade{}, err
	}

	tradeTime, err := scalarText(result, tradeTimeKey)
	if err != nil {
		return models.Trade{}, err
	}

	return models.Trade{
		Price:     price,
		TradeTime: tradeTime,
	}, nil
}

func scalarText(object gjson.Result, key string) (string, error) {
	value := object.Get(key)
	if !value.Exists() {
		return "", fmt.Errorf("%w: missing field %q", ErrInvalidTradeMessage, key)
	}

	switch value.Type {
	case gjson.String:
		return value.Str, nil
	case gjson.Number, gjson.True, gjson.False:
		return value.Raw, nil
	default:
		return "", fmt.Errorf("%w: field %q is not a scalar", ErrInvalidTradeMessage, key)
	}
}
