package data

import (
	"log/slog"
	"sync"
	"trade-listener/models"
)

type InMemoryTradeStore struct {
	tradeUpdates chan models.Trade
	done         chan struct{}
	latest       models.PriceTicker
	subscribers  map[chan models.PriceTicker]bool
	mu           sync.RWMutex
	shutdownOnce sync.Once
	logger       *slog.Logger
}

// TradeStore keeps the latest trade of the streamed symbol in memory and fans
// every change out to subscribers.
type TradeStore interface {
	Subscribe() chan models.PriceTicker
	Unsubscribe(ch chan models.PriceTicker)
	Start()
	Shutdown()
	Seed(price string)
	GetLatest() models.PriceTicker
	GetDoneChannel() chan struct{}
	GetTradeUpdateChannel() chan models.Trade
}

func NewInMemoryTradeStore(symbol string, logger *slog.Logger) TradeStore {
	return &InMemoryTradeStore{
		tradeUpdates: make(chan models.Trade),
		done:         make(chan struct{}),
		subscribers:  make(map[chan models.PriceTicker]bool),
		latest:       models.PriceTicker{Symbol: symbol},
		logger:       logger,
	}
}

// Subscription

func (ts *InMemoryTradeStore) Subscribe() chan models.PriceTicker {
	ts.logger.Debug("Adding Subscriber")
	subscriber := make(chan models.PriceTicker, 1) // buffer to allow for delay in processing

	ts.mu.Lock()
	if ts.subscribers == nil {
		ts.mu.Unlock()
		close(subscriber)
		return subscriber
	}
	ts.subscribers[subscriber] = true
	subscriber <- ts.latest
	ts.mu.Unlock()

	return subscriber
}

func (ts *InMemoryTradeStore) Unsubscribe(ch chan models.PriceTicker) {
	ts.logger.Debug("Removing Subscriber")
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if _, exists := ts.subscribers[ch]; exists {
		delete(ts.subscribers, ch)
		close(ch)
	} else {
		ts.logger.Debug("Subscriber not found in map")
	}
}

// Update

func (ts *InMemoryTradeStore) updateTrades() {
	for {
		select {
		case trade := <-ts.tradeUpdates:
			ts.processTrade(trade)
			ts.notifySubscribers()
		case <-ts.done:
			ts.logger.Debug("Closing trade updates")
			return
		}
	}
}

func (ts *InMemoryTradeStore) processTrade(trade models.Trade) {
	ts.logger.Debug("Received trade", "price", trade.Price, "trade_time", trade.TradeTime)
	ts.mu.Lock()
	ts.latest.ApplyTrade(trade)
	ts.mu.Unlock()
}

// Seed sets the price before the first trade arrives. It is ignored once a
// price is known.
func (ts *InMemoryTradeStore) Seed(price string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if !ts.latest.IsEmpty() {
		return
	}
	ts.latest = models.NewPriceTicker(ts.latest.Symbol, price)
}

func (ts *InMemoryTradeStore) notifySubscribers() {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	for subscriber := range ts.subscribers {
		select {
		case subscriber <- ts.latest:
		default:
			ts.logger.Warn("Could not send update to subscriber channel", "num channels", len(ts.subscribers))
		}
	}
}

func (ts *InMemoryTradeStore) GetLatest() models.PriceTicker {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return ts.latest
}

func (ts *InMemoryTradeStore) GetDoneChannel() chan struct{} {
	return ts.done
}

func (ts *InMemoryTradeStore) GetTradeUpdateChannel() chan models.Trade {
	return ts.tradeUpdates
}

// Start

func (ts *InMemoryTradeStore) Start() {
	ts.logger.Debug("Starting TradeStore")
	go ts.updateTrades()
}

// Shutdown

func (ts *InMemoryTradeStore) Shutdown() {
	ts.shutdownOnce.Do(func() {
		ts.logger.Info("Shutting down TradeStore")
		close(ts.done)

		// Close all subscriber channels
		ts.mu.Lock()
		ts.logger.Debug("Closing all subscriber channels", "count", len(ts.subscribers))
		for subscriber := range ts.subscribers {
			close(subscriber)
		}
		ts.subscribers = nil
		ts.mu.Unlock()
	})
}
