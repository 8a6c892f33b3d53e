package data

import (
	"log/slog"
	"testing"
	"time"
	"trade-listener/models"
)

func TestNewInMemoryTradeStore(t *testing.T) {
	ts := NewInMemoryTradeStore("BTCUSDT", slog.Default())

	if ts == nil {
		t.Fatal("Expected TradeStore to be created, got nil")
	}

	if ts.GetDoneChannel() == nil {
		t.Error("Expected done channel to be initialized")
	}

	if ts.GetTradeUpdateChannel() == nil {
		t.Error("Expected trade update channel to be initialized")
	}

	latest := ts.GetLatest()
	if latest.Symbol != "BTCUSDT" {
		t.Errorf("Expected symbol BTCUSDT, got %s", latest.Symbol)
	}
	if !latest.IsEmpty() {
		t.Errorf("Expected no price before the first trade, got %s", latest.Price)
	}
}

func TestInMemoryTradeStore_Subscribe(t *testing.T) {
	ts := NewInMemoryTradeStore("BTCUSDT", slog.Default())

	subscriber := ts.Subscribe()
	if subscriber == nil {
		t.Fatal("Expected subscriber channel, got nil")
	}

	// Check that snapshot was sent
	select {
	case ticker := <-subscriber:
		if ticker.Symbol != "BTCUSDT" {
			t.Errorf("Expected snapshot for BTCUSDT, got %s", ticker.Symbol)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("Expected initial snapshot within timeout")
	}

	concrete := ts.(*InMemoryTradeStore)
	concrete.mu.RLock()
	if len(concrete.subscribers) != 1 {
		t.Errorf("Expected 1 subscriber, got %d", len(concrete.subscribers))
	}
	concrete.mu.RUnlock()
}

func TestInMemoryTradeStore_Unsubscribe(t *testing.T) {
	ts := NewInMemoryTradeStore("BTCUSDT", slog.Default())

	subscriber := ts.Subscribe()
	ts.Unsubscribe(subscriber)

	concrete := ts.(*InMemoryTradeStore)
	concrete.mu.RLock()
	if len(concrete.subscribers) != 0 {
		t.Errorf("Expected 0 subscribers after unsubscribe, got %d", len(concrete.subscribers))
	}
	concrete.mu.RUnlock()

	// drain the snapshot, then the channel must be closed
	<-subscriber
	if _, ok := <-subscriber; ok {
		t.Error("Expected subscriber channel to be closed")
	}
}

func TestInMemoryTradeStore_UnsubscribeNonExistent(t *testing.T) {
	ts := NewInMemoryTradeStore("BTCUSDT", slog.Default())

	// Should not panic
	ts.Unsubscribe(make(chan models.PriceTicker))
}

func TestInMemoryTradeStore_ProcessTrade(t *testing.T) {
	ts := NewInMemoryTradeStore("BTCUSDT", slog.Default())
	ts.Start()
	defer ts.Shutdown()

	subscriber := ts.Subscribe()
	<-subscriber // initial snapshot

	ts.GetTradeUpdateChannel() <- models.Trade{Price: "64000.50", TradeTime: "1700000000000"}

	select {
	case ticker := <-subscriber:
		if ticker.Price != "64000.50" {
			t.Errorf("Expected price 64000.50, got %s", ticker.Price)
		}
		if ticker.TradeTime != "1700000000000" {
			t.Errorf("Expected trade time 1700000000000, got %s", ticker.TradeTime)
		}
	case <-time.After(time.Second):
		t.Fatal("Expected update within timeout")
	}

	if ts.GetLatest().Price != "64000.50" {
		t.Errorf("Expected latest price 64000.50, got %s", ts.GetLatest().Price)
	}
}

func TestInMemoryTradeStore_Seed(t *testing.T) {
	ts := NewInMemoryTradeStore("BTCUSDT", slog.Default())

	ts.Seed("63000.00")
	if ts.GetLatest().Price != "63000.00" {
		t.Errorf("Expected seeded price 63000.00, got %s", ts.GetLatest().Price)
	}

	// a second seed never overrides a known price
	ts.Seed("1.00")
	if ts.GetLatest().Price != "63000.00" {
		t.Errorf("Expected seeded price to be kept, got %s", ts.GetLatest().Price)
	}
}

func TestInMemoryTradeStore_Shutdown(t *testing.T) {
	ts := NewInMemoryTradeStore("BTCUSDT", slog.Default())
	ts.Start()

	subscriber := ts.Subscribe()
	<-subscriber

	ts.Shutdown()
	ts.Shutdown() // idempotent

	select {
	case <-ts.GetDoneChannel():
	default:
		t.Error("Expected done channel to be closed")
	}

	if _, ok := <-subscriber; ok {
		t.Error("Expected subscriber channel to be closed on shutdown")
	}

	// subscribing after shutdown hands back a closed channel
	if _, ok := <-ts.Subscribe(); ok {
		t.Error("Expected closed channel after shutdown")
	}

	// unsubscribing a channel closed by shutdown must not panic
	ts.Unsubscribe(subscriber)
}
