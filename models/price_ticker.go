package models

import (
	"time"
)

// PriceTicker represents the latest observed trade price for a symbol
type PriceTicker struct {
	Symbol             string    `json:"symbol"`
	Price              string    `json:"price"`
	TradeTime          string    `json:"tradeTime,omitempty"`
	LastUpdatedTimeUtc time.Time `json:"lastUpdatedTimeUtc"`
}

// NewPriceTicker creates a new PriceTicker with the current UTC time
func NewPriceTicker(symbol, price string) PriceTicker {
	return PriceTicker{
		Symbol:             symbol,
		Price:              price,
		LastUpdatedTimeUtc: time.Now().UTC(),
	}
}

// ApplyTrade updates the Price, trade time and timestamp
func (pt *PriceTicker) ApplyTrade(trade Trade) {
	pt.Price = trade.Price
	pt.TradeTime = trade.TradeTime
	pt.LastUpdatedTimeUtc = time.Now().UTC()
}

// IsEmpty reports whether no price has been observed yet
func (pt PriceTicker) IsEmpty() bool {
	return pt.Price == ""
}
