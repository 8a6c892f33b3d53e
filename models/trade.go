package models

// Trade is the price and trade time pulled out of one trade stream message.
// Both values are kept as the exact text the exchange sent.
type Trade struct {
	Price     string `json:"price"`
	TradeTime string `json:"tradeTime"`
}
