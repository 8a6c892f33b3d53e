package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/segmentio/encoding/json"

	"trade-listener/config"
)

// TickerPrice is the /api/v3/ticker/price response for one symbol
type TickerPrice struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

type BinanceClient struct {
	httpClient *http.Client
	baseURL    string
}

type PriceClient interface {
	GetLiveTickerPrice(ctx context.Context, symbol string) (*TickerPrice, error)
}

func NewBinanceClient(config *config.Config) PriceClient {
	return &BinanceClient{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: config.Binance.ApiUrl,
	}
}

// GetLiveTickerPrice retrieves the latest price for a single symbol
func (c *BinanceClient) GetLiveTickerPrice(ctx context.Context, symbol string) (*TickerPrice, error) {
	endpoint := fmt.Sprintf("%s/api/v3/ticker/price?symbol=%s", c.baseURL, url.QueryEscape(symbol))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var ticker TickerPrice
	if err := json.NewDecoder(resp.Body).Decode(&ticker); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &ticker, nil
}
