package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_ValidFile(t *testing.T) {
	configContent := `
binance:
  api_url: "https://api.binance.us"
  websocket_url: "wss://stream.binance.us:9443/ws"
  symbol: "ETHUSDT"
  handshake_timeout: 5s
http:
  addr: ":9090"
logging:
  level: "debug"
`
	config, err := loadTempConfig(configContent, t)
	if err != nil {
		t.Fatalf("error loading config: %v", err)
		return
	}

	// Verify values
	if config.Binance.ApiUrl != "https://api.binance.us" {
		t.Errorf("Expected ApiUrl 'https://api.binance.us', got '%s'", config.Binance.ApiUrl)
	}

	if config.Binance.WebsocketUrl != "wss://stream.binance.us:9443/ws" {
		t.Errorf("Expected WebsocketUrl 'wss://stream.binance.us:9443/ws', got '%s'", config.Binance.WebsocketUrl)
	}

	if config.Binance.HandshakeTimeout != 5*time.Second {
		t.Errorf("Expected HandshakeTimeout 5s, got %s", config.Binance.HandshakeTimeout)
	}

	if config.Http.Addr != ":9090" {
		t.Errorf("Expected Http.Addr ':9090', got '%s'", config.Http.Addr)
	}

	if config.StreamURL() != "wss://stream.binance.us:9443/ws/ethusdt@trade" {
		t.Errorf("Unexpected stream url '%s'", config.StreamURL())
	}

	if config.TickerSymbol() != "ETHUSDT" {
		t.Errorf("Expected ticker symbol 'ETHUSDT', got '%s'", config.TickerSymbol())
	}
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	configContent := `
binance:
  symbol: "solusdt"
`
	config, err := loadTempConfig(configContent, t)
	if err != nil {
		t.Fatalf("error loading config: %v", err)
	}

	if config.Binance.WebsocketUrl != DefaultWebsocketUrl {
		t.Errorf("Expected default WebsocketUrl, got '%s'", config.Binance.WebsocketUrl)
	}

	if config.Binance.HandshakeTimeout != DefaultHandshakeTimeout {
		t.Errorf("Expected default HandshakeTimeout, got %s", config.Binance.HandshakeTimeout)
	}

	if config.StreamURL() != "wss://stream.binance.com:9443/ws/solusdt@trade" {
		t.Errorf("Unexpected stream url '%s'", config.StreamURL())
	}
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	configContent := `
binance:
  api_url: "https://api.binance.us"
  websocket_url: [invalid
`

	_, err := loadTempConfig(configContent, t)

	if err == nil {
		t.Error("Expected error for invalid YAML, got nil")
	}
}

func TestLoadConfig_Validation(t *testing.T) {
	tests := []struct {
		name          string
		configContent string
	}{
		{
			name: "empty websocket url",
			configContent: `
binance:
  websocket_url: ""
`,
		},
		{
			name: "empty symbol",
			configContent: `
binance:
  symbol: ""
`,
		},
		{
			name: "unknown log level",
			configContent: `
logging:
  level: "verbose"
`,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := loadTempConfig(test.configContent, t)
			if err == nil {
				t.Error("Expected validation error, got nil")
			}
		})
	}
}

func TestLoadConfig_NotFound(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("Expected ErrConfigNotFound, got %v", err)
	}
}

func TestLoadConfigOrDefault(t *testing.T) {
	config, err := LoadConfigOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Expected defaults, got error %v", err)
	}

	if config.StreamURL() != "wss://stream.binance.com:9443/ws/btcusdt@trade" {
		t.Errorf("Unexpected default stream url '%s'", config.StreamURL())
	}

	if !config.HttpEnabled() {
		t.Error("Expected http to be enabled by default")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"", slog.LevelInfo},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, test := range tests {
		t.Run(test.level, func(t *testing.T) {
			level, err := ParseLevel(test.level)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if level != test.expected {
				t.Errorf("Expected %v, got %v", test.expected, level)
			}
		})
	}
}

func loadTempConfig(configContent string, t *testing.T) (*Config, error) {
	tmpFile, err := os.CreateTemp("", "test_config_*.yaml")
	if err != nil {
		t.Fatal("Failed to create temp file:", err)
		return nil, err
	}
	defer os.Remove(tmpFile.Name())

	// Write config content
	if _, err := tmpFile.WriteString(configContent); err != nil {
		return nil, err
	}
	tmpFile.Close()

	// Test loading
	config, err := LoadConfig(tmpFile.Name())
	if err != nil {
		return nil, err
	}

	return config, nil
}
