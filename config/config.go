package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultApiUrl           = "https://api.binance.com"
	DefaultWebsocketUrl     = "wss://stream.binance.com:9443/ws"
	DefaultSymbol           = "btcusdt"
	DefaultHandshakeTimeout = 40 * time.Second
	DefaultHttpAddr         = ":8080"
	DefaultLogLevel         = "info"
)

var ErrConfigNotFound = errors.New("config file not found")

type Config struct {
	Binance BinanceConfig `yaml:"binance"`
	Http    HttpConfig    `yaml:"http"`
	Logging LoggingConfig `yaml:"logging"`
}

type BinanceConfig struct {
	ApiUrl           string        `yaml:"api_url"`
	WebsocketUrl     string        `yaml:"websocket_url"`
	Symbol           string        `yaml:"symbol"`
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
}

type HttpConfig struct {
	// Addr is the listen address, an empty value disables the HTTP server.
	Addr string `yaml:"addr"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no config file is present. It
// streams btcusdt trades from the public Binance endpoint.
func Default() *Config {
	return &Config{
		Binance: BinanceConfig{
			ApiUrl:           DefaultApiUrl,
			WebsocketUrl:     DefaultWebsocketUrl,
			Symbol:           DefaultSymbol,
			HandshakeTimeout: DefaultHandshakeTimeout,
		},
		Http: HttpConfig{
			Addr: DefaultHttpAddr,
		},
		Logging: LoggingConfig{
			Level: DefaultLogLevel,
		},
	}
}

func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
	}

	// Read file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// Parse YAML on top of the defaults so omitted keys keep their default
	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadConfigOrDefault loads configPath, falling back to Default when the file
// does not exist. Any other failure is returned.
func LoadConfigOrDefault(configPath string) (*Config, error) {
	config, err := LoadConfig(configPath)
	if errors.Is(err, ErrConfigNotFound) {
		return Default(), nil
	}
	return config, err
}

func (c *Config) Validate() error {
	if c.Binance.WebsocketUrl == "" {
		return fmt.Errorf("binance.websocket_url must be set")
	}
	if c.Binance.Symbol == "" {
		return fmt.Errorf("binance.symbol must be set")
	}
	if c.Binance.HandshakeTimeout < 0 {
		return fmt.Errorf("binance.handshake_timeout must not be negative")
	}
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	return nil
}

// StreamURL is the trade stream endpoint for the configured symbol, e.g.
// wss://stream.binance.com:9443/ws/btcusdt@trade.
func (c *Config) StreamURL() string {
	base := strings.TrimSuffix(c.Binance.WebsocketUrl, "/")
	return fmt.Sprintf("%s/%s@trade", base, strings.ToLower(c.Binance.Symbol))
}

// TickerSymbol is the symbol in the upper case form the REST api expects.
func (c *Config) TickerSymbol() string {
	return strings.ToUpper(c.Binance.Symbol)
}

func (c *Config) HttpEnabled() bool {
	return c.Http.Addr != ""
}

func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown logging.level %q", level)
	}
}
