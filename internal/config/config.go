// Package config loads the bot configuration from YAML with environment
// overrides for secrets.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full application configuration.
type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Market   MarketConfig   `yaml:"market"`
	Store    StoreConfig    `yaml:"store"`
	Card     CardConfig     `yaml:"card"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// TelegramConfig configures the chat transport.
type TelegramConfig struct {
	BotToken        string `yaml:"bot_token"` // TELEGRAM_BOT_TOKEN overrides
	PollTimeoutSecs int    `yaml:"poll_timeout_secs"`
}

// MarketConfig configures the market data resolver.
type MarketConfig struct {
	BaseURL     string `yaml:"base_url"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// StoreConfig selects and configures the snapshot store backend.
type StoreConfig struct {
	Backend     string `yaml:"backend"` // file | postgres | memory
	FilePath    string `yaml:"file_path"`
	PostgresDSN string `yaml:"postgres_dsn"` // POSTGRES_DSN overrides
}

// CardConfig configures the renderer's assets and fonts.
type CardConfig struct {
	AssetDir     string              `yaml:"asset_dir"`
	FontPaths    []string            `yaml:"font_paths"`
	RemoteAssets map[string][]string `yaml:"remote_assets"` // tier key → fallback URLs
}

// MetricsConfig configures the Prometheus endpoint. An empty listen
// address disables it.
type MetricsConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Telegram: TelegramConfig{
			PollTimeoutSecs: 30,
		},
		Market: MarketConfig{
			BaseURL:     "https://api.dexscreener.com",
			TimeoutSecs: 10,
		},
		Store: StoreConfig{
			Backend:  "file",
			FilePath: "data/tracked.json",
		},
		Card: CardConfig{
			AssetDir: "assets/memes",
		},
	}
}

// Load reads a YAML config file over the defaults and applies env
// overrides. An empty path yields defaults plus env.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		cfg.Telegram.BotToken = token
	}
	if dsn := os.Getenv("POSTGRES_DSN"); dsn != "" {
		cfg.Store.PostgresDSN = dsn
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Store.Backend {
	case "file":
		if c.Store.FilePath == "" {
			return fmt.Errorf("store.file_path required for file backend")
		}
	case "postgres":
		if c.Store.PostgresDSN == "" {
			return fmt.Errorf("store.postgres_dsn required for postgres backend")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}

	if c.Market.BaseURL == "" {
		return fmt.Errorf("market.base_url must not be empty")
	}
	if c.Telegram.PollTimeoutSecs <= 0 {
		return fmt.Errorf("telegram.poll_timeout_secs must be positive")
	}
	return nil
}
