package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"usmbot/internal/application/port"
)

const (
	DefaultTriggerPhrase = "ultra sound money"
	DefaultAsset         = "ETH"
	DefaultQuote         = "USD"
	DefaultFiatAmount    = 50.00
	DefaultCoinbaseREST  = "https://api.pro.coinbase.com"
	DefaultCoinbaseWS    = "wss://ws-feed.pro.coinbase.com"
	DefaultTwitterAPI    = "https://api.twitter.com"
)

type Config struct {
	App struct {
		LogLevel string `toml:"log_level"`
	} `toml:"app"`

	Trading struct {
		Asset         string  `toml:"asset"`
		Quote         string  `toml:"quote"`
		FiatAmount    float64 `toml:"fiat_amount"`
		TriggerPhrase string  `toml:"trigger_phrase"`
	} `toml:"trading"`

	Accounts []AccountConfig `toml:"accounts"`

	Exchange struct {
		Coinbase struct {
			RestURL string `toml:"rest_url"`
			WsURL   string `toml:"ws_url"`
		} `toml:"coinbase"`
	} `toml:"exchange"`

	Social struct {
		Twitter struct {
			APIURL string `toml:"api_url"`
		} `toml:"twitter"`
	} `toml:"social"`

	Storage struct {
		SQLite struct {
			Enabled bool   `toml:"enabled"`
			Path    string `toml:"path"`
		} `toml:"sqlite"`

		Postgres struct {
			Enabled bool   `toml:"enabled"`
			DSN     string `toml:"dsn"`
		} `toml:"postgres"`

		Redis struct {
			Enabled      bool   `toml:"enabled"`
			Addr         string `toml:"addr"`
			Password     string `toml:"password"`
			DB           int    `toml:"db"`
			Prefix       string `toml:"prefix"`
			TTLSeconds   int    `toml:"ttl_seconds"`
			EventStream  string `toml:"event_stream"`
			EventChannel string `toml:"event_channel"`
		} `toml:"redis"`
	} `toml:"storage"`

	Metrics struct {
		Enabled bool   `toml:"enabled"`
		Addr    string `toml:"addr"`
	} `toml:"metrics"`

	MarketFeed struct {
		Enabled bool `toml:"enabled"`
	} `toml:"market_feed"`
}

type AccountConfig struct {
	Handle string `toml:"handle"`
	ID     string `toml:"id"`
}

// ConfigError 配置或凭证缺失/格式错误，只在启动时出现且是致命的
type ConfigError struct {
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Field, e.Msg)
}

// IsConfigError reports whether err carries a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, &ConfigError{Field: path, Msg: err.Error()}
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ProductID 返回交易对，例如 ETH-USD
func (c *Config) ProductID() string {
	return c.Trading.Asset + "-" + c.Trading.Quote
}

// FollowedAccounts 转换为应用层的账号列表
func (c *Config) FollowedAccounts() []port.Account {
	out := make([]port.Account, 0, len(c.Accounts))
	for _, a := range c.Accounts {
		out = append(out, port.Account{Handle: a.Handle, ID: a.ID})
	}
	return out
}

func applyDefaults(cfg *Config) {
	if cfg.App.LogLevel == "" {
		cfg.App.LogLevel = "info"
	}
	if strings.TrimSpace(cfg.Trading.Asset) == "" {
		cfg.Trading.Asset = DefaultAsset
	}
	if strings.TrimSpace(cfg.Trading.Quote) == "" {
		cfg.Trading.Quote = DefaultQuote
	}
	if cfg.Trading.FiatAmount == 0 {
		cfg.Trading.FiatAmount = DefaultFiatAmount
	}
	if strings.TrimSpace(cfg.Trading.TriggerPhrase) == "" {
		cfg.Trading.TriggerPhrase = DefaultTriggerPhrase
	}
	if cfg.Exchange.Coinbase.RestURL == "" {
		cfg.Exchange.Coinbase.RestURL = DefaultCoinbaseREST
	}
	if cfg.Exchange.Coinbase.WsURL == "" {
		cfg.Exchange.Coinbase.WsURL = DefaultCoinbaseWS
	}
	if cfg.Social.Twitter.APIURL == "" {
		cfg.Social.Twitter.APIURL = DefaultTwitterAPI
	}
	if cfg.Storage.SQLite.Path == "" {
		cfg.Storage.SQLite.Path = "data/usmbot.db"
	}
	if cfg.Storage.Redis.Prefix == "" {
		cfg.Storage.Redis.Prefix = "usmbot"
	}
	if cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = ":9108"
	}
}

func validate(cfg *Config) error {
	cfg.Trading.Asset = strings.ToUpper(strings.TrimSpace(cfg.Trading.Asset))
	cfg.Trading.Quote = strings.ToUpper(strings.TrimSpace(cfg.Trading.Quote))

	if cfg.Trading.FiatAmount <= 0 {
		return &ConfigError{Field: "trading.fiat_amount", Msg: "must be positive"}
	}

	accounts, err := normalizeAccounts(cfg.Accounts)
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		return &ConfigError{Field: "accounts", Msg: "no accounts configured"}
	}
	cfg.Accounts = accounts

	if cfg.Storage.Postgres.Enabled && strings.TrimSpace(cfg.Storage.Postgres.DSN) == "" {
		return &ConfigError{Field: "storage.postgres.dsn", Msg: "empty but postgres enabled"}
	}
	if cfg.Storage.Redis.Enabled && strings.TrimSpace(cfg.Storage.Redis.Addr) == "" {
		return &ConfigError{Field: "storage.redis.addr", Msg: "empty but redis enabled"}
	}
	return nil
}

func normalizeAccounts(in []AccountConfig) ([]AccountConfig, error) {
	out := make([]AccountConfig, 0, len(in))
	seen := map[string]struct{}{}
	for i, a := range in {
		a.Handle = strings.TrimSpace(a.Handle)
		a.ID = strings.TrimSpace(a.ID)
		if a.ID == "" {
			return nil, &ConfigError{Field: fmt.Sprintf("accounts[%d].id", i), Msg: "empty"}
		}
		if a.Handle == "" {
			a.Handle = a.ID
		}
		if _, ok := seen[a.ID]; ok {
			continue
		}
		seen[a.ID] = struct{}{}
		out = append(out, a)
	}
	return out, nil
}
