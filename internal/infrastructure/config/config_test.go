package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func clearCredentialEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"COINBASE_API_KEY", "COINBASE_API_SECRET", "COINBASE_API_PASSPHRASE", "TWITTER_BEARER_TOKEN"} {
		t.Setenv(k, "")
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeFile(t, "config.toml", `
[[accounts]]
handle = "Bankless"
id = "1225557966142820354"

[[accounts]]
handle = "Ryan Sean Adams"
id = "14571055"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Trading.Asset != "ETH" || cfg.Trading.Quote != "USD" {
		t.Errorf("unexpected asset/quote %s/%s", cfg.Trading.Asset, cfg.Trading.Quote)
	}
	if cfg.Trading.FiatAmount != 50 {
		t.Errorf("expected fiat amount 50, got %v", cfg.Trading.FiatAmount)
	}
	if cfg.Trading.TriggerPhrase != "ultra sound money" {
		t.Errorf("unexpected trigger phrase %q", cfg.Trading.TriggerPhrase)
	}
	if cfg.Exchange.Coinbase.RestURL != DefaultCoinbaseREST {
		t.Errorf("unexpected rest url %q", cfg.Exchange.Coinbase.RestURL)
	}
	if cfg.ProductID() != "ETH-USD" {
		t.Errorf("unexpected product %q", cfg.ProductID())
	}
	accounts := cfg.FollowedAccounts()
	if len(accounts) != 2 || accounts[1].ID != "14571055" {
		t.Errorf("unexpected accounts %+v", accounts)
	}
}

func TestLoadNormalizes(t *testing.T) {
	path := writeFile(t, "config.toml", `
[trading]
asset = " btc "
fiat_amount = 25.5

[[accounts]]
id = "1"

[[accounts]]
handle = "dup"
id = "1"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Trading.Asset != "BTC" {
		t.Errorf("expected BTC, got %q", cfg.Trading.Asset)
	}
	if len(cfg.Accounts) != 1 || cfg.Accounts[0].Handle != "1" {
		t.Errorf("expected one deduplicated account, got %+v", cfg.Accounts)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no accounts", `[trading]
asset = "ETH"`},
		{"empty account id", `[[accounts]]
handle = "x"`},
		{"negative amount", `[trading]
fiat_amount = -1
[[accounts]]
id = "1"`},
		{"redis without addr", `[storage.redis]
enabled = true
[[accounts]]
id = "1"`},
		{"bad toml", `[trading`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "config.toml", tt.content))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !IsConfigError(err) {
				t.Errorf("expected ConfigError, got %T", err)
			}
		})
	}
}

func TestLoadCredentials(t *testing.T) {
	path := writeFile(t, "credentials.json", `{
  "coinbase": {"api_key": "key", "api_secret": "c2VjcmV0", "passphrase": "pass"},
  "twitter": {"bearer_token": "token"}
}`)
	clearCredentialEnv(t)

	creds, err := LoadCredentials(path)
	if err != nil {
		t.Fatalf("LoadCredentials failed: %v", err)
	}
	if creds.Coinbase.APIKey != "key" || creds.Coinbase.Passphrase != "pass" || creds.Twitter.BearerToken != "token" {
		t.Errorf("unexpected credentials %+v", creds)
	}
}

func TestLoadCredentialsEnvOverride(t *testing.T) {
	path := writeFile(t, "credentials.json", `{
  "coinbase": {"api_key": "key", "api_secret": "c2VjcmV0", "passphrase": "pass"},
  "twitter": {"bearer_token": "token"}
}`)
	clearCredentialEnv(t)
	t.Setenv("COINBASE_API_KEY", "env-key")

	creds, err := LoadCredentials(path)
	if err != nil {
		t.Fatalf("LoadCredentials failed: %v", err)
	}
	if creds.Coinbase.APIKey != "env-key" {
		t.Errorf("expected env override, got %q", creds.Coinbase.APIKey)
	}
}

func TestLoadCredentialsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing passphrase", `{"coinbase": {"api_key": "k", "api_secret": "c2VjcmV0"}, "twitter": {"bearer_token": "t"}}`},
		{"secret not base64", `{"coinbase": {"api_key": "k", "api_secret": "%%%", "passphrase": "p"}, "twitter": {"bearer_token": "t"}}`},
		{"missing twitter", `{"coinbase": {"api_key": "k", "api_secret": "c2VjcmV0", "passphrase": "p"}}`},
		{"malformed json", `{"coinbase":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearCredentialEnv(t)
			_, err := LoadCredentials(writeFile(t, "credentials.json", tt.content))
			if !IsConfigError(err) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
		})
	}
}

func TestLoadSampleConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "..", "configs", "config.toml"))
	if err != nil {
		t.Fatalf("sample config must load: %v", err)
	}
	if cfg.ProductID() != "ETH-USD" || cfg.Trading.FiatAmount != 50 {
		t.Errorf("unexpected trading section %+v", cfg.Trading)
	}
	accounts := cfg.FollowedAccounts()
	if len(accounts) != 3 || accounts[0].ID != "1225557966142820354" {
		t.Errorf("unexpected accounts %+v", accounts)
	}
	if !cfg.Storage.SQLite.Enabled || cfg.Storage.Postgres.Enabled || cfg.Storage.Redis.Enabled {
		t.Errorf("sample config should only enable sqlite")
	}
}
