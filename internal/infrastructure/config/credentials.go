package config

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Credentials 启动时加载一次，之后只读
type Credentials struct {
	Coinbase struct {
		APIKey     string `json:"api_key"`
		APISecret  string `json:"api_secret"`
		Passphrase string `json:"passphrase"`
	} `json:"coinbase"`

	Twitter struct {
		BearerToken    string `json:"bearer_token"`
		ConsumerKey    string `json:"consumer_key"`
		ConsumerSecret string `json:"consumer_secret"`
		AccessKey      string `json:"access_key"`
		AccessSecret   string `json:"access_secret"`
	} `json:"twitter"`
}

// LoadCredentials 读取 JSON 凭证文件，再用 .env / 环境变量覆盖
// path 为空时只使用环境变量
func LoadCredentials(path string) (*Credentials, error) {
	var creds Credentials
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, &ConfigError{Field: "credentials", Msg: err.Error()}
		}
		if err := json.Unmarshal(b, &creds); err != nil {
			return nil, &ConfigError{Field: "credentials", Msg: "decode " + path + ": " + err.Error()}
		}
	}

	_ = godotenv.Load()
	creds.loadFromEnv()

	if err := creds.validate(); err != nil {
		return nil, err
	}
	return &creds, nil
}

func (c *Credentials) loadFromEnv() {
	if val := os.Getenv("COINBASE_API_KEY"); val != "" {
		c.Coinbase.APIKey = val
	}
	if val := os.Getenv("COINBASE_API_SECRET"); val != "" {
		c.Coinbase.APISecret = val
	}
	if val := os.Getenv("COINBASE_API_PASSPHRASE"); val != "" {
		c.Coinbase.Passphrase = val
	}
	if val := os.Getenv("TWITTER_BEARER_TOKEN"); val != "" {
		c.Twitter.BearerToken = val
	}
}

func (c *Credentials) validate() error {
	if strings.TrimSpace(c.Coinbase.APIKey) == "" {
		return &ConfigError{Field: "coinbase.api_key", Msg: "missing"}
	}
	if strings.TrimSpace(c.Coinbase.APISecret) == "" {
		return &ConfigError{Field: "coinbase.api_secret", Msg: "missing"}
	}
	if _, err := base64.StdEncoding.DecodeString(c.Coinbase.APISecret); err != nil {
		return &ConfigError{Field: "coinbase.api_secret", Msg: "not valid base64"}
	}
	if strings.TrimSpace(c.Coinbase.Passphrase) == "" {
		return &ConfigError{Field: "coinbase.passphrase", Msg: "missing"}
	}
	if strings.TrimSpace(c.Twitter.BearerToken) == "" {
		return &ConfigError{Field: "twitter.bearer_token", Msg: "missing"}
	}
	return nil
}
