package coinbase

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const ExchangeName = "COINBASE"

// ===== Credentials 凭证 =====

// Credentials 包含 Coinbase Pro API 凭证和签名方法
type Credentials struct {
	apiKey     string
	secret     []byte // base64 解码后的密钥
	passphrase string
}

// NewCredentials 创建凭证对象，apiSecret 必须是 base64 编码
func NewCredentials(apiKey, apiSecret, passphrase string) (*Credentials, error) {
	secret, err := base64.StdEncoding.DecodeString(strings.TrimSpace(apiSecret))
	if err != nil {
		return nil, fmt.Errorf("decode coinbase api secret: %w", err)
	}
	return &Credentials{
		apiKey:     apiKey,
		secret:     secret,
		passphrase: passphrase,
	}, nil
}

// SigningString 拼接签名原文：timestamp + method + requestPath + body
// body 可以为 nil、空、文本或任意二进制，按原始字节拼接
func SigningString(timestamp, method, requestPath string, body []byte) string {
	var sb strings.Builder
	sb.Grow(len(timestamp) + len(method) + len(requestPath) + len(body))
	sb.WriteString(timestamp)
	sb.WriteString(strings.ToUpper(method))
	sb.WriteString(requestPath)
	sb.Write(body)
	return sb.String()
}

// Sign 生成 Coinbase 签名: BASE64(HMAC-SHA256(prehash, base64decode(secret)))
func (c *Credentials) Sign(timestamp, method, requestPath string, body []byte) string {
	h := hmac.New(sha256.New, c.secret)
	h.Write([]byte(SigningString(timestamp, method, requestPath, body)))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// APIKey 返回 API Key
func (c *Credentials) APIKey() string {
	return c.apiKey
}

// Passphrase 返回 Passphrase
func (c *Credentials) Passphrase() string {
	return c.passphrase
}

// APIClient 封装访问 Coinbase REST API 所需的共享依赖
type APIClient struct {
	credentials *Credentials
	httpClient  *http.Client
	baseURL     string
	quote       string
	now         func() time.Time
}

// NewAPIClient 创建 REST 客户端；quote 为计价货币（例如 USD）
func NewAPIClient(creds *Credentials, baseURL, quote string) *APIClient {
	if quote == "" {
		quote = "USD"
	}
	return &APIClient{
		credentials: creds,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		quote:   strings.ToUpper(quote),
		now:     time.Now,
	}
}

// ProductID 资产对应的交易对，例如 ETH -> ETH-USD
func (c *APIClient) ProductID(asset string) string {
	return strings.ToUpper(asset) + "-" + c.quote
}

// ===== Manager 结构 =====

// Gateway Coinbase 统一管理器，实现交易核心需要的全部能力
type Gateway struct {
	Account *AccountClient
	Order   *OrderClient
	Market  *MarketClient
}

// NewGateway 通过一组凭证和 URL 创建统一管理器
func NewGateway(creds *Credentials, baseURL, quote string) *Gateway {
	apiClient := NewAPIClient(creds, baseURL, quote)
	return &Gateway{
		Account: NewAccountClient(apiClient),
		Order:   NewOrderClient(apiClient),
		Market:  NewMarketClient(apiClient),
	}
}
