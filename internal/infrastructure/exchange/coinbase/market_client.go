package coinbase

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"usmbot/internal/domain/service"
)

// MarketClient Coinbase 行情查询客户端
type MarketClient struct {
	*APIClient
}

// NewMarketClient 创建行情客户端
func NewMarketClient(client *APIClient) *MarketClient {
	return &MarketClient{APIClient: client}
}

type tickerResponse struct {
	TradeID int64  `json:"trade_id"`
	Price   string `json:"price"`
	Size    string `json:"size"`
	Bid     string `json:"bid"`
	Ask     string `json:"ask"`
	Volume  string `json:"volume"`
	Time    string `json:"time"`
}

// GetPrice 返回最新成交价
func (c *MarketClient) GetPrice(ctx context.Context, asset string) (float64, error) {
	product := c.ProductID(asset)

	var ticker tickerResponse
	if err := c.query(ctx, "/products/"+url.PathEscape(product)+"/ticker", nil, &ticker); err != nil {
		return 0, service.NewQueryError("ticker", err)
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(ticker.Price), 64)
	if err != nil {
		return 0, service.NewQueryError("ticker", fmt.Errorf("parse %s price %q: %w", product, ticker.Price, err))
	}
	if price <= 0 {
		return 0, service.NewQueryError("ticker", fmt.Errorf("non-positive %s price %v", product, price))
	}
	return price, nil
}
