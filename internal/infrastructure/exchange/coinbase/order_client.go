package coinbase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"usmbot/internal/domain/model"
	"usmbot/internal/domain/service"
)

// OrderClient Coinbase 下单客户端
type OrderClient struct {
	*APIClient
}

// NewOrderClient 创建订单客户端
func NewOrderClient(client *APIClient) *OrderClient {
	return &OrderClient{APIClient: client}
}

// orderRequest POST /orders 请求体
type orderRequest struct {
	ClientOID string `json:"client_oid"`
	Type      string `json:"type"`
	Side      string `json:"side"`
	ProductID string `json:"product_id"`
	Funds     string `json:"funds,omitempty"`
	Size      string `json:"size,omitempty"`
	Price     string `json:"price,omitempty"`
}

// MarketBuy 用 fiatAmount 计价货币市价买入
func (c *OrderClient) MarketBuy(ctx context.Context, asset string, fiatAmount float64) (*model.OrderAck, error) {
	return c.placeOrder(ctx, orderRequest{
		ClientOID: uuid.NewString(),
		Type:      "market",
		Side:      "buy",
		ProductID: c.ProductID(asset),
		Funds:     decimal.NewFromFloat(fiatAmount).StringFixed(2),
	})
}

// LimitSell 挂出限价卖单
func (c *OrderClient) LimitSell(ctx context.Context, asset string, quantity float64, limitPrice decimal.Decimal) (*model.OrderAck, error) {
	return c.placeOrder(ctx, orderRequest{
		ClientOID: uuid.NewString(),
		Type:      "limit",
		Side:      "sell",
		ProductID: c.ProductID(asset),
		Size:      strconv.FormatFloat(quantity, 'f', -1, 64),
		Price:     limitPrice.StringFixed(2),
	})
}

// placeOrder 下单；响应带 message 或非 2xx 视为交易所拒绝
func (c *OrderClient) placeOrder(ctx context.Context, req orderRequest) (*model.OrderAck, error) {
	resp, err := c.signedJSONRequest(ctx, http.MethodPost, "/orders", req)
	if err != nil {
		return nil, fmt.Errorf("place %s order failed: %w", req.Side, err)
	}

	if msg := resp.message(); msg != "" {
		return nil, &service.RejectedOrder{Side: req.Side, Reason: msg}
	}
	if !resp.ok() {
		return nil, &service.RejectedOrder{Side: req.Side, Reason: fmt.Sprintf("http %d: %s", resp.status, string(resp.body))}
	}

	var ack model.OrderAck
	if err := json.Unmarshal(resp.body, &ack); err != nil {
		return nil, fmt.Errorf("parse order response failed: %w", err)
	}

	log.Info().
		Str("exchange", ExchangeName).
		Str("product", req.ProductID).
		Str("side", req.Side).
		Str("type", req.Type).
		Str("funds", req.Funds).
		Str("size", req.Size).
		Str("price", req.Price).
		Str("orderID", ack.ID).
		Str("status", ack.Status).
		Msg("order placed")

	return &ack, nil
}
