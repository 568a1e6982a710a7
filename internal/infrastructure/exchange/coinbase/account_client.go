package coinbase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"usmbot/internal/domain/model"
	"usmbot/internal/domain/service"
)

// AccountClient Coinbase 账户与订单查询客户端
type AccountClient struct {
	*APIClient
}

// NewAccountClient 创建账户客户端
func NewAccountClient(client *APIClient) *AccountClient {
	return &AccountClient{APIClient: client}
}

type accountResponse struct {
	ID        string `json:"id"`
	Currency  string `json:"currency"`
	Balance   string `json:"balance"`
	Available string `json:"available"`
	Hold      string `json:"hold"`
}

// GetBalance 返回资产总余额；账户中没有该资产时返回 0
func (c *AccountClient) GetBalance(ctx context.Context, asset string) (float64, error) {
	var accounts []accountResponse
	if err := c.query(ctx, "/accounts", nil, &accounts); err != nil {
		return 0, service.NewQueryError("accounts", err)
	}

	asset = strings.ToUpper(asset)
	for _, a := range accounts {
		if !strings.EqualFold(a.Currency, asset) {
			continue
		}
		balance, err := strconv.ParseFloat(strings.TrimSpace(a.Balance), 64)
		if err != nil {
			return 0, service.NewQueryError("accounts", fmt.Errorf("parse %s balance %q: %w", asset, a.Balance, err))
		}
		return balance, nil
	}
	return 0, nil
}

// ListOrders 查询指定状态、创建时间早于 before 的订单
func (c *AccountClient) ListOrders(ctx context.Context, status model.OrderStatus, before time.Time) ([]model.Order, error) {
	params := url.Values{}
	params.Set("status", string(status))
	params.Set("before", before.UTC().Format(time.RFC3339))

	var orders []model.Order
	if err := c.query(ctx, "/orders", params, &orders); err != nil {
		return nil, service.NewQueryError("orders", err)
	}
	if orders == nil {
		// null 不是合法的订单列表
		return nil, service.NewQueryError("orders", errors.New("null order list"))
	}
	return orders, nil
}
