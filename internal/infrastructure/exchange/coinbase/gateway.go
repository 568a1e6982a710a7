package coinbase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"usmbot/internal/domain/model"
	"usmbot/internal/domain/service"
)

func (g *Gateway) ListOrders(ctx context.Context, status model.OrderStatus, before time.Time) ([]model.Order, error) {
	return g.Account.ListOrders(ctx, status, before)
}

func (g *Gateway) GetBalance(ctx context.Context, asset string) (float64, error) {
	return g.Account.GetBalance(ctx, asset)
}

func (g *Gateway) GetPrice(ctx context.Context, asset string) (float64, error) {
	return g.Market.GetPrice(ctx, asset)
}

func (g *Gateway) MarketBuy(ctx context.Context, asset string, fiatAmount float64) (*model.OrderAck, error) {
	return g.Order.MarketBuy(ctx, asset, fiatAmount)
}

func (g *Gateway) LimitSell(ctx context.Context, asset string, quantity float64, limitPrice decimal.Decimal) (*model.OrderAck, error) {
	return g.Order.LimitSell(ctx, asset, quantity, limitPrice)
}

var _ service.ExchangeGateway = (*Gateway)(nil)
