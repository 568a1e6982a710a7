package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"usmbot/internal/domain/model"
)

// ExchangeGateway 交易核心所需的交易所能力
type ExchangeGateway interface {
	// ListOrders 查询指定状态、创建时间早于 before 的订单
	ListOrders(ctx context.Context, status model.OrderStatus, before time.Time) ([]model.Order, error)

	// GetBalance 返回资产持有数量，没有该资产时返回 0
	GetBalance(ctx context.Context, asset string) (float64, error)

	// GetPrice 返回资产的计价货币价格
	GetPrice(ctx context.Context, asset string) (float64, error)

	// MarketBuy 用 fiatAmount 计价货币市价买入；被拒绝时返回 *RejectedOrder
	MarketBuy(ctx context.Context, asset string, fiatAmount float64) (*model.OrderAck, error)

	// LimitSell 以 limitPrice 挂出 quantity 的限价卖单；被拒绝时返回 *RejectedOrder
	LimitSell(ctx context.Context, asset string, quantity float64, limitPrice decimal.Decimal) (*model.OrderAck, error)
}

// Recorder receives every finished engagement.
type Recorder interface {
	Record(ctx context.Context, e *model.Engagement)
}

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, *model.Engagement) {}
