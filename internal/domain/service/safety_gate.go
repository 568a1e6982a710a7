package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"usmbot/internal/domain/model"
)

// DefaultLookbackWindow 足够大，等价于“交易所仍报告为未完成的任何订单”
const DefaultLookbackWindow = 1000 * time.Hour

// SafetyGate 检查账户上是否存在未完成订单，决定是否允许新的交易
type SafetyGate struct {
	gateway  ExchangeGateway
	lookback time.Duration
	now      func() time.Time
}

// NewSafetyGate 创建安全检查器，lookback <= 0 时使用默认窗口
func NewSafetyGate(gateway ExchangeGateway, lookback time.Duration) *SafetyGate {
	if lookback <= 0 {
		lookback = DefaultLookbackWindow
	}
	return &SafetyGate{
		gateway:  gateway,
		lookback: lookback,
		now:      time.Now,
	}
}

// CanProceed 依次检查 open、pending、active 订单
// 发现第一类非空即返回 false；查询失败返回 QueryError，绝不返回 true
func (g *SafetyGate) CanProceed(ctx context.Context) (bool, error) {
	before := g.now().UTC().Add(-g.lookback)

	for _, status := range model.OutstandingStatuses {
		orders, err := g.gateway.ListOrders(ctx, status, before)
		if err != nil {
			return false, NewQueryError("list "+string(status)+" orders", err)
		}
		if len(orders) > 0 {
			log.Warn().
				Str("status", string(status)).
				Int("count", len(orders)).
				Interface("orders", orders).
				Msg("outstanding orders detected")
			return false, nil
		}
		log.Info().Str("status", string(status)).Msg("no orders detected")
	}
	return true, nil
}
