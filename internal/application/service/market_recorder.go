package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"usmbot/internal/application/port"
)

// MarketRecorder 把 ticker 推送的最新价格写入存储，仅用于观测，不参与交易决策
type MarketRecorder struct {
	feed port.PriceFeed
	repo port.Repository
}

func NewMarketRecorder(feed port.PriceFeed, repo port.Repository) *MarketRecorder {
	return &MarketRecorder{feed: feed, repo: repo}
}

// Run 阻塞直到 ctx 结束或 feed 关闭
func (r *MarketRecorder) Run(ctx context.Context, products []string) error {
	ticks, err := r.feed.Subscribe(ctx, products)
	if err != nil {
		return err
	}

	var count int64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case t, ok := <-ticks:
			if !ok {
				log.Warn().Str("feed", r.feed.Name()).Int64("ticks", count).Msg("price feed closed")
				return ctx.Err()
			}
			if t.PriceNum <= 0 {
				continue
			}
			count++
			if err := r.repo.UpsertLatestPrice(ctx, t.Exchange, t.Symbol, t.PriceNum, t.Ts); err != nil {
				log.Error().Err(err).Str("symbol", t.Symbol).Msg("upsert latest price failed")
			}
		}
	}
}
