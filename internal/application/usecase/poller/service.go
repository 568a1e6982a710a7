package poller

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"usmbot/internal/application/port"
	"usmbot/internal/domain/model"
	"usmbot/internal/domain/service"
)

const DefaultInterval = 10 * time.Second

// Engine 执行一次交易流程
type Engine interface {
	EngageTrade(ctx context.Context, req model.TradeRequest) *model.Engagement
}

// TriggerObserver 触发词命中时回调（可选）
type TriggerObserver interface {
	ObserveTrigger(account string)
}

type ServiceDeps struct {
	Reader        port.SocialFeedReader
	Engine        Engine
	Accounts      []port.Account
	Asset         string
	FiatAmount    float64
	TriggerPhrase string
	Interval      time.Duration
	Observer      TriggerObserver
}

type Service struct {
	deps  ServiceDeps
	cycle int64
	sleep func(ctx context.Context, d time.Duration) bool
}

func NewService(deps ServiceDeps) *Service {
	if deps.Interval <= 0 {
		deps.Interval = DefaultInterval
	}
	return &Service{deps: deps, sleep: sleepCtx}
}

// Run 顺序轮询所有账号，直到 ctx 结束
func (s *Service) Run(ctx context.Context) error {
	if s.deps.Reader == nil || s.deps.Engine == nil {
		return errors.New("poller: reader and engine are required")
	}
	if len(s.deps.Accounts) == 0 {
		return errors.New("poller: no accounts")
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.RunCycle(ctx)
		if !s.sleep(ctx, s.deps.Interval) {
			return ctx.Err()
		}
	}
}

// RunCycle 轮询一轮，返回本轮触发的交易
func (s *Service) RunCycle(ctx context.Context) []*model.Engagement {
	s.cycle++
	log.Info().
		Int64("cycle", s.cycle).
		Msgf("transacting on %s @ %.2f when %q is heard", s.deps.Asset, s.deps.FiatAmount, s.deps.TriggerPhrase)

	var out []*model.Engagement
	for _, acc := range s.deps.Accounts {
		if ctx.Err() != nil {
			break
		}
		text, err := s.deps.Reader.LatestPostText(ctx, acc)
		if err != nil {
			log.Error().Err(err).Str("account", acc.Handle).Msg("read feed failed, skipping")
			continue
		}
		if !service.ContainsTrigger(text, s.deps.TriggerPhrase) {
			log.Debug().Str("account", acc.Handle).Msg("no trigger")
			continue
		}

		log.Info().Str("account", acc.Handle).Str("text", text).Msg("trigger phrase heard")
		if s.deps.Observer != nil {
			s.deps.Observer.ObserveTrigger(acc.Handle)
		}
		e := s.deps.Engine.EngageTrade(ctx, model.TradeRequest{
			Account:    acc.Handle,
			Asset:      s.deps.Asset,
			FiatAmount: s.deps.FiatAmount,
		})
		out = append(out, e)
	}
	return out
}

// sleepCtx 返回 false 表示 ctx 已结束
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
