package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"usmbot/internal/application/port"
	"usmbot/internal/domain/model"
	domainservice "usmbot/internal/domain/service"
)

// EngagementObserver 接收交易结果用于统计
type EngagementObserver interface {
	ObserveEngagement(e *model.Engagement)
}

// JournalService 持久化每次交易流程的结果；写入失败只记录日志，不影响交易
type JournalService struct {
	repo      port.Repository
	observers []EngagementObserver
}

func NewJournalService(repo port.Repository, observers ...EngagementObserver) *JournalService {
	out := make([]EngagementObserver, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			out = append(out, o)
		}
	}
	return &JournalService{repo: repo, observers: out}
}

func (s *JournalService) Record(ctx context.Context, e *model.Engagement) {
	for _, o := range s.observers {
		o.ObserveEngagement(e)
	}

	ev := log.Info()
	if e.Outcome != model.OutcomeSellPlaced && e.Bought() {
		// 买入但没有挂出止盈单，需要人工处理
		ev = log.Warn()
	}
	ev.Str("engagement", e.ID).
		Str("account", e.Account).
		Str("outcome", string(e.Outcome)).
		Str("reason", e.Reason).
		Str("buyOrderID", e.BuyOrderID).
		Str("sellOrderID", e.SellOrderID).
		Str("sellPrice", e.SellPrice).
		Dur("elapsed", e.FinishedAt.Sub(e.StartedAt)).
		Msg("engagement finished")

	if s.repo == nil {
		return
	}
	if err := s.repo.SaveEngagement(ctx, e); err != nil {
		log.Error().Err(err).Str("engagement", e.ID).Msg("save engagement failed")
	}
}

var _ domainservice.Recorder = (*JournalService)(nil)
