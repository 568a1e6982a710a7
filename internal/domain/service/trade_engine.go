package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"usmbot/internal/domain/model"
)

// EngineConfig 交易核心的固定参数
type EngineConfig struct {
	DustThreshold    float64       // 低于该数量视为未持有
	SettleDelay      time.Duration // 买入后等待成交入账的时间
	TakeProfitMarkup float64       // 止盈加价比例（0.10 = 10%）
	LookbackWindow   time.Duration
}

// DefaultEngineConfig 返回默认参数
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		DustThreshold:    0.001,
		SettleDelay:      10 * time.Second,
		TakeProfitMarkup: 0.10,
		LookbackWindow:   DefaultLookbackWindow,
	}
}

// Sleeper blocks for d. The settle wait goes through it so tests can observe it.
type Sleeper func(ctx context.Context, d time.Duration)

// contextSleep waits for d or until ctx is done.
func contextSleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// TradeEngine 执行一次“检查 -> 买入 -> 等待 -> 止盈卖出”的流程
type TradeEngine struct {
	cfg      EngineConfig
	gateway  ExchangeGateway
	gate     *SafetyGate
	recorder Recorder
	sleep    Sleeper
	now      func() time.Time
}

// NewTradeEngine 创建交易引擎；recorder 可以为 nil
func NewTradeEngine(cfg EngineConfig, gateway ExchangeGateway, recorder Recorder) *TradeEngine {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &TradeEngine{
		cfg:      cfg,
		gateway:  gateway,
		gate:     NewSafetyGate(gateway, cfg.LookbackWindow),
		recorder: recorder,
		sleep:    contextSleep,
		now:      time.Now,
	}
}

// SetSleeper replaces the settle-delay wait.
func (e *TradeEngine) SetSleeper(s Sleeper) {
	if s != nil {
		e.sleep = s
	}
}

// Gate 返回引擎使用的安全检查器
func (e *TradeEngine) Gate() *SafetyGate { return e.gate }

func (e *TradeEngine) Config() EngineConfig { return e.cfg }

// EngageTrade 满足条件时买入一次，买入成功后挂一次止盈卖单
// 普通交易失败只记录日志，不返回错误
func (e *TradeEngine) EngageTrade(ctx context.Context, req model.TradeRequest) *model.Engagement {
	eng := &model.Engagement{
		ID:         uuid.NewString(),
		Account:    req.Account,
		Asset:      req.Asset,
		FiatAmount: req.FiatAmount,
		StartedAt:  e.now().UTC(),
	}
	logger := log.With().
		Str("engagement", eng.ID).
		Str("asset", req.Asset).
		Str("account", req.Account).
		Logger()

	e.run(ctx, req, eng, &logger)

	eng.FinishedAt = e.now().UTC()
	e.recorder.Record(context.WithoutCancel(ctx), eng)
	return eng
}

func (e *TradeEngine) run(ctx context.Context, req model.TradeRequest, eng *model.Engagement, logger *zerolog.Logger) {
	allowed, err := e.gate.CanProceed(ctx)
	if err != nil {
		e.fail(eng, logger, err, "safety check failed, ending cycle")
		return
	}

	held, err := e.gateway.GetBalance(ctx, req.Asset)
	if err != nil {
		e.fail(eng, logger, NewQueryError("balance", err), "balance query failed, ending cycle")
		return
	}
	eng.HeldQuantity = held

	if !allowed {
		eng.Outcome = model.OutcomeRestrictedOrders
		eng.Reason = "outstanding orders on account"
		logger.Warn().Float64("balance", held).Msg("buy order restricted: orders outstanding, ending cycle")
		return
	}
	if held >= e.cfg.DustThreshold {
		eng.Outcome = model.OutcomeRestrictedHolding
		eng.Reason = "asset already held"
		logger.Warn().
			Float64("balance", held).
			Float64("dust_threshold", e.cfg.DustThreshold).
			Msg("buy order restricted: already holding asset, ending cycle")
		return
	}

	buy, err := e.gateway.MarketBuy(ctx, req.Asset, req.FiatAmount)
	if err != nil {
		eng.Outcome = model.OutcomeBuyRejected
		eng.Reason = RejectionReason(err)
		logger.Error().Str("reason", eng.Reason).Msg("buy order failed, sell restricted, ending cycle")
		return
	}
	if buy != nil {
		eng.BuyOrderID = buy.ID
	}
	logger.Info().Str("order_id", eng.BuyOrderID).Float64("funds", req.FiatAmount).Msg("buy order succeeded")

	// 已经买入：即使收到退出信号也要完成止盈挂单
	sellCtx := context.WithoutCancel(ctx)
	logger.Info().Dur("settle_delay", e.cfg.SettleDelay).Msg("waiting for fill to settle before selling")
	e.sleep(sellCtx, e.cfg.SettleDelay)

	price, err := e.gateway.GetPrice(sellCtx, req.Asset)
	if err != nil {
		e.fail(eng, logger, NewQueryError("price", err), "price query failed, sell not placed")
		return
	}
	qty, err := e.gateway.GetBalance(sellCtx, req.Asset)
	if err != nil {
		e.fail(eng, logger, NewQueryError("balance", err), "balance query failed, sell not placed")
		return
	}

	plan := NewSellPlan(req.Asset, qty, price, e.cfg.TakeProfitMarkup)
	eng.MarketPrice = price
	eng.SellQuantity = plan.Quantity
	eng.SellPrice = plan.LimitPrice.StringFixed(pricePlaces)

	sell, err := e.gateway.LimitSell(sellCtx, plan.Asset, plan.Quantity, plan.LimitPrice)
	if err != nil {
		eng.Outcome = model.OutcomeSellRejected
		eng.Reason = RejectionReason(err)
		logger.Error().
			Str("reason", eng.Reason).
			Float64("quantity", plan.Quantity).
			Str("limit_price", eng.SellPrice).
			Msg("sell order failed, ending cycle")
		return
	}
	if sell != nil {
		eng.SellOrderID = sell.ID
	}
	eng.Outcome = model.OutcomeSellPlaced
	logger.Info().
		Str("order_id", eng.SellOrderID).
		Float64("quantity", plan.Quantity).
		Float64("market_price", price).
		Str("limit_price", eng.SellPrice).
		Msg("sell order succeeded")
}

func (e *TradeEngine) fail(eng *model.Engagement, logger *zerolog.Logger, err error, msg string) {
	eng.Outcome = model.OutcomeQueryFailed
	eng.Reason = err.Error()
	logger.Error().Err(err).Msg(msg)
}
