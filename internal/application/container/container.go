package container

import (
	"errors"

	"usmbot/internal/application/service"
	"usmbot/internal/application/usecase/poller"
	domainservice "usmbot/internal/domain/service"
	infracontainer "usmbot/internal/infrastructure/container"
)

// Container 在基础设施之上组装应用服务，按需创建
type Container struct {
	infra     *infracontainer.Container
	engineCfg domainservice.EngineConfig

	journal  *service.JournalService
	engine   *domainservice.TradeEngine
	poller   *poller.Service
	recorder *service.MarketRecorder
}

func New(infra *infracontainer.Container, engineCfg domainservice.EngineConfig) *Container {
	return &Container{
		infra:     infra,
		engineCfg: engineCfg,
	}
}

func (c *Container) Infra() *infracontainer.Container {
	return c.infra
}

func (c *Container) Journal() *service.JournalService {
	if c.journal == nil {
		c.journal = service.NewJournalService(c.infra.Repository(), c.infra.Metrics())
	}
	return c.journal
}

// Engine 需要先调用 infra.InitExchange
func (c *Container) Engine() (*domainservice.TradeEngine, error) {
	if c.engine == nil {
		gw := c.infra.Gateway()
		if gw == nil {
			return nil, errors.New("exchange not initialized")
		}
		c.engine = domainservice.NewTradeEngine(c.engineCfg, gw, c.Journal())
	}
	return c.engine, nil
}

func (c *Container) Poller() (*poller.Service, error) {
	if c.poller == nil {
		engine, err := c.Engine()
		if err != nil {
			return nil, err
		}
		reader := c.infra.SocialReader()
		if reader == nil {
			return nil, errors.New("social feed not initialized")
		}
		cfg := c.infra.Config()
		c.poller = poller.NewService(poller.ServiceDeps{
			Reader:        reader,
			Engine:        engine,
			Accounts:      cfg.FollowedAccounts(),
			Asset:         cfg.Trading.Asset,
			FiatAmount:    cfg.Trading.FiatAmount,
			TriggerPhrase: cfg.Trading.TriggerPhrase,
			Observer:      c.infra.Metrics(),
		})
	}
	return c.poller, nil
}

// MarketRecorder 可选的行情记录，market_feed 未启用时返回 nil
func (c *Container) MarketRecorder() *service.MarketRecorder {
	if !c.infra.Config().MarketFeed.Enabled || c.infra.TickerFeed() == nil {
		return nil
	}
	if c.recorder == nil {
		c.recorder = service.NewMarketRecorder(c.infra.TickerFeed(), c.infra.Repository())
	}
	return c.recorder
}

func (c *Container) Close() error {
	return c.infra.Close()
}
