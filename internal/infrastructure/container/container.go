package container

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"usmbot/internal/application/port"
	"usmbot/internal/infrastructure/config"
	"usmbot/internal/infrastructure/exchange/coinbase"
	"usmbot/internal/infrastructure/metrics"
	"usmbot/internal/infrastructure/social/twitter"
	"usmbot/internal/infrastructure/storage/composite"
	pgrepo "usmbot/internal/infrastructure/storage/postgres"
	redisrepo "usmbot/internal/infrastructure/storage/redis"
	sqliterepo "usmbot/internal/infrastructure/storage/sqlite"
)

// Container 包含所有基础设施依赖
type Container struct {
	cfg         *config.Config
	redisClient *redis.Client
	sqliteRepo  *sqliterepo.Repo
	pgRepo      *pgrepo.Repo
	redisRepo   *redisrepo.Repo
	repo        *composite.Repo
	metrics     *metrics.Metrics

	gateway    *coinbase.Gateway
	tickerFeed *coinbase.TickerFeed
	social     *twitter.Client

	closeOnce   sync.Once
	closerChain []func() error
}

// New 创建新的容器实例，初始化存储和指标
func New(cfg *config.Config) (*Container, error) {
	c := &Container{
		cfg:         cfg,
		closerChain: make([]func() error, 0),
		metrics:     metrics.New(),
	}

	if err := c.initStorage(); err != nil {
		// 清理已初始化的资源
		_ = c.Close()
		return nil, err
	}

	return c, nil
}

// initStorage 初始化存储层（SQLite、Postgres、Redis）
func (c *Container) initStorage() error {
	var repos []port.Repository

	// SQLite 放在第一位，history 命令从这里读
	if c.cfg.Storage.SQLite.Enabled {
		if err := c.initSQLite(); err != nil {
			return fmt.Errorf("sqlite init failed: %w", err)
		}
		repos = append(repos, c.sqliteRepo)
	}

	if c.cfg.Storage.Postgres.Enabled {
		if err := c.initPostgres(); err != nil {
			return fmt.Errorf("postgres init failed: %w", err)
		}
		repos = append(repos, c.pgRepo)
	}

	if c.cfg.Storage.Redis.Enabled {
		if err := c.initRedis(); err != nil {
			return fmt.Errorf("redis init failed: %w", err)
		}
		repos = append(repos, c.redisRepo)
	}

	// composite 不负责关闭，各存储已注册到 closerChain
	c.repo = composite.New(repos...)
	return nil
}

// initRedis 初始化 Redis 连接
func (c *Container) initRedis() error {
	rcfg := c.cfg.Storage.Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     rcfg.Addr,
		Password: rcfg.Password,
		DB:       rcfg.DB,
	})

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return fmt.Errorf("redis ping failed: %w", err)
	}

	c.redisClient = rdb
	ttl := time.Duration(rcfg.TTLSeconds) * time.Second
	c.redisRepo = redisrepo.New(rdb, rcfg.Prefix, ttl, rcfg.EventStream, rcfg.EventChannel)

	// 注册关闭回调
	c.closerChain = append(c.closerChain, func() error {
		log.Info().Msg("closing redis connection")
		return rdb.Close()
	})

	log.Info().
		Str("addr", rcfg.Addr).
		Int("db", rcfg.DB).
		Msg("redis initialized")

	return nil
}

// initSQLite 初始化 SQLite 数据库
func (c *Container) initSQLite() error {
	repo, err := sqliterepo.New(c.cfg.Storage.SQLite.Path)
	if err != nil {
		return err
	}

	c.sqliteRepo = repo

	c.closerChain = append(c.closerChain, func() error {
		log.Info().Msg("closing sqlite connection")
		return repo.Close()
	})

	log.Info().
		Str("path", c.cfg.Storage.SQLite.Path).
		Msg("sqlite initialized")

	return nil
}

// initPostgres 初始化 Postgres 连接
func (c *Container) initPostgres() error {
	repo, err := pgrepo.New(c.cfg.Storage.Postgres.DSN)
	if err != nil {
		return err
	}

	c.pgRepo = repo

	c.closerChain = append(c.closerChain, func() error {
		log.Info().Msg("closing postgres connection")
		return repo.Close()
	})

	log.Info().Msg("postgres initialized")
	return nil
}

// InitExchange 用凭证创建 Coinbase 网关、ticker feed 和 Twitter 客户端
func (c *Container) InitExchange(creds *config.Credentials) error {
	if creds == nil {
		return errors.New("credentials required")
	}
	cb, err := coinbase.NewCredentials(creds.Coinbase.APIKey, creds.Coinbase.APISecret, creds.Coinbase.Passphrase)
	if err != nil {
		return &config.ConfigError{Field: "coinbase.api_secret", Msg: err.Error()}
	}

	c.gateway = coinbase.NewGateway(cb, c.cfg.Exchange.Coinbase.RestURL, c.cfg.Trading.Quote)
	c.tickerFeed = coinbase.NewTickerFeed(c.cfg.Exchange.Coinbase.WsURL)
	c.social = twitter.NewClient(c.cfg.Social.Twitter.APIURL, creds.Twitter.BearerToken)

	log.Info().
		Str("rest", c.cfg.Exchange.Coinbase.RestURL).
		Str("product", c.cfg.ProductID()).
		Int("accounts", len(c.cfg.Accounts)).
		Msg("exchange initialized")
	return nil
}

// Config 获取配置
func (c *Container) Config() *config.Config {
	return c.cfg
}

// Repository 所有已启用存储的组合
func (c *Container) Repository() *composite.Repo {
	return c.repo
}

// SQLiteRepo 获取 SQLite 仓储
func (c *Container) SQLiteRepo() *sqliterepo.Repo {
	return c.sqliteRepo
}

// RedisClient 获取 Redis 客户端
func (c *Container) RedisClient() *redis.Client {
	return c.redisClient
}

func (c *Container) Metrics() *metrics.Metrics {
	return c.metrics
}

// Gateway InitExchange 之前为 nil
func (c *Container) Gateway() *coinbase.Gateway {
	return c.gateway
}

func (c *Container) TickerFeed() *coinbase.TickerFeed {
	return c.tickerFeed
}

func (c *Container) SocialReader() *twitter.Client {
	return c.social
}

// Close 关闭所有资源（按后进先出顺序）
func (c *Container) Close() error {
	var err error
	c.closeOnce.Do(func() {
		for i := len(c.closerChain) - 1; i >= 0; i-- {
			if e := c.closerChain[i](); e != nil {
				log.Error().Err(e).Msg("error closing resource")
				if err == nil {
					err = e
				}
			}
		}
		log.Info().Msg("container closed")
	})
	return err
}
