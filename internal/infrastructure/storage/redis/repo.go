package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"usmbot/internal/application/port"
	"usmbot/internal/domain/model"

	"github.com/redis/go-redis/v9"
)

// Repo 把最新价格写入 hash，把交易记录写入 stream 并广播
type Repo struct {
	rdb         *redis.Client
	prefix      string
	ttl         time.Duration
	keyLatest   string // prefix + ":latest"
	eventStream string
	eventChan   string
}

type LatestPrice struct {
	Exchange string  `json:"exchange"`
	Symbol   string  `json:"symbol"`
	Price    float64 `json:"price"`
	Ts       int64   `json:"ts"`
}

func New(rdb *redis.Client, prefix string, ttl time.Duration, eventStream, eventChan string) *Repo {
	if strings.TrimSpace(eventStream) == "" {
		eventStream = prefix + ":engagements"
	}
	if strings.TrimSpace(eventChan) == "" {
		eventChan = prefix + ":engagements:pub"
	}
	return &Repo{
		rdb:         rdb,
		prefix:      prefix,
		ttl:         ttl,
		keyLatest:   prefix + ":latest",
		eventStream: eventStream,
		eventChan:   eventChan,
	}
}

func (r *Repo) UpsertLatestPrice(ctx context.Context, ex, symbol string, price float64, ts int64) error {
	if price <= 0 {
		return nil
	}
	lp := LatestPrice{Exchange: ex, Symbol: symbol, Price: price, Ts: ts}
	b, _ := json.Marshal(lp)

	// Hash: field = "COINBASE:ETH-USD" -> json
	field := fmt.Sprintf("%s:%s", ex, symbol)
	pipe := r.rdb.Pipeline()
	pipe.HSet(ctx, r.keyLatest, field, string(b))
	if r.ttl > 0 {
		pipe.Expire(ctx, r.keyLatest, r.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (r *Repo) SaveEngagement(ctx context.Context, e *model.Engagement) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}

	// 1) Stream: XADD <stream> * id account outcome payload
	_, err = r.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: r.eventStream,
		Values: map[string]any{
			"id":      e.ID,
			"account": e.Account,
			"outcome": string(e.Outcome),
			"ts_ms":   e.FinishedAt.UnixMilli(),
			"payload": string(payload),
		},
	}).Result()
	if err != nil {
		return err
	}

	// 2) PubSub: PUBLISH <channel> json
	return r.rdb.Publish(ctx, r.eventChan, payload).Err()
}

func (r *Repo) Close() error { return r.rdb.Close() }

var _ port.Repository = (*Repo)(nil)
