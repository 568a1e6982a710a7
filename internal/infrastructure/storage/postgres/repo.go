package postgres

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"usmbot/internal/application/port"
	"usmbot/internal/domain/model"
)

type Repo struct {
	db *sql.DB
}

func New(dsn string) (*Repo, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	r := &Repo{db: db}
	if err := r.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repo) Close() error { return r.db.Close() }

func (r *Repo) migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS engagements (
  id TEXT PRIMARY KEY,
  account TEXT NOT NULL,
  asset TEXT NOT NULL,
  fiat_amount DOUBLE PRECISION NOT NULL,
  outcome TEXT NOT NULL,
  reason TEXT NOT NULL DEFAULT '',
  held_quantity DOUBLE PRECISION NOT NULL DEFAULT 0,
  buy_order_id TEXT NOT NULL DEFAULT '',
  sell_order_id TEXT NOT NULL DEFAULT '',
  market_price DOUBLE PRECISION NOT NULL DEFAULT 0,
  sell_quantity DOUBLE PRECISION NOT NULL DEFAULT 0,
  sell_price TEXT NOT NULL DEFAULT '',
  started_at TIMESTAMPTZ NOT NULL,
  finished_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_engagements_started ON engagements(started_at);

CREATE TABLE IF NOT EXISTS latest_prices (
  exchange TEXT NOT NULL,
  symbol TEXT NOT NULL,
  price DOUBLE PRECISION NOT NULL,
  ts_ms BIGINT NOT NULL,
  PRIMARY KEY (exchange, symbol)
);
`)
	return err
}

func (r *Repo) SaveEngagement(ctx context.Context, e *model.Engagement) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO engagements(id, account, asset, fiat_amount, outcome, reason, held_quantity,
			buy_order_id, sell_order_id, market_price, sell_quantity, sell_price, started_at, finished_at)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT(id) DO UPDATE SET
		outcome=EXCLUDED.outcome, reason=EXCLUDED.reason, sell_order_id=EXCLUDED.sell_order_id,
		finished_at=EXCLUDED.finished_at
	`, e.ID, e.Account, e.Asset, e.FiatAmount, string(e.Outcome), e.Reason, e.HeldQuantity,
		e.BuyOrderID, e.SellOrderID, e.MarketPrice, e.SellQuantity, e.SellPrice,
		e.StartedAt.UTC(), e.FinishedAt.UTC())
	return err
}

func (r *Repo) ListEngagements(ctx context.Context, since time.Time, limit int) ([]*model.Engagement, error) {
	var limitArg any
	if limit > 0 {
		limitArg = limit
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, account, asset, fiat_amount, outcome, reason, held_quantity,
			buy_order_id, sell_order_id, market_price, sell_quantity, sell_price, started_at, finished_at
		FROM engagements WHERE started_at >= $1 ORDER BY started_at DESC LIMIT $2
	`, since.UTC(), limitArg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Engagement
	for rows.Next() {
		var (
			e       model.Engagement
			outcome string
		)
		if err := rows.Scan(&e.ID, &e.Account, &e.Asset, &e.FiatAmount, &outcome, &e.Reason, &e.HeldQuantity,
			&e.BuyOrderID, &e.SellOrderID, &e.MarketPrice, &e.SellQuantity, &e.SellPrice, &e.StartedAt, &e.FinishedAt); err != nil {
			return nil, err
		}
		e.Outcome = model.Outcome(outcome)
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (r *Repo) UpsertLatestPrice(ctx context.Context, ex, symbol string, price float64, ts int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO latest_prices(exchange, symbol, price, ts_ms) VALUES($1, $2, $3, $4)
		ON CONFLICT(exchange, symbol) DO UPDATE SET price=EXCLUDED.price, ts_ms=EXCLUDED.ts_ms
	`, ex, symbol, price, ts)
	return err
}

var (
	_ port.Repository       = (*Repo)(nil)
	_ port.EngagementLister = (*Repo)(nil)
)
