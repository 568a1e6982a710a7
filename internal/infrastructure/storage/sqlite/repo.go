package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"usmbot/internal/application/port"
	"usmbot/internal/domain/model"
)

type Repo struct {
	db *sql.DB
}

func New(path string) (*Repo, error) {
	// ensure directory exists
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		_ = os.MkdirAll(dir, 0o755)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

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
  fiat_amount REAL NOT NULL,
  outcome TEXT NOT NULL,
  reason TEXT NOT NULL DEFAULT '',
  held_quantity REAL NOT NULL DEFAULT 0,
  buy_order_id TEXT NOT NULL DEFAULT '',
  sell_order_id TEXT NOT NULL DEFAULT '',
  market_price REAL NOT NULL DEFAULT 0,
  sell_quantity REAL NOT NULL DEFAULT 0,
  sell_price TEXT NOT NULL DEFAULT '',
  started_at INTEGER NOT NULL,
  finished_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_engagements_started ON engagements(started_at);
CREATE INDEX IF NOT EXISTS idx_engagements_outcome ON engagements(outcome);

CREATE TABLE IF NOT EXISTS prices (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  exchange TEXT NOT NULL,
  symbol TEXT NOT NULL,
  price REAL NOT NULL,
  ts_ms INTEGER NOT NULL,
  created_at INTEGER NOT NULL,
  UNIQUE(exchange, symbol)
);
CREATE INDEX IF NOT EXISTS idx_prices_ts ON prices(ts_ms);
`)
	return err
}

func (r *Repo) SaveEngagement(ctx context.Context, e *model.Engagement) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO engagements(id, account, asset, fiat_amount, outcome, reason, held_quantity,
			buy_order_id, sell_order_id, market_price, sell_quantity, sell_price, started_at, finished_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		outcome=excluded.outcome, reason=excluded.reason, sell_order_id=excluded.sell_order_id,
		finished_at=excluded.finished_at
	`, e.ID, e.Account, e.Asset, e.FiatAmount, string(e.Outcome), e.Reason, e.HeldQuantity,
		e.BuyOrderID, e.SellOrderID, e.MarketPrice, e.SellQuantity, e.SellPrice,
		e.StartedAt.UnixMilli(), e.FinishedAt.UnixMilli())
	return err
}

// ListEngagements 按开始时间倒序返回 since 之后的记录，limit<=0 不限制
func (r *Repo) ListEngagements(ctx context.Context, since time.Time, limit int) ([]*model.Engagement, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, account, asset, fiat_amount, outcome, reason, held_quantity,
			buy_order_id, sell_order_id, market_price, sell_quantity, sell_price, started_at, finished_at
		FROM engagements WHERE started_at >= ? ORDER BY started_at DESC LIMIT ?
	`, since.UnixMilli(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Engagement
	for rows.Next() {
		var (
			e                 model.Engagement
			outcome           string
			started, finished int64
		)
		if err := rows.Scan(&e.ID, &e.Account, &e.Asset, &e.FiatAmount, &outcome, &e.Reason, &e.HeldQuantity,
			&e.BuyOrderID, &e.SellOrderID, &e.MarketPrice, &e.SellQuantity, &e.SellPrice, &started, &finished); err != nil {
			return nil, err
		}
		e.Outcome = model.Outcome(outcome)
		e.StartedAt = time.UnixMilli(started).UTC()
		e.FinishedAt = time.UnixMilli(finished).UTC()
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (r *Repo) UpsertLatestPrice(ctx context.Context, ex, symbol string, price float64, ts int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO prices(exchange, symbol, price, ts_ms, created_at)
		VALUES(?, ?, ?, ?, ?)
		ON CONFLICT(exchange, symbol) DO UPDATE SET
		price=excluded.price, ts_ms=excluded.ts_ms
	`, ex, symbol, price, ts, ts)
	return err
}

// LatestPrice 返回最近一次记录的价格
func (r *Repo) LatestPrice(ctx context.Context, ex, symbol string) (price float64, ts int64, err error) {
	err = r.db.QueryRowContext(ctx, `SELECT price, ts_ms FROM prices WHERE exchange=? AND symbol=?`, ex, symbol).
		Scan(&price, &ts)
	return
}

var (
	_ port.Repository       = (*Repo)(nil)
	_ port.EngagementLister = (*Repo)(nil)
)
