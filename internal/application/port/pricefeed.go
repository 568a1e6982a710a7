package port

import "context"

type Tick struct {
	Exchange string  // "COINBASE"
	Symbol   string  // "ETH-USD"
	PriceStr string  // raw string
	PriceNum float64 // parsed float64 (best-effort)
	Ts       int64   // unix ms
}

type PriceFeed interface {
	Name() string
	Subscribe(ctx context.Context, products []string) (<-chan Tick, error)
}
