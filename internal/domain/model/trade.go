package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ========== Order Models ==========

// OrderStatus 交易所订单状态，仅用于开仓前的安全检查
type OrderStatus string

const (
	OrderStatusOpen    OrderStatus = "open"
	OrderStatusPending OrderStatus = "pending"
	OrderStatusActive  OrderStatus = "active"
	OrderStatusNone    OrderStatus = "none"
)

// OutstandingStatuses 安全检查的查询顺序
var OutstandingStatuses = []OrderStatus{OrderStatusOpen, OrderStatusPending, OrderStatusActive}

// Order 交易所返回的订单
type Order struct {
	ID        string      `json:"id"`
	ProductID string      `json:"product_id"`
	Side      string      `json:"side"`
	Type      string      `json:"type"`
	Status    OrderStatus `json:"status"`
	Size      string      `json:"size,omitempty"`
	Price     string      `json:"price,omitempty"`
	Funds     string      `json:"funds,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// OrderAck 下单成功后交易所的确认
type OrderAck struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Side      string `json:"side"`
	Status    string `json:"status"`
}

// ========== Trade Models ==========

// TradeRequest 一次交易的请求：买入资产与计价金额
type TradeRequest struct {
	Account    string  `json:"account"` // 触发交易的社交账号
	Asset      string  `json:"asset"`
	FiatAmount float64 `json:"fiat_amount"`
}

// Position 当前持仓，每次决策前都从交易所重新查询
type Position struct {
	Asset    string  `json:"asset"`
	Quantity float64 `json:"quantity"`
}

// SellPlan 买入后的止盈限价单
type SellPlan struct {
	Asset      string          `json:"asset"`
	Quantity   float64         `json:"quantity"`
	LimitPrice decimal.Decimal `json:"limit_price"`
}

// ========== Engagement Models ==========

// Outcome 一次交易流程的结果
type Outcome string

const (
	OutcomeRestrictedOrders  Outcome = "restricted_orders"
	OutcomeRestrictedHolding Outcome = "restricted_holding"
	OutcomeQueryFailed       Outcome = "query_failed"
	OutcomeBuyRejected       Outcome = "buy_rejected"
	OutcomeSellRejected      Outcome = "sell_rejected"
	OutcomeSellPlaced        Outcome = "sell_placed"
)

// Outcomes lists every outcome, used to pre-create metric series.
var Outcomes = []Outcome{
	OutcomeRestrictedOrders,
	OutcomeRestrictedHolding,
	OutcomeQueryFailed,
	OutcomeBuyRejected,
	OutcomeSellRejected,
	OutcomeSellPlaced,
}

// Engagement 一次 EngageTrade 的完整记录
type Engagement struct {
	ID           string    `json:"id"`
	Account      string    `json:"account"`
	Asset        string    `json:"asset"`
	FiatAmount   float64   `json:"fiat_amount"`
	Outcome      Outcome   `json:"outcome"`
	Reason       string    `json:"reason,omitempty"`
	HeldQuantity float64   `json:"held_quantity"` // 买入前的持仓
	BuyOrderID   string    `json:"buy_order_id,omitempty"`
	SellOrderID  string    `json:"sell_order_id,omitempty"`
	MarketPrice  float64   `json:"market_price,omitempty"` // 买入后查询到的市价
	SellQuantity float64   `json:"sell_quantity,omitempty"`
	SellPrice    string    `json:"sell_price,omitempty"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
}

// Bought 是否已经成功买入
func (e *Engagement) Bought() bool {
	return e.BuyOrderID != "" || e.Outcome == OutcomeSellPlaced || e.Outcome == OutcomeSellRejected
}
