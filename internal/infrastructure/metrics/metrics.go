package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"usmbot/internal/domain/model"
)

// Metrics 交易相关的 prometheus 指标，使用独立 registry
type Metrics struct {
	registry *prometheus.Registry

	engagements *prometheus.CounterVec
	orders      *prometheus.CounterVec
	takeProfit  *prometheus.GaugeVec
	triggers    *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		engagements: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "usmbot_engagements_total",
				Help: "Trade engagements by outcome",
			},
			[]string{"outcome"},
		),
		orders: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "usmbot_orders_total",
				Help: "Orders acknowledged by the exchange",
			},
			[]string{"side"},
		),
		takeProfit: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "usmbot_last_take_profit_price",
				Help: "Limit price of the most recent take-profit sell",
			},
			[]string{"asset"},
		),
		triggers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "usmbot_triggers_total",
				Help: "Trigger phrase matches by account",
			},
			[]string{"account"},
		),
	}
	m.registry.MustRegister(m.engagements, m.orders, m.takeProfit, m.triggers)

	// 预先创建每个 outcome，避免序列缺失
	for _, o := range model.Outcomes {
		m.engagements.WithLabelValues(string(o))
	}
	m.orders.WithLabelValues("buy")
	m.orders.WithLabelValues("sell")
	return m
}

// ObserveEngagement 记录一次交易流程的结果
func (m *Metrics) ObserveEngagement(e *model.Engagement) {
	m.engagements.WithLabelValues(string(e.Outcome)).Inc()
	if e.BuyOrderID != "" {
		m.orders.WithLabelValues("buy").Inc()
	}
	if e.SellOrderID != "" {
		m.orders.WithLabelValues("sell").Inc()
		if p, err := parsePrice(e.SellPrice); err == nil {
			m.takeProfit.WithLabelValues(e.Asset).Set(p)
		}
	}
}

// ObserveTrigger 记录一次触发词命中
func (m *Metrics) ObserveTrigger(account string) {
	m.triggers.WithLabelValues(account).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve 启动 /metrics，ctx 结束时关闭
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", addr).Msg("metrics server started")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
