package service

import (
	"github.com/prometheus/client_golang/prometheus"

	"safeloop_bot/internal/models"
)

// Metrics — прометеевские счётчики/гейджи движка. Регистрируются в
// собственном Registry, чтобы не тащить глобальный стейт в тесты.
type Metrics struct {
	Registry *prometheus.Registry

	cyclesTotal      prometheus.Counter
	cycleErrorsTotal prometheus.Counter
	swapsTotal       *prometheus.CounterVec

	price    prometheus.Gauge
	profit   prometheus.Gauge
	drawdown prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		cyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "safeloop_cycles_total",
			Help: "Completed rebalance cycles.",
		}),
		cycleErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "safeloop_cycle_errors_total",
			Help: "Cycles finished with an error.",
		}),
		swapsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "safeloop_swaps_total",
			Help: "Executed swaps by direction.",
		}, []string{"direction"}),
		price: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "safeloop_pool_price_usd",
			Help: "Last observed pool price.",
		}),
		profit: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "safeloop_total_profit_usd",
			Help: "Total profit against the manual-flow adjusted baseline.",
		}),
		drawdown: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "safeloop_drawdown_ratio",
			Help: "Portfolio drawdown from start value, 0..1.",
		}),
	}

	m.Registry.MustRegister(
		m.cyclesTotal, m.cycleErrorsTotal, m.swapsTotal,
		m.price, m.profit, m.drawdown,
	)
	return m
}

func (m *Metrics) ObserveReport(r models.CycleReport) {
	m.cyclesTotal.Inc()
	if r.Price > 0 {
		m.price.Set(r.Price)
	}
	m.profit.Set(r.Profit)
	m.drawdown.Set(r.Drawdown)
	if r.DidSwap {
		m.swapsTotal.WithLabelValues(string(r.Action)).Inc()
	}
}

func (m *Metrics) ObserveError() { m.cycleErrorsTotal.Inc() }
