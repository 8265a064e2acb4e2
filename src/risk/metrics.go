package risk

import "github.com/prometheus/client_golang/prometheus"

var (
	metricTradesAdmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sniper_trades_admitted_total",
		Help: "Trades allowed through the risk guards",
	})
	metricTradesRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sniper_trades_rejected_total",
		Help: "Trades refused by the risk guards",
	}, []string{"reason"})
	metricTradeFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sniper_trade_failures_total",
		Help: "Failures recorded against the circuit breaker",
	})
	metricBreakerState = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sniper_breaker_open",
		Help: "1 while the circuit breaker is open",
	})
)

func init() {
	prometheus.MustRegister(
		metricTradesAdmitted, metricTradesRejected,
		metricTradeFailures, metricBreakerState,
	)
	metricBreakerState.Set(0)
}
