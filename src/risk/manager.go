package risk

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"
)

// Manager composes the three guards into one admission decision and one
// outcome-recording API. It is a process-wide singleton constructed once at
// startup and injected wherever admission decisions are made.
//
// A single mutex serializes the check-then-commit pairs (CanTrade followed
// by RecordTradeSuccess/RecordTradeFailure) across the orchestrator and all
// position monitors.
type Manager struct {
	mu           sync.Mutex
	breaker      *CircuitBreaker
	spendTracker *DailySpendTracker
	slippage     *SlippageGuard
	maxTradeSOL  decimal.Decimal
}

// NewManager wires the guards from config. buyAmountSOL is the configured
// per-trade size; anything above twice that is refused as a sanity ceiling
// independent of the daily limit.
func NewManager(cfg Config, buyAmountSOL float64) *Manager {
	logger.WithFields(logger.Fields{
		"max_consecutive_failures": cfg.MaxConsecutiveFailures,
		"daily_sol_limit":          cfg.DailySpendLimitSOL,
		"max_slippage_percent":     cfg.MaxSlippagePercent,
	}).Info("[risk] risk manager initialized")

	return &Manager{
		breaker:      NewCircuitBreaker(cfg.MaxConsecutiveFailures, cfg.CircuitBreakerCooldownMinutes),
		spendTracker: NewDailySpendTracker(decimal.NewFromFloat(cfg.DailySpendLimitSOL)),
		slippage:     NewSlippageGuard(cfg.MaxSlippagePercent),
		maxTradeSOL:  decimal.NewFromFloat(buyAmountSOL).Mul(decimal.NewFromInt(2)),
	}
}

// CanTrade decides admission for a trade of the given SOL size. The reason
// string is human readable and stable enough for alerts.
func (m *Manager) CanTrade(amountSOL decimal.Decimal) (bool, string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.breaker.CanTrade() {
		metricTradesRejected.WithLabelValues("circuit_open").Inc()
		return false, "Circuit breaker is open"
	}

	if !m.spendTracker.CanSpend(amountSOL) {
		metricTradesRejected.WithLabelValues("spend_limit").Inc()
		spent := m.spendTracker.DailySpent()
		return false, fmt.Sprintf("Daily spend limit exceeded (%s/%s SOL)",
			spent.StringFixed(4), m.spendTracker.dailyLimit.String())
	}

	if !amountSOL.IsPositive() {
		metricTradesRejected.WithLabelValues("invalid_amount").Inc()
		return false, "Invalid trade amount"
	}

	if amountSOL.GreaterThan(m.maxTradeSOL) {
		metricTradesRejected.WithLabelValues("exceeds_maximum").Inc()
		return false, "Trade amount exceeds maximum allowed"
	}

	metricTradesAdmitted.Inc()
	return true, "OK"
}

// RecordTradeSuccess resets the breaker and commits the spend.
func (m *Manager) RecordTradeSuccess(amountSOL decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.breaker.RecordSuccess()
	m.spendTracker.RecordSpend(amountSOL)

	logger.WithField("amount_sol", amountSOL.String()).
		Info("[risk] trade success recorded")
}

// RecordTradeFailure counts one failure against the breaker. Spend is never
// recorded for a failed entry attempt. Returns true when this failure
// tripped the breaker open.
func (m *Manager) RecordTradeFailure(kind string) (breakerOpened bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	metricTradeFailures.Inc()
	opened := m.breaker.RecordFailure()

	logger.WithFields(logger.Fields{
		"error_type":    kind,
		"failure_count": m.breaker.FailureCount(),
	}).Warn("[risk] trade failure recorded")

	return opened
}

// CheckSlippage runs the stateless slippage guard.
func (m *Manager) CheckSlippage(expected, actual float64) bool {
	return m.slippage.Check(expected, actual)
}

// Status is the combined reporting view used by logs, alerts and the status
// server.
type Status struct {
	CircuitBreaker BreakerStatus `json:"circuit_breaker"`
	Spending       SpendStatus   `json:"spending"`
	SlippageGuard  struct {
		MaxSlippagePercent float64 `json:"max_slippage_percent"`
	} `json:"slippage_guard"`
}

func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	var s Status
	s.CircuitBreaker = m.breaker.Status()
	s.Spending = m.spendTracker.Status()
	s.SlippageGuard.MaxSlippagePercent = m.slippage.MaxSlippagePercent()
	return s
}
