package risk

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestCircuitBreakerOpensAfterMaxFailures(t *testing.T) {
	cb := NewCircuitBreaker(2, 5)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cb.now = func() time.Time { return base }

	if !cb.CanTrade() {
		t.Fatalf("fresh breaker must allow trading")
	}

	if opened := cb.RecordFailure(); opened {
		t.Fatalf("first failure must not open the breaker")
	}
	if !cb.CanTrade() {
		t.Fatalf("breaker must stay closed below max failures")
	}

	if opened := cb.RecordFailure(); !opened {
		t.Fatalf("second failure must open the breaker")
	}
	if cb.CanTrade() {
		t.Fatalf("open breaker must refuse trading")
	}
}

func TestCircuitBreakerCooldownAutoReset(t *testing.T) {
	cb := NewCircuitBreaker(1, 5)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := base
	cb.now = func() time.Time { return now }

	cb.RecordFailure()
	if cb.CanTrade() {
		t.Fatalf("breaker must be open")
	}

	now = base.Add(4 * time.Minute)
	if cb.CanTrade() {
		t.Fatalf("cooldown not yet elapsed")
	}

	now = base.Add(5 * time.Minute)
	if !cb.CanTrade() {
		t.Fatalf("cooldown elapsed, breaker must auto-reset")
	}
	if got := cb.FailureCount(); got != 0 {
		t.Fatalf("auto-reset must zero the failure count, got %d", got)
	}
	// Idempotent after reset.
	if !cb.CanTrade() {
		t.Fatalf("breaker must stay closed after auto-reset")
	}
}

func TestCircuitBreakerSuccessResets(t *testing.T) {
	cb := NewCircuitBreaker(3, 5)
	cb.RecordFailure()
	cb.RecordFailure()
	cb.RecordSuccess()

	if got := cb.FailureCount(); got != 0 {
		t.Fatalf("expected failure count 0 after success, got %d", got)
	}
	if !cb.CanTrade() {
		t.Fatalf("breaker must be closed after success")
	}
}

func TestDailySpendTrackerLimit(t *testing.T) {
	st := NewDailySpendTracker(decimal.NewFromFloat(1.0))

	if !st.CanSpend(decimal.NewFromFloat(1.0)) {
		t.Fatalf("spending exactly the limit must be allowed")
	}

	st.RecordSpend(decimal.NewFromFloat(1.0))

	if st.CanSpend(decimal.NewFromFloat(0.01)) {
		t.Fatalf("limit exhausted, further spend must be refused")
	}

	status := st.Status()
	if status.Remaining != 0.0 {
		t.Fatalf("expected remaining 0.0, got %v", status.Remaining)
	}
	if status.UtilizationPercent != 100.0 {
		t.Fatalf("expected utilization 100, got %v", status.UtilizationPercent)
	}
}

func TestDailySpendTrackerPrunesOldEntries(t *testing.T) {
	st := NewDailySpendTracker(decimal.NewFromFloat(10.0))
	base := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	now := base.AddDate(0, 0, -10)
	st.now = func() time.Time { return now }

	st.RecordSpend(decimal.NewFromFloat(1.0))

	now = base
	st.RecordSpend(decimal.NewFromFloat(0.5))

	if len(st.spending) != 1 {
		t.Fatalf("entries older than 7 days must be pruned, ledger: %v", st.spending)
	}
	if !st.DailySpent().Equal(decimal.NewFromFloat(0.5)) {
		t.Fatalf("today's total wrong: %s", st.DailySpent())
	}
}

func TestSlippageGuardBoundary(t *testing.T) {
	g := NewSlippageGuard(5.0)

	if g.Check(1.0, 0.94) {
		t.Fatalf("6%% slippage must be refused at 5%% max")
	}
	if !g.Check(1.0, 0.95) {
		t.Fatalf("5%% slippage is boundary inclusive, must pass")
	}
	if !g.Check(1.0, 1.05) {
		t.Fatalf("upward slippage at boundary must pass")
	}
	if g.Check(0, 1.0) {
		t.Fatalf("non-positive expected price must fail closed")
	}
	if g.Check(-1.0, 1.0) {
		t.Fatalf("negative expected price must fail closed")
	}
}

func testManager() *Manager {
	cfg := Config{
		DailySpendLimitSOL:            1.0,
		MaxConsecutiveFailures:        5,
		CircuitBreakerCooldownMinutes: 60,
		MaxSlippagePercent:            5.0,
	}
	return NewManager(cfg, 0.1)
}

func TestManagerCanTradeReasons(t *testing.T) {
	m := testManager()

	ok, reason := m.CanTrade(decimal.NewFromFloat(0.1))
	if !ok || reason != "OK" {
		t.Fatalf("expected OK, got %v %q", ok, reason)
	}

	ok, reason = m.CanTrade(decimal.Zero)
	if ok || reason != "Invalid trade amount" {
		t.Fatalf("expected invalid amount refusal, got %v %q", ok, reason)
	}

	ok, reason = m.CanTrade(decimal.NewFromFloat(0.5))
	if ok || reason != "Trade amount exceeds maximum allowed" {
		t.Fatalf("expected sanity ceiling refusal, got %v %q", ok, reason)
	}
}

func TestManagerSpendLimitRefusal(t *testing.T) {
	m := testManager()

	// Fill the daily budget with successful trades.
	for i := 0; i < 5; i++ {
		m.RecordTradeSuccess(decimal.NewFromFloat(0.2))
	}

	ok, reason := m.CanTrade(decimal.NewFromFloat(0.1))
	if ok {
		t.Fatalf("budget exhausted, trade must be refused")
	}
	if !strings.Contains(reason, "Daily spend limit exceeded") {
		t.Fatalf("unexpected reason %q", reason)
	}
}

func TestManagerFailureOpensBreakerOnce(t *testing.T) {
	cfg := Config{
		DailySpendLimitSOL:            1.0,
		MaxConsecutiveFailures:        2,
		CircuitBreakerCooldownMinutes: 60,
		MaxSlippagePercent:            5.0,
	}
	m := NewManager(cfg, 0.1)

	if opened := m.RecordTradeFailure("swap_execution"); opened {
		t.Fatalf("breaker must not open on first failure")
	}
	if opened := m.RecordTradeFailure("swap_execution"); !opened {
		t.Fatalf("breaker must open on reaching max failures")
	}

	ok, reason := m.CanTrade(decimal.NewFromFloat(0.1))
	if ok || reason != "Circuit breaker is open" {
		t.Fatalf("expected circuit refusal, got %v %q", ok, reason)
	}

	// Failure never records spend.
	if spent := m.Status().Spending.DailySpent; spent != 0 {
		t.Fatalf("failures must not record spend, got %v", spent)
	}
}

func TestConfigValidate(t *testing.T) {
	good := Config{DailySpendLimitSOL: 1, MaxConsecutiveFailures: 3, CircuitBreakerCooldownMinutes: 30, MaxSlippagePercent: 5}
	if err := good.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := good
	bad.DailySpendLimitSOL = 0
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for zero spend limit")
	}
}
