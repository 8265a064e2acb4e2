package risk

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"memesniper/src/utils"
)

const spendRetentionDays = 7

// DailySpendTracker enforces a per-calendar-day SOL spend cap. Entries are
// keyed by local date string and pruned lazily after seven days.
//
// CanSpend and RecordSpend are individually safe, but the pair is not
// atomic. Callers that need check-then-commit semantics must serialize the
// pair themselves; the Manager does so under its own lock.
type DailySpendTracker struct {
	mu         sync.Mutex
	dailyLimit decimal.Decimal
	spending   map[string]decimal.Decimal
	now        func() time.Time
}

func NewDailySpendTracker(dailyLimit decimal.Decimal) *DailySpendTracker {
	logger.WithField("daily_limit", dailyLimit.String()).
		Info("[risk] daily spend tracker initialized")

	return &DailySpendTracker{
		dailyLimit: dailyLimit,
		spending:   make(map[string]decimal.Decimal),
		now:        time.Now,
	}
}

// DailySpent returns the amount spent today.
func (st *DailySpendTracker) DailySpent() decimal.Decimal {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.spentTodayLocked()
}

func (st *DailySpendTracker) spentTodayLocked() decimal.Decimal {
	if spent, ok := st.spending[utils.DateKey(st.now())]; ok {
		return spent
	}
	return decimal.Zero
}

// CanSpend reports whether amount still fits under today's limit.
func (st *DailySpendTracker) CanSpend(amount decimal.Decimal) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.spentTodayLocked().Add(amount).LessThanOrEqual(st.dailyLimit)
}

// RecordSpend adds amount to today's total unconditionally and prunes ledger
// entries older than the retention window.
func (st *DailySpendTracker) RecordSpend(amount decimal.Decimal) {
	st.mu.Lock()
	defer st.mu.Unlock()

	today := utils.DateKey(st.now())
	total := st.spending[today].Add(amount)
	st.spending[today] = total

	logger.WithFields(logger.Fields{
		"amount":      amount.String(),
		"daily_total": total.String(),
		"daily_limit": st.dailyLimit.String(),
		"remaining":   st.dailyLimit.Sub(total).String(),
	}).Info("[risk] spend recorded")

	cutoff := utils.DateKeyBefore(st.now(), spendRetentionDays)
	for date := range st.spending {
		if date < cutoff {
			delete(st.spending, date)
		}
	}
}

// SpendStatus is the reporting view of today's budget.
type SpendStatus struct {
	DailyLimit         float64 `json:"daily_limit"`
	DailySpent         float64 `json:"daily_spent"`
	Remaining          float64 `json:"remaining"`
	UtilizationPercent float64 `json:"utilization_percent"`
}

func (st *DailySpendTracker) Status() SpendStatus {
	st.mu.Lock()
	defer st.mu.Unlock()

	spent := st.spentTodayLocked()
	status := SpendStatus{
		DailyLimit: st.dailyLimit.InexactFloat64(),
		DailySpent: spent.InexactFloat64(),
		Remaining:  st.dailyLimit.Sub(spent).InexactFloat64(),
	}
	if st.dailyLimit.IsPositive() {
		status.UtilizationPercent = spent.Div(st.dailyLimit).Mul(decimal.NewFromInt(100)).InexactFloat64()
	}
	return status
}
