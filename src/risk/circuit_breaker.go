package risk

import (
	"sync"
	"time"

	logger "github.com/sirupsen/logrus"
)

// CircuitBreaker halts new trade admission after a run of consecutive
// failures until a cooldown elapses. The cooldown check auto-resets the
// breaker on expiry and is otherwise side-effect free.
type CircuitBreaker struct {
	mu              sync.Mutex
	maxFailures     int
	cooldown        time.Duration
	failureCount    int
	lastFailureTime time.Time
	open            bool
	now             func() time.Time
}

func NewCircuitBreaker(maxFailures int, cooldownMinutes int) *CircuitBreaker {
	logger.WithFields(logger.Fields{
		"max_failures":     maxFailures,
		"cooldown_minutes": cooldownMinutes,
	}).Info("[risk] circuit breaker initialized")

	return &CircuitBreaker{
		maxFailures: maxFailures,
		cooldown:    time.Duration(cooldownMinutes) * time.Minute,
		now:         time.Now,
	}
}

// RecordFailure counts one failed trade. Returns true when this failure
// tripped the breaker open, so the caller can raise an alert.
func (cb *CircuitBreaker) RecordFailure() (opened bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount++
	cb.lastFailureTime = cb.now()

	if cb.failureCount >= cb.maxFailures && !cb.open {
		cb.open = true
		metricBreakerState.Set(1)
		logger.WithFields(logger.Fields{
			"failure_count": cb.failureCount,
			"max_failures":  cb.maxFailures,
		}).Warn("[risk] circuit breaker opened")
		return true
	}
	return false
}

// RecordSuccess resets the failure streak and closes the breaker.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.failureCount > 0 {
		logger.WithField("previous_failure_count", cb.failureCount).
			Info("[risk] circuit breaker reset after success")
	}
	cb.failureCount = 0
	cb.open = false
	metricBreakerState.Set(0)
}

// CanTrade reports whether admission is allowed. When the breaker is open it
// re-evaluates the cooldown; on expiry it resets itself and allows trading.
func (cb *CircuitBreaker) CanTrade() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.canTradeLocked()
}

func (cb *CircuitBreaker) canTradeLocked() bool {
	if !cb.open {
		return true
	}
	if cb.lastFailureTime.IsZero() {
		return true
	}

	elapsed := cb.now().Sub(cb.lastFailureTime)
	if elapsed >= cb.cooldown {
		logger.WithFields(logger.Fields{
			"elapsed_minutes":  elapsed.Minutes(),
			"cooldown_minutes": cb.cooldown.Minutes(),
		}).Info("[risk] circuit breaker cooldown expired, allowing trading")
		cb.open = false
		cb.failureCount = 0
		metricBreakerState.Set(0)
		return true
	}
	return false
}

// FailureCount returns the current consecutive-failure streak.
func (cb *CircuitBreaker) FailureCount() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.failureCount
}

// BreakerStatus is the reporting view of the breaker.
type BreakerStatus struct {
	IsOpen                   bool    `json:"is_open"`
	FailureCount             int     `json:"failure_count"`
	MaxFailures              int     `json:"max_failures"`
	RemainingCooldownMinutes float64 `json:"remaining_cooldown_minutes"`
	CanTrade                 bool    `json:"can_trade"`
}

func (cb *CircuitBreaker) Status() BreakerStatus {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	remaining := 0.0
	if cb.open && !cb.lastFailureTime.IsZero() {
		left := cb.cooldown - cb.now().Sub(cb.lastFailureTime)
		if left > 0 {
			remaining = left.Minutes()
		}
	}
	return BreakerStatus{
		IsOpen:                   cb.open,
		FailureCount:             cb.failureCount,
		MaxFailures:              cb.maxFailures,
		RemainingCooldownMinutes: remaining,
		CanTrade:                 cb.canTradeLocked(),
	}
}
