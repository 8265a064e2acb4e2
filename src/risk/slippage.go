package risk

import (
	logger "github.com/sirupsen/logrus"
)

// SlippageGuard rejects executions whose realized price deviates too far
// from the expected one. Stateless; the boundary is inclusive.
type SlippageGuard struct {
	maxSlippagePercent float64
}

func NewSlippageGuard(maxSlippagePercent float64) *SlippageGuard {
	return &SlippageGuard{maxSlippagePercent: maxSlippagePercent}
}

// Check returns true when the deviation between expected and actual is
// within the configured limit. Fails closed on a non-positive expected
// price.
func (g *SlippageGuard) Check(expected, actual float64) bool {
	if expected <= 0 {
		logger.WithField("expected_price", expected).
			Warn("[risk] invalid expected price for slippage check")
		return false
	}

	slippage := (actual - expected) / expected * 100
	if slippage < 0 {
		slippage = -slippage
	}
	ok := slippage <= g.maxSlippagePercent

	logger.WithFields(logger.Fields{
		"expected_price":       expected,
		"actual_price":         actual,
		"slippage_percent":     slippage,
		"max_slippage_percent": g.maxSlippagePercent,
		"acceptable":           ok,
	}).Debug("[risk] slippage checked")

	return ok
}

func (g *SlippageGuard) MaxSlippagePercent() float64 {
	return g.maxSlippagePercent
}
