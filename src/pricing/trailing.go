package pricing

import (
	"errors"
	"fmt"

	logger "github.com/sirupsen/logrus"
)

// ErrInvalidParameter rejects trailing-stop construction with a
// non-positive entry price or a trailing percent outside (0,100].
var ErrInvalidParameter = errors.New("invalid trailing stop parameter")

// TrailingStop tracks the peak price of one position and a stop threshold
// that rises with the peak but never falls.
type TrailingStop struct {
	entryPrice      float64
	trailingPercent float64
	peakPrice       float64
	stopPrice       float64
}

func NewTrailingStop(entryPrice, trailingPercent float64) (*TrailingStop, error) {
	if entryPrice <= 0 {
		return nil, fmt.Errorf("%w: entry price %v", ErrInvalidParameter, entryPrice)
	}
	if trailingPercent <= 0 || trailingPercent > 100 {
		return nil, fmt.Errorf("%w: trailing percent %v", ErrInvalidParameter, trailingPercent)
	}

	ts := &TrailingStop{
		entryPrice:      entryPrice,
		trailingPercent: trailingPercent,
		peakPrice:       entryPrice,
		stopPrice:       entryPrice * (1 - trailingPercent/100),
	}

	logger.WithFields(logger.Fields{
		"entry_price":        entryPrice,
		"trailing_percent":   trailingPercent,
		"initial_stop_price": ts.stopPrice,
	}).Debug("[pricing] trailing stop initialized")

	return ts, nil
}

// Update feeds one observed price into the tracker and reports whether the
// stop triggered. A price exactly on the stop triggers (inclusive boundary).
// The stop price is monotonically non-decreasing across calls.
func (ts *TrailingStop) Update(currentPrice float64) bool {
	if currentPrice > ts.peakPrice {
		ts.peakPrice = currentPrice
		if candidate := ts.peakPrice * (1 - ts.trailingPercent/100); candidate > ts.stopPrice {
			ts.stopPrice = candidate
		}
	}
	return currentPrice <= ts.stopPrice
}

func (ts *TrailingStop) PeakPrice() float64 { return ts.peakPrice }
func (ts *TrailingStop) StopPrice() float64 { return ts.stopPrice }
