package trading

import (
	"context"
	"fmt"
	"math"
	"time"

	logger "github.com/sirupsen/logrus"

	"memesniper/src/connectors"
	"memesniper/src/model"
	"memesniper/src/pricing"
)

// monitorPosition owns one active trade until it reaches a terminal state.
// Exit conditions are evaluated in a fixed order each tick: take profit,
// stop loss, trailing stop, time exit. A manual close request wins over all
// of them. Cancellation is only honored between ticks; once a close sequence
// starts it runs to completion.
func (s *Service) monitorPosition(ctx context.Context, h *Handle) {
	defer s.wg.Done()

	snapshot := h.Snapshot()
	if snapshot.EntryPrice == nil || snapshot.EntryAt == nil {
		logger.WithField("trade_id", snapshot.TradeID).Error("[monitor] trade has no entry, dropping")
		s.registry.Remove(snapshot.TradeID)
		return
	}

	entry := *snapshot.EntryPrice
	takeProfit := entry * s.cfg.TakeProfitMultiplier
	stopLoss := entry * s.cfg.StopLossMultiplier
	deadline := snapshot.EntryAt.Add(time.Duration(s.cfg.MaxHoldTimeMinutes) * time.Minute)

	trail, err := pricing.NewTrailingStop(entry, s.cfg.TrailingStopPercent)
	if err != nil {
		// The position cannot be watched safely, so it is not held blind:
		// exit immediately at the entry price with an error close.
		logger.WithError(err).WithField("trade_id", snapshot.TradeID).
			Error("[monitor] bad trailing stop parameters, exiting position")
		s.deps.Notifier.SendErrorAlert(context.Background(), "monitor",
			fmt.Sprintf("Monitoring aborted for %s: %v", snapshot.TokenMint, err))
		s.closePosition(h, entry, model.CloseReasonError)
		return
	}

	log := logger.WithFields(logger.Fields{
		"trade_id":    snapshot.TradeID,
		"mint":        snapshot.TokenMint,
		"entry_price": entry,
	})
	log.WithFields(logger.Fields{
		"take_profit": takeProfit,
		"stop_loss":   stopLoss,
		"deadline":    deadline,
	}).Info("[monitor] watching position")

	ticker := time.NewTicker(s.cfg.PriceCheckInterval)
	defer ticker.Stop()

	lastPrice := entry
	for {
		select {
		case <-ctx.Done():
			log.Warn("[monitor] shutting down with position still open")
			return
		case <-ticker.C:
		}

		if h.closeRequestedNow() {
			price, err := s.deps.Prices.TokenPrice(ctx, snapshot.TokenMint)
			if err != nil || price <= 0 {
				price = lastPrice
			}
			s.closePosition(h, price, model.CloseReasonManual)
			return
		}

		price, err := s.deps.Prices.TokenPrice(ctx, snapshot.TokenMint)
		if err != nil {
			log.WithError(err).Warn("[monitor] price fetch failed, skipping tick")
			continue
		}
		if price <= 0 {
			// Unknown price. Keep waiting rather than act on garbage.
			continue
		}
		lastPrice = price

		h.withTrade(func(t *model.Trade) { t.ApplyPrice(price) })

		// Persist price progress every tick so the trade record and the
		// status endpoints track the live position. Best effort; a failed
		// write never stops monitoring.
		tick := h.Snapshot()
		if err := s.deps.Store.Save(ctx, &tick); err != nil {
			log.WithError(err).Warn("[monitor] failed to persist price update")
		}

		trailTriggered := trail.Update(price)

		var reason model.CloseReason
		switch {
		case price >= takeProfit:
			reason = model.CloseReasonTakeProfit
		case price <= stopLoss:
			reason = model.CloseReasonStopLoss
		case trailTriggered:
			reason = model.CloseReasonTrailingStop
		case s.now().After(deadline):
			reason = model.CloseReasonTimeExit
		}

		if reason == "" {
			continue
		}

		log.WithFields(logger.Fields{
			"price":  price,
			"reason": reason,
		}).Info("[monitor] exit condition met")
		s.closePosition(h, price, reason)
		return
	}
}

// closePosition runs the exit swap and finalizes the trade. It deliberately
// uses a background context: a shutdown must not interrupt a close in
// flight.
func (s *Service) closePosition(h *Handle, exitPrice float64, reason model.CloseReason) {
	ctx := context.Background()
	snapshot := h.Snapshot()
	now := s.now()
	lamports := int64(math.Round(snapshot.BuyAmountSOL * lamportsPerSOL))

	result, swapErr := s.deps.Swaps.ExecuteSwap(ctx, connectors.SwapRequest{
		InputMint:      snapshot.TokenMint,
		OutputMint:     solMint,
		AmountLamports: lamports,
	})

	ev := model.SwapEvent{
		Timestamp:      now,
		Side:           model.TradeSideSell,
		TokenMint:      snapshot.TokenMint,
		AmountLamports: lamports,
	}
	if swapErr != nil {
		ev.Error = swapErr.Error()
	} else {
		ev.TxSignature = result.TxSignature
		ev.LatencyMs = result.LatencyMs
		ev.FeeSOL = swapBaseFeeSOL
	}

	var finalizeErr error
	h.withTrade(func(t *model.Trade) {
		t.AddSwapEvent(ev)
		if swapErr != nil {
			finalizeErr = t.MarkFailed(now)
		} else {
			finalizeErr = t.Close(exitPrice, reason, now)
		}
	})
	if finalizeErr != nil {
		logger.WithError(finalizeErr).WithField("trade_id", snapshot.TradeID).
			Error("[monitor] illegal finalization")
	}

	closed := h.Snapshot()
	if err := s.deps.Store.Save(ctx, &closed); err != nil {
		logger.WithError(err).WithField("trade_id", snapshot.TradeID).
			Error("[monitor] failed to persist closed trade")
	}

	if swapErr != nil {
		if opened := s.deps.Risk.RecordTradeFailure("swap_execution"); opened {
			s.deps.Notifier.SendSystemAlert(ctx, "Circuit breaker opened after repeated swap failures")
		}
		s.deps.Notifier.SendErrorAlert(ctx, "monitor",
			fmt.Sprintf("Exit swap failed for %s: %v", snapshot.TokenMint, swapErr))
	} else if closed.PnLPercent != nil {
		s.deps.Notifier.SendTradeAlert(ctx, snapshot.TradeID,
			fmt.Sprintf("Closed %s (%s): pnl %.2f%%", snapshot.TokenMint, reason, *closed.PnLPercent))
	}

	s.registry.Remove(snapshot.TradeID)
}
