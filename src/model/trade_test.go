package model

import (
	"errors"
	"testing"
	"time"
)

func TestMarkActiveSetsEntryFields(t *testing.T) {
	tr := NewTrade("t-1", "c-1", "MintAAA", "TEST")
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if err := tr.MarkActive(0.0015, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.Status != TradeStatusActive {
		t.Fatalf("expected active, got %s", tr.Status)
	}
	if tr.EntryPrice == nil || *tr.EntryPrice != 0.0015 {
		t.Fatalf("entry price not set: %+v", tr.EntryPrice)
	}
	if tr.PeakPrice == nil || *tr.PeakPrice != 0.0015 {
		t.Fatalf("peak price not initialized to entry: %+v", tr.PeakPrice)
	}
	if tr.EntryAt == nil || !tr.EntryAt.Equal(now) {
		t.Fatalf("entry timestamp not set")
	}

	// Active trades never re-enter pending.
	if err := tr.MarkActive(0.002, now); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestApplyPricePeakIsMonotone(t *testing.T) {
	tr := NewTrade("t-2", "c-2", "MintBBB", "")
	now := time.Now()
	if err := tr.MarkActive(1.0, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tr.ApplyPrice(1.5)
	tr.ApplyPrice(1.2)

	if *tr.CurrentPrice != 1.2 {
		t.Fatalf("expected current 1.2, got %v", *tr.CurrentPrice)
	}
	if *tr.PeakPrice != 1.5 {
		t.Fatalf("peak must not fall, got %v", *tr.PeakPrice)
	}
}

func TestCloseComputesPnLAndHoldTime(t *testing.T) {
	tr := NewTrade("t-3", "c-3", "MintCCC", "")
	entryAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	exitAt := entryAt.Add(30 * time.Minute)

	if err := tr.MarkActive(1.0, entryAt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tr.Close(2.0, CloseReasonTakeProfit, exitAt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tr.Status != TradeStatusClosed {
		t.Fatalf("expected closed, got %s", tr.Status)
	}
	if tr.PnLPercent == nil || *tr.PnLPercent != 100.0 {
		t.Fatalf("expected pnl 100%%, got %+v", tr.PnLPercent)
	}
	if tr.HoldTimeMinutes == nil || *tr.HoldTimeMinutes != 30.0 {
		t.Fatalf("expected hold 30m, got %+v", tr.HoldTimeMinutes)
	}
	if *tr.CurrentPrice != 2.0 {
		t.Fatalf("close must pin current price to exit price")
	}

	// Second close is a detectable programming error.
	if err := tr.Close(2.1, CloseReasonStopLoss, exitAt); !errors.Is(err, ErrTradeFinalized) {
		t.Fatalf("expected ErrTradeFinalized, got %v", err)
	}
}

func TestMarkFailedIsTerminal(t *testing.T) {
	tr := NewTrade("t-4", "c-4", "MintDDD", "")
	now := time.Now()

	if err := tr.MarkFailed(now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.Status != TradeStatusFailed {
		t.Fatalf("expected failed, got %s", tr.Status)
	}
	if err := tr.MarkFailed(now); !errors.Is(err, ErrTradeFinalized) {
		t.Fatalf("expected ErrTradeFinalized, got %v", err)
	}
	if err := tr.MarkActive(1.0, now); !errors.Is(err, ErrTradeFinalized) {
		t.Fatalf("failed trade must reject activation, got %v", err)
	}
}

func TestAddSwapEventAccumulatesFees(t *testing.T) {
	tr := NewTrade("t-5", "c-5", "MintEEE", "")

	tr.AddSwapEvent(SwapEvent{Side: TradeSideBuy, FeeSOL: 0.000005, TipSOL: 0.0002})
	tr.AddSwapEvent(SwapEvent{Side: TradeSideSell, FeeSOL: 0.000005})

	if len(tr.Swaps) != 2 {
		t.Fatalf("expected 2 swap events, got %d", len(tr.Swaps))
	}
	if tr.Swaps[0].Side != TradeSideBuy || tr.Swaps[1].Side != TradeSideSell {
		t.Fatalf("swap events out of order: %+v", tr.Swaps)
	}
	want := 0.000005 + 0.0002 + 0.000005
	if diff := tr.TotalFeesSOL - want; diff > 1e-12 || diff < -1e-12 {
		t.Fatalf("expected fees %v, got %v", want, tr.TotalFeesSOL)
	}
	if tr.Swaps[0].TradeID != "t-5" {
		t.Fatalf("swap event not bound to trade id")
	}
}
