package model

import (
	"errors"
	"time"
)

type TradeStatus string

const (
	TradeStatusPending TradeStatus = "pending"
	TradeStatusActive  TradeStatus = "active"
	TradeStatusClosed  TradeStatus = "closed"
	TradeStatusFailed  TradeStatus = "failed"
)

type TradeSide string

const (
	TradeSideBuy  TradeSide = "buy"
	TradeSideSell TradeSide = "sell"
)

// CloseReason records why a position was exited. During monitoring the
// reasons are evaluated in a fixed order: take profit, stop loss, trailing
// stop, time exit. Manual and error closes come from outside that loop.
type CloseReason string

const (
	CloseReasonTakeProfit   CloseReason = "take_profit"
	CloseReasonStopLoss     CloseReason = "stop_loss"
	CloseReasonTrailingStop CloseReason = "trailing_stop"
	CloseReasonTimeExit     CloseReason = "time_exit"
	CloseReasonManual       CloseReason = "manual"
	CloseReasonError        CloseReason = "error"
)

var (
	// ErrTradeFinalized is returned when a terminal trade is mutated again.
	// A second Close on the same trade is a programming error and must be
	// detectable by the caller.
	ErrTradeFinalized = errors.New("trade already finalized")

	// ErrInvalidTransition is returned for any other illegal status change,
	// e.g. activating a trade that is not pending.
	ErrInvalidTransition = errors.New("invalid trade status transition")
)

// SwapEvent is one leg of a trade as it hit (or failed to hit) the chain.
// Events are append-only; insertion order is preserved.
type SwapEvent struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	TradeID        string    `gorm:"size:36;index" json:"trade_id"`
	Timestamp      time.Time `json:"timestamp"`
	Side           TradeSide `gorm:"size:10" json:"side"`
	TokenMint      string    `gorm:"size:64" json:"token_mint"`
	AmountLamports int64     `json:"amount_lamports"`
	TxSignature    string    `gorm:"size:120" json:"tx_signature,omitempty"`
	LatencyMs      float64   `json:"latency_ms,omitempty"`
	FeeSOL         float64   `json:"fee_sol,omitempty"`
	TipSOL         float64   `json:"tip_sol,omitempty"`
	Error          string    `json:"error,omitempty"`
}

func (SwapEvent) TableName() string {
	return "swap_events"
}

// Trade is the authoritative record of one sniping attempt, from discovery
// through exit. A trade is exclusively owned by one position monitor for its
// entire active lifetime; everyone else only sees copies.
type Trade struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	TradeID       string `gorm:"size:36;uniqueIndex" json:"trade_id"`
	CorrelationID string `gorm:"size:36;index" json:"correlation_id"`

	TokenMint string `gorm:"size:64;index" json:"token_mint"`
	TokenName string `gorm:"size:120" json:"token_name,omitempty"`

	AnalysisText  string  `json:"analysis_text,omitempty"`
	AnalysisScore float64 `json:"analysis_score"`

	BuyAmountSOL float64  `json:"buy_amount_sol"`
	EntryPrice   *float64 `json:"entry_price,omitempty"`
	CurrentPrice *float64 `json:"current_price,omitempty"`
	PeakPrice    *float64 `json:"peak_price,omitempty"`
	ExitPrice    *float64 `json:"exit_price,omitempty"`

	LiquidityUSD float64 `json:"liquidity_usd"`
	MarketCapUSD float64 `json:"market_cap_usd"`

	EntryAt *time.Time `json:"entry_at,omitempty"`
	ExitAt  *time.Time `json:"exit_at,omitempty"`

	CloseReason     CloseReason `gorm:"size:20;index" json:"close_reason,omitempty"`
	PnLPercent      *float64    `json:"pnl_percent,omitempty"`
	HoldTimeMinutes *float64    `json:"hold_time_minutes,omitempty"`
	TotalFeesSOL    float64     `json:"total_fees_sol"`

	Status TradeStatus `gorm:"size:20;not null;default:pending;index" json:"status"`

	Swaps []SwapEvent `gorm:"foreignKey:TradeID;references:TradeID" json:"swaps,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Trade) TableName() string {
	return "trades"
}

// NewTrade builds a pending trade record for an accepted candidate token.
func NewTrade(tradeID, correlationID, tokenMint, tokenName string) *Trade {
	return &Trade{
		TradeID:       tradeID,
		CorrelationID: correlationID,
		TokenMint:     tokenMint,
		TokenName:     tokenName,
		Status:        TradeStatusPending,
		CreatedAt:     time.Now(),
	}
}

// IsTerminal reports whether the trade reached a final status.
func (t *Trade) IsTerminal() bool {
	return t.Status == TradeStatusClosed || t.Status == TradeStatusFailed
}

// MarkActive records the entry fill. Legal only from pending.
func (t *Trade) MarkActive(entryPrice float64, now time.Time) error {
	if t.IsTerminal() {
		return ErrTradeFinalized
	}
	if t.Status != TradeStatusPending {
		return ErrInvalidTransition
	}

	entry := entryPrice
	current := entryPrice
	peak := entryPrice
	entryAt := now

	t.EntryPrice = &entry
	t.CurrentPrice = &current
	t.PeakPrice = &peak
	t.EntryAt = &entryAt
	t.Status = TradeStatusActive
	return nil
}

// ApplyPrice updates the live price and the monotone peak.
func (t *Trade) ApplyPrice(price float64) {
	p := price
	t.CurrentPrice = &p
	if t.PeakPrice == nil || price > *t.PeakPrice {
		peak := price
		t.PeakPrice = &peak
	}
}

// AddSwapEvent appends one swap leg and accumulates its fee and tip into the
// running fee total.
func (t *Trade) AddSwapEvent(ev SwapEvent) {
	ev.TradeID = t.TradeID
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	t.Swaps = append(t.Swaps, ev)
	t.TotalFeesSOL += ev.FeeSOL + ev.TipSOL
}

// Close finalizes the trade. This is the single place where pnl percent and
// hold time are computed. Legal only from active; a repeated call returns
// ErrTradeFinalized.
func (t *Trade) Close(exitPrice float64, reason CloseReason, now time.Time) error {
	if t.IsTerminal() {
		return ErrTradeFinalized
	}
	if t.Status != TradeStatusActive || t.EntryPrice == nil || t.EntryAt == nil {
		return ErrInvalidTransition
	}

	exit := exitPrice
	exitAt := now
	pnl := (exitPrice - *t.EntryPrice) / *t.EntryPrice * 100
	hold := exitAt.Sub(*t.EntryAt).Minutes()

	t.ExitPrice = &exit
	t.ExitAt = &exitAt
	t.CloseReason = reason
	t.CurrentPrice = &exit
	t.PnLPercent = &pnl
	t.HoldTimeMinutes = &hold
	t.Status = TradeStatusClosed
	return nil
}

// MarkFailed moves the trade to the failed terminal state. Reachable from
// pending (entry swap failed) and from active (exit swap failed or an
// unrecoverable monitoring error).
func (t *Trade) MarkFailed(now time.Time) error {
	if t.IsTerminal() {
		return ErrTradeFinalized
	}
	exitAt := now
	t.ExitAt = &exitAt
	t.Status = TradeStatusFailed
	return nil
}

// TradeFilter narrows repository queries.
type TradeFilter struct {
	Status        TradeStatus
	TokenMint     string
	CloseReason   CloseReason
	MinPnLPercent *float64
	MaxPnLPercent *float64
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	Limit         int
	Offset        int
}

// TradeStats is the aggregate view over closed trades.
type TradeStats struct {
	TotalTrades          int64   `json:"total_trades"`
	WinningTrades        int64   `json:"winning_trades"`
	LosingTrades         int64   `json:"losing_trades"`
	WinRate              float64 `json:"win_rate"`
	TotalPnLPercent      float64 `json:"total_pnl_percent"`
	AvgHoldTimeMinutes   float64 `json:"avg_hold_time_minutes"`
	TotalFeesSOL         float64 `json:"total_fees_sol"`
	BestTradePnLPercent  float64 `json:"best_trade_pnl_percent"`
	WorstTradePnLPercent float64 `json:"worst_trade_pnl_percent"`
}
