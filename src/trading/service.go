package trading

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"memesniper/src/connectors"
	"memesniper/src/model"
)

const (
	solMint        = "So11111111111111111111111111111111111111112"
	lamportsPerSOL = 1_000_000_000

	// Flat network fee estimate recorded on every executed swap leg.
	swapBaseFeeSOL = 0.000005
)

// Dependencies are the orchestrator's collaborators, injected so tests can
// stub each one.
type Dependencies struct {
	Prices   PriceSource
	Analyzer Analyzer
	Swaps    SwapExecutor
	Store    TradeStore
	Risk     RiskController
	Notifier Notifier

	// TipBaseLamports is the baseline priority fee; the actual tip scales
	// with the analysis score.
	TipBaseLamports int64
}

// Service runs the full trade lifecycle: evaluate a discovered token, open a
// position, and hand it to a monitor goroutine that owns it until exit.
type Service struct {
	cfg      Config
	deps     Dependencies
	registry *Registry
	wg       sync.WaitGroup
	now      func() time.Time
}

func NewService(cfg Config, deps Dependencies) *Service {
	return &Service{
		cfg:      cfg,
		deps:     deps,
		registry: NewRegistry(),
		now:      time.Now,
	}
}

// Registry exposes the live position set for status reporting and manual
// close requests.
func (s *Service) Registry() *Registry {
	return s.registry
}

// ActiveTrades returns copies of every position currently monitored.
func (s *Service) ActiveTrades() []model.Trade {
	return s.registry.Snapshots()
}

// RequestManualClose flags an active trade for closing on its next monitor
// tick.
func (s *Service) RequestManualClose(tradeID string) error {
	h, ok := s.registry.Get(tradeID)
	if !ok {
		return fmt.Errorf("no active trade with id %s", tradeID)
	}
	h.RequestClose()
	logger.WithField("trade_id", tradeID).Info("[trading] manual close requested")
	return nil
}

// Wait blocks until every position monitor has finished its close sequence.
func (s *Service) Wait() {
	s.wg.Wait()
}

// EvaluateToken runs the admission pipeline for one discovered token and, if
// everything passes, opens a position and starts its monitor. A nil trade
// with a nil error means the token was filtered out.
func (s *Service) EvaluateToken(ctx context.Context, token model.DiscoveredToken) (*model.Trade, error) {
	correlationID := uuid.NewString()
	log := logger.WithFields(logger.Fields{
		"correlation_id": correlationID,
		"mint":           token.Mint,
		"name":           token.Name,
	})

	liquidity, err := s.deps.Prices.TokenLiquidity(ctx, token.Mint)
	if err != nil {
		log.WithError(err).Warn("[trading] liquidity lookup failed, skipping token")
		return nil, nil
	}
	if liquidity < s.cfg.MinLiquidityUSD {
		log.WithField("liquidity_usd", liquidity).Info("[trading] liquidity below minimum, skipping")
		return nil, nil
	}

	marketCap, err := s.deps.Prices.MarketCap(ctx, token.Mint)
	if err != nil {
		log.WithError(err).Warn("[trading] market cap lookup failed, skipping token")
		return nil, nil
	}
	if marketCap < s.cfg.MinMarketCapUSD {
		log.WithField("market_cap_usd", marketCap).Info("[trading] market cap below minimum, skipping")
		return nil, nil
	}

	analysisText, score, err := s.deps.Analyzer.AnalyzeToken(ctx, token.Mint, token.Name)
	if err != nil {
		log.WithError(err).Warn("[trading] analysis failed, skipping token")
		return nil, nil
	}
	if score < s.cfg.ScoreThreshold {
		log.WithField("score", score).Info("[trading] analysis score below threshold, skipping")
		return nil, nil
	}

	amount := decimal.NewFromFloat(s.cfg.BuyAmountSOL)
	if ok, reason := s.deps.Risk.CanTrade(amount); !ok {
		log.WithField("reason", reason).Warn("[trading] risk manager refused trade")
		s.deps.Notifier.SendSystemAlert(ctx, fmt.Sprintf("Trade refused for %s: %s", token.Mint, reason))
		return nil, nil
	}

	trade := model.NewTrade(uuid.NewString(), correlationID, token.Mint, token.Name)
	trade.BuyAmountSOL = s.cfg.BuyAmountSOL
	trade.AnalysisText = analysisText
	trade.AnalysisScore = score
	trade.LiquidityUSD = liquidity
	trade.MarketCapUSD = marketCap

	if err := s.deps.Store.Save(ctx, trade); err != nil {
		log.WithError(err).Error("[trading] failed to persist pending trade")
		return nil, err
	}

	return trade, s.openPosition(ctx, log, trade, score)
}

// openPosition executes the entry swap for an admitted trade and either
// activates its monitor or records the failure.
func (s *Service) openPosition(ctx context.Context, log *logger.Entry, trade *model.Trade, score float64) error {
	spot, err := s.deps.Prices.TokenPrice(ctx, trade.TokenMint)
	if err != nil || spot <= 0 {
		log.WithError(err).Warn("[trading] no entry price available, abandoning trade")
		return s.failTrade(ctx, trade, nil, "no entry price available")
	}

	lamports := int64(math.Round(trade.BuyAmountSOL * lamportsPerSOL))

	quote, err := s.deps.Swaps.GetQuote(ctx, solMint, trade.TokenMint, lamports, 0)
	if err != nil {
		log.WithError(err).Warn("[trading] quote failed, abandoning trade")
		return s.failTrade(ctx, trade, nil, "quote unavailable")
	}

	// Pre-entry slippage gate: the quoted price impact against the spot
	// price. A refusal here is an admission decision, not an execution
	// failure, so the circuit breaker is not touched.
	if impact := priceImpactPercent(quote); impact > 0 {
		if !s.deps.Risk.CheckSlippage(spot, spot*(1+impact/100)) {
			log.WithField("price_impact_pct", impact).Warn("[trading] price impact above slippage limit")
			s.deps.Notifier.SendTradeAlert(ctx, trade.TradeID,
				fmt.Sprintf("Entry refused: price impact %.2f%% above limit", impact))
			return s.failTrade(ctx, trade, nil, "")
		}
	}

	tip := scaledTip(s.deps.TipBaseLamports, score)

	result, err := s.deps.Swaps.ExecuteSwap(ctx, connectors.SwapRequest{
		InputMint:      solMint,
		OutputMint:     trade.TokenMint,
		AmountLamports: lamports,
		TipLamports:    tip,
	})
	if err != nil {
		if opened := s.deps.Risk.RecordTradeFailure("swap_execution"); opened {
			s.deps.Notifier.SendSystemAlert(ctx, "Circuit breaker opened after repeated swap failures")
		}
		ev := model.SwapEvent{
			Side:           model.TradeSideBuy,
			TokenMint:      trade.TokenMint,
			AmountLamports: lamports,
			Error:          err.Error(),
		}
		return s.failTrade(ctx, trade, &ev, "entry swap failed: "+err.Error())
	}

	now := s.now()
	if err := trade.MarkActive(spot, now); err != nil {
		return err
	}
	trade.AddSwapEvent(model.SwapEvent{
		Timestamp:      now,
		Side:           model.TradeSideBuy,
		TokenMint:      trade.TokenMint,
		AmountLamports: lamports,
		TxSignature:    result.TxSignature,
		LatencyMs:      result.LatencyMs,
		FeeSOL:         swapBaseFeeSOL,
		TipSOL:         float64(tip) / lamportsPerSOL,
	})

	if err := s.deps.Store.Save(ctx, trade); err != nil {
		log.WithError(err).Error("[trading] failed to persist active trade")
	}

	s.deps.Risk.RecordTradeSuccess(decimal.NewFromFloat(trade.BuyAmountSOL))
	s.deps.Notifier.SendTradeAlert(ctx, trade.TradeID,
		fmt.Sprintf("Bought %s for %.4f SOL at %.8f", trade.TokenMint, trade.BuyAmountSOL, spot))

	handle := s.registry.Add(trade)
	s.wg.Add(1)
	go s.monitorPosition(ctx, handle)

	log.WithFields(logger.Fields{
		"trade_id":     trade.TradeID,
		"entry_price":  spot,
		"tx_signature": result.TxSignature,
	}).Info("[trading] position opened")

	return nil
}

// failTrade moves a pending trade to failed, persisting the optional swap
// event and sending an error alert when a message is given.
func (s *Service) failTrade(ctx context.Context, trade *model.Trade, ev *model.SwapEvent, alertMessage string) error {
	if ev != nil {
		if ev.Timestamp.IsZero() {
			ev.Timestamp = s.now()
		}
		trade.AddSwapEvent(*ev)
	}
	if err := trade.MarkFailed(s.now()); err != nil {
		return err
	}
	if err := s.deps.Store.Save(ctx, trade); err != nil {
		logger.WithError(err).WithField("trade_id", trade.TradeID).
			Error("[trading] failed to persist failed trade")
	}
	if alertMessage != "" {
		s.deps.Notifier.SendErrorAlert(ctx, "trading", alertMessage)
	}
	return nil
}

// scaledTip scales the base priority fee by the analysis score. A perfect 10
// pays double the base tip; a bare pass pays proportionally less.
func scaledTip(baseLamports int64, score float64) int64 {
	tip := int64(float64(baseLamports) * (score / 10) * 2)
	if tip < 0 {
		return 0
	}
	return tip
}

func priceImpactPercent(quote *connectors.Quote) float64 {
	if quote == nil || quote.PriceImpactPct == "" {
		return 0
	}
	impact, err := strconv.ParseFloat(quote.PriceImpactPct, 64)
	if err != nil {
		return 0
	}
	return math.Abs(impact)
}
