package trading

import (
	"context"

	"github.com/shopspring/decimal"

	"memesniper/src/connectors"
	"memesniper/src/model"
)

// The orchestrator and monitors depend on these narrow views of their
// collaborators so tests can stub them out.

type PriceSource interface {
	TokenPrice(ctx context.Context, mint string) (float64, error)
	TokenLiquidity(ctx context.Context, mint string) (float64, error)
	MarketCap(ctx context.Context, mint string) (float64, error)
}

type Analyzer interface {
	AnalyzeToken(ctx context.Context, mint, name string) (string, float64, error)
}

type SwapExecutor interface {
	GetQuote(ctx context.Context, inputMint, outputMint string, amountLamports int64, slippageBps int) (*connectors.Quote, error)
	ExecuteSwap(ctx context.Context, req connectors.SwapRequest) (*connectors.SwapResult, error)
}

type TradeStore interface {
	Save(ctx context.Context, trade *model.Trade) error
}

type RiskController interface {
	CanTrade(amountSOL decimal.Decimal) (bool, string)
	RecordTradeSuccess(amountSOL decimal.Decimal)
	RecordTradeFailure(kind string) bool
	CheckSlippage(expected, actual float64) bool
}

type Notifier interface {
	SendTradeAlert(ctx context.Context, tradeID, message string)
	SendErrorAlert(ctx context.Context, component, message string)
	SendSystemAlert(ctx context.Context, message string)
}
