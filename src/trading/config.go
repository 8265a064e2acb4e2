package trading

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	BuyAmountSOL         float64       `envconfig:"BUY_AMOUNT_SOL" default:"0.1"`
	MinLiquidityUSD      float64       `envconfig:"MIN_LIQUIDITY_USD" default:"5000"`
	MinMarketCapUSD      float64       `envconfig:"MIN_MARKET_CAP_USD" default:"10000"`
	ScoreThreshold       float64       `envconfig:"SCORE_THRESHOLD" default:"7.0"`
	TakeProfitMultiplier float64       `envconfig:"TAKE_PROFIT_MULTIPLIER" default:"2.0"`
	StopLossMultiplier   float64       `envconfig:"STOP_LOSS_MULTIPLIER" default:"0.7"`
	TrailingStopPercent  float64       `envconfig:"TRAILING_STOP_PERCENT" default:"10.0"`
	MaxHoldTimeMinutes   int           `envconfig:"MAX_HOLD_TIME_MIN" default:"30"`
	PriceCheckInterval   time.Duration `envconfig:"PRICE_CHECK_INTERVAL" default:"10s"`
	DryRun               bool          `envconfig:"DRY_RUN" default:"false"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}

// Validate rejects configurations that could never close a trade sanely.
// Called once at startup; a bad value is fatal rather than silently clamped.
func (c Config) Validate() error {
	if c.BuyAmountSOL <= 0 {
		return errors.New("BUY_AMOUNT_SOL must be positive")
	}
	if c.TakeProfitMultiplier <= 1 {
		return errors.New("TAKE_PROFIT_MULTIPLIER must be greater than 1")
	}
	if c.StopLossMultiplier <= 0 || c.StopLossMultiplier >= 1 {
		return errors.New("STOP_LOSS_MULTIPLIER must be between 0 and 1")
	}
	if c.StopLossMultiplier >= c.TakeProfitMultiplier {
		return errors.New("STOP_LOSS_MULTIPLIER must be below TAKE_PROFIT_MULTIPLIER")
	}
	if c.TrailingStopPercent <= 0 || c.TrailingStopPercent > 100 {
		return errors.New("TRAILING_STOP_PERCENT must be in (0, 100]")
	}
	if c.MaxHoldTimeMinutes <= 0 {
		return errors.New("MAX_HOLD_TIME_MIN must be positive")
	}
	if c.PriceCheckInterval <= 0 {
		return errors.New("PRICE_CHECK_INTERVAL must be positive")
	}
	return nil
}
