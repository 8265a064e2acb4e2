package risk

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	DailySpendLimitSOL            float64 `envconfig:"DAILY_SPEND_LIMIT_SOL" default:"1.0"`
	MaxConsecutiveFailures        int     `envconfig:"MAX_CONSECUTIVE_FAILURES" default:"5"`
	CircuitBreakerCooldownMinutes int     `envconfig:"CIRCUIT_BREAKER_COOLDOWN_MIN" default:"60"`
	MaxSlippagePercent            float64 `envconfig:"MAX_SLIPPAGE_PERCENT" default:"5.0"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}

// Validate rejects configurations that would make the guards meaningless.
func (c Config) Validate() error {
	if c.DailySpendLimitSOL <= 0 {
		return fmt.Errorf("DAILY_SPEND_LIMIT_SOL must be positive, got %v", c.DailySpendLimitSOL)
	}
	if c.MaxConsecutiveFailures < 1 {
		return fmt.Errorf("MAX_CONSECUTIVE_FAILURES must be at least 1, got %d", c.MaxConsecutiveFailures)
	}
	if c.CircuitBreakerCooldownMinutes < 1 {
		return fmt.Errorf("CIRCUIT_BREAKER_COOLDOWN_MIN must be at least 1, got %d", c.CircuitBreakerCooldownMinutes)
	}
	if c.MaxSlippagePercent <= 0 {
		return fmt.Errorf("MAX_SLIPPAGE_PERCENT must be positive, got %v", c.MaxSlippagePercent)
	}
	return nil
}
