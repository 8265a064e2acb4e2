package connectors

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	JupiterBaseURL          string        `envconfig:"JUPITER_BASE_URL" default:"https://quote-api.jup.ag/v6"`
	WalletPublicKey         string        `envconfig:"WALLET_PUBLIC_KEY"`
	SlippageBps             int           `envconfig:"SLIPPAGE_BPS" default:"50"`
	BasePriorityFeeLamports int64         `envconfig:"BASE_PRIORITY_FEE_LAMPORTS" default:"100000"`
	RequestTimeout          time.Duration `envconfig:"JUPITER_TIMEOUT" default:"15s"`
	RetryAttempts           int           `envconfig:"JUPITER_RETRY_ATTEMPTS" default:"3"`
	DryRun                  bool          `envconfig:"DRY_RUN" default:"false"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
