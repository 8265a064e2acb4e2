package pricing

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	BirdEyeBaseURL string        `envconfig:"BIRDEYE_BASE_URL" default:"https://public-api.birdeye.so"`
	BirdEyeAPIKey  string        `envconfig:"BIRDEYE_API_KEY"`
	RequestTimeout time.Duration `envconfig:"BIRDEYE_TIMEOUT" default:"10s"`
	RetryAttempts  int           `envconfig:"BIRDEYE_RETRY_ATTEMPTS" default:"3"`
	PriceCacheTTL  time.Duration `envconfig:"PRICE_CACHE_TTL" default:"5s"`
	DryRun         bool          `envconfig:"DRY_RUN" default:"false"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
