package analysis

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	XAIBaseURL     string        `envconfig:"XAI_BASE_URL" default:"https://api.x.ai/v1"`
	XAIAPIKey      string        `envconfig:"XAI_API_KEY"`
	GrokModel      string        `envconfig:"GROK_MODEL" default:"grok-4"`
	RequestTimeout time.Duration `envconfig:"XAI_TIMEOUT" default:"30s"`
	RetryAttempts  int           `envconfig:"XAI_RETRY_ATTEMPTS" default:"3"`
	DryRun         bool          `envconfig:"DRY_RUN" default:"false"`
	DryRunScore    float64       `envconfig:"DRY_RUN_SCORE" default:"5.0"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
