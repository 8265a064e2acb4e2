package notifications

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	TelegramAPIURL string `envconfig:"TELEGRAM_API_URL" default:"https://api.telegram.org"`
	TelegramToken  string `envconfig:"TELEGRAM_TOKEN"`
	TelegramChatID string `envconfig:"TELEGRAM_CHAT_ID"`
	WebhookURL     string `envconfig:"ALERT_WEBHOOK_URL"`
	DryRun         bool   `envconfig:"DRY_RUN" default:"false"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
