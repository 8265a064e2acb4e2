package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	logger "github.com/sirupsen/logrus"
)

const telegramMessageLimit = 4000

// Channel is one alert sink. Send is best-effort: it reports success but
// callers never treat a false as an error.
type Channel interface {
	Name() string
	Available() bool
	Send(ctx context.Context, message string) bool
}

// LogChannel writes alerts to the application log. Always available, so an
// unconfigured bot still surfaces every alert somewhere.
type LogChannel struct{}

func (LogChannel) Name() string    { return "log" }
func (LogChannel) Available() bool { return true }

func (LogChannel) Send(_ context.Context, message string) bool {
	logger.WithField("channel", "log").Info("[notify] " + message)
	return true
}

// TelegramChannel delivers alerts through the Telegram Bot API.
type TelegramChannel struct {
	http   *resty.Client
	chatID string
	dryRun bool
}

func NewTelegramChannel(cfg Config) *TelegramChannel {
	client := resty.New().
		SetBaseURL(fmt.Sprintf("%s/bot%s", cfg.TelegramAPIURL, cfg.TelegramToken)).
		SetTimeout(10 * time.Second).
		SetRetryCount(2)

	ch := &TelegramChannel{http: client, chatID: cfg.TelegramChatID, dryRun: cfg.DryRun}
	if cfg.TelegramToken == "" || cfg.TelegramChatID == "" {
		ch.http = nil
	}
	return ch
}

func (c *TelegramChannel) Name() string    { return "telegram" }
func (c *TelegramChannel) Available() bool { return c.http != nil }

func (c *TelegramChannel) Send(ctx context.Context, message string) bool {
	if !c.Available() {
		return false
	}
	if c.dryRun {
		logger.WithField("channel", "telegram").Debug("[notify] DRY RUN, message not sent")
		return true
	}

	if len(message) > telegramMessageLimit {
		message = message[:telegramMessageLimit] + "... (truncated)"
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"chat_id": c.chatID, "text": message}).
		Post("/sendMessage")
	if err != nil {
		logger.WithError(err).Warn("[notify] telegram send failed")
		return false
	}
	if resp.IsError() {
		logger.WithField("status", resp.StatusCode()).Warn("[notify] telegram send failed")
		return false
	}
	return true
}

// WebhookChannel POSTs alerts as JSON to a configured endpoint.
type WebhookChannel struct {
	http   *resty.Client
	url    string
	dryRun bool
}

func NewWebhookChannel(cfg Config) *WebhookChannel {
	return &WebhookChannel{
		http:   resty.New().SetTimeout(10 * time.Second).SetRetryCount(2),
		url:    cfg.WebhookURL,
		dryRun: cfg.DryRun,
	}
}

func (c *WebhookChannel) Name() string    { return "webhook" }
func (c *WebhookChannel) Available() bool { return c.url != "" }

func (c *WebhookChannel) Send(ctx context.Context, message string) bool {
	if !c.Available() {
		return false
	}
	if c.dryRun {
		logger.WithField("channel", "webhook").Debug("[notify] DRY RUN, message not sent")
		return true
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"text": message}).
		Post(c.url)
	if err != nil {
		logger.WithError(err).Warn("[notify] webhook send failed")
		return false
	}
	if resp.IsError() {
		logger.WithField("status", resp.StatusCode()).Warn("[notify] webhook send failed")
		return false
	}
	return true
}
