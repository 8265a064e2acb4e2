package notifications

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"
)

// Service fans alerts out to every available channel. Delivery is
// best-effort: a dead Telegram token must never stall a trade close.
type Service struct {
	channels []Channel
}

func NewService(cfg Config) *Service {
	return &Service{
		channels: []Channel{
			LogChannel{},
			NewTelegramChannel(cfg),
			NewWebhookChannel(cfg),
		},
	}
}

// NewServiceWithChannels is used by tests to inject fake sinks.
func NewServiceWithChannels(channels ...Channel) *Service {
	return &Service{channels: channels}
}

func (s *Service) send(ctx context.Context, message string) {
	for _, ch := range s.channels {
		if !ch.Available() {
			continue
		}
		if ok := ch.Send(ctx, message); !ok {
			logger.WithField("channel", ch.Name()).Warn("[notify] alert delivery failed")
		}
	}
}

// SendTradeAlert prefixes the message with a short trade reference.
func (s *Service) SendTradeAlert(ctx context.Context, tradeID, message string) {
	ref := tradeID
	if len(ref) > 8 {
		ref = ref[:8]
	}
	s.send(ctx, fmt.Sprintf("[Trade %s] %s", ref, message))
}

func (s *Service) SendErrorAlert(ctx context.Context, component, message string) {
	s.send(ctx, fmt.Sprintf("ERROR [%s] %s", component, message))
}

func (s *Service) SendSystemAlert(ctx context.Context, message string) {
	s.send(ctx, message)
}
