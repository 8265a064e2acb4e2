package discovery

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	logger "github.com/sirupsen/logrus"

	"memesniper/src/model"
)

// TokenHandler receives each newly discovered token. It must not block; long
// work belongs on the handler's own goroutine.
type TokenHandler func(token model.DiscoveredToken)

type logsNotification struct {
	Method string `json:"method"`
	Params struct {
		Result struct {
			Value struct {
				Signature string   `json:"signature"`
				Err       any      `json:"err"`
				Logs      []string `json:"logs"`
			} `json:"value"`
		} `json:"result"`
	} `json:"params"`
}

// Listener subscribes to launch-program transaction logs over the Solana RPC
// websocket and emits one DiscoveredToken per token creation.
type Listener struct {
	cfg     Config
	handler TokenHandler
	now     func() time.Time
}

func NewListener(cfg Config, handler TokenHandler) *Listener {
	return &Listener{cfg: cfg, handler: handler, now: time.Now}
}

// Run blocks until ctx is cancelled, reconnecting with capped exponential
// backoff whenever the websocket drops.
func (l *Listener) Run(ctx context.Context) {
	wait := l.cfg.ReconnectBaseWait
	for {
		if ctx.Err() != nil {
			return
		}

		err := l.listenOnce(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			logger.WithError(err).Warn("[discovery] websocket dropped, reconnecting")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
		wait *= 2
		if wait > l.cfg.ReconnectMaxWait {
			wait = l.cfg.ReconnectMaxWait
		}
	}
}

func (l *Listener) listenOnce(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 15 * time.Second, Proxy: http.ProxyFromEnvironment}
	conn, _, err := dialer.DialContext(ctx, l.cfg.SolanaWSURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Close the socket when ctx ends so the blocked read returns.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	sub := map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "logsSubscribe",
		"params": []any{
			map[string]any{"mentions": []string{l.cfg.PumpFunProgramID}},
			map[string]any{"commitment": "processed"},
		},
	}
	if err := conn.WriteJSON(sub); err != nil {
		return err
	}

	logger.WithField("program", l.cfg.PumpFunProgramID).Info("[discovery] subscribed to launch logs")

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		l.handleMessage(msg)
	}
}

func (l *Listener) handleMessage(msg []byte) {
	var note logsNotification
	if err := json.Unmarshal(msg, &note); err != nil {
		return
	}
	if note.Method != "logsNotification" {
		return
	}
	value := note.Params.Result.Value
	if value.Err != nil {
		return
	}

	mint, name, ok := ExtractMintFromLogs(value.Logs)
	if !ok {
		return
	}

	logger.WithFields(logger.Fields{
		"mint":      mint,
		"name":      name,
		"signature": value.Signature,
	}).Info("[discovery] new token")

	l.handler(model.DiscoveredToken{Mint: mint, Name: name, DiscoveredAt: l.now()})
}
