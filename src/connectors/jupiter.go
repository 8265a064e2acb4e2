// REST client for the Jupiter aggregator. Quote and swap only; transaction
// signing and submission are delegated to the execution endpoint.
package connectors

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	logger "github.com/sirupsen/logrus"
)

const (
	defaultRetryAttempts   = 3
	defaultRetryBaseDelay  = 500 * time.Millisecond
	defaultRetryMaxBackoff = 8 * time.Second
)

// ErrSwapFailed marks any swap that did not complete. No partial-fill
// semantics are modeled; a failed swap is simply failed.
var ErrSwapFailed = errors.New("swap execution failed")

// Quote is the aggregator's answer for one prospective swap.
type Quote struct {
	InputMint      string `json:"inputMint"`
	OutputMint     string `json:"outputMint"`
	InAmount       int64  `json:"-"`
	OutAmount      int64  `json:"-"`
	SlippageBps    int    `json:"slippageBps"`
	RawInAmount    string `json:"inAmount"`
	RawOutAmount   string `json:"outAmount"`
	PriceImpactPct string `json:"priceImpactPct,omitempty"`
}

// SwapRequest describes one swap leg to execute.
type SwapRequest struct {
	InputMint      string
	OutputMint     string
	AmountLamports int64
	SlippageBps    int
	TipLamports    int64
}

// SwapResult is the executed swap reference plus observed latency.
type SwapResult struct {
	TxSignature string
	LatencyMs   float64
}

type swapResponse struct {
	TxSignature string `json:"txSignature"`
	Error       string `json:"error,omitempty"`
}

// JupiterClient talks to the quote and swap endpoints with bounded retry.
type JupiterClient struct {
	http *resty.Client
	cfg  Config
	now  func() time.Time
}

func NewJupiterClient(cfg Config) *JupiterClient {
	retries := cfg.RetryAttempts
	if retries <= 0 {
		retries = defaultRetryAttempts
	}

	client := resty.New().
		SetBaseURL(cfg.JupiterBaseURL).
		SetTimeout(cfg.RequestTimeout).
		SetRetryCount(retries).
		SetRetryWaitTime(defaultRetryBaseDelay).
		SetRetryMaxWaitTime(defaultRetryMaxBackoff)

	return &JupiterClient{http: client, cfg: cfg, now: time.Now}
}

// GetQuote fetches the expected output amount for a swap.
func (c *JupiterClient) GetQuote(ctx context.Context, inputMint, outputMint string, amountLamports int64, slippageBps int) (*Quote, error) {
	if slippageBps <= 0 {
		slippageBps = c.cfg.SlippageBps
	}

	if c.cfg.DryRun {
		// 1% synthetic spread, deterministic for tests.
		out := amountLamports - amountLamports/100
		return &Quote{
			InputMint:   inputMint,
			OutputMint:  outputMint,
			InAmount:    amountLamports,
			OutAmount:   out,
			SlippageBps: slippageBps,
		}, nil
	}

	var quote Quote
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"inputMint":   inputMint,
			"outputMint":  outputMint,
			"amount":      strconv.FormatInt(amountLamports, 10),
			"slippageBps": strconv.Itoa(slippageBps),
		}).
		SetResult(&quote).
		Get("/quote")
	if err != nil {
		return nil, fmt.Errorf("jupiter quote request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("jupiter quote request: status %d", resp.StatusCode())
	}

	quote.InAmount, _ = strconv.ParseInt(quote.RawInAmount, 10, 64)
	quote.OutAmount, err = strconv.ParseInt(quote.RawOutAmount, 10, 64)
	if err != nil || quote.OutAmount <= 0 {
		return nil, fmt.Errorf("jupiter quote request: bad outAmount %q", quote.RawOutAmount)
	}

	logger.WithFields(logger.Fields{
		"input_mint":   inputMint,
		"output_mint":  outputMint,
		"amount":       amountLamports,
		"out_amount":   quote.OutAmount,
		"slippage_bps": slippageBps,
	}).Debug("[connectors] quote retrieved")

	return &quote, nil
}

// ExecuteSwap runs one swap and returns the venue transaction reference.
// Any error wraps ErrSwapFailed.
func (c *JupiterClient) ExecuteSwap(ctx context.Context, req SwapRequest) (*SwapResult, error) {
	if req.SlippageBps <= 0 {
		req.SlippageBps = c.cfg.SlippageBps
	}
	if req.TipLamports <= 0 {
		req.TipLamports = c.cfg.BasePriorityFeeLamports
	}

	if c.cfg.DryRun {
		logger.WithFields(logger.Fields{
			"input_mint":   req.InputMint,
			"output_mint":  req.OutputMint,
			"amount":       req.AmountLamports,
			"slippage_bps": req.SlippageBps,
			"tip_lamports": req.TipLamports,
		}).Info("[connectors] DRY RUN swap")
		return &SwapResult{TxSignature: "dry_run_tx_signature"}, nil
	}

	start := c.now()

	var out swapResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{
			"inputMint":                 req.InputMint,
			"outputMint":                req.OutputMint,
			"amount":                    req.AmountLamports,
			"slippageBps":               req.SlippageBps,
			"prioritizationFeeLamports": req.TipLamports,
			"userPublicKey":             c.cfg.WalletPublicKey,
		}).
		SetResult(&out).
		Post("/swap")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSwapFailed, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: status %d", ErrSwapFailed, resp.StatusCode())
	}
	if out.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrSwapFailed, out.Error)
	}
	if out.TxSignature == "" {
		return nil, fmt.Errorf("%w: no transaction signature returned", ErrSwapFailed)
	}

	latency := c.now().Sub(start)

	logger.WithFields(logger.Fields{
		"input_mint":   req.InputMint,
		"output_mint":  req.OutputMint,
		"amount":       req.AmountLamports,
		"tx_signature": out.TxSignature,
		"latency_ms":   latency.Milliseconds(),
	}).Info("[connectors] swap executed")

	return &SwapResult{
		TxSignature: out.TxSignature,
		LatencyMs:   float64(latency.Microseconds()) / 1000,
	}, nil
}
