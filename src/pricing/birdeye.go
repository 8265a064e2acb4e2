package pricing

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	logger "github.com/sirupsen/logrus"
)

type priceResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Value float64 `json:"value"`
	} `json:"data"`
}

type liquidityResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Liquidity float64 `json:"liquidity"`
	} `json:"data"`
}

type cacheEntry struct {
	price     float64
	fetchedAt time.Time
}

// Service fetches token prices and liquidity from BirdEye. Prices are
// cached briefly so concurrent position monitors do not hammer the API. In
// dry-run mode all lookups return deterministic values derived from the
// mint string.
type Service struct {
	http *resty.Client
	cfg  Config

	mu    sync.Mutex
	cache map[string]cacheEntry
	now   func() time.Time
}

func NewService(cfg Config) *Service {
	client := resty.New().
		SetBaseURL(cfg.BirdEyeBaseURL).
		SetTimeout(cfg.RequestTimeout).
		SetRetryCount(cfg.RetryAttempts).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(8 * time.Second).
		SetHeader("X-API-KEY", cfg.BirdEyeAPIKey).
		SetHeader("x-chain", "solana")

	return &Service{
		http:  client,
		cfg:   cfg,
		cache: make(map[string]cacheEntry),
		now:   time.Now,
	}
}

// TokenPrice returns the current USD price for a mint. A zero price or an
// error means "unknown, retry next tick" — never an actual zero quote.
func (s *Service) TokenPrice(ctx context.Context, mint string) (float64, error) {
	if cached, ok := s.cachedPrice(mint); ok {
		return cached, nil
	}

	if s.cfg.DryRun {
		price := mockPrice(mint)
		logger.WithFields(logger.Fields{
			"token_mint": mint,
			"price":      price,
		}).Debug("[pricing] DRY RUN price")
		s.cachePrice(mint, price)
		return price, nil
	}

	var out priceResponse
	resp, err := s.http.R().
		SetContext(ctx).
		SetQueryParam("address", mint).
		SetResult(&out).
		Get("/defi/price")
	if err != nil {
		return 0, fmt.Errorf("birdeye price request: %w", err)
	}
	if resp.IsError() {
		return 0, fmt.Errorf("birdeye price request: status %d", resp.StatusCode())
	}
	if !out.Success || out.Data.Value <= 0 {
		logger.WithField("token_mint", mint).Warn("[pricing] invalid price response")
		return 0, nil
	}

	s.cachePrice(mint, out.Data.Value)
	return out.Data.Value, nil
}

// TokenLiquidity returns pooled liquidity in USD, zero when unknown.
func (s *Service) TokenLiquidity(ctx context.Context, mint string) (float64, error) {
	if s.cfg.DryRun {
		return mockLiquidity(mint), nil
	}

	var out liquidityResponse
	resp, err := s.http.R().
		SetContext(ctx).
		SetQueryParam("address", mint).
		SetResult(&out).
		Get("/defi/liquidity_pool")
	if err != nil {
		return 0, fmt.Errorf("birdeye liquidity request: %w", err)
	}
	if resp.IsError() {
		return 0, fmt.Errorf("birdeye liquidity request: status %d", resp.StatusCode())
	}
	if !out.Success {
		return 0, nil
	}
	return out.Data.Liquidity, nil
}

// MarketCap approximates market cap as liquidity times two. The
// approximation is part of this collaborator's contract; downstream code
// never re-derives it.
func (s *Service) MarketCap(ctx context.Context, mint string) (float64, error) {
	liquidity, err := s.TokenLiquidity(ctx, mint)
	if err != nil {
		return 0, err
	}
	return liquidity * 2, nil
}

func (s *Service) cachedPrice(mint string) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.cache[mint]
	if !ok || s.now().Sub(entry.fetchedAt) >= s.cfg.PriceCacheTTL {
		return 0, false
	}
	return entry.price, true
}

func (s *Service) cachePrice(mint string, price float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[mint] = cacheEntry{price: price, fetchedAt: s.now()}
}

// ClearCache drops all cached prices.
func (s *Service) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]cacheEntry)
}

func mintHash(mint string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(mint))
	return h.Sum64()
}

func mockPrice(mint string) float64 {
	return 0.001 * (1 + float64(mintHash(mint)%100)/1000)
}

func mockLiquidity(mint string) float64 {
	return 10000.0 * (1 + float64(mintHash(mint)%100)/100)
}
