package pricing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testConfig(baseURL string) Config {
	return Config{
		BirdEyeBaseURL: baseURL,
		BirdEyeAPIKey:  "test-key",
		RequestTimeout: 2 * time.Second,
		RetryAttempts:  0,
		PriceCacheTTL:  5 * time.Second,
	}
}

func TestTokenPriceFetchAndCache(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path != "/defi/price" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-API-KEY") != "test-key" {
			t.Fatalf("missing api key header")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"value":0.0042}}`))
	}))
	defer srv.Close()

	svc := NewService(testConfig(srv.URL))

	price, err := svc.TokenPrice(context.Background(), "MintAAA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if price != 0.0042 {
		t.Fatalf("expected 0.0042, got %v", price)
	}

	// Second lookup inside the TTL must come from cache.
	if _, err := svc.TokenPrice(context.Background(), "MintAAA"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 upstream call, got %d", calls)
	}
}

func TestTokenPriceInvalidResponseIsUnknown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":false}`))
	}))
	defer srv.Close()

	svc := NewService(testConfig(srv.URL))

	price, err := svc.TokenPrice(context.Background(), "MintBBB")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if price != 0 {
		t.Fatalf("invalid response must read as unknown (0), got %v", price)
	}
}

func TestMarketCapIsTwiceLiquidity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/defi/liquidity_pool" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"liquidity":12000}}`))
	}))
	defer srv.Close()

	svc := NewService(testConfig(srv.URL))

	cap, err := svc.MarketCap(context.Background(), "MintCCC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cap != 24000 {
		t.Fatalf("expected 24000, got %v", cap)
	}
}

func TestDryRunIsDeterministic(t *testing.T) {
	cfg := testConfig("http://unused.invalid")
	cfg.DryRun = true
	svc := NewService(cfg)

	p1, err := svc.TokenPrice(context.Background(), "MintDDD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	svc.ClearCache()
	p2, err := svc.TokenPrice(context.Background(), "MintDDD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p1 != p2 {
		t.Fatalf("dry-run prices must be deterministic: %v vs %v", p1, p2)
	}
	if p1 <= 0 {
		t.Fatalf("dry-run price must be positive, got %v", p1)
	}

	liq, err := svc.TokenLiquidity(context.Background(), "MintDDD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if liq < 10000 {
		t.Fatalf("dry-run liquidity out of range: %v", liq)
	}
}
