package discovery

import (
	"encoding/json"
	"testing"
	"time"

	"memesniper/src/model"
)

// A real 32-byte base58 address (the wrapped SOL mint).
const validMint = "So11111111111111111111111111111111111111112"

func TestExtractMintFromLogs(t *testing.T) {
	logs := []string{
		"Program 6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P invoke [1]",
		"Program log: Instruction: Create",
		"Program log: Name: DOGE KILLER",
		"Program log: Mint: " + validMint,
		"Program 6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P success",
	}

	mint, name, ok := ExtractMintFromLogs(logs)
	if !ok {
		t.Fatal("expected a mint to be extracted")
	}
	if mint != validMint {
		t.Fatalf("unexpected mint %q", mint)
	}
	if name != "DOGE KILLER" {
		t.Fatalf("unexpected name %q", name)
	}
}

func TestExtractMintRequiresCreateInstruction(t *testing.T) {
	logs := []string{
		"Program log: Instruction: Buy",
		"Program log: Mint: " + validMint,
	}
	if _, _, ok := ExtractMintFromLogs(logs); ok {
		t.Fatal("buy transactions must not be treated as launches")
	}
}

func TestExtractMintRejectsInvalidAddress(t *testing.T) {
	logs := []string{
		"Program log: Instruction: Create",
		"Program log: Mint: not-a-real-address-0OIl",
	}
	if _, _, ok := ExtractMintFromLogs(logs); ok {
		t.Fatal("invalid base58 address must be rejected")
	}
}

func TestIsValidMint(t *testing.T) {
	if !IsValidMint(validMint) {
		t.Fatal("wrapped SOL mint should validate")
	}
	if IsValidMint("abc") {
		t.Fatal("short string should not validate")
	}
	if IsValidMint("0OIl") {
		t.Fatal("non-base58 characters should not validate")
	}
}

func TestHandleMessageEmitsToken(t *testing.T) {
	var got model.DiscoveredToken
	l := NewListener(Config{}, func(token model.DiscoveredToken) { got = token })
	l.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

	payload := map[string]any{
		"method": "logsNotification",
		"params": map[string]any{
			"result": map[string]any{
				"value": map[string]any{
					"signature": "sig123",
					"logs": []string{
						"Program log: Instruction: Create",
						"Program log: Mint: " + validMint,
					},
				},
			},
		},
	}
	raw, _ := json.Marshal(payload)
	l.handleMessage(raw)

	if got.Mint != validMint {
		t.Fatalf("expected token emission, got %+v", got)
	}
	if got.DiscoveredAt.IsZero() {
		t.Fatal("DiscoveredAt should be stamped")
	}
}

func TestHandleMessageSkipsFailedTransactions(t *testing.T) {
	called := false
	l := NewListener(Config{}, func(model.DiscoveredToken) { called = true })

	payload := map[string]any{
		"method": "logsNotification",
		"params": map[string]any{
			"result": map[string]any{
				"value": map[string]any{
					"err": map[string]any{"InstructionError": []any{}},
					"logs": []string{
						"Program log: Instruction: Create",
						"Program log: Mint: " + validMint,
					},
				},
			},
		},
	}
	raw, _ := json.Marshal(payload)
	l.handleMessage(raw)

	if called {
		t.Fatal("failed transactions must not emit tokens")
	}
}
