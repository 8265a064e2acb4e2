package discovery

import (
	"strings"

	"github.com/mr-tron/base58"
)

const mintAddressBytes = 32

// IsValidMint reports whether s decodes as a 32-byte base58 Solana address.
func IsValidMint(s string) bool {
	raw, err := base58.Decode(s)
	if err != nil {
		return false
	}
	return len(raw) == mintAddressBytes
}

// ExtractMintFromLogs scans transaction log lines emitted by a token launch
// and returns the new mint address. The launch program prints the mint on a
// "Mint: <address>" line; token creations are recognized by the
// "Instruction: Create" marker.
func ExtractMintFromLogs(logs []string) (mint, name string, ok bool) {
	created := false
	for _, line := range logs {
		if strings.Contains(line, "Instruction: Create") {
			created = true
			continue
		}
		if !created {
			continue
		}
		idx := strings.Index(line, "Mint: ")
		if idx < 0 {
			continue
		}
		candidate := strings.Fields(line[idx+len("Mint: "):])
		if len(candidate) == 0 {
			continue
		}
		if IsValidMint(candidate[0]) {
			return candidate[0], extractName(logs), true
		}
	}
	return "", "", false
}

// extractName pulls a "Name: <text>" log line when present. Best-effort; an
// empty name is fine downstream.
func extractName(logs []string) string {
	for _, line := range logs {
		if idx := strings.Index(line, "Name: "); idx >= 0 {
			return strings.TrimSpace(line[idx+len("Name: "):])
		}
	}
	return ""
}
