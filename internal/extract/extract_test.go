package extract

import (
	"testing"

	"token-pnl-bot/internal/domain"
)

const (
	evmMixedCase = "0xAbCdEf1234567890aBcDeF1234567890AbCdEf12"
	evmLower     = "0xabcdef1234567890abcdef1234567890abcdef12"
	solMint      = "So11111111111111111111111111111111111111112"
)

func TestExtract_EVMLowercased(t *testing.T) {
	id, ok := Extract("check this one " + evmMixedCase + " asap")
	if !ok {
		t.Fatal("expected a match")
	}
	if id.Family != domain.ChainEVM {
		t.Errorf("expected family EVM, got %s", id.Family)
	}
	if id.Address != evmLower {
		t.Errorf("expected lowercased address %s, got %s", evmLower, id.Address)
	}
}

func TestExtract_SOLCasePreserved(t *testing.T) {
	id, ok := Extract("new launch: " + solMint)
	if !ok {
		t.Fatal("expected a match")
	}
	if id.Family != domain.ChainSOL {
		t.Errorf("expected family SOL, got %s", id.Family)
	}
	if id.Address != solMint {
		t.Errorf("expected case-preserved address %s, got %s", solMint, id.Address)
	}
}

func TestExtract_EVMPrecedence(t *testing.T) {
	// Both patterns present: EVM must win regardless of position.
	id, ok := Extract(solMint + " vs " + evmMixedCase)
	if !ok {
		t.Fatal("expected a match")
	}
	if id.Family != domain.ChainEVM {
		t.Errorf("expected family EVM, got %s", id.Family)
	}
	if id.Address != evmLower {
		t.Errorf("expected EVM address, got %s", id.Address)
	}
}

func TestExtract_FirstMatchWins(t *testing.T) {
	other := "0x1111111111111111111111111111111111111111"
	id, ok := Extract(other + " " + evmLower)
	if !ok {
		t.Fatal("expected a match")
	}
	if id.Address != other {
		t.Errorf("expected first address %s, got %s", other, id.Address)
	}
}

func TestExtract_NoMatch(t *testing.T) {
	for _, text := range []string{
		"",
		"gm everyone",
		"0x1234",                     // too short for EVM
		"0OIl0OIl0OIl0OIl0OIl0OIl0OIl0OIl0OIl", // ambiguous chars excluded from base58
		"short58string",
	} {
		if _, ok := Extract(text); ok {
			t.Errorf("expected no match for %q", text)
		}
	}
}
