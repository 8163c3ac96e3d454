package market

import (
	"testing"

	"filippo.io/edwards25519"
)

const wsolMint = "So11111111111111111111111111111111111111112"

func TestValidateMint_WellFormed(t *testing.T) {
	raw, err := ValidateMint(wsolMint)
	if err != nil {
		t.Fatalf("ValidateMint failed: %v", err)
	}
	if len(raw) != 32 {
		t.Errorf("expected 32 bytes, got %d", len(raw))
	}
}

func TestValidateMint_Rejects(t *testing.T) {
	cases := []struct {
		name    string
		address string
	}{
		{"empty", ""},
		{"invalid base58 chars", "0OIl0OIl0OIl0OIl0OIl0OIl0OIl0OIl"},
		{"too short", "abc"},
		{"wrong decoded length", "zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ValidateMint(tc.address); err == nil {
				t.Errorf("expected error for %q", tc.address)
			}
		})
	}
}

func TestOnCurve_RejectsBadLength(t *testing.T) {
	if OnCurve([]byte{1, 2, 3}) {
		t.Error("expected false for short input")
	}
}

func TestOnCurve_GeneratorPoint(t *testing.T) {
	raw := edwards25519.NewGeneratorPoint().Bytes()
	if !OnCurve(raw) {
		t.Error("expected generator point encoding to be on curve")
	}
}
