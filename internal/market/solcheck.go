package market

import (
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// ValidateMint checks that an address decodes to a 32-byte base58 public
// key before any network round trip is spent on it. The extractor only
// matched pattern shape; a 31- or 33-byte decode still looks like base58.
// Returns the decoded key on success.
func ValidateMint(address string) ([]byte, error) {
	raw, err := base58.Decode(address)
	if err != nil {
		return nil, fmt.Errorf("decode mint address: %w", err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("mint address must decode to 32 bytes, got %d", len(raw))
	}
	return raw, nil
}

// OnCurve reports whether a 32-byte key is a valid ed25519 curve point.
// Program-derived addresses are intentionally off-curve, so this is a
// diagnostic classification, not a validity check.
func OnCurve(raw []byte) bool {
	if len(raw) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(raw)
	return err == nil
}
