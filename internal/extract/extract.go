// Package extract scans free-form text for token contract addresses.
package extract

import (
	"regexp"
	"strings"

	"token-pnl-bot/internal/domain"
)

// evmPattern matches a 0x-prefixed 20-byte hex contract address.
var evmPattern = regexp.MustCompile(`0x[0-9a-fA-F]{40}`)

// solPattern matches a base58 string in the Solana public key length range.
// Base58 excludes the visually ambiguous characters 0, O, I and l.
var solPattern = regexp.MustCompile(`[1-9A-HJ-NP-Za-km-z]{32,44}`)

// Extract returns the first token address found in text, or ok=false.
//
// The EVM pattern is tried first: it is unambiguous, while the looser
// base58 pattern can match substrings of many unrelated strings and must
// not shadow it. The first match wins in both cases. EVM addresses are
// lowercased, SOL addresses are returned as written. No validation beyond
// pattern shape happens here; that belongs to the market resolver.
func Extract(text string) (domain.TokenIdentifier, bool) {
	if m := evmPattern.FindString(text); m != "" {
		return domain.TokenIdentifier{
			Address: strings.ToLower(m),
			Family:  domain.ChainEVM,
		}, true
	}
	if m := solPattern.FindString(text); m != "" {
		return domain.TokenIdentifier{
			Address: m,
			Family:  domain.ChainSOL,
		}, true
	}
	return domain.TokenIdentifier{}, false
}
