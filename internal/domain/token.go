package domain

// ChainFamily classifies the address format of a token identifier.
type ChainFamily string

const (
	ChainEVM ChainFamily = "EVM" // 0x-prefixed 20-byte hex address
	ChainSOL ChainFamily = "SOL" // base58-encoded 32-byte public key
)

// TokenIdentifier is a normalized token contract address plus its chain
// family. EVM addresses are lowercased; SOL addresses keep their case
// because base58 is case-sensitive.
type TokenIdentifier struct {
	Address string
	Family  ChainFamily
}

// Key returns the uniqueness key used by snapshot stores.
func (id TokenIdentifier) Key() string {
	return id.Address
}

// Quote is a normalized market data point for a token.
// A zero Price or MarketCap means the upstream source has no liquidity
// data yet; it is a valid value, not an error.
type Quote struct {
	Price     float64 // USD spot price
	MarketCap float64 // USD market cap (or FDV when cap is unreported)
	Symbol    string  // display symbol
	ChainTag  string  // source-reported chain id, e.g. "bsc", "solana"
}

// Snapshot is a quote frozen at capture time. Immutable once stored:
// the first snapshot recorded for an identifier is its baseline forever.
type Snapshot struct {
	Quote      Quote
	CapturedAt int64  // Unix timestamp in milliseconds
	RecordedBy string // optional attributor (sender name), may be empty
}

// Tracked pairs a stored identifier key with its baseline snapshot.
type Tracked struct {
	Address  string
	Snapshot Snapshot
}
