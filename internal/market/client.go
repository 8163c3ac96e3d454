// Package market resolves token identifiers to normalized quotes via a
// DexScreener-style pairs API.
package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"token-pnl-bot/internal/domain"
)

// DefaultTimeout bounds a single resolution request.
const DefaultTimeout = 10 * time.Second

// ErrUnavailable is returned when no quote can be produced for an
// identifier. Transport failures, malformed payloads and empty pair
// lists are deliberately indistinguishable: all of them mean "try later".
var ErrUnavailable = errors.New("market data unavailable")

// Resolver produces a quote for a token identifier.
type Resolver interface {
	Resolve(ctx context.Context, id domain.TokenIdentifier) (domain.Quote, error)
}

// Client implements Resolver over HTTP. It performs exactly one request
// per call and never retries; retry policy belongs to the caller.
type Client struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// Option configures Client.
type Option func(*Client)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// WithLogger sets the client logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient creates a market data client for the given API base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: DefaultTimeout},
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// pairsResponse is the upstream payload: zero or more trading pairs.
type pairsResponse struct {
	Pairs []pairRecord `json:"pairs"`
}

type pairRecord struct {
	ChainID   string    `json:"chainId"`
	PriceUSD  string    `json:"priceUsd"`
	MarketCap float64   `json:"marketCap"`
	FDV       float64   `json:"fdv"`
	BaseToken baseToken `json:"baseToken"`
}

type baseToken struct {
	Symbol string `json:"symbol"`
}

// Resolve fetches the pair list for an identifier and normalizes the
// first record into a Quote. The first pair is authoritative; ties are
// broken by source-reported order, never by best-pick logic. Missing
// numeric fields coerce to 0 and a missing symbol falls back to the
// first 8 characters of the address.
func (c *Client) Resolve(ctx context.Context, id domain.TokenIdentifier) (domain.Quote, error) {
	if id.Family == domain.ChainSOL {
		raw, err := ValidateMint(id.Address)
		if err != nil {
			c.log.Debug().Str("address", id.Address).Err(err).Msg("rejecting malformed SOL mint")
			return domain.Quote{}, fmt.Errorf("resolve %s: %w", id.Address, ErrUnavailable)
		}
		// Off-curve mints are program-derived; worth knowing when debugging
		// resolution misses, irrelevant to validity.
		c.log.Debug().Str("address", id.Address).Bool("on_curve", OnCurve(raw)).Msg("resolving SOL mint")
	}

	url := c.baseURL + "/latest/dex/tokens/" + id.Address
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("resolve %s: %w", id.Address, ErrUnavailable)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Debug().Str("address", id.Address).Err(err).Msg("market request failed")
		return domain.Quote{}, fmt.Errorf("resolve %s: %w", id.Address, ErrUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Debug().Str("address", id.Address).Int("status", resp.StatusCode).Msg("market request rejected")
		return domain.Quote{}, fmt.Errorf("resolve %s: %w", id.Address, ErrUnavailable)
	}

	var payload pairsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.log.Debug().Str("address", id.Address).Err(err).Msg("malformed market payload")
		return domain.Quote{}, fmt.Errorf("resolve %s: %w", id.Address, ErrUnavailable)
	}
	if len(payload.Pairs) == 0 {
		return domain.Quote{}, fmt.Errorf("resolve %s: %w", id.Address, ErrUnavailable)
	}

	return normalizeQuote(id, payload.Pairs[0]), nil
}

// normalizeQuote maps the authoritative pair record onto the Quote model.
func normalizeQuote(id domain.TokenIdentifier, pair pairRecord) domain.Quote {
	price, err := strconv.ParseFloat(pair.PriceUSD, 64)
	if err != nil || price < 0 {
		price = 0
	}

	marketCap := pair.MarketCap
	if marketCap <= 0 {
		marketCap = pair.FDV
	}
	if marketCap < 0 {
		marketCap = 0
	}

	symbol := pair.BaseToken.Symbol
	if symbol == "" {
		symbol = fallbackSymbol(id.Address)
	}

	chainTag := pair.ChainID
	if chainTag == "" {
		chainTag = strings.ToLower(string(id.Family))
	}

	return domain.Quote{
		Price:     price,
		MarketCap: marketCap,
		Symbol:    symbol,
		ChainTag:  chainTag,
	}
}

// fallbackSymbol derives a display symbol from the address itself.
func fallbackSymbol(address string) string {
	if len(address) <= 8 {
		return address
	}
	return address[:8]
}
