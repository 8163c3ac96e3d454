// Package orchestrator wires the pipeline per incoming text event:
// extraction → resolution → snapshot store → multiplier → render.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"token-pnl-bot/internal/card"
	"token-pnl-bot/internal/domain"
	"token-pnl-bot/internal/extract"
	"token-pnl-bot/internal/gain"
	"token-pnl-bot/internal/market"
	"token-pnl-bot/internal/observability"
	"token-pnl-bot/internal/storage"
)

// ErrNoIdentifier is returned by command handlers when the input carries
// no token address. Free-form messages without one are silently ignored.
var ErrNoIdentifier = errors.New("no token address found")

// ErrUnknownIdentifier is returned when a PnL request references an
// identifier with no tracked baseline.
var ErrUnknownIdentifier = errors.New("no baseline tracked for identifier")

// Renderer produces the card image bytes.
type Renderer interface {
	Render(ctx context.Context, c card.Card) ([]byte, error)
}

// Orchestrator coordinates the pipeline components. It owns no state of
// its own; the snapshot store is the only shared mutable resource.
type Orchestrator struct {
	store    storage.SnapshotStore
	resolver market.Resolver
	renderer Renderer
	log      zerolog.Logger
	now      func() time.Time
}

// Options for creating an Orchestrator.
type Options struct {
	Store    storage.SnapshotStore
	Resolver market.Resolver
	Renderer Renderer
	Logger   zerolog.Logger
	Now      func() time.Time // defaults to time.Now
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	o := &Orchestrator{
		store:    opts.Store,
		resolver: opts.Resolver,
		renderer: opts.Renderer,
		log:      opts.Logger,
		now:      opts.Now,
	}
	if o.now == nil {
		o.now = time.Now
	}
	return o
}

// TrackResult reports the outcome of a first-sighting pass.
type TrackResult struct {
	ID       domain.TokenIdentifier
	Snapshot domain.Snapshot
	Inserted bool
}

// HandleMessage scans free-form chat text for a token address and seeds
// a baseline on first sight. Texts without an address and addresses the
// market source cannot quote yet are ignored without error: neither is
// worth a reply in a busy chat. A previously-seen address keeps its
// original baseline untouched.
func (o *Orchestrator) HandleMessage(ctx context.Context, text, sender string) (*TrackResult, error) {
	observability.RecordMessageSeen()

	id, ok := extract.Extract(text)
	if !ok {
		return nil, nil
	}

	quote, err := o.resolve(ctx, id)
	if err != nil {
		if errors.Is(err, market.ErrUnavailable) {
			o.log.Debug().Str("address", id.Address).Msg("sighting skipped, market data unavailable")
			return nil, nil
		}
		return nil, err
	}

	snap, inserted, err := o.store.InsertIfAbsent(ctx, id, quote, o.now().UnixMilli(), sender)
	if err != nil {
		observability.RecordPipelineError("store")
		return nil, fmt.Errorf("record baseline: %w", err)
	}
	if inserted {
		observability.RecordBaselineInserted()
		o.log.Info().
			Str("address", id.Address).
			Str("symbol", quote.Symbol).
			Float64("market_cap", quote.MarketCap).
			Msg("baseline recorded")
	}
	return &TrackResult{ID: id, Snapshot: snap, Inserted: inserted}, nil
}

// PnLResult is the rendered card plus its caption, handed to the
// transport for delivery.
type PnLResult struct {
	Image   []byte
	Caption string
}

// HandlePnL renders a profit-and-loss card for the address found in
// text. The identifier must already have a baseline; a PnL request is a
// comparison, not a tracking action.
func (o *Orchestrator) HandlePnL(ctx context.Context, text string) (*PnLResult, error) {
	id, ok := extract.Extract(text)
	if !ok {
		return nil, ErrNoIdentifier
	}

	baseline, err := o.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", id.Address, ErrUnknownIdentifier)
		}
		return nil, fmt.Errorf("load baseline: %w", err)
	}

	current, err := o.resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	multiplier := gain.Multiplier(baseline, current)

	renderStart := time.Now()
	image, err := o.renderer.Render(ctx, card.Card{
		Symbol:     current.Symbol,
		ChainTag:   current.ChainTag,
		Baseline:   baseline,
		Current:    current,
		Multiplier: multiplier,
	})
	if err != nil {
		// Encoding failure is the one hard failure of the pipeline.
		observability.RecordPipelineError("render")
		return nil, fmt.Errorf("render card: %w", err)
	}
	observability.RecordCardRendered(string(gain.TierFor(multiplier)), time.Since(renderStart).Seconds())

	return &PnLResult{
		Image:   image,
		Caption: fmt.Sprintf("📊 %s — %.2fx (%s)", current.Symbol, multiplier, current.ChainTag),
	}, nil
}

// HandleList formats the tracked set for a chat reply.
func (o *Orchestrator) HandleList(ctx context.Context) (string, error) {
	entries, err := o.store.List(ctx)
	if err != nil {
		return "", fmt.Errorf("list tracked tokens: %w", err)
	}
	if len(entries) == 0 {
		return "No tokens tracked yet.", nil
	}

	var b strings.Builder
	b.WriteString("📋 Tracked tokens:\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "- %s (%s) — %s\n", e.Snapshot.Quote.Symbol, e.Snapshot.Quote.ChainTag, e.Address)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// HandleUntrack removes the baseline for the address found in text.
func (o *Orchestrator) HandleUntrack(ctx context.Context, text string) (string, error) {
	id, ok := extract.Extract(text)
	if !ok {
		return "", ErrNoIdentifier
	}

	removed, err := o.store.Remove(ctx, id)
	if err != nil {
		return "", fmt.Errorf("untrack %s: %w", id.Address, err)
	}
	if !removed {
		return "That token isn't being tracked.", nil
	}
	observability.RecordBaselineRemoved()
	o.log.Info().Str("address", id.Address).Msg("baseline removed")
	return "❌ Untracked " + id.Address, nil
}

// HandleStart returns the welcome text.
func (o *Orchestrator) HandleStart() string {
	return "👋 Welcome to The Alpha House Bot!\n" +
		"Drop a token CA to start tracking it.\n" +
		"Use /pnl <token_address> to view gains.\n" +
		"Use /list to view tracked tokens.\n" +
		"Use /untrack <token_address> to remove a token."
}

// resolve wraps the resolver call with latency and failure metrics.
func (o *Orchestrator) resolve(ctx context.Context, id domain.TokenIdentifier) (domain.Quote, error) {
	start := time.Now()
	quote, err := o.resolver.Resolve(ctx, id)
	observability.RecordResolve(time.Since(start).Seconds(), err)
	return quote, err
}
