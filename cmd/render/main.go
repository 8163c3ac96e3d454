// Package main renders a single PnL card offline: resolve an address,
// compare against its stored baseline and write the PNG to disk. Useful
// for checking layout changes without a bot token.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"token-pnl-bot/internal/card"
	"token-pnl-bot/internal/config"
	"token-pnl-bot/internal/extract"
	"token-pnl-bot/internal/gain"
	"token-pnl-bot/internal/market"
	"token-pnl-bot/internal/storage"
	"token-pnl-bot/internal/storage/file"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	address := flag.String("ca", "", "Token contract address")
	output := flag.String("out", "card.png", "Output PNG path")
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	if *address == "" {
		log.Fatal().Msg("-ca is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	id, ok := extract.Extract(*address)
	if !ok {
		log.Fatal().Str("input", *address).Msg("no token address recognized")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	store, err := file.Open(cfg.Store.FilePath)
	if err != nil {
		log.Fatal().Err(err).Msg("open snapshot store")
	}

	resolver := market.NewClient(cfg.Market.BaseURL,
		market.WithTimeout(time.Duration(cfg.Market.TimeoutSecs)*time.Second))

	current, err := resolver.Resolve(ctx, id)
	if err != nil {
		log.Fatal().Err(err).Msg("resolve market data")
	}

	baseline, err := store.Get(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		// Seed now; the first render of a fresh baseline is a 1x card.
		baseline, _, err = store.InsertIfAbsent(ctx, id, current, time.Now().UnixMilli(), "render-cli")
	}
	if err != nil {
		log.Fatal().Err(err).Msg("load baseline")
	}

	renderer := card.NewRenderer(
		card.Chain{
			card.DirSource{Dir: cfg.Card.AssetDir},
			card.NewURLSource(cfg.Card.RemoteAssets),
		},
		card.WithFontPaths(cfg.Card.FontPaths),
	)

	multiplier := gain.Multiplier(baseline, current)
	image, err := renderer.Render(ctx, card.Card{
		Symbol:     current.Symbol,
		ChainTag:   current.ChainTag,
		Baseline:   baseline,
		Current:    current,
		Multiplier: multiplier,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("render card")
	}

	if err := os.WriteFile(*output, image, 0o644); err != nil {
		log.Fatal().Err(err).Msg("write output")
	}
	fmt.Printf("%s: %.2fx (%s) → %s\n", current.Symbol, multiplier, gain.TierFor(multiplier), *output)
}
