// Package main runs the Telegram PnL card bot: it long-polls for chat
// updates, seeds baselines on first token sightings and serves PnL cards
// on request.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"token-pnl-bot/internal/card"
	"token-pnl-bot/internal/config"
	"token-pnl-bot/internal/market"
	"token-pnl-bot/internal/observability"
	"token-pnl-bot/internal/orchestrator"
	"token-pnl-bot/internal/storage"
	"token-pnl-bot/internal/storage/file"
	"token-pnl-bot/internal/storage/memory"
	"token-pnl-bot/internal/storage/migrations"
	"token-pnl-bot/internal/storage/postgres"
	"token-pnl-bot/internal/telegram"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if cfg.Telegram.BotToken == "" {
		log.Fatal().Msg("telegram bot token missing: set telegram.bot_token or TELEGRAM_BOT_TOKEN")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		cancel()
	}()

	store, closeStore, err := openStore(ctx, cfg.Store)
	if err != nil {
		log.Fatal().Err(err).Msg("open snapshot store")
	}
	defer closeStore()

	resolver := market.NewClient(cfg.Market.BaseURL,
		market.WithTimeout(time.Duration(cfg.Market.TimeoutSecs)*time.Second),
		market.WithLogger(log.With().Str("component", "market").Logger()),
	)

	renderer := card.NewRenderer(
		card.Chain{
			card.DirSource{Dir: cfg.Card.AssetDir},
			card.NewURLSource(cfg.Card.RemoteAssets),
		},
		card.WithFontPaths(cfg.Card.FontPaths),
		card.WithRendererLogger(log.With().Str("component", "card").Logger()),
	)

	orch := orchestrator.New(orchestrator.Options{
		Store:    store,
		Resolver: resolver,
		Renderer: renderer,
		Logger:   log.With().Str("component", "orchestrator").Logger(),
	})

	if cfg.Metrics.ListenAddr != "" {
		go serveMetrics(cfg.Metrics.ListenAddr)
	}

	client := telegram.NewClient(cfg.Telegram.BotToken)
	bot := telegram.NewBot(client, orch, cfg.Telegram.PollTimeoutSecs,
		log.With().Str("component", "telegram").Logger())

	log.Info().Str("store", cfg.Store.Backend).Msg("bot running")
	if err := bot.Run(ctx); err != nil && err != context.Canceled {
		log.Fatal().Err(err).Msg("bot stopped")
	}
}

// openStore builds the configured snapshot store backend. The returned
// close function releases backend resources at shutdown.
func openStore(ctx context.Context, cfg config.StoreConfig) (storage.SnapshotStore, func(), error) {
	switch cfg.Backend {
	case "file":
		store, err := file.Open(cfg.FilePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil

	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return postgres.NewSnapshotStore(pool), pool.Close, nil

	default: // "memory", validated by config.Load
		return memory.NewSnapshotStore(), func() {}, nil
	}
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	log.Info().Str("addr", addr).Msg("metrics listening")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("metrics server stopped")
	}
}
