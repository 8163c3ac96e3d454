package telegram

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"token-pnl-bot/internal/market"
	"token-pnl-bot/internal/orchestrator"
)

// Bot runs the long-poll loop and routes messages to the orchestrator.
type Bot struct {
	client      *Client
	orch        *orchestrator.Orchestrator
	pollTimeout int
	log         zerolog.Logger
}

// NewBot creates the dispatch loop around a client and orchestrator.
func NewBot(client *Client, orch *orchestrator.Orchestrator, pollTimeoutSecs int, log zerolog.Logger) *Bot {
	if pollTimeoutSecs <= 0 {
		pollTimeoutSecs = 30
	}
	return &Bot{
		client:      client,
		orch:        orch,
		pollTimeout: pollTimeoutSecs,
		log:         log,
	}
}

// Run polls for updates until ctx is cancelled. Poll errors are logged
// and retried after a short pause; a single bad update never stops the
// loop.
func (b *Bot) Run(ctx context.Context) error {
	var offset int64
	for {
		updates, err := b.client.GetUpdates(ctx, offset, b.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.log.Warn().Err(err).Msg("poll failed, retrying")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(3 * time.Second):
			}
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			b.dispatch(ctx, update.Message)
		}
	}
}

// dispatch routes one message. Command replies go back to the chat;
// free-form text feeds the silent tracking path.
func (b *Bot) dispatch(ctx context.Context, msg *Message) {
	text := strings.TrimSpace(msg.Text)
	cmd, rest := splitCommand(text)

	switch cmd {
	case "/start":
		b.reply(ctx, msg.Chat.ID, b.orch.HandleStart())

	case "/pnl":
		b.handlePnL(ctx, msg.Chat.ID, rest)

	case "/list":
		reply, err := b.orch.HandleList(ctx)
		if err != nil {
			b.log.Error().Err(err).Msg("list failed")
			b.reply(ctx, msg.Chat.ID, "Something went wrong, try again later.")
			return
		}
		b.reply(ctx, msg.Chat.ID, reply)

	case "/untrack":
		reply, err := b.orch.HandleUntrack(ctx, rest)
		if errors.Is(err, orchestrator.ErrNoIdentifier) {
			b.reply(ctx, msg.Chat.ID, "Please provide a token address to untrack.")
			return
		}
		if err != nil {
			b.log.Error().Err(err).Msg("untrack failed")
			b.reply(ctx, msg.Chat.ID, "Something went wrong, try again later.")
			return
		}
		b.reply(ctx, msg.Chat.ID, reply)

	default:
		// Free-form chat: seed baselines silently, never reply.
		if _, err := b.orch.HandleMessage(ctx, text, msg.From.DisplayName()); err != nil {
			b.log.Error().Err(err).Msg("message handling failed")
		}
	}
}

func (b *Bot) handlePnL(ctx context.Context, chatID int64, args string) {
	result, err := b.orch.HandlePnL(ctx, args)
	switch {
	case errors.Is(err, orchestrator.ErrNoIdentifier):
		b.reply(ctx, chatID, "Please provide a token CA, e.g. /pnl 0x123...")
	case errors.Is(err, orchestrator.ErrUnknownIdentifier):
		b.reply(ctx, chatID, "That token isn't tracked yet. Drop its CA in chat first.")
	case errors.Is(err, market.ErrUnavailable):
		b.reply(ctx, chatID, "No market data for that token right now, try again later.")
	case err != nil:
		b.log.Error().Err(err).Msg("pnl failed")
		b.reply(ctx, chatID, "Card rendering failed, try again later.")
	default:
		if err := b.client.SendPhoto(ctx, chatID, result.Image, result.Caption); err != nil {
			b.log.Error().Err(err).Msg("send photo failed")
		}
	}
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	if err := b.client.SendMessage(ctx, chatID, text); err != nil {
		b.log.Error().Err(err).Msg("send message failed")
	}
}

// splitCommand separates a leading /command from its arguments. Commands
// may carry a @BotName suffix in group chats.
func splitCommand(text string) (string, string) {
	if !strings.HasPrefix(text, "/") {
		return "", text
	}
	cmd := text
	rest := ""
	if i := strings.IndexByte(text, ' '); i >= 0 {
		cmd = text[:i]
		rest = strings.TrimSpace(text[i+1:])
	}
	if i := strings.IndexByte(cmd, '@'); i >= 0 {
		cmd = cmd[:i]
	}
	return cmd, rest
}
