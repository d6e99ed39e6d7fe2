package telegram

import (
	"context"
	"log/slog"

	"github.com/smakfood/smakbot/core/config"
	"github.com/smakfood/smakbot/core/logger"

	tele "gopkg.in/telebot.v4"
)

// Route binds a telebot endpoint to a handler.
type Route struct {
	Endpoint any
	Handler  tele.HandlerFunc
}

// Middleware is a handler decorator applied to every route.
type Middleware = tele.MiddlewareFunc

// RunOptions describes everything needed to start the bot.
type RunOptions struct {
	Config      *config.Config
	Routes      []Route
	Middlewares []Middleware
	// OnStart runs after the bot instance is created but before polling begins.
	OnStart func(bot *tele.Bot)
}

// RunTelegram creates the bot, wires routes and middlewares and blocks until
// ctx is cancelled.
func RunTelegram(ctx context.Context, opts RunOptions) error {
	cfg := opts.Config

	poller := BuildPoller(PollerOptions{
		RunMode:                cfg.Telegram.RunMode,
		LongPollTimeoutSeconds: cfg.Telegram.LongPollTimeoutSeconds,
		Webhook: WebhookOptions{
			Listen: cfg.Webhook.Listen,
			Port:   cfg.Webhook.Port,
			URL:    cfg.Webhook.URL,
		},
	})

	bot, err := tele.NewBot(tele.Settings{
		Token:   cfg.Telegram.Token,
		Poller:  poller,
		Client:  BuildHTTPClient(),
		OnError: logTeleError,
	})
	if err != nil {
		return err
	}

	if cfg.Telegram.RunMode == config.RunModeLongpoll {
		deleteWebhook(bot)
	}

	for _, mw := range opts.Middlewares {
		bot.Use(mw)
	}
	for _, route := range opts.Routes {
		bot.Handle(route.Endpoint, route.Handler)
	}

	if opts.OnStart != nil {
		opts.OnStart(bot)
	}

	logger.TG.Info("bot.start",
		slog.String("mode", cfg.Telegram.RunMode),
		slog.String("listen", cfg.Webhook.Listen),
		slog.String("public_url", cfg.Webhook.URL),
	)

	go func() {
		<-ctx.Done()
		logger.TG.Info("bot.stop", slog.String("reason", "context_cancelled"))
		bot.Stop()
	}()

	bot.Start()
	return nil
}

// deleteWebhook drops a stale webhook so long polling can take over.
func deleteWebhook(bot *tele.Bot) {
	if err := bot.RemoveWebhook(true); err != nil {
		logger.TG.Warn("webhook.delete.fail", slog.String("err", err.Error()))
		return
	}
	logger.TG.Debug("webhook.delete.ok")
}

func logTeleError(err error, c tele.Context) {
	attrs := []slog.Attr{slog.String("err", err.Error())}
	if c != nil {
		if sender := c.Sender(); sender != nil {
			attrs = append(attrs, slog.Int64("user_id", sender.ID))
		}
		attrs = append(attrs, slog.Int("update_id", c.Update().ID))
	}
	logger.TG.LogAttrs(context.Background(), slog.LevelError, "bot.error", attrs...)
}
