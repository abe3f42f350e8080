package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"faithlog/internal/api"
	"faithlog/internal/bot"
	"faithlog/internal/config"
	"faithlog/internal/feed"
	"faithlog/internal/reminder"
	"faithlog/internal/scheduler"
	"faithlog/internal/summarizer"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const schedulerStopTimeout = 30 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the Telegram bot and the reminder scheduler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, log)
		},
	}
}

func serve(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	start := time.Now()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.close(context.WithoutCancel(ctx))

	reminderOpts := []reminder.Option{reminder.WithMetrics(a.metrics)}

	var botInst *bot.Bot
	if cfg.TelegramToken != "" {
		botInst, err = bot.New(cfg.TelegramToken, a.svc, cfg.Operators, cfg.FirecrawlAPIKey, log)
		if err != nil {
			return fmt.Errorf("initialize bot: %w", err)
		}
		defer botInst.Stop()

		reminderOpts = append(reminderOpts, reminder.WithDeliverer(botInst))

		log.InfoContext(ctx, "Bot is initialized",
			"operatorsCount", len(cfg.Operators))
	} else {
		log.WarnContext(ctx, "TELEGRAM_TOKEN is missing so the bot is disabled",
			"envVar", "TELEGRAM_TOKEN")
	}

	var schedOpts []scheduler.Option
	if len(cfg.FeedURLs) > 0 {
		importer := feed.NewImporter(a.db, initSummarizer(ctx, cfg, log), a.metrics, log)
		schedOpts = append(schedOpts, scheduler.WithFeedImport(importer, cfg.FeedImportSpec, cfg.FeedURLs))
	}

	sched := scheduler.New(ctx, reminder.New(a.db, log, reminderOpts...), log, schedOpts...)
	if err = sched.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	log.InfoContext(ctx, "Scheduler is started",
		"reminderSpec", scheduler.ReminderSpec,
		"feedsCount", len(cfg.FeedURLs))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return api.New(a.svc, a.db, a.metrics, cfg.FirecrawlAPIKey, log).Run(gctx, cfg.HTTPAddr)
	})

	if botInst != nil {
		g.Go(func() error {
			botInst.Start(gctx)
			return nil
		})
	}

	err = g.Wait()

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), schedulerStopTimeout)
	defer cancel()

	if stopErr := sched.Stop(stopCtx); stopErr != nil {
		log.ErrorContext(ctx, "Failed to stop scheduler",
			"error", stopErr)
	}

	log.InfoContext(ctx, "Exiting...",
		"uptimeSeconds", time.Since(start).Seconds())

	return err
}

func initSummarizer(ctx context.Context, cfg config.Config, log *slog.Logger) summarizer.Summarizer {
	if cfg.OpenAIAPIKey == "" {
		log.WarnContext(ctx, "OPENAI_API_KEY is missing so fallback descriptions will be used",
			"envVar", "OPENAI_API_KEY")

		return nil
	}

	return summarizer.NewOpenAISummarizer(cfg.OpenAIAPIKey)
}
