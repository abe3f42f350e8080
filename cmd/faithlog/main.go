package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"faithlog/internal/config"
	"faithlog/internal/database"
	"faithlog/internal/faith"
	"faithlog/internal/firecrawl"
	"faithlog/internal/htmlpage"
	"faithlog/internal/metrics"
	"faithlog/internal/scrape"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "faithlog",
		Short:         "Faith tracking service with a resource scraper and prayer reminders",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newServeCmd(), newScrapeCmd(), newSeedDemoCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		slog.Error("Command failed",
			"error", err)

		os.Exit(1)
	}
}

// setup loads .env if present, reads the configuration and installs the JSON
// logger at the configured level.
func setup() (config.Config, *slog.Logger, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config.Config{}, nil, fmt.Errorf("load .env file: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(log)

	return cfg, log, nil
}

// app holds the components every command shares.
type app struct {
	db      *database.Database
	metrics *metrics.Metrics
	scraper *scrape.Orchestrator
	svc     *faith.Service
	log     *slog.Logger
}

func newApp(ctx context.Context, cfg config.Config, log *slog.Logger) (*app, error) {
	db, err := database.New(ctx, cfg.DBPath, log)
	if err != nil {
		return nil, fmt.Errorf("initialize db (path = %s): %w", cfg.DBPath, err)
	}
	log.InfoContext(ctx, "DB is initialized",
		"dbPath", cfg.DBPath)

	m := metrics.New()

	var fetcher scrape.Fetcher
	switch cfg.Fetcher {
	case config.FetcherDirect:
		fetcher = htmlpage.New(log)
	default:
		fetcher = firecrawl.New(cfg.FirecrawlBaseURL, log)
	}

	scraper := scrape.New(fetcher, db, m, log)

	return &app{
		db:      db,
		metrics: m,
		scraper: scraper,
		svc:     faith.New(db, scraper, log),
		log:     log,
	}, nil
}

func (a *app) close(ctx context.Context) {
	if err := a.db.Close(); err != nil {
		a.log.ErrorContext(ctx, "Failed to close db",
			"error", err)
	}
}
