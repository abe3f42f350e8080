package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

const (
	FetcherFirecrawl = "firecrawl"
	FetcherDirect    = "direct"
)

type Config struct {
	DBPath           string     `env:"DB_PATH"            envDefault:"faithlog.sqlite"`
	HTTPAddr         string     `env:"HTTP_ADDR"          envDefault:":8080"`
	TelegramToken    string     `env:"TELEGRAM_TOKEN"`
	Operators        []int64    `env:"OPERATORS"`
	FirecrawlAPIKey  string     `env:"FIRECRAWL_API_KEY"`
	FirecrawlBaseURL string     `env:"FIRECRAWL_BASE_URL" envDefault:"https://api.firecrawl.dev"`
	Fetcher          string     `env:"FETCHER"            envDefault:"firecrawl"`
	OpenAIAPIKey     string     `env:"OPENAI_API_KEY"`
	FeedURLs         []string   `env:"FEED_URLS"`
	FeedImportSpec   string     `env:"FEED_IMPORT_SPEC"   envDefault:"0 */6 * * *"`
	LogLevel         slog.Level `env:"LOG_LEVEL"          envDefault:"info"`
}

func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	cfg.Fetcher = strings.ToLower(strings.TrimSpace(cfg.Fetcher))
	if cfg.Fetcher != FetcherFirecrawl && cfg.Fetcher != FetcherDirect {
		return Config{}, fmt.Errorf("unknown FETCHER %q (want %s or %s)", cfg.Fetcher, FetcherFirecrawl, FetcherDirect)
	}

	return cfg, nil
}

func (c Config) IsOperator(userID int64) bool {
	for _, id := range c.Operators {
		if id == userID {
			return true
		}
	}

	return false
}
