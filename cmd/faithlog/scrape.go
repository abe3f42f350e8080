package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"faithlog/internal/domain"

	"github.com/spf13/cobra"
)

func newScrapeCmd() *cobra.Command {
	var apiKey string

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Run one scrape job over the fixed target list and print its result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			a, err := newApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.close(context.WithoutCancel(ctx))

			credential := strings.TrimSpace(apiKey)
			if credential == "" {
				credential = cfg.FirecrawlAPIKey
			}

			result := a.scraper.Run(ctx, credential)

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			if err = encoder.Encode(result); err != nil {
				return fmt.Errorf("encode result: %w", err)
			}

			return scrapeError(result)
		},
	}

	cmd.Flags().StringVar(&apiKey, "api-key", "", "Scrape credential (defaults to FIRECRAWL_API_KEY)")

	return cmd
}

func scrapeError(result domain.ScrapeResult) error {
	if result.Success {
		return nil
	}

	return fmt.Errorf("scrape job %q: %w", result.JobID, errors.New(result.Error))
}
