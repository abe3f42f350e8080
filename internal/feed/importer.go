// Package feed imports entries of RSS, Atom and JSON feeds as news
// resources.
package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"faithlog/internal/domain"
	"faithlog/internal/metrics"
	"faithlog/internal/summarizer"

	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"
)

const (
	feedClientTimeout        = 30 * time.Second
	feedParallelism          = 4
	describeParallelism      = 4
	maxEntriesPerFeed        = 20
	entryMaxAge              = 7 * 24 * time.Hour
	fallbackDescriptionChars = 200
)

type Store interface {
	IngestResource(ctx context.Context, in domain.ResourceInput) (bool, error)
	CountResourcesByURL(ctx context.Context, url string) (int64, error)
}

// ImportResult summarizes one import over all configured feeds.
type ImportResult struct {
	Feeds    int
	Entries  int
	Inserted int64
}

type Importer struct {
	store      Store
	summarizer summarizer.Summarizer
	parser     *gofeed.Parser
	cache      *descriptionCache
	metrics    *metrics.Metrics
	now        func() time.Time
	log        *slog.Logger
}

// NewImporter builds an importer. s and m may be nil.
func NewImporter(store Store, s summarizer.Summarizer, m *metrics.Metrics, log *slog.Logger) *Importer {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: feedClientTimeout}

	return &Importer{
		store:      store,
		summarizer: s,
		parser:     parser,
		cache:      newDescriptionCache(descriptionCacheMaxEntries),
		metrics:    m,
		now:        time.Now,
		log:        log,
	}
}

// Import fetches every feed, keeps recent entries that are not stored yet and
// ingests them through the deduplicating path. A broken feed does not stop
// the others; its error is part of the returned joined error.
func (im *Importer) Import(ctx context.Context, feedURLs []string) (ImportResult, error) {
	var result ImportResult

	parsed := make([][]entry, len(feedURLs))
	parseErrs := make([]error, len(feedURLs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(feedParallelism)

	for i, feedURL := range feedURLs {
		g.Go(func() error {
			entries, err := im.parseFeed(gctx, strings.TrimSpace(feedURL))
			if err != nil {
				parseErrs[i] = fmt.Errorf("parse feed (URL = %s): %w", feedURL, err)
				return nil
			}

			parsed[i] = entries

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result, fmt.Errorf("wait for feeds: %w", err)
	}

	errs := make([]error, 0, len(parseErrs))
	for _, err := range parseErrs {
		if err != nil {
			errs = append(errs, err)
		}
	}

	result.Feeds = len(feedURLs) - len(errs)

	fresh, err := im.freshEntries(ctx, parsed)
	if err != nil {
		errs = append(errs, err)
	}
	result.Entries = len(fresh)

	im.describe(ctx, fresh)

	for _, e := range fresh {
		inserted, ingestErr := im.store.IngestResource(ctx, e.input)
		if ingestErr != nil {
			errs = append(errs, fmt.Errorf("ingest resource (URL = %s): %w", e.input.URL, ingestErr))
			continue
		}

		if inserted {
			result.Inserted++

			if im.metrics != nil {
				im.metrics.ResourcesStored.WithLabelValues("feed").Inc()
			}
		}
	}

	im.log.InfoContext(ctx, "Feed import is done",
		"feeds", result.Feeds,
		"entries", result.Entries,
		"inserted", result.Inserted,
		"errors", len(errs))

	return result, errors.Join(errs...)
}

// freshEntries flattens parsed feeds, dropping entries seen twice or already
// stored so that the summarizer is not called for them.
func (im *Importer) freshEntries(ctx context.Context, parsed [][]entry) ([]entry, error) {
	seen := make(map[string]struct{})

	var (
		fresh []entry
		errs  []error
	)

	for _, entries := range parsed {
		for _, e := range entries {
			if _, ok := seen[e.input.URL]; ok {
				continue
			}
			seen[e.input.URL] = struct{}{}

			count, err := im.store.CountResourcesByURL(ctx, e.input.URL)
			if err != nil {
				errs = append(errs, fmt.Errorf("count resources (URL = %s): %w", e.input.URL, err))
				continue
			}
			if count > 0 {
				continue
			}

			fresh = append(fresh, e)
		}
	}

	return fresh, errors.Join(errs...)
}

func (im *Importer) describe(ctx context.Context, entries []entry) {
	var pending []int
	for i := range entries {
		if entries[i].input.Description == "" {
			pending = append(pending, i)
		}
	}

	if len(pending) == 0 {
		return
	}

	tasks := make(chan int)
	var wg sync.WaitGroup

	for range min(describeParallelism, len(pending)) {
		wg.Go(func() {
			for i := range tasks {
				entries[i].input.Description = im.describeEntry(ctx, entries[i])
			}
		})
	}

	for _, i := range pending {
		tasks <- i
	}

	close(tasks)
	wg.Wait()
}

func (im *Importer) describeEntry(ctx context.Context, e entry) string {
	if e.content == "" {
		return domain.DefaultResourceDescription
	}

	if im.summarizer == nil {
		return fallbackDescription(e.content)
	}

	now := im.now()
	cacheKey := descriptionCacheKey(e.input.URL, e.content)

	if description, ok := im.cache.get(cacheKey, now); ok {
		return description
	}

	description, err := im.summarizer.Summarize(ctx, summarizer.Input{
		Title:     e.input.Title,
		Text:      e.content,
		SourceURL: e.input.URL,
	})
	if err != nil {
		im.log.ErrorContext(ctx, "Failed to summarize feed entry",
			"error", err,
			"url", e.input.URL,
			"fallback", true,
			"textLen", len(e.content))

		return fallbackDescription(e.content)
	}

	description = strings.TrimSpace(description)
	if description == "" {
		return fallbackDescription(e.content)
	}

	im.cache.set(cacheKey, description, now)

	return description
}

func (im *Importer) parseFeed(ctx context.Context, feedURL string) ([]entry, error) {
	if feedURL == "" {
		return nil, errors.New("feed URL is empty")
	}

	parsed, err := im.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}

	source := feedSource(parsed, feedURL)
	cutoff := im.now().Add(-entryMaxAge)

	var entries []entry
	for _, item := range parsed.Items {
		if len(entries) == maxEntriesPerFeed {
			break
		}

		e, ok := parseItem(item, source, cutoff)
		if !ok {
			im.log.DebugContext(ctx, "Skipping feed item",
				"feedURL", feedURL,
				"itemTitle", strings.TrimSpace(item.Title),
				"itemLink", strings.TrimSpace(item.Link))

			continue
		}

		entries = append(entries, e)
	}

	return entries, nil
}
