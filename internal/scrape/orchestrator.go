package scrape

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"faithlog/internal/domain"
	"faithlog/internal/metrics"
)

const descriptionExcerptLen = 200

//nolint:gochecknoglobals // Fixed target list, never mutated.
var targetURLs = []string{
	"https://www.christianitytoday.com/",
	"https://www.relevantmagazine.com/",
	"https://www.desiringgod.org/",
}

var errEmptyPage = errors.New("fetcher returned no page")

type Fetcher interface {
	Fetch(ctx context.Context, pageURL string, credential string) (*domain.Page, error)
}

type Store interface {
	CreateScrapeJob(ctx context.Context) (string, error)
	TransitionScrapeJob(ctx context.Context, id string, status domain.JobStatus, update domain.JobUpdate) error
	IngestResource(ctx context.Context, in domain.ResourceInput) (bool, error)
}

type Orchestrator struct {
	fetcher Fetcher
	store   Store
	metrics *metrics.Metrics
	targets []string
	log     *slog.Logger
}

// New builds an orchestrator over the fixed target list. m may be nil.
func New(fetcher Fetcher, store Store, m *metrics.Metrics, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		fetcher: fetcher,
		store:   store,
		metrics: m,
		targets: targetURLs,
		log:     log,
	}
}

// Run executes one scrape job: it creates the job, fetches every target
// URL in order and finalizes the job as completed or failed. Failures of a
// single URL are logged and skipped; only job-level failures are reported.
func (o *Orchestrator) Run(ctx context.Context, credential string) domain.ScrapeResult {
	start := time.Now()

	jobID, err := o.store.CreateScrapeJob(ctx)
	if err != nil {
		o.log.ErrorContext(ctx, "Failed to create scrape job",
			"error", err)
		o.observeRun(domain.JobStatusFailed, start)

		return domain.ScrapeResult{Success: false, Error: fmt.Sprintf("create scrape job: %v", err)}
	}

	o.log.InfoContext(ctx, "Scrape job is created",
		"jobID", jobID,
		"targets", len(o.targets))

	itemsScraped, err := o.run(ctx, jobID, credential)
	if err != nil {
		o.fail(context.WithoutCancel(ctx), jobID, err)
		o.observeRun(domain.JobStatusFailed, start)

		return domain.ScrapeResult{Success: false, Error: err.Error(), JobID: jobID}
	}

	o.log.InfoContext(ctx, "Scrape job is completed",
		"jobID", jobID,
		"itemsScraped", itemsScraped,
		"duration", time.Since(start))
	o.observeRun(domain.JobStatusCompleted, start)

	return domain.ScrapeResult{Success: true, ItemsScraped: itemsScraped, JobID: jobID}
}

func (o *Orchestrator) run(ctx context.Context, jobID string, credential string) (int64, error) {
	if err := o.store.TransitionScrapeJob(ctx, jobID, domain.JobStatusRunning, domain.JobUpdate{}); err != nil {
		return 0, fmt.Errorf("mark scrape job running: %w", err)
	}

	var itemsScraped int64

	for _, target := range o.targets {
		if err := ctx.Err(); err != nil {
			return 0, fmt.Errorf("scrape interrupted: %w", err)
		}

		inserted, err := o.scrapeTarget(ctx, target, credential)

		switch {
		case err != nil:
			o.log.WarnContext(ctx, "Failed to scrape target",
				"error", err,
				"jobID", jobID,
				"targetURL", target)
			o.observeURL("failed")
		case inserted:
			itemsScraped++
			o.observeURL("inserted")
		default:
			o.log.DebugContext(ctx, "Resource is already stored",
				"jobID", jobID,
				"targetURL", target)
			o.observeURL("skipped")
		}
	}

	update := domain.JobUpdate{ItemsScraped: &itemsScraped}
	if err := o.store.TransitionScrapeJob(
		context.WithoutCancel(ctx),
		jobID,
		domain.JobStatusCompleted,
		update,
	); err != nil {
		return 0, fmt.Errorf("mark scrape job completed: %w", err)
	}

	return itemsScraped, nil
}

func (o *Orchestrator) scrapeTarget(ctx context.Context, target string, credential string) (bool, error) {
	page, err := o.fetcher.Fetch(ctx, target, credential)
	if err != nil {
		return false, fmt.Errorf("fetch page: %w", err)
	}
	if page == nil {
		return false, errEmptyPage
	}

	in, err := ResourceFromPage(target, page)
	if err != nil {
		return false, fmt.Errorf("build resource: %w", err)
	}

	inserted, err := o.store.IngestResource(ctx, in)
	if err != nil {
		return false, fmt.Errorf("ingest resource: %w", err)
	}

	if inserted && o.metrics != nil {
		o.metrics.ResourcesStored.WithLabelValues("scrape").Inc()
	}

	return inserted, nil
}

func (o *Orchestrator) fail(ctx context.Context, jobID string, cause error) {
	o.log.ErrorContext(ctx, "Scrape job is failed",
		"error", cause,
		"jobID", jobID)

	err := o.store.TransitionScrapeJob(ctx, jobID, domain.JobStatusFailed, domain.JobUpdate{Error: cause.Error()})
	if err != nil {
		o.log.ErrorContext(ctx, "Failed to mark scrape job failed",
			"error", err,
			"jobID", jobID,
			"cause", cause)
	}
}

func (o *Orchestrator) observeRun(status domain.JobStatus, start time.Time) {
	if o.metrics == nil {
		return
	}

	o.metrics.ScrapeRuns.WithLabelValues(string(status)).Inc()
	o.metrics.ScrapeDuration.Observe(time.Since(start).Seconds())
}

func (o *Orchestrator) observeURL(outcome string) {
	if o.metrics == nil {
		return
	}

	o.metrics.ScrapeURLs.WithLabelValues(outcome).Inc()
}

// ResourceFromPage derives the stored resource fields for a scraped target.
// Description falls back to the start of the page body, then to a fixed text.
func ResourceFromPage(target string, page *domain.Page) (domain.ResourceInput, error) {
	u, err := url.Parse(target)
	if err != nil {
		return domain.ResourceInput{}, fmt.Errorf("parse target URL: %w", err)
	}

	title := strings.TrimSpace(page.Title)
	if title == "" {
		title = domain.DefaultResourceTitle
	}

	description := strings.TrimSpace(page.Description)
	if description == "" {
		description = strings.TrimSpace(excerpt(page.Markdown, descriptionExcerptLen))
	}
	if description == "" {
		description = domain.DefaultResourceDescription
	}

	return domain.ResourceInput{
		Title:       title,
		URL:         target,
		Description: description,
		Source:      u.Hostname(),
		Category:    domain.CategoryInspiration,
	}, nil
}

func excerpt(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}

	return string(runes[:limit])
}
