package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"faithlog/internal/domain"

	"github.com/google/uuid"
)

const scrapeJobColumns = "id, status, started_at, completed_at, items_scraped, error, created_at"

func (d *Database) CreateScrapeJob(ctx context.Context) (string, error) {
	id := uuid.NewString()

	query := `insert into scrape_jobs (id, status, items_scraped, created_at)
	values (?, ?, 0, ?)`

	if _, err := d.db.ExecContext(ctx, query, id, domain.JobStatusPending, d.now()); err != nil {
		return "", fmt.Errorf("insert scrape job: %w", err)
	}

	return id, nil
}

// TransitionScrapeJob moves the job to status and applies the side effects
// of entering it: running stamps started_at, completed and failed stamp
// completed_at. Out-of-order transitions are rejected with
// domain.ErrInvalidTransition.
func (d *Database) TransitionScrapeJob(
	ctx context.Context,
	id string,
	status domain.JobStatus,
	update domain.JobUpdate,
) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", domain.ErrInvalidTransition, status)
	}

	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer d.rollback(ctx, tx, "TransitionScrapeJob")

	var current domain.JobStatus
	if err = tx.GetContext(ctx, &current, "select status from scrape_jobs where id = ?", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("scrape job %s: %w", id, domain.ErrNotFound)
		}

		return fmt.Errorf("select scrape job status: %w", err)
	}

	if !current.CanTransitionTo(status) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, current, status)
	}

	sets := []string{"status = ?"}
	args := []any{status}
	now := d.now()

	if status == domain.JobStatusRunning {
		sets = append(sets, "started_at = ?")
		args = append(args, now)
	}
	if status.Terminal() {
		sets = append(sets, "completed_at = ?")
		args = append(args, now)
	}
	if update.ItemsScraped != nil {
		sets = append(sets, "items_scraped = ?")
		args = append(args, *update.ItemsScraped)
	}
	if update.Error != "" {
		sets = append(sets, "error = ?")
		args = append(args, update.Error)
	}

	args = append(args, id)
	query := "update scrape_jobs set " + strings.Join(sets, ", ") + " where id = ?"

	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update scrape job: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

func (d *Database) GetScrapeJob(ctx context.Context, id string) (*domain.ScrapeJob, error) {
	var job domain.ScrapeJob

	query := "select " + scrapeJobColumns + " from scrape_jobs where id = ?"
	if err := d.db.GetContext(ctx, &job, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("scrape job %s: %w", id, domain.ErrNotFound)
		}

		return nil, fmt.Errorf("select scrape job: %w", err)
	}

	return &job, nil
}

// LatestScrapeJob returns the most recently created job, or nil when there
// is none.
func (d *Database) LatestScrapeJob(ctx context.Context) (*domain.ScrapeJob, error) {
	var job domain.ScrapeJob

	query := "select " + scrapeJobColumns + " from scrape_jobs order by created_at desc, rowid desc limit 1"
	if err := d.db.GetContext(ctx, &job, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("select latest scrape job: %w", err)
	}

	return &job, nil
}
