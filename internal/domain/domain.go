package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusPending, JobStatusRunning, JobStatusCompleted, JobStatusFailed:
		return true
	default:
		return false
	}
}

func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// CanTransitionTo reports whether a job in status s may move to next.
// Allowed: pending → running → completed | failed.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	switch s {
	case JobStatusPending:
		return next == JobStatusRunning
	case JobStatusRunning:
		return next.Terminal()
	default:
		return false
	}
}

type ScrapeJob struct {
	ID           string     `json:"id"                    db:"id"`
	Status       JobStatus  `json:"status"                db:"status"`
	StartedAt    *time.Time `json:"startedAt,omitempty"   db:"started_at"`
	CompletedAt  *time.Time `json:"completedAt,omitempty" db:"completed_at"`
	ItemsScraped int64      `json:"itemsScraped"          db:"items_scraped"`
	Error        *string    `json:"error,omitempty"       db:"error"`
	CreatedAt    time.Time  `json:"createdAt"             db:"created_at"`
}

// JobUpdate carries optional fields written together with a status change.
type JobUpdate struct {
	ItemsScraped *int64
	Error        string
}

// ScrapeResult is what a caller of a scrape run observes.
type ScrapeResult struct {
	Success      bool   `json:"success"`
	ItemsScraped int64  `json:"itemsScraped,omitempty"`
	Error        string `json:"error,omitempty"`
	JobID        string `json:"jobId,omitempty"`
}

// MarshalJSON always writes itemsScraped for a successful run, including a
// zero count. A failed run carries the error instead.
func (r ScrapeResult) MarshalJSON() ([]byte, error) {
	if !r.Success {
		type failure ScrapeResult

		return json.Marshal(failure(r))
	}

	return json.Marshal(struct {
		Success      bool   `json:"success"`
		ItemsScraped int64  `json:"itemsScraped"`
		JobID        string `json:"jobId,omitempty"`
	}{
		Success:      true,
		ItemsScraped: r.ItemsScraped,
		JobID:        r.JobID,
	})
}

// Fallbacks for resources whose source provides no title or description.
const (
	DefaultResourceTitle       = "Faith Resource"
	DefaultResourceDescription = "Discover faith resources and inspiration."
)

const (
	CategoryNews        = "news"
	CategoryInspiration = "inspiration"
	CategoryEvents      = "events"
	CategoryTestimonies = "testimonies"
)

type Resource struct {
	ID          int64     `json:"id"          db:"id"`
	Title       string    `json:"title"       db:"title"`
	URL         string    `json:"url"         db:"url"`
	Description string    `json:"description" db:"description"`
	Source      string    `json:"source"      db:"source"`
	Category    string    `json:"category"    db:"category"`
	ScrapedAt   time.Time `json:"scrapedAt"   db:"scraped_at"`
}

type ResourceInput struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Source      string `json:"source"`
	Category    string `json:"category"`
}

func (r *ResourceInput) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.URL = strings.TrimSpace(r.URL)
	r.Description = strings.TrimSpace(r.Description)
	r.Source = strings.TrimSpace(r.Source)
	r.Category = strings.TrimSpace(r.Category)
}

func (r ResourceInput) Validate() error {
	var errs []error

	if strings.TrimSpace(r.URL) == "" {
		errs = append(errs, fmt.Errorf("url: %w", ErrEmptyField))
	}
	if strings.TrimSpace(r.Title) == "" {
		errs = append(errs, fmt.Errorf("title: %w", ErrEmptyField))
	}
	if strings.TrimSpace(r.Category) == "" {
		errs = append(errs, fmt.Errorf("category: %w", ErrEmptyField))
	}

	return errors.Join(errs...)
}

// Page is the content a fetcher extracted from one URL.
// Empty fields mean the remote side did not provide them.
type Page struct {
	URL         string
	Title       string
	Description string
	Markdown    string
}
