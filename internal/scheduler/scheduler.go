package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"faithlog/internal/feed"

	"github.com/robfig/cron/v3"
)

const (
	ReminderSpec          = "@every 60s"
	Timezone              = "UTC"
	TimezoneOffsetSeconds = 0
	reminderTimeout       = 30 * time.Second
	feedImportTimeout     = 15 * time.Minute
)

type Reminder interface {
	Fire(ctx context.Context) (int64, error)
}

type FeedImporter interface {
	Import(ctx context.Context, feedURLs []string) (feed.ImportResult, error)
}

type Scheduler struct {
	ctx      context.Context
	cron     *cron.Cron
	reminder Reminder
	importer FeedImporter
	feedURLs []string
	feedSpec string
	log      *slog.Logger
}

type Option func(*Scheduler)

// WithFeedImport schedules importing feedURLs on the cron spec. Nothing is
// scheduled when spec or feedURLs are empty.
func WithFeedImport(importer FeedImporter, spec string, feedURLs []string) Option {
	return func(s *Scheduler) {
		s.importer = importer
		s.feedSpec = spec
		s.feedURLs = feedURLs
	}
}

func New(ctx context.Context, reminder Reminder, log *slog.Logger, opts ...Option) *Scheduler {
	c := cron.New(cron.WithLocation(time.FixedZone(Timezone, TimezoneOffsetSeconds)))

	s := &Scheduler{
		ctx:      ctx,
		cron:     c,
		reminder: reminder,
		log:      log,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(ReminderSpec, s.fireReminders); err != nil {
		return fmt.Errorf("add reminder job: %w", err)
	}

	if s.importer != nil && s.feedSpec != "" && len(s.feedURLs) > 0 {
		if _, err := s.cron.AddFunc(s.feedSpec, s.importFeeds); err != nil {
			return fmt.Errorf("add feed import job (spec = %s): %w", s.feedSpec, err)
		}
	}

	s.cron.Start()

	s.log.InfoContext(s.ctx, "Scheduler is started",
		"jobs", len(s.cron.Entries()))

	return nil
}

// Stop prevents new runs and waits for running ones until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for running jobs: %w", ctx.Err())
	}
}

func (s *Scheduler) fireReminders() {
	ctx, cancel := context.WithTimeout(s.ctx, reminderTimeout)
	defer cancel()

	if ctx.Err() != nil {
		s.log.InfoContext(ctx, "Scheduler context is done",
			"error", ctx.Err())
		return
	}

	if _, err := s.reminder.Fire(ctx); err != nil {
		s.log.ErrorContext(ctx, "Failed to fire prayer reminders",
			"error", err)
	}
}

func (s *Scheduler) importFeeds() {
	ctx, cancel := context.WithTimeout(s.ctx, feedImportTimeout)
	defer cancel()

	if ctx.Err() != nil {
		s.log.InfoContext(ctx, "Scheduler context is done",
			"error", ctx.Err())
		return
	}

	result, err := s.importer.Import(ctx, s.feedURLs)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to import some feeds",
			"error", err,
			"feeds", len(s.feedURLs),
			"inserted", result.Inserted)
	}
}
