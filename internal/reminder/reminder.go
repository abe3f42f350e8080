// Package reminder fans a prayer reminder out to every user who keeps at
// least one prayer intention.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"faithlog/internal/domain"
	"faithlog/internal/metrics"
)

//nolint:gochecknoglobals // Fixed message set, never mutated.
var Messages = []string{
	"Take a moment to pray. Your faith journey continues.",
	"Remember: Every prayer is heard. Keep the faith.",
	"A minute of prayer can change your whole day.",
	"The Lord is near to all who call on Him.",
	"Your prayers matter. Don't give up.",
}

type Store interface {
	PrayerOwners(ctx context.Context) ([]domain.UserID, error)
	InsertNotifications(
		ctx context.Context,
		userIDs []domain.UserID,
		message string,
		notificationType string,
	) (int64, error)
}

// Deliverer pushes a stored reminder to the user outside the app, e.g. as a
// chat message.
type Deliverer interface {
	Deliver(ctx context.Context, userID domain.UserID, message string) error
}

type Fanout struct {
	store     Store
	deliverer Deliverer
	metrics   *metrics.Metrics
	pick      func(n int) int
	log       *slog.Logger
}

type Option func(*Fanout)

// WithDeliverer enables out-of-app delivery after notifications are stored.
func WithDeliverer(d Deliverer) Option {
	return func(f *Fanout) {
		f.deliverer = d
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Fanout) {
		f.metrics = m
	}
}

// WithPicker replaces the uniform message choice. pick receives the number
// of messages and returns an index.
func WithPicker(pick func(n int) int) Option {
	return func(f *Fanout) {
		f.pick = pick
	}
}

func New(store Store, log *slog.Logger, opts ...Option) *Fanout {
	f := &Fanout{
		store: store,
		pick:  rand.IntN,
		log:   log,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fire stores one unread prayer_reminder notification per distinct prayer
// owner, all carrying the same randomly chosen message, and returns how many
// were stored. Delivery failures are logged and do not affect the result.
func (f *Fanout) Fire(ctx context.Context) (int64, error) {
	owners, err := f.store.PrayerOwners(ctx)
	if err != nil {
		f.observe("failed", 0)
		return 0, fmt.Errorf("get prayer owners: %w", err)
	}

	owners = distinct(owners)
	if len(owners) == 0 {
		f.log.DebugContext(ctx, "No prayer owners to remind")
		f.observe("empty", 0)

		return 0, nil
	}

	message := Messages[f.pick(len(Messages))]

	created, err := f.store.InsertNotifications(ctx, owners, message, domain.NotificationTypePrayerReminder)
	if err != nil {
		f.observe("failed", 0)
		return 0, fmt.Errorf("insert reminders: %w", err)
	}

	f.log.InfoContext(ctx, "Prayer reminders are created",
		"count", created,
		"message", message)
	f.observe("ok", created)

	if f.deliverer != nil {
		if err = f.deliver(ctx, owners, message); err != nil {
			f.log.WarnContext(ctx, "Failed to deliver some reminders",
				"error", err,
				"owners", len(owners))
		}
	}

	return created, nil
}

func (f *Fanout) deliver(ctx context.Context, owners []domain.UserID, message string) error {
	var errs []error

	for _, userID := range owners {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}

		if err := f.deliverer.Deliver(ctx, userID, message); err != nil {
			errs = append(errs, fmt.Errorf("deliver reminder (userID = %d): %w", userID, err))
		}
	}

	return errors.Join(errs...)
}

func (f *Fanout) observe(result string, created int64) {
	if f.metrics == nil {
		return
	}

	f.metrics.ReminderFirings.WithLabelValues(result).Inc()
	f.metrics.RemindersCreated.Add(float64(created))
}

func distinct(ids []domain.UserID) []domain.UserID {
	seen := make(map[domain.UserID]struct{}, len(ids))
	unique := make([]domain.UserID, 0, len(ids))

	for _, id := range ids {
		if id.Anonymous() {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	return unique
}
