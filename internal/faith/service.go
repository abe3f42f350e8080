// Package faith is the user-facing surface of the application. Every
// operation receives the caller explicitly; queries by an anonymous caller
// return empty results and mutations are rejected with ErrNotAuthenticated.
package faith

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"faithlog/internal/domain"
)

const ResourceListLimit = 20

type Store interface {
	ListResources(ctx context.Context, category string, limit int) ([]domain.Resource, error)
	InsertManualResource(ctx context.Context, in domain.ResourceInput) (int64, error)
	GetScrapeJob(ctx context.Context, id string) (*domain.ScrapeJob, error)
	LatestScrapeJob(ctx context.Context) (*domain.ScrapeJob, error)

	CreatePrayer(ctx context.Context, userID domain.UserID, intention string, category string) (int64, error)
	ListPrayers(ctx context.Context, userID domain.UserID) ([]domain.PrayerIntention, error)
	PrayerStats(ctx context.Context, userID domain.UserID) (domain.PrayerStats, error)
	MarkPrayerAnswered(ctx context.Context, userID domain.UserID, id int64) error
	RemovePrayer(ctx context.Context, userID domain.UserID, id int64) error

	CreateVisit(
		ctx context.Context,
		userID domain.UserID,
		churchName string,
		visitDate time.Time,
		notes *string,
	) (int64, error)
	ListVisits(ctx context.Context, userID domain.UserID) ([]domain.ChurchVisit, error)
	VisitStats(ctx context.Context, userID domain.UserID, monthStart time.Time) (domain.VisitStats, error)
	RemoveVisit(ctx context.Context, userID domain.UserID, id int64) error

	CreateNotification(ctx context.Context, userID domain.UserID, message string, notificationType string) (int64, error)
	ListNotifications(ctx context.Context, userID domain.UserID) ([]domain.Notification, error)
	UnreadNotificationCount(ctx context.Context, userID domain.UserID) (int64, error)
	MarkNotificationRead(ctx context.Context, userID domain.UserID, id int64) error
	MarkAllNotificationsRead(ctx context.Context, userID domain.UserID) (int64, error)
}

type Scraper interface {
	Run(ctx context.Context, credential string) domain.ScrapeResult
}

type Service struct {
	store   Store
	scraper Scraper
	now     func() time.Time
	log     *slog.Logger
}

func New(store Store, scraper Scraper, log *slog.Logger) *Service {
	return &Service{
		store:   store,
		scraper: scraper,
		now:     time.Now,
		log:     log,
	}
}

// Resources returns the newest resources, optionally of one category.
// Resources are public, no caller is required.
func (s *Service) Resources(ctx context.Context, category string) ([]domain.Resource, error) {
	resources, err := s.store.ListResources(ctx, strings.TrimSpace(category), ResourceListLimit)
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}

	return resources, nil
}

// AddResource stores a resource through the manual path, which does not
// deduplicate by URL.
func (s *Service) AddResource(
	ctx context.Context,
	caller domain.UserID,
	in domain.ResourceInput,
) (int64, error) {
	if caller.Anonymous() {
		return 0, domain.ErrNotAuthenticated
	}

	id, err := s.store.InsertManualResource(ctx, in)
	if err != nil {
		return 0, fmt.Errorf("insert manual resource: %w", err)
	}

	s.log.InfoContext(ctx, "Manual resource is added",
		"resourceID", id,
		"userID", caller,
		"url", in.URL)

	return id, nil
}

// Scrape runs the scrape pipeline on behalf of caller. An anonymous caller
// is rejected before any job is created.
func (s *Service) Scrape(ctx context.Context, caller domain.UserID, credential string) (domain.ScrapeResult, error) {
	if caller.Anonymous() {
		return domain.ScrapeResult{}, domain.ErrNotAuthenticated
	}

	return s.scraper.Run(ctx, credential), nil
}

// ScrapeJob returns the job with the given id or ErrNotFound.
func (s *Service) ScrapeJob(ctx context.Context, id string) (*domain.ScrapeJob, error) {
	job, err := s.store.GetScrapeJob(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, fmt.Errorf("get scrape job: %w", err)
	}

	return job, nil
}

// LatestScrapeJob returns nil when no job was ever created.
func (s *Service) LatestScrapeJob(ctx context.Context) (*domain.ScrapeJob, error) {
	job, err := s.store.LatestScrapeJob(ctx)
	if err != nil {
		return nil, fmt.Errorf("get latest scrape job: %w", err)
	}

	return job, nil
}

func (s *Service) AddPrayer(
	ctx context.Context,
	caller domain.UserID,
	intention string,
	category string,
) (int64, error) {
	if caller.Anonymous() {
		return 0, domain.ErrNotAuthenticated
	}

	category = strings.ToLower(strings.TrimSpace(category))
	if !domain.ValidPrayerCategory(category) {
		return 0, fmt.Errorf("prayer category %q: %w", category, domain.ErrInvalidValue)
	}

	id, err := s.store.CreatePrayer(ctx, caller, intention, category)
	if err != nil {
		return 0, fmt.Errorf("create prayer: %w", err)
	}

	return id, nil
}

func (s *Service) Prayers(ctx context.Context, caller domain.UserID) ([]domain.PrayerIntention, error) {
	if caller.Anonymous() {
		return []domain.PrayerIntention{}, nil
	}

	prayers, err := s.store.ListPrayers(ctx, caller)
	if err != nil {
		return nil, fmt.Errorf("list prayers: %w", err)
	}

	return prayers, nil
}

func (s *Service) PrayerStats(ctx context.Context, caller domain.UserID) (domain.PrayerStats, error) {
	if caller.Anonymous() {
		return domain.PrayerStats{}, nil
	}

	stats, err := s.store.PrayerStats(ctx, caller)
	if err != nil {
		return domain.PrayerStats{}, fmt.Errorf("get prayer stats: %w", err)
	}

	return stats, nil
}

func (s *Service) MarkPrayerAnswered(ctx context.Context, caller domain.UserID, id int64) error {
	if caller.Anonymous() {
		return domain.ErrNotAuthenticated
	}

	if err := s.store.MarkPrayerAnswered(ctx, caller, id); err != nil {
		return fmt.Errorf("mark prayer answered: %w", err)
	}

	return nil
}

func (s *Service) RemovePrayer(ctx context.Context, caller domain.UserID, id int64) error {
	if caller.Anonymous() {
		return domain.ErrNotAuthenticated
	}

	if err := s.store.RemovePrayer(ctx, caller, id); err != nil {
		return fmt.Errorf("remove prayer: %w", err)
	}

	return nil
}

// AddVisit records a church visit. A zero visitDate means now; empty notes
// are not stored.
func (s *Service) AddVisit(
	ctx context.Context,
	caller domain.UserID,
	churchName string,
	visitDate time.Time,
	notes string,
) (int64, error) {
	if caller.Anonymous() {
		return 0, domain.ErrNotAuthenticated
	}

	var notesPtr *string
	if notes = strings.TrimSpace(notes); notes != "" {
		notesPtr = &notes
	}

	id, err := s.store.CreateVisit(ctx, caller, churchName, visitDate, notesPtr)
	if err != nil {
		return 0, fmt.Errorf("create visit: %w", err)
	}

	return id, nil
}

func (s *Service) Visits(ctx context.Context, caller domain.UserID) ([]domain.ChurchVisit, error) {
	if caller.Anonymous() {
		return []domain.ChurchVisit{}, nil
	}

	visits, err := s.store.ListVisits(ctx, caller)
	if err != nil {
		return nil, fmt.Errorf("list visits: %w", err)
	}

	return visits, nil
}

// VisitStats counts visits in total and since the first day of the current
// UTC month.
func (s *Service) VisitStats(ctx context.Context, caller domain.UserID) (domain.VisitStats, error) {
	if caller.Anonymous() {
		return domain.VisitStats{}, nil
	}

	stats, err := s.store.VisitStats(ctx, caller, MonthStart(s.now()))
	if err != nil {
		return domain.VisitStats{}, fmt.Errorf("get visit stats: %w", err)
	}

	return stats, nil
}

func (s *Service) RemoveVisit(ctx context.Context, caller domain.UserID, id int64) error {
	if caller.Anonymous() {
		return domain.ErrNotAuthenticated
	}

	if err := s.store.RemoveVisit(ctx, caller, id); err != nil {
		return fmt.Errorf("remove visit: %w", err)
	}

	return nil
}

func (s *Service) Notify(
	ctx context.Context,
	caller domain.UserID,
	message string,
	notificationType string,
) (int64, error) {
	if caller.Anonymous() {
		return 0, domain.ErrNotAuthenticated
	}

	id, err := s.store.CreateNotification(ctx, caller, message, notificationType)
	if err != nil {
		return 0, fmt.Errorf("create notification: %w", err)
	}

	return id, nil
}

func (s *Service) Notifications(ctx context.Context, caller domain.UserID) ([]domain.Notification, error) {
	if caller.Anonymous() {
		return []domain.Notification{}, nil
	}

	notifications, err := s.store.ListNotifications(ctx, caller)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	return notifications, nil
}

func (s *Service) UnreadCount(ctx context.Context, caller domain.UserID) (int64, error) {
	if caller.Anonymous() {
		return 0, nil
	}

	count, err := s.store.UnreadNotificationCount(ctx, caller)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}

	return count, nil
}

func (s *Service) MarkRead(ctx context.Context, caller domain.UserID, id int64) error {
	if caller.Anonymous() {
		return domain.ErrNotAuthenticated
	}

	if err := s.store.MarkNotificationRead(ctx, caller, id); err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}

	return nil
}

func (s *Service) MarkAllRead(ctx context.Context, caller domain.UserID) (int64, error) {
	if caller.Anonymous() {
		return 0, domain.ErrNotAuthenticated
	}

	count, err := s.store.MarkAllNotificationsRead(ctx, caller)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}

	return count, nil
}

func MonthStart(t time.Time) time.Time {
	t = t.UTC()

	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
