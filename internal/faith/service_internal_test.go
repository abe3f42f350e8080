package faith

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"faithlog/internal/database"
	"faithlog/internal/domain"

	"github.com/stretchr/testify/require"
)

type stubScraper struct {
	mu    sync.Mutex
	calls []string
}

func (s *stubScraper) Run(_ context.Context, credential string) domain.ScrapeResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, credential)

	return domain.ScrapeResult{Success: true, ItemsScraped: 2, JobID: "job"}
}

func newTestService(t *testing.T) (*Service, *stubScraper) {
	t.Helper()

	db, err := database.New(context.Background(), filepath.Join(t.TempDir(), "faithlog.sqlite"), slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	scraper := &stubScraper{}

	return New(db, scraper, slog.Default()), scraper
}

func TestAnonymousCallerQueriesAreEmpty(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	prayers, err := s.Prayers(ctx, 0)
	require.NoError(t, err)
	require.Empty(t, prayers)

	visits, err := s.Visits(ctx, 0)
	require.NoError(t, err)
	require.Empty(t, visits)

	notifications, err := s.Notifications(ctx, 0)
	require.NoError(t, err)
	require.Empty(t, notifications)

	unread, err := s.UnreadCount(ctx, 0)
	require.NoError(t, err)
	require.Zero(t, unread)

	stats, err := s.VisitStats(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, domain.VisitStats{}, stats)
}

func TestAnonymousCallerMutationsAreRejected(t *testing.T) {
	s, scraper := newTestService(t)
	ctx := context.Background()

	_, err := s.AddPrayer(ctx, 0, "peace", "world")
	require.ErrorIs(t, err, domain.ErrNotAuthenticated)

	_, err = s.AddVisit(ctx, 0, "St. Mary", time.Time{}, "")
	require.ErrorIs(t, err, domain.ErrNotAuthenticated)

	_, err = s.AddResource(ctx, 0, DemoResources[0])
	require.ErrorIs(t, err, domain.ErrNotAuthenticated)

	_, err = s.Scrape(ctx, 0, "key")
	require.ErrorIs(t, err, domain.ErrNotAuthenticated)
	require.Empty(t, scraper.calls, "no job must be started")

	require.ErrorIs(t, s.MarkRead(ctx, 0, 1), domain.ErrNotAuthenticated)
	_, err = s.MarkAllRead(ctx, 0)
	require.ErrorIs(t, err, domain.ErrNotAuthenticated)

	resources, err := s.Resources(ctx, "")
	require.NoError(t, err)
	require.Empty(t, resources)
}

func TestNotOwnedRecordsAreNotFound(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	prayerID, err := s.AddPrayer(ctx, 1, "healing for mom", "Healing")
	require.NoError(t, err)

	visitID, err := s.AddVisit(ctx, 1, "St. Mary", time.Time{}, "  ")
	require.NoError(t, err)

	notificationID, err := s.Notify(ctx, 1, "hello", domain.NotificationTypeResourceUpdate)
	require.NoError(t, err)

	require.ErrorIs(t, s.MarkPrayerAnswered(ctx, 2, prayerID), domain.ErrNotFound)
	require.ErrorIs(t, s.RemovePrayer(ctx, 2, prayerID), domain.ErrNotFound)
	require.ErrorIs(t, s.RemoveVisit(ctx, 2, visitID), domain.ErrNotFound)
	require.ErrorIs(t, s.MarkRead(ctx, 2, notificationID), domain.ErrNotFound)

	prayers, err := s.Prayers(ctx, 1)
	require.NoError(t, err)
	require.Len(t, prayers, 1)
	require.False(t, prayers[0].IsAnswered)
	require.Equal(t, "healing", prayers[0].Category)

	visits, err := s.Visits(ctx, 1)
	require.NoError(t, err)
	require.Len(t, visits, 1)
	require.Nil(t, visits[0].Notes)

	require.NoError(t, s.MarkPrayerAnswered(ctx, 1, prayerID))

	stats, err := s.PrayerStats(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, domain.PrayerStats{Total: 1, Answered: 1}, stats)
}

func TestAddPrayerRejectsUnknownCategory(t *testing.T) {
	s, _ := newTestService(t)

	_, err := s.AddPrayer(context.Background(), 1, "peace", "weather")
	require.ErrorIs(t, err, domain.ErrInvalidValue)
}

func TestVisitStatsCountsCurrentMonth(t *testing.T) {
	s, _ := newTestService(t)
	s.now = func() time.Time { return time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	for _, day := range []time.Time{
		time.Date(2025, 2, 28, 23, 59, 0, 0, time.UTC),
		time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC),
	} {
		_, err := s.AddVisit(ctx, 5, "Grace Chapel", day, "")
		require.NoError(t, err)
	}

	stats, err := s.VisitStats(ctx, 5)
	require.NoError(t, err)
	require.Equal(t, domain.VisitStats{Total: 3, ThisMonth: 2}, stats)
}

func TestScrapeAndLatestJob(t *testing.T) {
	s, scraper := newTestService(t)
	ctx := context.Background()

	job, err := s.LatestScrapeJob(ctx)
	require.NoError(t, err)
	require.Nil(t, job)

	result, err := s.Scrape(ctx, 9, "fc-key")
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, []string{"fc-key"}, scraper.calls)
}

func TestScrapeJobLookup(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	id, err := s.store.(*database.Database).CreateScrapeJob(ctx)
	require.NoError(t, err)

	job, err := s.ScrapeJob(ctx, id)
	require.NoError(t, err)
	require.Equal(t, id, job.ID)
	require.Equal(t, domain.JobStatusPending, job.Status)

	_, err = s.ScrapeJob(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSeedDemoUsesManualPath(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	for range 2 {
		added, err := s.SeedDemo(ctx, 1)
		require.NoError(t, err)
		require.Equal(t, len(DemoResources), added)
	}

	resources, err := s.Resources(ctx, "")
	require.NoError(t, err)
	require.Len(t, resources, 2*len(DemoResources))

	testimonies, err := s.Resources(ctx, domain.CategoryTestimonies)
	require.NoError(t, err)
	require.Len(t, testimonies, 2)
	require.Equal(t, "Revival Stories", testimonies[0].Source)
}

func TestMonthStart(t *testing.T) {
	in := time.Date(2025, 12, 31, 23, 30, 0, 0, time.FixedZone("UTC-5", -5*3600))

	require.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), MonthStart(in))
}
