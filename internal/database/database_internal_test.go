package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"faithlog/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

type stepClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(c.step)

	return c.now
}

func newTestDatabase(t *testing.T) *Database {
	t.Helper()

	db, err := New(context.Background(), filepath.Join(t.TempDir(), "test.sqlite"), slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})

	clock := &stepClock{now: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC), step: time.Second}
	db.now = clock.Now

	return db
}

func resourceInput(url string, category string) domain.ResourceInput {
	return domain.ResourceInput{
		Title:       "Title " + url,
		URL:         url,
		Description: "Description",
		Source:      "example.com",
		Category:    category,
	}
}

func TestIngestResourceDeduplicatesByURL(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	urls := []string{"https://example.com/u1", "https://example.com/u2", "https://example.com/u1"}
	var inserted []bool

	for _, u := range urls {
		ok, err := db.IngestResource(ctx, resourceInput(u, domain.CategoryInspiration))
		require.NoError(t, err)
		inserted = append(inserted, ok)
	}

	require.Equal(t, []bool{true, true, false}, inserted)

	for _, u := range urls[:2] {
		count, err := db.CountResourcesByURL(ctx, u)
		require.NoError(t, err)
		require.EqualValues(t, 1, count, u)
	}
}

func TestIngestResourceSkipsURLAddedManually(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	_, err := db.InsertManualResource(ctx, resourceInput("https://example.com/a", domain.CategoryNews))
	require.NoError(t, err)

	ok, err := db.IngestResource(ctx, resourceInput("https://example.com/a", domain.CategoryInspiration))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestInsertManualResourceDoesNotDeduplicate(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	in := resourceInput("https://example.com/daily-prayer", domain.CategoryInspiration)

	firstID, err := db.InsertManualResource(ctx, in)
	require.NoError(t, err)

	secondID, err := db.InsertManualResource(ctx, in)
	require.NoError(t, err)
	require.NotEqual(t, firstID, secondID)

	count, err := db.CountResourcesByURL(ctx, in.URL)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)
}

func TestInsertManualResourceValidates(t *testing.T) {
	db := newTestDatabase(t)

	_, err := db.InsertManualResource(context.Background(), domain.ResourceInput{URL: "https://example.com"})
	require.ErrorIs(t, err, domain.ErrEmptyField)
}

func TestListResourcesByCategoryReturnsNewestTwenty(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	for i := range 25 {
		_, err := db.IngestResource(ctx,
			resourceInput(fmt.Sprintf("https://example.com/testimony/%02d", i), domain.CategoryTestimonies))
		require.NoError(t, err)
	}
	_, err := db.IngestResource(ctx, resourceInput("https://example.com/news", domain.CategoryNews))
	require.NoError(t, err)

	resources, err := db.ListResources(ctx, domain.CategoryTestimonies, 20)
	require.NoError(t, err)
	require.Len(t, resources, 20)

	require.Equal(t, "https://example.com/testimony/24", resources[0].URL)
	require.Equal(t, "https://example.com/testimony/05", resources[19].URL)

	for i := 1; i < len(resources); i++ {
		require.True(t, resources[i-1].ScrapedAt.After(resources[i].ScrapedAt),
			"expected descending scrapedAt at index %d", i)
		require.Equal(t, domain.CategoryTestimonies, resources[i].Category)
	}
}

func TestListResourcesWithoutCategory(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	_, err := db.IngestResource(ctx, resourceInput("https://example.com/1", domain.CategoryNews))
	require.NoError(t, err)
	_, err = db.IngestResource(ctx, resourceInput("https://example.com/2", domain.CategoryEvents))
	require.NoError(t, err)

	resources, err := db.ListResources(ctx, "", 20)
	require.NoError(t, err)
	require.Len(t, resources, 2)
	require.Equal(t, "https://example.com/2", resources[0].URL)

	empty, err := db.ListResources(ctx, "unknown", 20)
	require.NoError(t, err)
	require.NotNil(t, empty)
	require.Empty(t, empty)
}

func TestScrapeJobLifecycle(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	id, err := db.CreateScrapeJob(ctx)
	require.NoError(t, err)

	job, err := db.GetScrapeJob(ctx, id)
	require.NoError(t, err)
	require.Equal(t, domain.JobStatusPending, job.Status)
	require.Zero(t, job.ItemsScraped)
	require.Nil(t, job.StartedAt)
	require.Nil(t, job.CompletedAt)

	require.NoError(t, db.TransitionScrapeJob(ctx, id, domain.JobStatusRunning, domain.JobUpdate{}))

	job, err = db.GetScrapeJob(ctx, id)
	require.NoError(t, err)
	require.Equal(t, domain.JobStatusRunning, job.Status)
	require.NotNil(t, job.StartedAt)
	require.True(t, job.StartedAt.After(job.CreatedAt))
	require.Nil(t, job.CompletedAt)

	items := int64(2)
	require.NoError(t, db.TransitionScrapeJob(ctx, id, domain.JobStatusCompleted,
		domain.JobUpdate{ItemsScraped: &items}))

	job, err = db.GetScrapeJob(ctx, id)
	require.NoError(t, err)
	require.Equal(t, domain.JobStatusCompleted, job.Status)
	require.EqualValues(t, 2, job.ItemsScraped)
	require.NotNil(t, job.CompletedAt)
	require.True(t, job.CompletedAt.After(*job.StartedAt))
	require.Nil(t, job.Error)
}

func TestScrapeJobFailedStoresError(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	id, err := db.CreateScrapeJob(ctx)
	require.NoError(t, err)
	require.NoError(t, db.TransitionScrapeJob(ctx, id, domain.JobStatusRunning, domain.JobUpdate{}))
	require.NoError(t, db.TransitionScrapeJob(ctx, id, domain.JobStatusFailed, domain.JobUpdate{Error: "boom"}))

	job, err := db.GetScrapeJob(ctx, id)
	require.NoError(t, err)
	require.Equal(t, domain.JobStatusFailed, job.Status)
	require.NotNil(t, job.Error)
	require.Equal(t, "boom", *job.Error)
	require.Zero(t, job.ItemsScraped)
}

func TestTransitionScrapeJobRejectsOutOfOrder(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	id, err := db.CreateScrapeJob(ctx)
	require.NoError(t, err)

	err = db.TransitionScrapeJob(ctx, id, domain.JobStatusCompleted, domain.JobUpdate{})
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	require.NoError(t, db.TransitionScrapeJob(ctx, id, domain.JobStatusRunning, domain.JobUpdate{}))
	require.NoError(t, db.TransitionScrapeJob(ctx, id, domain.JobStatusCompleted, domain.JobUpdate{}))

	err = db.TransitionScrapeJob(ctx, id, domain.JobStatusRunning, domain.JobUpdate{})
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	err = db.TransitionScrapeJob(ctx, id, domain.JobStatus("paused"), domain.JobUpdate{})
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	job, err := db.GetScrapeJob(ctx, id)
	require.NoError(t, err)
	require.Equal(t, domain.JobStatusCompleted, job.Status)
}

func TestTransitionScrapeJobUnknownID(t *testing.T) {
	db := newTestDatabase(t)

	err := db.TransitionScrapeJob(context.Background(), "missing", domain.JobStatusRunning, domain.JobUpdate{})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLatestScrapeJob(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	job, err := db.LatestScrapeJob(ctx)
	require.NoError(t, err)
	require.Nil(t, job)

	_, err = db.CreateScrapeJob(ctx)
	require.NoError(t, err)
	secondID, err := db.CreateScrapeJob(ctx)
	require.NoError(t, err)

	job, err = db.LatestScrapeJob(ctx)
	require.NoError(t, err)
	require.NotNil(t, job)
	require.Equal(t, secondID, job.ID)
}

func TestPrayerOwnershipAndOwners(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	owners, err := db.PrayerOwners(ctx)
	require.NoError(t, err)
	require.Empty(t, owners)

	aliceID, err := db.CreatePrayer(ctx, 1, "For my family", "family")
	require.NoError(t, err)
	_, err = db.CreatePrayer(ctx, 1, "For healing", "healing")
	require.NoError(t, err)
	_, err = db.CreatePrayer(ctx, 2, "For guidance", "guidance")
	require.NoError(t, err)

	owners, err = db.PrayerOwners(ctx)
	require.NoError(t, err)
	require.Equal(t, []domain.UserID{1, 2}, owners)

	err = db.MarkPrayerAnswered(ctx, 2, aliceID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	err = db.RemovePrayer(ctx, 2, aliceID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, db.MarkPrayerAnswered(ctx, 1, aliceID))

	stats, err := db.PrayerStats(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, domain.PrayerStats{Total: 2, Answered: 1}, stats)

	prayers, err := db.ListPrayers(ctx, 1)
	require.NoError(t, err)
	require.Len(t, prayers, 2)
	require.Equal(t, "For healing", prayers[0].Intention)

	require.NoError(t, db.RemovePrayer(ctx, 1, aliceID))

	prayers, err = db.ListPrayers(ctx, 1)
	require.NoError(t, err)
	require.Len(t, prayers, 1)
}

func TestVisitStats(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	monthStart := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	notes := "  Lovely choir  "

	_, err := db.CreateVisit(ctx, 1, "St. Mary", monthStart.Add(48*time.Hour), &notes)
	require.NoError(t, err)
	oldID, err := db.CreateVisit(ctx, 1, "St. Paul", monthStart.Add(-48*time.Hour), nil)
	require.NoError(t, err)

	stats, err := db.VisitStats(ctx, 1, monthStart)
	require.NoError(t, err)
	require.Equal(t, domain.VisitStats{Total: 2, ThisMonth: 1}, stats)

	visits, err := db.ListVisits(ctx, 1)
	require.NoError(t, err)
	require.Len(t, visits, 2)
	require.Equal(t, "St. Paul", visits[0].ChurchName)
	require.NotNil(t, visits[1].Notes)
	require.Equal(t, "Lovely choir", *visits[1].Notes)

	require.ErrorIs(t, db.RemoveVisit(ctx, 2, oldID), domain.ErrNotFound)
	require.NoError(t, db.RemoveVisit(ctx, 1, oldID))
}

func TestNotifications(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	inserted, err := db.InsertNotifications(ctx, nil, "ignored", domain.NotificationTypePrayerReminder)
	require.NoError(t, err)
	require.Zero(t, inserted)

	inserted, err = db.InsertNotifications(ctx, []domain.UserID{1, 2, 3}, "Pray", domain.NotificationTypePrayerReminder)
	require.NoError(t, err)
	require.EqualValues(t, 3, inserted)

	for _, userID := range []domain.UserID{1, 2, 3} {
		notifications, listErr := db.ListNotifications(ctx, userID)
		require.NoError(t, listErr)
		require.Len(t, notifications, 1)
		require.Equal(t, "Pray", notifications[0].Message)
		require.Equal(t, domain.NotificationTypePrayerReminder, notifications[0].Type)
		require.False(t, notifications[0].IsRead)
	}

	id, err := db.CreateNotification(ctx, 1, "Visit church", domain.NotificationTypeChurchReminder)
	require.NoError(t, err)

	unread, err := db.UnreadNotificationCount(ctx, 1)
	require.NoError(t, err)
	require.EqualValues(t, 2, unread)

	require.ErrorIs(t, db.MarkNotificationRead(ctx, 2, id), domain.ErrNotFound)
	require.NoError(t, db.MarkNotificationRead(ctx, 1, id))

	marked, err := db.MarkAllNotificationsRead(ctx, 1)
	require.NoError(t, err)
	require.EqualValues(t, 1, marked)

	unread, err = db.UnreadNotificationCount(ctx, 1)
	require.NoError(t, err)
	require.Zero(t, unread)
}

func TestIngestResourceLookupFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db := NewWithDB(sqlDB, slog.Default())

	mock.ExpectQuery("select 1 from faith_resources").
		WithArgs("https://example.com").
		WillReturnError(errors.New("disk I/O error"))

	ok, err := db.IngestResource(context.Background(), resourceInput("https://example.com", domain.CategoryNews))
	require.Error(t, err)
	require.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionScrapeJobUpdateFailureRollsBack(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db := NewWithDB(sqlDB, slog.Default())

	mock.ExpectBegin()
	mock.ExpectQuery("select status from scrape_jobs").
		WithArgs("job-1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("running"))
	mock.ExpectExec("update scrape_jobs set").
		WillReturnError(errors.New("database is locked"))
	mock.ExpectRollback()

	err = db.TransitionScrapeJob(context.Background(), "job-1", domain.JobStatusCompleted, domain.JobUpdate{})
	require.ErrorContains(t, err, "database is locked")
	require.NoError(t, mock.ExpectationsWereMet())
}
