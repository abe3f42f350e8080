package reminder_test

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"faithlog/internal/database"
	"faithlog/internal/domain"
	"faithlog/internal/metrics"
	"faithlog/internal/reminder"

	"github.com/stretchr/testify/require"
)

type stubStore struct {
	mu        sync.Mutex
	owners    []domain.UserID
	ownersErr error
	inserted  []domain.UserID
	message   string
	kind      string
}

func (s *stubStore) PrayerOwners(context.Context) ([]domain.UserID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.owners, s.ownersErr
}

func (s *stubStore) InsertNotifications(
	_ context.Context,
	userIDs []domain.UserID,
	message string,
	notificationType string,
) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.inserted = append(s.inserted, userIDs...)
	s.message = message
	s.kind = notificationType

	return int64(len(userIDs)), nil
}

type stubDeliverer struct {
	mu        sync.Mutex
	delivered map[domain.UserID]string
	failFor   domain.UserID
}

func (d *stubDeliverer) Deliver(_ context.Context, userID domain.UserID, message string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if userID == d.failFor {
		return errors.New("chat not found")
	}
	if d.delivered == nil {
		d.delivered = map[domain.UserID]string{}
	}
	d.delivered[userID] = message

	return nil
}

func TestFireWithoutOwnersCreatesNothing(t *testing.T) {
	store := &stubStore{}

	created, err := reminder.New(store, slog.Default()).Fire(context.Background())

	require.NoError(t, err)
	require.Zero(t, created)
	require.Empty(t, store.inserted)
}

func TestFireSendsSameMessageToDistinctOwners(t *testing.T) {
	store := &stubStore{owners: []domain.UserID{7, 3, 7, 9, 3}}

	f := reminder.New(store, slog.Default(),
		reminder.WithPicker(func(n int) int {
			require.Equal(t, len(reminder.Messages), n)
			return 3
		}),
		reminder.WithMetrics(metrics.New()))

	created, err := f.Fire(context.Background())

	require.NoError(t, err)
	require.EqualValues(t, 3, created)
	require.Equal(t, []domain.UserID{7, 3, 9}, store.inserted)
	require.Equal(t, reminder.Messages[3], store.message)
	require.Equal(t, domain.NotificationTypePrayerReminder, store.kind)
}

func TestFireOwnersLookupFailure(t *testing.T) {
	store := &stubStore{ownersErr: errors.New("no such table")}

	_, err := reminder.New(store, slog.Default()).Fire(context.Background())

	require.ErrorContains(t, err, "no such table")
	require.Empty(t, store.inserted)
}

func TestFireDeliveryFailureKeepsNotifications(t *testing.T) {
	store := &stubStore{owners: []domain.UserID{1, 2}}
	deliverer := &stubDeliverer{failFor: 1}

	created, err := reminder.New(store, slog.Default(),
		reminder.WithDeliverer(deliverer),
		reminder.WithPicker(func(int) int { return 0 })).Fire(context.Background())

	require.NoError(t, err)
	require.EqualValues(t, 2, created)
	require.Equal(t, map[domain.UserID]string{2: reminder.Messages[0]}, deliverer.delivered)
}

func TestFireAgainstDatabase(t *testing.T) {
	ctx := context.Background()

	db, err := database.New(ctx, filepath.Join(t.TempDir(), "faithlog.sqlite"), slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	for _, userID := range []domain.UserID{11, 12, 11} {
		_, err = db.CreatePrayer(ctx, userID, "intention", "family")
		require.NoError(t, err)
	}

	f := reminder.New(db, slog.Default(), reminder.WithPicker(func(int) int { return 4 }))

	created, err := f.Fire(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, created)

	for _, userID := range []domain.UserID{11, 12} {
		notifications, err := db.ListNotifications(ctx, userID)
		require.NoError(t, err)
		require.Len(t, notifications, 1)
		require.Equal(t, reminder.Messages[4], notifications[0].Message)
		require.False(t, notifications[0].IsRead)
	}
}
