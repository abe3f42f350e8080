package database

import (
	"context"
	"fmt"
	"strings"

	"faithlog/internal/domain"
)

const notificationListLimit = 50

// InsertNotifications stores one unread notification per user, all with the
// same message, in a single transaction.
func (d *Database) InsertNotifications(
	ctx context.Context,
	userIDs []domain.UserID,
	message string,
	notificationType string,
) (int64, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}

	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer d.rollback(ctx, tx, "InsertNotifications")

	stmt, err := tx.PreparexContext(ctx, `insert into notifications (user_id, message, type, is_read, created_at)
	values (?, ?, ?, false, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare notification insert: %w", err)
	}
	defer func() {
		if err = stmt.Close(); err != nil {
			d.log.ErrorContext(ctx, "Failed to close statement",
				"error", err,
				"operation", "InsertNotifications")
		}
	}()

	now := d.now()

	var inserted int64
	for _, userID := range userIDs {
		if _, err = stmt.ExecContext(ctx, userID, message, notificationType, now); err != nil {
			return 0, fmt.Errorf("insert notification (userID = %d): %w", userID, err)
		}
		inserted++
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}

	return inserted, nil
}

func (d *Database) CreateNotification(
	ctx context.Context,
	userID domain.UserID,
	message string,
	notificationType string,
) (int64, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return 0, fmt.Errorf("message: %w", domain.ErrEmptyField)
	}

	notificationType = strings.TrimSpace(notificationType)
	if notificationType == "" {
		return 0, fmt.Errorf("type: %w", domain.ErrEmptyField)
	}

	result, err := d.db.ExecContext(ctx,
		`insert into notifications (user_id, message, type, is_read, created_at) values (?, ?, ?, false, ?)`,
		userID, message, notificationType, d.now())
	if err != nil {
		return 0, fmt.Errorf("insert notification: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get inserted notification id: %w", err)
	}

	return id, nil
}

func (d *Database) ListNotifications(ctx context.Context, userID domain.UserID) ([]domain.Notification, error) {
	query := `select id, user_id, message, type, is_read, created_at
	from notifications
	where user_id = ?
	order by created_at desc, id desc
	limit ?`

	notifications := []domain.Notification{}
	if err := d.db.SelectContext(ctx, &notifications, query, userID, notificationListLimit); err != nil {
		return nil, fmt.Errorf("select notifications: %w", err)
	}

	return notifications, nil
}

func (d *Database) UnreadNotificationCount(ctx context.Context, userID domain.UserID) (int64, error) {
	var count int64
	if err := d.db.GetContext(ctx, &count,
		"select count(*) from notifications where user_id = ? and is_read = false", userID); err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}

	return count, nil
}

func (d *Database) MarkNotificationRead(ctx context.Context, userID domain.UserID, id int64) error {
	result, err := d.db.ExecContext(ctx,
		"update notifications set is_read = true where id = ? and user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("update notification: %w", err)
	}

	return affectedOrNotFound(result, fmt.Errorf("notification %d: %w", id, domain.ErrNotFound))
}

func (d *Database) MarkAllNotificationsRead(ctx context.Context, userID domain.UserID) (int64, error) {
	result, err := d.db.ExecContext(ctx,
		"update notifications set is_read = true where user_id = ? and is_read = false", userID)
	if err != nil {
		return 0, fmt.Errorf("update notifications: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}

	return affected, nil
}
