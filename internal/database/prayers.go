package database

import (
	"context"
	"fmt"
	"strings"

	"faithlog/internal/domain"
)

func (d *Database) CreatePrayer(
	ctx context.Context,
	userID domain.UserID,
	intention string,
	category string,
) (int64, error) {
	intention = strings.TrimSpace(intention)
	if intention == "" {
		return 0, fmt.Errorf("intention: %w", domain.ErrEmptyField)
	}

	category = strings.TrimSpace(category)
	if category == "" {
		return 0, fmt.Errorf("category: %w", domain.ErrEmptyField)
	}

	query := `insert into prayer_intentions (user_id, intention, category, is_answered, created_at)
	values (?, ?, ?, false, ?)`

	result, err := d.db.ExecContext(ctx, query, userID, intention, category, d.now())
	if err != nil {
		return 0, fmt.Errorf("insert prayer intention: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get inserted prayer intention id: %w", err)
	}

	return id, nil
}

func (d *Database) ListPrayers(ctx context.Context, userID domain.UserID) ([]domain.PrayerIntention, error) {
	query := `select id, user_id, intention, category, is_answered, created_at
	from prayer_intentions
	where user_id = ?
	order by created_at desc, id desc`

	prayers := []domain.PrayerIntention{}
	if err := d.db.SelectContext(ctx, &prayers, query, userID); err != nil {
		return nil, fmt.Errorf("select prayer intentions: %w", err)
	}

	return prayers, nil
}

func (d *Database) PrayerStats(ctx context.Context, userID domain.UserID) (domain.PrayerStats, error) {
	query := `select count(*) as total, coalesce(sum(is_answered), 0) as answered
	from prayer_intentions
	where user_id = ?`

	var stats domain.PrayerStats
	if err := d.db.GetContext(ctx, &stats, query, userID); err != nil {
		return domain.PrayerStats{}, fmt.Errorf("select prayer stats: %w", err)
	}

	return stats, nil
}

func (d *Database) MarkPrayerAnswered(ctx context.Context, userID domain.UserID, id int64) error {
	result, err := d.db.ExecContext(ctx,
		"update prayer_intentions set is_answered = true where id = ? and user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("update prayer intention: %w", err)
	}

	return affectedOrNotFound(result, fmt.Errorf("prayer intention %d: %w", id, domain.ErrNotFound))
}

func (d *Database) RemovePrayer(ctx context.Context, userID domain.UserID, id int64) error {
	result, err := d.db.ExecContext(ctx,
		"delete from prayer_intentions where id = ? and user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete prayer intention: %w", err)
	}

	return affectedOrNotFound(result, fmt.Errorf("prayer intention %d: %w", id, domain.ErrNotFound))
}

// PrayerOwners returns every distinct user owning at least one prayer
// intention. It reads the whole owner index; fine at small scale only.
func (d *Database) PrayerOwners(ctx context.Context) ([]domain.UserID, error) {
	owners := []domain.UserID{}
	if err := d.db.SelectContext(ctx, &owners,
		"select distinct user_id from prayer_intentions order by user_id"); err != nil {
		return nil, fmt.Errorf("select prayer owners: %w", err)
	}

	return owners, nil
}
