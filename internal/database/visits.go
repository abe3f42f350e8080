package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"faithlog/internal/domain"
)

const visitListLimit = 20

func (d *Database) CreateVisit(
	ctx context.Context,
	userID domain.UserID,
	churchName string,
	visitDate time.Time,
	notes *string,
) (int64, error) {
	churchName = strings.TrimSpace(churchName)
	if churchName == "" {
		return 0, fmt.Errorf("church name: %w", domain.ErrEmptyField)
	}

	if visitDate.IsZero() {
		visitDate = d.now()
	}

	if notes != nil {
		trimmed := strings.TrimSpace(*notes)
		notes = &trimmed
		if trimmed == "" {
			notes = nil
		}
	}

	query := `insert into church_visits (user_id, church_name, visit_date, notes, created_at)
	values (?, ?, ?, ?, ?)`

	result, err := d.db.ExecContext(ctx, query, userID, churchName, visitDate.UTC(), notes, d.now())
	if err != nil {
		return 0, fmt.Errorf("insert church visit: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get inserted church visit id: %w", err)
	}

	return id, nil
}

func (d *Database) ListVisits(ctx context.Context, userID domain.UserID) ([]domain.ChurchVisit, error) {
	query := `select id, user_id, church_name, visit_date, notes, created_at
	from church_visits
	where user_id = ?
	order by created_at desc, id desc
	limit ?`

	visits := []domain.ChurchVisit{}
	if err := d.db.SelectContext(ctx, &visits, query, userID, visitListLimit); err != nil {
		return nil, fmt.Errorf("select church visits: %w", err)
	}

	return visits, nil
}

// VisitStats counts all visits of the user and those dated at or after
// monthStart.
func (d *Database) VisitStats(
	ctx context.Context,
	userID domain.UserID,
	monthStart time.Time,
) (domain.VisitStats, error) {
	query := `select count(*) as total,
	coalesce(sum(case when visit_date >= ? then 1 else 0 end), 0) as this_month
	from church_visits
	where user_id = ?`

	var stats domain.VisitStats
	if err := d.db.GetContext(ctx, &stats, query, monthStart.UTC(), userID); err != nil {
		return domain.VisitStats{}, fmt.Errorf("select church visit stats: %w", err)
	}

	return stats, nil
}

func (d *Database) RemoveVisit(ctx context.Context, userID domain.UserID, id int64) error {
	result, err := d.db.ExecContext(ctx,
		"delete from church_visits where id = ? and user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete church visit: %w", err)
	}

	return affectedOrNotFound(result, fmt.Errorf("church visit %d: %w", id, domain.ErrNotFound))
}
