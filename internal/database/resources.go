package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"faithlog/internal/domain"
)

const resourceColumns = "id, title, url, description, source, category, scraped_at"

// IngestResource inserts the resource unless one with the same URL already
// exists. It reports whether a row was inserted. The lookup and the insert
// are not atomic; concurrent ingestion of one URL may store it twice.
func (d *Database) IngestResource(ctx context.Context, in domain.ResourceInput) (bool, error) {
	in.Normalize()
	if in.URL == "" {
		return false, fmt.Errorf("url: %w", domain.ErrEmptyField)
	}

	var found int
	err := d.db.GetContext(ctx, &found, "select 1 from faith_resources where url = ? limit 1", in.URL)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("lookup resource by URL: %w", err)
	}

	if _, err = d.insertResource(ctx, in); err != nil {
		return false, err
	}

	return true, nil
}

// InsertManualResource always inserts, even when the URL is already stored.
func (d *Database) InsertManualResource(ctx context.Context, in domain.ResourceInput) (int64, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return 0, fmt.Errorf("validate resource: %w", err)
	}

	return d.insertResource(ctx, in)
}

func (d *Database) insertResource(ctx context.Context, in domain.ResourceInput) (int64, error) {
	query := `insert into faith_resources (title, url, description, source, category, scraped_at)
	values (?, ?, ?, ?, ?, ?)`

	result, err := d.db.ExecContext(ctx, query,
		in.Title, in.URL, in.Description, in.Source, in.Category, d.now())
	if err != nil {
		return 0, fmt.Errorf("insert resource: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get inserted resource id: %w", err)
	}

	return id, nil
}

// ListResources returns up to limit resources, newest first. An empty
// category means every category.
func (d *Database) ListResources(ctx context.Context, category string, limit int) ([]domain.Resource, error) {
	category = strings.TrimSpace(category)

	var (
		query string
		args  []any
	)

	if category != "" {
		query = `select ` + resourceColumns + `
		from faith_resources
		where category = ?
		order by scraped_at desc, id desc
		limit ?`
		args = []any{category, limit}
	} else {
		query = `select ` + resourceColumns + `
		from faith_resources
		order by scraped_at desc, id desc
		limit ?`
		args = []any{limit}
	}

	resources := []domain.Resource{}
	if err := d.db.SelectContext(ctx, &resources, query, args...); err != nil {
		return nil, fmt.Errorf("select resources: %w", err)
	}

	return resources, nil
}

func (d *Database) CountResourcesByURL(ctx context.Context, url string) (int64, error) {
	var count int64
	if err := d.db.GetContext(ctx, &count, "select count(*) from faith_resources where url = ?", url); err != nil {
		return 0, fmt.Errorf("count resources: %w", err)
	}

	return count, nil
}
