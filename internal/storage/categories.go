package storage

import (
	"context"
	"fmt"

	"github.com/cleared-dev/finanza/internal/model"
)

const categoryColumns = `id, org_id, name, description, type, icon, color, active, created_by, created_at`

// InsertCategory stores a new category. A duplicate name within the
// organization is a conflict.
func (q *Queries) InsertCategory(ctx context.Context, c *model.Category) error {
	ts := now()
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO categories (org_id, name, description, type, icon, color, active, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.OrgID, c.Name, c.Description, string(c.Type), c.Icon, c.Color, c.Active, c.CreatedBy, ts)
	if err != nil {
		return translate(err, fmt.Sprintf("category %q", c.Name))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading category id: %w", err)
	}
	c.ID = id
	c.CreatedAt = parseTimestamp(ts)
	return nil
}

// GetCategory returns a category owned by orgID.
func (q *Queries) GetCategory(ctx context.Context, orgID, id int64) (model.Category, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE org_id = ? AND id = ?`, orgID, id)
	c, err := scanCategory(row)
	if err != nil {
		return model.Category{}, translate(err, fmt.Sprintf("category %d", id))
	}
	return c, nil
}

// CategoryNameExists reports whether orgID already has a category named name.
func (q *Queries) CategoryNameExists(ctx context.Context, orgID int64, name string) (bool, error) {
	var n int
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM categories WHERE org_id = ? AND name = ?`, orgID, name).Scan(&n)
	if err != nil {
		return false, translate(err, "checking category name")
	}
	return n > 0, nil
}

// FindCategoriesByName returns the organization's categories with the given
// name, compared case-insensitively.
func (q *Queries) FindCategoriesByName(ctx context.Context, orgID int64, name string) ([]model.Category, error) {
	return q.queryCategories(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE org_id = ? AND lower(name) = lower(?) ORDER BY id`,
		orgID, name)
}

// ListCategories returns the organization's active categories, optionally
// restricted to one type, ordered by name.
func (q *Queries) ListCategories(ctx context.Context, orgID int64, typ model.CategoryType) ([]model.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE org_id = ? AND active = 1`
	args := []any{orgID}
	if typ != "" {
		query += ` AND type = ?`
		args = append(args, string(typ))
	}
	query += ` ORDER BY name`
	return q.queryCategories(ctx, query, args...)
}

// UpdateCategory writes every mutable field of a category.
func (q *Queries) UpdateCategory(ctx context.Context, c *model.Category) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, description = ?, type = ?, icon = ?, color = ?, active = ?
		 WHERE org_id = ? AND id = ?`,
		c.Name, c.Description, string(c.Type), c.Icon, c.Color, c.Active, c.OrgID, c.ID)
	if err != nil {
		return translate(err, fmt.Sprintf("category %q", c.Name))
	}
	return requireRow(res, fmt.Sprintf("category %d", c.ID))
}

func (q *Queries) queryCategories(ctx context.Context, query string, args ...any) ([]model.Category, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translate(err, "querying categories")
	}
	defer rows.Close()

	var out []model.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanCategory(s scanner) (model.Category, error) {
	var (
		c            model.Category
		typ, created string
	)
	if err := s.Scan(&c.ID, &c.OrgID, &c.Name, &c.Description, &typ, &c.Icon, &c.Color,
		&c.Active, &c.CreatedBy, &created); err != nil {
		return model.Category{}, err
	}
	c.Type = model.CategoryType(typ)
	c.CreatedAt = parseTimestamp(created)
	return c, nil
}
