package storage

import (
	"context"
	"fmt"

	"github.com/cleared-dev/finanza/internal/model"
)

const ruleSelect = `SELECT r.id, r.org_id, r.name, r.description, r.kind, r.pattern, r.category_id, c.name,
       r.active, r.priority, r.created_by, r.created_at, r.updated_at
  FROM category_rules r
  JOIN categories c ON c.id = r.category_id`

// InsertRule stores a new category rule.
func (q *Queries) InsertRule(ctx context.Context, r *model.CategoryRule) error {
	ts := now()
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO category_rules (org_id, name, description, kind, pattern, category_id, active, priority,
		     created_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.OrgID, r.Name, r.Description, string(r.Kind), r.Pattern, r.CategoryID, r.Active, r.Priority,
		r.CreatedBy, ts, ts)
	if err != nil {
		return translate(err, "inserting rule")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading rule id: %w", err)
	}
	r.ID = id
	r.CreatedAt = parseTimestamp(ts)
	r.UpdatedAt = r.CreatedAt
	return nil
}

// GetRule returns a rule by ID regardless of organization; callers check
// ownership.
func (q *Queries) GetRule(ctx context.Context, id int64) (model.CategoryRule, error) {
	row := q.db.QueryRowContext(ctx, ruleSelect+` WHERE r.id = ?`, id)
	r, err := scanRule(row)
	if err != nil {
		return model.CategoryRule{}, translate(err, fmt.Sprintf("rule %d", id))
	}
	return r, nil
}

// UpdateRule writes every mutable field of a rule.
func (q *Queries) UpdateRule(ctx context.Context, r *model.CategoryRule) error {
	ts := now()
	res, err := q.db.ExecContext(ctx,
		`UPDATE category_rules SET name = ?, description = ?, kind = ?, pattern = ?, category_id = ?, active = ?,
		     priority = ?, updated_at = ?
		 WHERE org_id = ? AND id = ?`,
		r.Name, r.Description, string(r.Kind), r.Pattern, r.CategoryID, r.Active, r.Priority, ts, r.OrgID, r.ID)
	if err != nil {
		return translate(err, fmt.Sprintf("updating rule %d", r.ID))
	}
	if err := requireRow(res, fmt.Sprintf("rule %d", r.ID)); err != nil {
		return err
	}
	r.UpdatedAt = parseTimestamp(ts)
	return nil
}

// DeleteRule removes a rule.
func (q *Queries) DeleteRule(ctx context.Context, orgID, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM category_rules WHERE org_id = ? AND id = ?`, orgID, id)
	if err != nil {
		return translate(err, fmt.Sprintf("deleting rule %d", id))
	}
	return requireRow(res, fmt.Sprintf("rule %d", id))
}

// ListRules returns all of the organization's rules, highest priority first.
func (q *Queries) ListRules(ctx context.Context, orgID int64) ([]model.CategoryRule, error) {
	return q.queryRules(ctx, ruleSelect+` WHERE r.org_id = ? ORDER BY r.priority DESC, r.id ASC`, orgID)
}

// ListActiveRules returns the organization's active rules whose category
// is also active, in evaluation order: priority descending, then ID
// ascending.
func (q *Queries) ListActiveRules(ctx context.Context, orgID int64) ([]model.CategoryRule, error) {
	return q.queryRules(ctx,
		ruleSelect+` WHERE r.org_id = ? AND r.active = 1 AND c.active = 1 ORDER BY r.priority DESC, r.id ASC`, orgID)
}

func (q *Queries) queryRules(ctx context.Context, query string, args ...any) ([]model.CategoryRule, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translate(err, "querying rules")
	}
	defer rows.Close()

	var out []model.CategoryRule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning rule: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanRule(s scanner) (model.CategoryRule, error) {
	var (
		r                  model.CategoryRule
		kind, created, upd string
	)
	if err := s.Scan(&r.ID, &r.OrgID, &r.Name, &r.Description, &kind, &r.Pattern, &r.CategoryID,
		&r.CategoryName, &r.Active, &r.Priority, &r.CreatedBy, &created, &upd); err != nil {
		return model.CategoryRule{}, err
	}
	r.Kind = model.RuleKind(kind)
	r.CreatedAt = parseTimestamp(created)
	r.UpdatedAt = parseTimestamp(upd)
	return r, nil
}
