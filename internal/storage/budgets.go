package storage

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/finanza/internal/model"
)

const budgetSelect = `SELECT b.id, b.org_id, b.category_id, c.name, b.amount, b.year, b.month, b.created_by,
       b.created_at, b.updated_at
  FROM budgets b
  JOIN categories c ON c.id = b.category_id`

// InsertBudget stores a new monthly budget. A second budget for the same
// category and month is a conflict.
func (q *Queries) InsertBudget(ctx context.Context, b *model.Budget) error {
	ts := now()
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO budgets (org_id, category_id, amount, year, month, created_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.OrgID, b.CategoryID, b.Amount, b.Year, b.Month, b.CreatedBy, ts, ts)
	if err != nil {
		return translate(err, fmt.Sprintf("budget for category %d in %04d-%02d", b.CategoryID, b.Year, b.Month))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading budget id: %w", err)
	}
	b.ID = id
	b.CreatedAt = parseTimestamp(ts)
	b.UpdatedAt = b.CreatedAt
	return nil
}

// GetBudget returns a budget by ID regardless of organization; callers
// check ownership.
func (q *Queries) GetBudget(ctx context.Context, id int64) (model.Budget, error) {
	row := q.db.QueryRowContext(ctx, budgetSelect+` WHERE b.id = ?`, id)
	b, err := scanBudget(row)
	if err != nil {
		return model.Budget{}, translate(err, fmt.Sprintf("budget %d", id))
	}
	return b, nil
}

// FindBudget returns the budget of a category for one month.
func (q *Queries) FindBudget(ctx context.Context, orgID, categoryID int64, year, month int) (model.Budget, error) {
	row := q.db.QueryRowContext(ctx,
		budgetSelect+` WHERE b.org_id = ? AND b.category_id = ? AND b.year = ? AND b.month = ?`,
		orgID, categoryID, year, month)
	b, err := scanBudget(row)
	if err != nil {
		return model.Budget{}, translate(err, fmt.Sprintf("budget for category %d in %04d-%02d", categoryID, year, month))
	}
	return b, nil
}

// UpdateBudgetAmount changes the budgeted amount.
func (q *Queries) UpdateBudgetAmount(ctx context.Context, id int64, amount decimal.Decimal) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE budgets SET amount = ?, updated_at = ? WHERE id = ?`, amount, now(), id)
	if err != nil {
		return translate(err, fmt.Sprintf("updating budget %d", id))
	}
	return requireRow(res, fmt.Sprintf("budget %d", id))
}

// DeleteBudget removes a budget.
func (q *Queries) DeleteBudget(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = ?`, id)
	if err != nil {
		return translate(err, fmt.Sprintf("deleting budget %d", id))
	}
	return requireRow(res, fmt.Sprintf("budget %d", id))
}

// ListBudgetsByMonth returns one month's budgets ordered by category name.
func (q *Queries) ListBudgetsByMonth(ctx context.Context, orgID int64, year, month int) ([]model.Budget, error) {
	return q.queryBudgets(ctx,
		budgetSelect+` WHERE b.org_id = ? AND b.year = ? AND b.month = ? ORDER BY c.name, b.id`,
		orgID, year, month)
}

// ListBudgetsByYear returns a year's budgets ordered by month then category.
func (q *Queries) ListBudgetsByYear(ctx context.Context, orgID int64, year int) ([]model.Budget, error) {
	return q.queryBudgets(ctx,
		budgetSelect+` WHERE b.org_id = ? AND b.year = ? ORDER BY b.month, c.name, b.id`, orgID, year)
}

func (q *Queries) queryBudgets(ctx context.Context, query string, args ...any) ([]model.Budget, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translate(err, "querying budgets")
	}
	defer rows.Close()

	var out []model.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning budget: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanBudget(s scanner) (model.Budget, error) {
	var (
		b            model.Budget
		created, upd string
	)
	if err := s.Scan(&b.ID, &b.OrgID, &b.CategoryID, &b.CategoryName, &b.Amount, &b.Year, &b.Month,
		&b.CreatedBy, &created, &upd); err != nil {
		return model.Budget{}, err
	}
	b.CreatedAt = parseTimestamp(created)
	b.UpdatedAt = parseTimestamp(upd)
	return b, nil
}
