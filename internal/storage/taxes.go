package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/cleared-dev/finanza/internal/model"
)

const taxSelect = `SELECT x.id, x.org_id, x.transaction_id, x.tax_type, x.percentage, x.amount, x.description,
       x.created_at
  FROM tax_lines x`

// InsertTaxLine stores a tax charged on a transaction.
func (q *Queries) InsertTaxLine(ctx context.Context, l *model.TaxLine) error {
	ts := now()
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO tax_lines (org_id, transaction_id, tax_type, percentage, amount, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		l.OrgID, l.TransactionID, string(l.TaxType), l.Percentage, l.Amount, l.Description, ts)
	if err != nil {
		return translate(err, "inserting tax line")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading tax line id: %w", err)
	}
	l.ID = id
	l.CreatedAt = parseTimestamp(ts)
	return nil
}

// DeleteTaxLinesForTransaction removes every tax line of a transaction.
func (q *Queries) DeleteTaxLinesForTransaction(ctx context.Context, orgID, transactionID int64) error {
	_, err := q.db.ExecContext(ctx,
		`DELETE FROM tax_lines WHERE org_id = ? AND transaction_id = ?`, orgID, transactionID)
	return translate(err, fmt.Sprintf("deleting tax lines of transaction %d", transactionID))
}

// TaxLinesByTransaction returns the tax lines of one transaction.
func (q *Queries) TaxLinesByTransaction(ctx context.Context, orgID, transactionID int64) ([]model.TaxLine, error) {
	return q.queryTaxLines(ctx,
		taxSelect+` WHERE x.org_id = ? AND x.transaction_id = ? ORDER BY x.id`, orgID, transactionID)
}

// TaxLinesBetween returns the tax lines of transactions dated within
// [from, to], newest transaction first.
func (q *Queries) TaxLinesBetween(ctx context.Context, orgID int64, from, to time.Time) ([]model.TaxLine, error) {
	return q.queryTaxLines(ctx,
		taxSelect+` JOIN transactions t ON t.id = x.transaction_id
		 WHERE x.org_id = ? AND t.txn_date BETWEEN ? AND ?
		 ORDER BY t.txn_date DESC, x.id`,
		orgID, formatDate(from), formatDate(to))
}

func (q *Queries) queryTaxLines(ctx context.Context, query string, args ...any) ([]model.TaxLine, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translate(err, "querying tax lines")
	}
	defer rows.Close()

	var out []model.TaxLine
	for rows.Next() {
		var (
			l       model.TaxLine
			typ, ts string
		)
		if err := rows.Scan(&l.ID, &l.OrgID, &l.TransactionID, &typ, &l.Percentage, &l.Amount,
			&l.Description, &ts); err != nil {
			return nil, fmt.Errorf("scanning tax line: %w", err)
		}
		l.TaxType = model.TaxType(typ)
		l.CreatedAt = parseTimestamp(ts)
		out = append(out, l)
	}
	return out, rows.Err()
}
