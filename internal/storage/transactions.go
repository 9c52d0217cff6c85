package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/finanza/internal/model"
)

// TransactionFilter narrows a transaction listing. Zero values mean "any".
type TransactionFilter struct {
	From       *time.Time
	To         *time.Time
	CategoryID *int64
	Type       model.TransactionType
	Limit      int
	Offset     int
}

const transactionSelect = `SELECT t.id, t.org_id, t.type, t.amount, t.txn_date, t.description, t.notes,
       t.account_id, t.category_id, t.destination_account_id, t.credit_card_id, t.installments,
       t.created_by, t.created_at, t.updated_at,
       a.name, COALESCE(c.name, ''), COALESCE(d.name, '')
  FROM transactions t
  JOIN accounts a ON a.id = t.account_id
  LEFT JOIN categories c ON c.id = t.category_id
  LEFT JOIN accounts d ON d.id = t.destination_account_id`

// InsertTransaction stores a transaction with its tags and attachments and
// fills in its ID and timestamps.
func (q *Queries) InsertTransaction(ctx context.Context, t *model.Transaction) error {
	ts := now()
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO transactions (org_id, type, amount, txn_date, description, notes, account_id, category_id,
		     destination_account_id, credit_card_id, installments, created_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.OrgID, string(t.Type), t.Amount, formatDate(t.Date), t.Description, t.Notes, t.AccountID,
		t.CategoryID, t.DestinationAccountID, t.CreditCardID, t.Installments, t.CreatedBy, ts, ts)
	if err != nil {
		return translate(err, "inserting transaction")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading transaction id: %w", err)
	}
	t.ID = id
	t.CreatedAt = parseTimestamp(ts)
	t.UpdatedAt = t.CreatedAt

	return q.writeLabels(ctx, t)
}

// UpdateTransaction overwrites a transaction and replaces its tags and
// attachments.
func (q *Queries) UpdateTransaction(ctx context.Context, t *model.Transaction) error {
	ts := now()
	res, err := q.db.ExecContext(ctx,
		`UPDATE transactions SET type = ?, amount = ?, txn_date = ?, description = ?, notes = ?, account_id = ?,
		     category_id = ?, destination_account_id = ?, credit_card_id = ?, installments = ?, updated_at = ?
		 WHERE org_id = ? AND id = ?`,
		string(t.Type), t.Amount, formatDate(t.Date), t.Description, t.Notes, t.AccountID, t.CategoryID,
		t.DestinationAccountID, t.CreditCardID, t.Installments, ts, t.OrgID, t.ID)
	if err != nil {
		return translate(err, fmt.Sprintf("updating transaction %d", t.ID))
	}
	if err := requireRow(res, fmt.Sprintf("transaction %d", t.ID)); err != nil {
		return err
	}
	t.UpdatedAt = parseTimestamp(ts)

	if _, err := q.db.ExecContext(ctx, `DELETE FROM transaction_tags WHERE transaction_id = ?`, t.ID); err != nil {
		return translate(err, "clearing tags")
	}
	if _, err := q.db.ExecContext(ctx, `DELETE FROM transaction_attachments WHERE transaction_id = ?`, t.ID); err != nil {
		return translate(err, "clearing attachments")
	}
	return q.writeLabels(ctx, t)
}

func (q *Queries) writeLabels(ctx context.Context, t *model.Transaction) error {
	seen := make(map[string]bool, len(t.Tags))
	for _, tag := range t.Tags {
		if seen[tag] {
			continue
		}
		seen[tag] = true
		if _, err := q.db.ExecContext(ctx,
			`INSERT INTO transaction_tags (transaction_id, tag) VALUES (?, ?)`, t.ID, tag); err != nil {
			return translate(err, "inserting tag")
		}
	}
	for i, ref := range t.Attachments {
		if _, err := q.db.ExecContext(ctx,
			`INSERT INTO transaction_attachments (transaction_id, position, ref) VALUES (?, ?, ?)`,
			t.ID, i, ref); err != nil {
			return translate(err, "inserting attachment")
		}
	}
	return nil
}

// GetTransaction returns a transaction owned by orgID, with tags and
// attachments.
func (q *Queries) GetTransaction(ctx context.Context, orgID, id int64) (model.Transaction, error) {
	row := q.db.QueryRowContext(ctx, transactionSelect+` WHERE t.org_id = ? AND t.id = ?`, orgID, id)
	t, err := scanTransaction(row)
	if err != nil {
		return model.Transaction{}, translate(err, fmt.Sprintf("transaction %d", id))
	}
	if err := q.loadLabels(ctx, &t); err != nil {
		return model.Transaction{}, err
	}
	return t, nil
}

// DeleteTransaction removes a transaction together with its tags,
// attachments, installments and tax lines.
func (q *Queries) DeleteTransaction(ctx context.Context, orgID, id int64) error {
	for _, stmt := range []string{
		`DELETE FROM transaction_tags WHERE transaction_id = ?`,
		`DELETE FROM transaction_attachments WHERE transaction_id = ?`,
		`DELETE FROM installments WHERE transaction_id = ?`,
		`DELETE FROM tax_lines WHERE transaction_id = ?`,
	} {
		if _, err := q.db.ExecContext(ctx, stmt, id); err != nil {
			return translate(err, fmt.Sprintf("deleting dependents of transaction %d", id))
		}
	}
	res, err := q.db.ExecContext(ctx, `DELETE FROM transactions WHERE org_id = ? AND id = ?`, orgID, id)
	if err != nil {
		return translate(err, fmt.Sprintf("deleting transaction %d", id))
	}
	return requireRow(res, fmt.Sprintf("transaction %d", id))
}

// ListTransactions returns one page of transactions, newest first, and the
// total number matching the filter.
func (q *Queries) ListTransactions(ctx context.Context, orgID int64, f TransactionFilter) ([]model.Transaction, int, error) {
	where, args := transactionWhere(orgID, f)

	var total int
	if err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions t`+where, args...).Scan(&total); err != nil {
		return nil, 0, translate(err, "counting transactions")
	}

	query := transactionSelect + where + ` ORDER BY t.txn_date DESC, t.id DESC`
	if f.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, f.Offset)
	}

	txns, err := q.queryTransactions(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}

// TransactionsBetween returns every transaction dated within [from, to],
// oldest first.
func (q *Queries) TransactionsBetween(ctx context.Context, orgID int64, from, to time.Time) ([]model.Transaction, error) {
	return q.queryTransactions(ctx,
		transactionSelect+` WHERE t.org_id = ? AND t.txn_date BETWEEN ? AND ? ORDER BY t.txn_date, t.id`,
		orgID, formatDate(from), formatDate(to))
}

// SumExpenses totals EXPENSE transactions for a category within [from, to].
// An empty range sums to zero.
func (q *Queries) SumExpenses(ctx context.Context, orgID, categoryID int64, from, to time.Time) (decimal.Decimal, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT amount FROM transactions
		  WHERE org_id = ? AND category_id = ? AND type = ? AND txn_date BETWEEN ? AND ?`,
		orgID, categoryID, string(model.TypeExpense), formatDate(from), formatDate(to))
	if err != nil {
		return decimal.Zero, translate(err, "summing expenses")
	}
	defer rows.Close()

	sum := decimal.Zero
	for rows.Next() {
		var amount decimal.Decimal
		if err := rows.Scan(&amount); err != nil {
			return decimal.Zero, fmt.Errorf("scanning amount: %w", err)
		}
		sum = sum.Add(amount)
	}
	return sum, rows.Err()
}

func transactionWhere(orgID int64, f TransactionFilter) (string, []any) {
	clauses := []string{"t.org_id = ?"}
	args := []any{orgID}
	if f.From != nil {
		clauses = append(clauses, "t.txn_date >= ?")
		args = append(args, formatDate(*f.From))
	}
	if f.To != nil {
		clauses = append(clauses, "t.txn_date <= ?")
		args = append(args, formatDate(*f.To))
	}
	if f.CategoryID != nil {
		clauses = append(clauses, "t.category_id = ?")
		args = append(args, *f.CategoryID)
	}
	if f.Type != "" {
		clauses = append(clauses, "t.type = ?")
		args = append(args, string(f.Type))
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (q *Queries) queryTransactions(ctx context.Context, query string, args ...any) ([]model.Transaction, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translate(err, "querying transactions")
	}
	var txns []model.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	// Labels are loaded after the cursor is released: the pool has a single
	// connection.
	for i := range txns {
		if err := q.loadLabels(ctx, &txns[i]); err != nil {
			return nil, err
		}
	}
	return txns, nil
}

func (q *Queries) loadLabels(ctx context.Context, t *model.Transaction) error {
	tags, err := q.queryStrings(ctx, `SELECT tag FROM transaction_tags WHERE transaction_id = ? ORDER BY tag`, t.ID)
	if err != nil {
		return translate(err, "loading tags")
	}
	attachments, err := q.queryStrings(ctx,
		`SELECT ref FROM transaction_attachments WHERE transaction_id = ? ORDER BY position`, t.ID)
	if err != nil {
		return translate(err, "loading attachments")
	}
	t.Tags = tags
	t.Attachments = attachments
	return nil
}

func (q *Queries) queryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanTransaction(s scanner) (model.Transaction, error) {
	var (
		t                      model.Transaction
		typ, day, created, upd string
		category, dest, card   sql.NullInt64
	)
	if err := s.Scan(&t.ID, &t.OrgID, &typ, &t.Amount, &day, &t.Description, &t.Notes,
		&t.AccountID, &category, &dest, &card, &t.Installments,
		&t.CreatedBy, &created, &upd,
		&t.AccountName, &t.CategoryName, &t.DestinationAccountName); err != nil {
		return model.Transaction{}, err
	}
	date, err := parseDate(day)
	if err != nil {
		return model.Transaction{}, err
	}
	t.Type = model.TransactionType(typ)
	t.Date = date
	t.CategoryID = nullableID(category)
	t.DestinationAccountID = nullableID(dest)
	t.CreditCardID = nullableID(card)
	t.CreatedAt = parseTimestamp(created)
	t.UpdatedAt = parseTimestamp(upd)
	return t, nil
}
