package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cleared-dev/finanza/internal/model"
)

const installmentSelect = `SELECT i.id, i.org_id, i.transaction_id, i.credit_card_id, i.number, i.total, i.amount,
       i.due_date, i.paid, i.paid_date, t.description, k.name
  FROM installments i
  JOIN transactions t ON t.id = i.transaction_id
  JOIN credit_cards k ON k.id = i.credit_card_id`

// InsertInstallments stores a financed purchase's installment plan.
func (q *Queries) InsertInstallments(ctx context.Context, items []model.Installment) error {
	for i := range items {
		in := &items[i]
		res, err := q.db.ExecContext(ctx,
			`INSERT INTO installments (org_id, transaction_id, credit_card_id, number, total, amount, due_date, paid,
			     paid_date)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			in.OrgID, in.TransactionID, in.CreditCardID, in.Number, in.Total, in.Amount, formatDate(in.DueDate),
			in.Paid, optionalDate(in.PaidDate))
		if err != nil {
			return translate(err, fmt.Sprintf("inserting installment %d/%d", in.Number, in.Total))
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading installment id: %w", err)
		}
		in.ID = id
	}
	return nil
}

// GetInstallment returns an installment by ID regardless of organization;
// callers check ownership.
func (q *Queries) GetInstallment(ctx context.Context, id int64) (model.Installment, error) {
	row := q.db.QueryRowContext(ctx, installmentSelect+` WHERE i.id = ?`, id)
	in, err := scanInstallment(row)
	if err != nil {
		return model.Installment{}, translate(err, fmt.Sprintf("installment %d", id))
	}
	return in, nil
}

// SetInstallmentPaid records the payment state of an installment. A nil
// paidDate clears it.
func (q *Queries) SetInstallmentPaid(ctx context.Context, id int64, paid bool, paidDate *time.Time) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE installments SET paid = ?, paid_date = ? WHERE id = ?`, paid, optionalDate(paidDate), id)
	if err != nil {
		return translate(err, fmt.Sprintf("updating installment %d", id))
	}
	return requireRow(res, fmt.Sprintf("installment %d", id))
}

// InstallmentsDueBetween returns installments due within [from, to].
func (q *Queries) InstallmentsDueBetween(ctx context.Context, orgID int64, from, to time.Time) ([]model.Installment, error) {
	return q.queryInstallments(ctx,
		installmentSelect+` WHERE i.org_id = ? AND i.due_date BETWEEN ? AND ? ORDER BY i.due_date, i.id`,
		orgID, formatDate(from), formatDate(to))
}

// UnpaidInstallments returns every unpaid installment of the organization.
func (q *Queries) UnpaidInstallments(ctx context.Context, orgID int64) ([]model.Installment, error) {
	return q.queryInstallments(ctx,
		installmentSelect+` WHERE i.org_id = ? AND i.paid = 0 ORDER BY i.due_date, i.id`, orgID)
}

// InstallmentsByCard returns a card's installments by due date then number.
func (q *Queries) InstallmentsByCard(ctx context.Context, orgID, cardID int64) ([]model.Installment, error) {
	return q.queryInstallments(ctx,
		installmentSelect+` WHERE i.org_id = ? AND i.credit_card_id = ? ORDER BY i.due_date, i.number, i.id`,
		orgID, cardID)
}

// InstallmentsByTransaction returns the plan of one financed purchase.
func (q *Queries) InstallmentsByTransaction(ctx context.Context, orgID, transactionID int64) ([]model.Installment, error) {
	return q.queryInstallments(ctx,
		installmentSelect+` WHERE i.org_id = ? AND i.transaction_id = ? ORDER BY i.number`,
		orgID, transactionID)
}

func (q *Queries) queryInstallments(ctx context.Context, query string, args ...any) ([]model.Installment, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translate(err, "querying installments")
	}
	defer rows.Close()

	var out []model.Installment
	for rows.Next() {
		in, err := scanInstallment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning installment: %w", err)
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

func scanInstallment(s scanner) (model.Installment, error) {
	var (
		in   model.Installment
		due  string
		paid sql.NullString
	)
	if err := s.Scan(&in.ID, &in.OrgID, &in.TransactionID, &in.CreditCardID, &in.Number, &in.Total, &in.Amount,
		&due, &in.Paid, &paid, &in.TransactionDescription, &in.CreditCardName); err != nil {
		return model.Installment{}, err
	}
	d, err := parseDate(due)
	if err != nil {
		return model.Installment{}, err
	}
	in.DueDate = d
	if paid.Valid {
		p, err := parseDate(paid.String)
		if err != nil {
			return model.Installment{}, err
		}
		in.PaidDate = &p
	}
	return in, nil
}

func optionalDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatDate(*t)
}
