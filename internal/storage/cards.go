package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/finanza/internal/model"
)

const cardSelect = `SELECT k.id, k.org_id, k.name, k.last_four, k.closing_day, k.due_day, k.credit_limit, k.currency,
       k.bank, k.active, k.account_id, COALESCE(a.name, ''), k.created_by, k.created_at, k.updated_at
  FROM credit_cards k
  LEFT JOIN accounts a ON a.id = k.account_id`

// InsertCard stores a new credit card.
func (q *Queries) InsertCard(ctx context.Context, c *model.CreditCard) error {
	ts := now()
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO credit_cards (org_id, name, last_four, closing_day, due_day, credit_limit, currency, bank,
		     active, account_id, created_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.OrgID, c.Name, c.LastFour, c.ClosingDay, c.DueDay, c.CreditLimit, c.Currency, c.Bank,
		c.Active, c.AccountID, c.CreatedBy, ts, ts)
	if err != nil {
		return translate(err, "inserting credit card")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading credit card id: %w", err)
	}
	c.ID = id
	c.CreatedAt = parseTimestamp(ts)
	c.UpdatedAt = c.CreatedAt
	return nil
}

// GetCard returns a credit card owned by orgID.
func (q *Queries) GetCard(ctx context.Context, orgID, id int64) (model.CreditCard, error) {
	row := q.db.QueryRowContext(ctx, cardSelect+` WHERE k.org_id = ? AND k.id = ?`, orgID, id)
	c, err := scanCard(row)
	if err != nil {
		return model.CreditCard{}, translate(err, fmt.Sprintf("credit card %d", id))
	}
	return c, nil
}

// ListCards returns the organization's cards ordered by name.
func (q *Queries) ListCards(ctx context.Context, orgID int64, activeOnly bool) ([]model.CreditCard, error) {
	query := cardSelect + ` WHERE k.org_id = ?`
	if activeOnly {
		query += ` AND k.active = 1`
	}
	query += ` ORDER BY k.name, k.id`

	rows, err := q.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, translate(err, "listing credit cards")
	}
	defer rows.Close()

	var cards []model.CreditCard
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning credit card: %w", err)
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// UpdateCard writes every mutable field of a card.
func (q *Queries) UpdateCard(ctx context.Context, c *model.CreditCard) error {
	ts := now()
	res, err := q.db.ExecContext(ctx,
		`UPDATE credit_cards SET name = ?, last_four = ?, closing_day = ?, due_day = ?, credit_limit = ?,
		     currency = ?, bank = ?, active = ?, account_id = ?, updated_at = ?
		 WHERE org_id = ? AND id = ?`,
		c.Name, c.LastFour, c.ClosingDay, c.DueDay, c.CreditLimit, c.Currency, c.Bank, c.Active, c.AccountID,
		ts, c.OrgID, c.ID)
	if err != nil {
		return translate(err, fmt.Sprintf("updating credit card %d", c.ID))
	}
	if err := requireRow(res, fmt.Sprintf("credit card %d", c.ID)); err != nil {
		return err
	}
	c.UpdatedAt = parseTimestamp(ts)
	return nil
}

// DeleteCard removes a card. A card still referenced by transactions or
// installments is a conflict.
func (q *Queries) DeleteCard(ctx context.Context, orgID, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM credit_cards WHERE org_id = ? AND id = ?`, orgID, id)
	if err != nil {
		return translate(err, fmt.Sprintf("credit card %d", id))
	}
	return requireRow(res, fmt.Sprintf("credit card %d", id))
}

// UnpaidTotal sums the unpaid installments of a card.
func (q *Queries) UnpaidTotal(ctx context.Context, orgID, cardID int64) (decimal.Decimal, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT amount FROM installments WHERE org_id = ? AND credit_card_id = ? AND paid = 0`, orgID, cardID)
	if err != nil {
		return decimal.Zero, translate(err, "summing unpaid installments")
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

func scanCard(s scanner) (model.CreditCard, error) {
	var (
		c            model.CreditCard
		account      sql.NullInt64
		created, upd string
	)
	if err := s.Scan(&c.ID, &c.OrgID, &c.Name, &c.LastFour, &c.ClosingDay, &c.DueDay, &c.CreditLimit,
		&c.Currency, &c.Bank, &c.Active, &account, &c.AccountName, &c.CreatedBy, &created, &upd); err != nil {
		return model.CreditCard{}, err
	}
	c.AccountID = nullableID(account)
	c.CreatedAt = parseTimestamp(created)
	c.UpdatedAt = parseTimestamp(upd)
	return c, nil
}
