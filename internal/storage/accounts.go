package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/finanza/internal/model"
)

// CreateOrganization inserts a new tenant.
func (q *Queries) CreateOrganization(ctx context.Context, name string) (model.Organization, error) {
	ts := now()
	res, err := q.db.ExecContext(ctx, `INSERT INTO organizations (name, created_at) VALUES (?, ?)`, name, ts)
	if err != nil {
		return model.Organization{}, translate(err, "creating organization")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Organization{}, fmt.Errorf("reading organization id: %w", err)
	}
	return model.Organization{ID: id, Name: name, CreatedAt: parseTimestamp(ts)}, nil
}

// GetOrganization returns a tenant by ID.
func (q *Queries) GetOrganization(ctx context.Context, id int64) (model.Organization, error) {
	var (
		org model.Organization
		ts  string
	)
	err := q.db.QueryRowContext(ctx, `SELECT id, name, created_at FROM organizations WHERE id = ?`, id).
		Scan(&org.ID, &org.Name, &ts)
	if err != nil {
		return model.Organization{}, translate(err, fmt.Sprintf("organization %d", id))
	}
	org.CreatedAt = parseTimestamp(ts)
	return org, nil
}

const accountColumns = `id, org_id, name, type, balance, currency, description, active, created_by, created_at, updated_at`

// InsertAccount stores a new account and fills in its ID and timestamps.
func (q *Queries) InsertAccount(ctx context.Context, a *model.Account) error {
	ts := now()
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO accounts (org_id, name, type, balance, currency, description, active, created_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.OrgID, a.Name, string(a.Type), a.Balance, a.Currency, a.Description, a.Active, a.CreatedBy, ts, ts)
	if err != nil {
		return translate(err, "inserting account")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading account id: %w", err)
	}
	a.ID = id
	a.CreatedAt = parseTimestamp(ts)
	a.UpdatedAt = a.CreatedAt
	return nil
}

// GetAccount returns an account owned by orgID.
func (q *Queries) GetAccount(ctx context.Context, orgID, id int64) (model.Account, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE org_id = ? AND id = ?`, orgID, id)
	a, err := scanAccount(row)
	if err != nil {
		return model.Account{}, translate(err, fmt.Sprintf("account %d", id))
	}
	return a, nil
}

// ListAccounts returns the organization's accounts ordered by name.
func (q *Queries) ListAccounts(ctx context.Context, orgID int64, activeOnly bool) ([]model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE org_id = ?`
	if activeOnly {
		query += ` AND active = 1`
	}
	query += ` ORDER BY name, id`

	rows, err := q.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, translate(err, "listing accounts")
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// UpdateAccount writes the descriptive fields of an account. It never
// touches the balance.
func (q *Queries) UpdateAccount(ctx context.Context, a *model.Account) error {
	ts := now()
	res, err := q.db.ExecContext(ctx,
		`UPDATE accounts SET name = ?, type = ?, currency = ?, description = ?, active = ?, updated_at = ?
		 WHERE org_id = ? AND id = ?`,
		a.Name, string(a.Type), a.Currency, a.Description, a.Active, ts, a.OrgID, a.ID)
	if err != nil {
		return translate(err, fmt.Sprintf("updating account %d", a.ID))
	}
	if err := requireRow(res, fmt.Sprintf("account %d", a.ID)); err != nil {
		return err
	}
	a.UpdatedAt = parseTimestamp(ts)
	return nil
}

// SetAccountBalance overwrites an account balance.
func (q *Queries) SetAccountBalance(ctx context.Context, orgID, id int64, balance decimal.Decimal) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE accounts SET balance = ?, updated_at = ? WHERE org_id = ? AND id = ?`,
		balance, now(), orgID, id)
	if err != nil {
		return translate(err, fmt.Sprintf("updating balance of account %d", id))
	}
	return requireRow(res, fmt.Sprintf("account %d", id))
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(s scanner) (model.Account, error) {
	var (
		a                  model.Account
		typ                string
		created, updatedAt string
	)
	if err := s.Scan(&a.ID, &a.OrgID, &a.Name, &typ, &a.Balance, &a.Currency, &a.Description,
		&a.Active, &a.CreatedBy, &created, &updatedAt); err != nil {
		return model.Account{}, err
	}
	a.Type = model.AccountType(typ)
	a.CreatedAt = parseTimestamp(created)
	a.UpdatedAt = parseTimestamp(updatedAt)
	return a, nil
}

func requireRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, model.ErrNotFound)
	}
	return nil
}
