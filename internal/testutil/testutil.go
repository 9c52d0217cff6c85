// Package testutil seeds throwaway ledger databases for package tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/finanza/internal/model"
	"github.com/cleared-dev/finanza/internal/storage"
)

// OpenDB opens a migrated database in a temporary directory. It is closed
// when the test ends.
func OpenDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.Open(context.Background(), filepath.Join(t.TempDir(), "finanza.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// Ledger is a database with one organization in it.
type Ledger struct {
	DB  *storage.DB
	Org model.Organization
	t   *testing.T
}

// NewLedger opens a database and creates an organization named "Test Org".
func NewLedger(t *testing.T) *Ledger {
	t.Helper()
	db := OpenDB(t)
	org, err := db.Queries().CreateOrganization(context.Background(), "Test Org")
	require.NoError(t, err)
	return &Ledger{DB: db, Org: org, t: t}
}

// Account creates an active account with the given opening balance.
func (l *Ledger) Account(name, balance string) model.Account {
	l.t.Helper()
	a := model.Account{
		OrgID:    l.Org.ID,
		Name:     name,
		Type:     model.AccountTypeBank,
		Balance:  Dec(balance),
		Currency: model.DefaultAccountCurrency,
		Active:   true,
	}
	require.NoError(l.t, l.DB.Queries().InsertAccount(context.Background(), &a))
	return a
}

// Category creates an active category.
func (l *Ledger) Category(name string, typ model.CategoryType) model.Category {
	l.t.Helper()
	c := model.Category{OrgID: l.Org.ID, Name: name, Type: typ, Active: true}
	require.NoError(l.t, l.DB.Queries().InsertCategory(context.Background(), &c))
	return c
}

// Card creates an active credit card.
func (l *Ledger) Card(name string, closingDay, dueDay int) model.CreditCard {
	l.t.Helper()
	c := model.CreditCard{
		OrgID:      l.Org.ID,
		Name:       name,
		ClosingDay: closingDay,
		DueDay:     dueDay,
		Currency:   model.DefaultCardCurrency,
		Active:     true,
	}
	require.NoError(l.t, l.DB.Queries().InsertCard(context.Background(), &c))
	return c
}

// Txn inserts a transaction row directly, without touching balances.
func (l *Ledger) Txn(typ model.TransactionType, accountID int64, categoryID *int64, amount string, day time.Time) model.Transaction {
	l.t.Helper()
	txn := model.Transaction{
		OrgID:       l.Org.ID,
		Type:        typ,
		Amount:      Dec(amount),
		Date:        day,
		Description: string(typ),
		AccountID:   accountID,
		CategoryID:  categoryID,
	}
	require.NoError(l.t, l.DB.Queries().InsertTransaction(context.Background(), &txn))
	return txn
}

// Balance reads an account's stored balance.
func (l *Ledger) Balance(accountID int64) decimal.Decimal {
	l.t.Helper()
	a, err := l.DB.Queries().GetAccount(context.Background(), l.Org.ID, accountID)
	require.NoError(l.t, err)
	return a.Balance
}

// Date returns midnight UTC of the given day.
func Date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Dec parses a decimal literal and panics on malformed input.
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// ID returns a pointer to id.
func ID(id int64) *int64 {
	return &id
}
