package importer_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/finanza/internal/events"
	"github.com/cleared-dev/finanza/internal/importer"
	"github.com/cleared-dev/finanza/internal/ledger"
	"github.com/cleared-dev/finanza/internal/model"
	"github.com/cleared-dev/finanza/internal/rules"
	"github.com/cleared-dev/finanza/internal/testutil"
)

var (
	date = testutil.Date
	dec  = testutil.Dec
)

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func row(line int, typ, desc, amount, category string) model.ParsedTransaction {
	return model.ParsedTransaction{
		Line:         line,
		Date:         date(2024, 3, line),
		Description:  desc,
		Amount:       dec(amount),
		Type:         typ,
		CategoryName: category,
	}
}

func TestCommit(t *testing.T) {
	l := testutil.NewLedger(t)
	ctx := context.Background()
	rec := &recorder{}
	svc := importer.NewService(l.DB, ledger.NewService(l.DB, nil), rec)

	acct := l.Account("Checking", "1000")
	food := l.Category("Food", model.CategoryExpense)
	l.Category("Bonus", model.CategoryExpense)
	l.Category("Bonus income", model.CategoryIncome)
	transport := l.Category("Transport", model.CategoryExpense)
	_, err := rules.NewService(l.DB).Create(ctx, l.Org.ID, 1, rules.CreateParams{
		Name:       "uber",
		Kind:       model.RuleContains,
		Pattern:    "uber",
		CategoryID: transport.ID,
	})
	require.NoError(t, err)

	res, err := svc.Commit(ctx, l.Org.ID, 1, acct.ID, []model.ParsedTransaction{
		row(2, "EXPENSE", "Supermarket", "100", "food"),
		row(3, "EXPENSE", "UBER TRIP", "20", ""),
		row(4, "INCOME", "Year end", "500", "Bonus"),
		row(5, "REFUND", "Store credit", "5", ""),
		row(6, "EXPENSE", "Nothing", "0", ""),
		row(7, "TRANSFER", "Move", "10", ""),
	})
	require.NoError(t, err)

	assert.Equal(t, 6, res.Total)
	assert.Equal(t, 3, res.Imported)
	assert.Equal(t, 3, res.Failed)
	require.Len(t, res.Errors, 3)
	assert.Contains(t, res.Errors[0], "line 5")
	assert.Contains(t, res.Errors[1], "line 6")
	assert.Contains(t, res.Errors[2], "line 7")

	require.Len(t, res.Transactions, 3)
	require.NotNil(t, res.Transactions[0].CategoryID)
	assert.Equal(t, food.ID, *res.Transactions[0].CategoryID)
	require.NotNil(t, res.Transactions[1].CategoryID)
	assert.Equal(t, transport.ID, *res.Transactions[1].CategoryID, "falls back to rules")
	// "Bonus" names only an expense category, so the income row stays
	// uncategorized.
	assert.Nil(t, res.Transactions[2].CategoryID)

	assert.True(t, l.Balance(acct.ID).Equal(dec("1380")))

	require.Len(t, rec.events, 1)
	ev := rec.events[0]
	assert.Equal(t, events.ImportCompleted, ev.Type)
	assert.Equal(t, res.BatchID.String(), ev.Payload["batch_id"])
	assert.Equal(t, "3", ev.Payload["failed"])
	assert.True(t, ev.Amount.Equal(dec("620")))
}

func TestCommit_UnknownAccount(t *testing.T) {
	l := testutil.NewLedger(t)
	svc := importer.NewService(l.DB, ledger.NewService(l.DB, nil), nil)

	_, err := svc.Commit(context.Background(), l.Org.ID, 1, 404, []model.ParsedTransaction{
		row(2, "EXPENSE", "x", "1", ""),
	})
	assert.ErrorIs(t, err, model.ErrNotFound)
}
