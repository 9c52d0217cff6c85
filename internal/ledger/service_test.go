package ledger_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/finanza/internal/events"
	"github.com/cleared-dev/finanza/internal/installments"
	"github.com/cleared-dev/finanza/internal/ledger"
	"github.com/cleared-dev/finanza/internal/model"
	"github.com/cleared-dev/finanza/internal/storage"
	"github.com/cleared-dev/finanza/internal/testutil"
)

var (
	date = testutil.Date
	dec  = testutil.Dec
	ptr  = testutil.ID
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

func (r *recorder) types() []events.Type {
	var out []events.Type
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func newService(t *testing.T) (*testutil.Ledger, *ledger.Service, *recorder) {
	t.Helper()
	l := testutil.NewLedger(t)
	rec := &recorder{}
	return l, ledger.NewService(l.DB, rec), rec
}

func expense(accountID int64, amount string) ledger.TransactionRequest {
	return ledger.TransactionRequest{
		Type:        model.TypeExpense,
		Amount:      dec(amount),
		Date:        date(2024, 3, 10),
		Description: "Groceries",
		AccountID:   accountID,
	}
}

func income(accountID int64, amount string) ledger.TransactionRequest {
	req := expense(accountID, amount)
	req.Type = model.TypeIncome
	req.Description = "Salary"
	return req
}

func deactivate(t *testing.T, l *testutil.Ledger, a model.Account) {
	t.Helper()
	a.Active = false
	require.NoError(t, l.DB.Queries().UpdateAccount(context.Background(), &a))
}

func TestCreateTransaction_AppliesEffect(t *testing.T) {
	l, svc, rec := newService(t)
	ctx := context.Background()
	acct := l.Account("Checking", "100")

	txn, err := svc.CreateTransaction(ctx, l.Org.ID, 1, income(acct.ID, "50.25"))
	require.NoError(t, err)
	assert.NotZero(t, txn.ID)
	assert.Equal(t, "Checking", txn.AccountName)
	assert.True(t, l.Balance(acct.ID).Equal(dec("150.25")))

	_, err = svc.CreateTransaction(ctx, l.Org.ID, 1, expense(acct.ID, "200"))
	require.NoError(t, err)
	assert.True(t, l.Balance(acct.ID).Equal(dec("-49.75")), "expenses may overdraw")

	assert.Equal(t, []events.Type{events.TransactionCreated, events.TransactionCreated}, rec.types())
}

func TestCreateTransaction_Errors(t *testing.T) {
	l, svc, rec := newService(t)
	ctx := context.Background()
	acct := l.Account("Checking", "100")
	closed := l.Account("Closed", "100")
	deactivate(t, l, closed)

	other, err := l.DB.Queries().CreateOrganization(ctx, "Other")
	require.NoError(t, err)
	foreign := model.Category{OrgID: other.ID, Name: "Foreign", Type: model.CategoryExpense, Active: true}
	require.NoError(t, l.DB.Queries().InsertCategory(ctx, &foreign))

	transfer := expense(acct.ID, "10")
	transfer.Type = model.TypeTransfer
	withForeignCategory := expense(acct.ID, "10")
	withForeignCategory.CategoryID = ptr(foreign.ID)
	tooPrecise := expense(acct.ID, "10.001")
	zero := expense(acct.ID, "0")
	noDate := expense(acct.ID, "10")
	noDate.Date = time.Time{}

	tests := []struct {
		name string
		req  ledger.TransactionRequest
		want error
	}{
		{"missing account", expense(9999, "10"), model.ErrNotFound},
		{"inactive account", expense(closed.ID, "10"), model.ErrInactive},
		{"transfer type", transfer, model.ErrInvalidType},
		{"category of another org", withForeignCategory, model.ErrNotFound},
		{"too many decimals", tooPrecise, model.ErrValidation},
		{"zero amount", zero, model.ErrValidation},
		{"missing date", noDate, model.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateTransaction(ctx, l.Org.ID, 1, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.True(t, l.Balance(acct.ID).Equal(dec("100")), "failed creates leave the balance alone")
	assert.True(t, l.Balance(closed.ID).Equal(dec("100")))
	assert.Empty(t, rec.events)
}

func TestCreateTransaction_InfersCategoryFromRules(t *testing.T) {
	l, svc, _ := newService(t)
	ctx := context.Background()
	acct := l.Account("Checking", "0")
	transport := l.Category("Transport", model.CategoryExpense)
	misc := l.Category("Misc", model.CategoryExpense)

	for _, r := range []model.CategoryRule{
		{Name: "u", Kind: model.RuleContains, Pattern: "u", CategoryID: misc.ID, Priority: 1, Active: true},
		{Name: "uber", Kind: model.RuleContains, Pattern: "uber", CategoryID: transport.ID, Priority: 5, Active: true},
	} {
		r.OrgID = l.Org.ID
		require.NoError(t, l.DB.Queries().InsertRule(ctx, &r))
	}

	req := expense(acct.ID, "12")
	req.Description = "Uber trip"
	txn, err := svc.CreateTransaction(ctx, l.Org.ID, 1, req)
	require.NoError(t, err)
	require.NotNil(t, txn.CategoryID)
	assert.Equal(t, transport.ID, *txn.CategoryID)
	assert.Equal(t, "Transport", txn.CategoryName)

	req.Description = "Groceries"
	txn, err = svc.CreateTransaction(ctx, l.Org.ID, 1, req)
	require.NoError(t, err)
	assert.Nil(t, txn.CategoryID)

	req.Description = "Uber eats"
	req.CategoryID = ptr(misc.ID)
	txn, err = svc.CreateTransaction(ctx, l.Org.ID, 1, req)
	require.NoError(t, err)
	assert.Equal(t, misc.ID, *txn.CategoryID, "explicit category wins over rules")
}

func TestCreateTransaction_FinancedPurchase(t *testing.T) {
	l, svc, _ := newService(t)
	ctx := context.Background()
	acct := l.Account("Card account", "0")
	card := l.Card("Visa", 15, 5)

	req := expense(acct.ID, "100")
	req.Date = date(2024, 3, 20)
	req.CreditCardID = ptr(card.ID)
	req.Installments = 3

	txn, err := svc.CreateTransaction(ctx, l.Org.ID, 1, req)
	require.NoError(t, err)
	assert.Equal(t, 3, txn.Installments)
	assert.True(t, l.Balance(acct.ID).Equal(dec("-100")))

	plan, err := l.DB.Queries().InstallmentsByTransaction(ctx, l.Org.ID, txn.ID)
	require.NoError(t, err)
	require.Len(t, plan, 3)
	assert.Equal(t, date(2024, 5, 5), plan[0].DueDate)
	assert.Equal(t, date(2024, 6, 5), plan[1].DueDate)
	assert.Equal(t, date(2024, 7, 5), plan[2].DueDate)
	assert.True(t, plan[0].Amount.Equal(dec("33.33")))
	assert.True(t, plan[2].Amount.Equal(dec("33.34")))

	single := expense(acct.ID, "40")
	single.CreditCardID = ptr(card.ID)
	txn, err = svc.CreateTransaction(ctx, l.Org.ID, 1, single)
	require.NoError(t, err)
	assert.Equal(t, 1, txn.Installments, "a card purchase without a count is one installment")

	refund := income(acct.ID, "10")
	refund.CreditCardID = ptr(card.ID)
	_, err = svc.CreateTransaction(ctx, l.Org.ID, 1, refund)
	assert.ErrorIs(t, err, model.ErrInvalidType)

	missing := expense(acct.ID, "10")
	missing.CreditCardID = ptr(9999)
	_, err = svc.CreateTransaction(ctx, l.Org.ID, 1, missing)
	assert.ErrorIs(t, err, model.ErrNotFound)

	assert.True(t, l.Balance(acct.ID).Equal(dec("-140")))
}

func TestCreateTransaction_RollsBackWhenPlanFails(t *testing.T) {
	l, svc, rec := newService(t)
	ctx := context.Background()
	acct := l.Account("Card account", "500")
	broken := l.Card("No closing day", 0, 5)
	visa := l.Card("Visa", 15, 5)

	tests := []struct {
		name   string
		card   int64
		amount string
		n      int
	}{
		{"card without closing day", broken.ID, "100", 3},
		{"amount too small to split", visa.ID, "0.15", 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := expense(acct.ID, tt.amount)
			req.CreditCardID = ptr(tt.card)
			req.Installments = tt.n

			_, err := svc.CreateTransaction(ctx, l.Org.ID, 1, req)
			require.ErrorIs(t, err, installments.ErrInvalidPlan)
		})
	}

	assert.True(t, l.Balance(acct.ID).Equal(dec("500")), "balance = %s", l.Balance(acct.ID))
	page, err := svc.ListTransactions(ctx, l.Org.ID, storage.TransactionFilter{})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
	assert.Empty(t, page.Items)
	unpaid, err := l.DB.Queries().UnpaidInstallments(ctx, l.Org.ID)
	require.NoError(t, err)
	assert.Empty(t, unpaid)
	assert.Empty(t, rec.types())
}

func TestCreateTransaction_ConcurrentWritesSerialize(t *testing.T) {
	l, svc, _ := newService(t)
	ctx := context.Background()
	acct := l.Account("Shared", "1000")
	other := l.Account("Other", "0")

	const n = 25
	var wg sync.WaitGroup
	errs := make(chan error, 2*n)
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := svc.CreateTransaction(ctx, l.Org.ID, 1, expense(acct.ID, "1"))
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := svc.CreateTransfer(ctx, l.Org.ID, 1, ledger.TransferRequest{
				FromAccountID: acct.ID,
				ToAccountID:   other.ID,
				Amount:        dec("2"),
				Date:          date(2024, 3, 10),
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.True(t, l.Balance(acct.ID).Equal(dec("925")), "balance = %s", l.Balance(acct.ID))
	assert.True(t, l.Balance(other.ID).Equal(dec("50")), "balance = %s", l.Balance(other.ID))
	page, err := svc.ListTransactions(ctx, l.Org.ID, storage.TransactionFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2*n, page.Total)
}

func TestUpdateTransaction_NoChangeKeepsBalance(t *testing.T) {
	l, svc, _ := newService(t)
	ctx := context.Background()
	acct := l.Account("Checking", "1000")

	txn, err := svc.CreateTransaction(ctx, l.Org.ID, 1, expense(acct.ID, "100"))
	require.NoError(t, err)
	assert.True(t, l.Balance(acct.ID).Equal(dec("900")))

	_, err = svc.UpdateTransaction(ctx, l.Org.ID, txn.ID, expense(acct.ID, "100"))
	require.NoError(t, err)
	assert.True(t, l.Balance(acct.ID).Equal(dec("900")))
}

func TestUpdateTransaction_ReverseThenApply(t *testing.T) {
	l, svc, rec := newService(t)
	ctx := context.Background()
	a := l.Account("A", "1000")
	b := l.Account("B", "500")

	txn, err := svc.CreateTransaction(ctx, l.Org.ID, 1, expense(a.ID, "100"))
	require.NoError(t, err)

	// Same account, new amount.
	_, err = svc.UpdateTransaction(ctx, l.Org.ID, txn.ID, expense(a.ID, "250"))
	require.NoError(t, err)
	assert.True(t, l.Balance(a.ID).Equal(dec("750")))

	// Same account, type flips to income.
	_, err = svc.UpdateTransaction(ctx, l.Org.ID, txn.ID, income(a.ID, "250"))
	require.NoError(t, err)
	assert.True(t, l.Balance(a.ID).Equal(dec("1250")))

	// Moves to another account.
	_, err = svc.UpdateTransaction(ctx, l.Org.ID, txn.ID, expense(b.ID, "50"))
	require.NoError(t, err)
	assert.True(t, l.Balance(a.ID).Equal(dec("1000")))
	assert.True(t, l.Balance(b.ID).Equal(dec("450")))

	assert.Equal(t, []events.Type{
		events.TransactionCreated,
		events.TransactionUpdated,
		events.TransactionUpdated,
		events.TransactionUpdated,
	}, rec.types())
}

func TestUpdateTransaction_ReplacesLabels(t *testing.T) {
	l, svc, _ := newService(t)
	ctx := context.Background()
	acct := l.Account("Checking", "0")
	food := l.Category("Food", model.CategoryExpense)

	req := expense(acct.ID, "10")
	req.CategoryID = ptr(food.ID)
	req.Tags = []string{"a", "b"}
	req.Attachments = []string{"one.pdf"}
	txn, err := svc.CreateTransaction(ctx, l.Org.ID, 1, req)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, txn.Tags)

	req.CategoryID = nil
	req.Tags = []string{"c"}
	req.Attachments = nil
	req.Notes = "edited"
	txn, err = svc.UpdateTransaction(ctx, l.Org.ID, txn.ID, req)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, txn.Tags)
	assert.Empty(t, txn.Attachments)
	assert.Nil(t, txn.CategoryID, "a nil category clears it")
	assert.Equal(t, "edited", txn.Notes)
}

func TestUpdateTransaction_Errors(t *testing.T) {
	l, svc, _ := newService(t)
	ctx := context.Background()
	a := l.Account("A", "1000")
	b := l.Account("B", "0")
	closed := l.Account("Closed", "0")
	deactivate(t, l, closed)
	card := l.Card("Visa", 15, 5)

	plain, err := svc.CreateTransaction(ctx, l.Org.ID, 1, expense(a.ID, "10"))
	require.NoError(t, err)
	financedReq := expense(a.ID, "90")
	financedReq.CreditCardID = ptr(card.ID)
	financedReq.Installments = 3
	financed, err := svc.CreateTransaction(ctx, l.Org.ID, 1, financedReq)
	require.NoError(t, err)
	transfer, err := svc.CreateTransfer(ctx, l.Org.ID, 1, ledger.TransferRequest{
		FromAccountID: a.ID, ToAccountID: b.ID, Amount: dec("5"), Date: date(2024, 3, 1),
	})
	require.NoError(t, err)

	toTransfer := expense(a.ID, "10")
	toTransfer.Type = model.TypeTransfer
	financedAmount := financedReq
	financedAmount.Amount = dec("120")
	financedIncome := financedReq
	financedIncome.Type = model.TypeIncome
	addCard := expense(a.ID, "10")
	addCard.CreditCardID = ptr(card.ID)

	tests := []struct {
		name string
		id   int64
		req  ledger.TransactionRequest
		want error
	}{
		{"missing", 9999, expense(a.ID, "10"), model.ErrNotFound},
		{"edit a transfer", transfer.ID, expense(a.ID, "5"), model.ErrInvalidType},
		{"become a transfer", plain.ID, toTransfer, model.ErrInvalidType},
		{"move to inactive account", plain.ID, expense(closed.ID, "10"), model.ErrInactive},
		{"move to missing account", plain.ID, expense(9999, "10"), model.ErrNotFound},
		{"financed amount", financed.ID, financedAmount, model.ErrInvalidOperation},
		{"financed type", financed.ID, financedIncome, model.ErrInvalidType},
		{"finance after the fact", plain.ID, addCard, model.ErrInvalidOperation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateTransaction(ctx, l.Org.ID, tt.id, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.True(t, l.Balance(a.ID).Equal(dec("895")))
	assert.True(t, l.Balance(b.ID).Equal(dec("5")))

	financedReq.Description = "Laptop"
	got, err := svc.UpdateTransaction(ctx, l.Org.ID, financed.ID, financedReq)
	require.NoError(t, err)
	assert.Equal(t, "Laptop", got.Description)
	assert.Equal(t, 3, got.Installments)
	require.NotNil(t, got.CreditCardID)
	assert.Equal(t, card.ID, *got.CreditCardID)
}

func TestDeleteTransaction_InverseOfCreate(t *testing.T) {
	l, svc, rec := newService(t)
	ctx := context.Background()
	acct := l.Account("Checking", "321.09")
	card := l.Card("Visa", 15, 5)

	for _, req := range []ledger.TransactionRequest{
		expense(acct.ID, "21.09"),
		income(acct.ID, "1000"),
		func() ledger.TransactionRequest {
			r := expense(acct.ID, "300")
			r.CreditCardID = ptr(card.ID)
			r.Installments = 6
			return r
		}(),
	} {
		txn, err := svc.CreateTransaction(ctx, l.Org.ID, 1, req)
		require.NoError(t, err)
		require.NoError(t, svc.DeleteTransaction(ctx, l.Org.ID, txn.ID))
		assert.True(t, l.Balance(acct.ID).Equal(dec("321.09")), "after deleting %s %s", req.Type, req.Amount)

		_, err = svc.GetTransaction(ctx, l.Org.ID, txn.ID)
		assert.ErrorIs(t, err, model.ErrNotFound)
		plan, err := l.DB.Queries().InstallmentsByTransaction(ctx, l.Org.ID, txn.ID)
		require.NoError(t, err)
		assert.Empty(t, plan)
	}

	assert.ErrorIs(t, svc.DeleteTransaction(ctx, l.Org.ID, 9999), model.ErrNotFound)
	assert.Len(t, rec.events, 6)
	assert.Equal(t, events.TransactionDeleted, rec.events[5].Type)
}

func TestDeleteTransaction_Transfer(t *testing.T) {
	l, svc, _ := newService(t)
	ctx := context.Background()
	a := l.Account("A", "100")
	b := l.Account("B", "20")

	txn, err := svc.CreateTransfer(ctx, l.Org.ID, 1, ledger.TransferRequest{
		FromAccountID: a.ID, ToAccountID: b.ID, Amount: dec("60"), Date: date(2024, 3, 1),
	})
	require.NoError(t, err)
	assert.True(t, l.Balance(a.ID).Equal(dec("40")))
	assert.True(t, l.Balance(b.ID).Equal(dec("80")))

	require.NoError(t, svc.DeleteTransaction(ctx, l.Org.ID, txn.ID))
	assert.True(t, l.Balance(a.ID).Equal(dec("100")))
	assert.True(t, l.Balance(b.ID).Equal(dec("20")))
}

func TestCreateTransfer(t *testing.T) {
	l, svc, rec := newService(t)
	ctx := context.Background()
	a := l.Account("Savings", "100")
	b := l.Account("Checking", "0")

	txn, err := svc.CreateTransfer(ctx, l.Org.ID, 1, ledger.TransferRequest{
		FromAccountID: a.ID, ToAccountID: b.ID, Amount: dec("50"), Date: date(2024, 3, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, model.TypeTransfer, txn.Type)
	assert.Equal(t, "Transfer from Savings to Checking", txn.Description)
	assert.Equal(t, a.ID, txn.AccountID)
	require.NotNil(t, txn.DestinationAccountID)
	assert.Equal(t, b.ID, *txn.DestinationAccountID)
	assert.Equal(t, "Checking", txn.DestinationAccountName)
	assert.True(t, l.Balance(a.ID).Equal(dec("50")))
	assert.True(t, l.Balance(b.ID).Equal(dec("50")))

	named, err := svc.CreateTransfer(ctx, l.Org.ID, 1, ledger.TransferRequest{
		FromAccountID: a.ID, ToAccountID: b.ID, Amount: dec("50"), Date: date(2024, 3, 2), Description: "Rent pot",
	})
	require.NoError(t, err)
	assert.Equal(t, "Rent pot", named.Description)
	assert.True(t, l.Balance(a.ID).IsZero(), "the whole balance may move")

	assert.Equal(t, []events.Type{events.TransferCreated, events.TransferCreated}, rec.types())
	assert.Equal(t, "2", rec.events[0].Payload["destination_account_id"])
}

func TestCreateTransfer_Errors(t *testing.T) {
	l, svc, rec := newService(t)
	ctx := context.Background()
	a := l.Account("A", "100")
	b := l.Account("B", "0")
	closed := l.Account("Closed", "500")
	deactivate(t, l, closed)

	req := func(from, to int64, amount string) ledger.TransferRequest {
		return ledger.TransferRequest{FromAccountID: from, ToAccountID: to, Amount: dec(amount), Date: date(2024, 3, 1)}
	}
	tests := []struct {
		name string
		req  ledger.TransferRequest
		want error
	}{
		{"insufficient funds", req(a.ID, b.ID, "100.01"), model.ErrInsufficientFunds},
		{"same account", req(a.ID, a.ID, "1"), model.ErrInvalidOperation},
		{"inactive source", req(closed.ID, a.ID, "1"), model.ErrInactive},
		{"inactive destination", req(a.ID, closed.ID, "1"), model.ErrInactive},
		{"missing destination", req(a.ID, 9999, "1"), model.ErrNotFound},
		{"negative amount", req(a.ID, b.ID, "-5"), model.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateTransfer(ctx, l.Org.ID, 1, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.True(t, l.Balance(a.ID).Equal(dec("100")))
	assert.True(t, l.Balance(b.ID).IsZero())
	assert.True(t, l.Balance(closed.ID).Equal(dec("500")))
	assert.Empty(t, rec.events)
}

// The stored balance must always equal the opening balance plus the net
// effect of every transaction still on record.
func TestBalanceMatchesHistory(t *testing.T) {
	l, svc, _ := newService(t)
	ctx := context.Background()
	a := l.Account("A", "0")
	b := l.Account("B", "0")

	fund, err := svc.CreateTransaction(ctx, l.Org.ID, 1, income(a.ID, "1000"))
	require.NoError(t, err)
	e1, err := svc.CreateTransaction(ctx, l.Org.ID, 1, expense(a.ID, "120.50"))
	require.NoError(t, err)
	_, err = svc.CreateTransfer(ctx, l.Org.ID, 1, ledger.TransferRequest{
		FromAccountID: a.ID, ToAccountID: b.ID, Amount: dec("300"), Date: date(2024, 3, 11),
	})
	require.NoError(t, err)
	_, err = svc.CreateTransaction(ctx, l.Org.ID, 1, expense(b.ID, "45.45"))
	require.NoError(t, err)
	_, err = svc.UpdateTransaction(ctx, l.Org.ID, e1.ID, expense(b.ID, "20"))
	require.NoError(t, err)
	_, err = svc.UpdateTransaction(ctx, l.Org.ID, fund.ID, income(a.ID, "900"))
	require.NoError(t, err)
	t2, err := svc.CreateTransfer(ctx, l.Org.ID, 1, ledger.TransferRequest{
		FromAccountID: b.ID, ToAccountID: a.ID, Amount: dec("100"), Date: date(2024, 3, 12),
	})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteTransaction(ctx, l.Org.ID, t2.ID))

	page, err := svc.ListTransactions(ctx, l.Org.ID, storage.TransactionFilter{})
	require.NoError(t, err)

	want := map[int64]decimal.Decimal{a.ID: decimal.Zero, b.ID: decimal.Zero}
	for _, txn := range page.Items {
		switch txn.Type {
		case model.TypeIncome:
			want[txn.AccountID] = want[txn.AccountID].Add(txn.Amount)
		case model.TypeExpense:
			want[txn.AccountID] = want[txn.AccountID].Sub(txn.Amount)
		case model.TypeTransfer:
			want[txn.AccountID] = want[txn.AccountID].Sub(txn.Amount)
			want[*txn.DestinationAccountID] = want[*txn.DestinationAccountID].Add(txn.Amount)
		}
	}
	for id, balance := range want {
		assert.True(t, l.Balance(id).Equal(balance), "account %d: stored %s, history %s", id, l.Balance(id), balance)
	}
	assert.True(t, l.Balance(a.ID).Equal(dec("600")))
	assert.True(t, l.Balance(b.ID).Equal(dec("234.55")))
}

func TestListTransactions_Filters(t *testing.T) {
	l, svc, _ := newService(t)
	ctx := context.Background()
	acct := l.Account("Checking", "0")
	food := l.Category("Food", model.CategoryExpense)

	for i, day := range []int{1, 5, 9, 20} {
		req := expense(acct.ID, "10")
		req.Date = date(2024, 3, day)
		if i%2 == 0 {
			req.CategoryID = ptr(food.ID)
		}
		_, err := svc.CreateTransaction(ctx, l.Org.ID, 1, req)
		require.NoError(t, err)
	}

	page, err := svc.ListTransactions(ctx, l.Org.ID, storage.TransactionFilter{CategoryID: ptr(food.ID)})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)

	from, to := date(2024, 3, 2), date(2024, 3, 19)
	page, err = svc.ListTransactions(ctx, l.Org.ID, storage.TransactionFilter{From: &from, To: &to})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)

	page, err = svc.ListTransactions(ctx, l.Org.ID, storage.TransactionFilter{Limit: 3, Offset: 3})
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, date(2024, 3, 1), page.Items[0].Date)
}
