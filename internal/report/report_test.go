package report_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/finanza/internal/model"
	"github.com/cleared-dev/finanza/internal/report"
	"github.com/cleared-dev/finanza/internal/testutil"
)

var (
	date = testutil.Date
	dec  = testutil.Dec
	ptr  = testutil.ID
)

func txn(typ model.TransactionType, categoryID int64, name, amount string) model.Transaction {
	t := model.Transaction{Type: typ, Amount: dec(amount), Date: date(2024, 3, 1)}
	if categoryID != 0 {
		t.CategoryID = ptr(categoryID)
		t.CategoryName = name
	}
	return t
}

func TestBuild_ExpenseBreakdown(t *testing.T) {
	r := report.Build(2024, 3, []model.Transaction{
		txn(model.TypeExpense, 1, "Food", "60"),
		txn(model.TypeExpense, 2, "Rent", "100"),
		txn(model.TypeExpense, 1, "Food", "40"),
	})

	assert.True(t, r.TotalExpenses.Equal(dec("200")))
	assert.True(t, r.TotalIncome.IsZero())
	assert.True(t, r.Balance.Equal(dec("-200")))
	require.Len(t, r.ExpensesByCategory, 2)

	food, rent := r.ExpensesByCategory[0], r.ExpensesByCategory[1]
	// Equal amounts: ties fall back to the category name.
	assert.Equal(t, "Food", food.CategoryName)
	assert.Equal(t, 2, food.Count)
	assert.True(t, food.Amount.Equal(dec("100")))
	assert.True(t, food.Percentage.Equal(dec("50")))
	assert.Equal(t, "Rent", rent.CategoryName)
	assert.True(t, rent.Percentage.Equal(dec("50")))
}

func TestBuild_SortsByAmountDescending(t *testing.T) {
	r := report.Build(2024, 3, []model.Transaction{
		txn(model.TypeExpense, 1, "Coffee", "5"),
		txn(model.TypeExpense, 2, "Rent", "700"),
		txn(model.TypeExpense, 3, "Food", "295"),
		txn(model.TypeIncome, 4, "Salary", "900"),
		txn(model.TypeIncome, 5, "Bonus", "100"),
	})

	var names []string
	for _, s := range r.ExpensesByCategory {
		names = append(names, s.CategoryName)
	}
	assert.Equal(t, []string{"Rent", "Food", "Coffee"}, names)
	assert.True(t, r.ExpensesByCategory[0].Percentage.Equal(dec("70")))
	assert.True(t, r.ExpensesByCategory[2].Percentage.Equal(dec("0.5")))

	require.Len(t, r.IncomeByCategory, 2)
	assert.Equal(t, "Salary", r.IncomeByCategory[0].CategoryName)
	assert.True(t, r.IncomeByCategory[0].Percentage.Equal(dec("90")))
	assert.True(t, r.Balance.IsZero())
}

func TestBuild_TransfersAndUncategorized(t *testing.T) {
	r := report.Build(2024, 3, []model.Transaction{
		txn(model.TypeTransfer, 0, "", "5000"),
		txn(model.TypeExpense, 0, "", "30"),
		txn(model.TypeExpense, 1, "Food", "10"),
	})

	assert.True(t, r.TotalExpenses.Equal(dec("40")), "transfers are excluded")
	assert.Equal(t, 2, r.TransactionCount)
	require.Len(t, r.ExpensesByCategory, 1)
	assert.True(t, r.ExpensesByCategory[0].Percentage.Equal(dec("25")))
	assert.Empty(t, r.IncomeByCategory)
}

func TestBuild_Empty(t *testing.T) {
	r := report.Build(2024, 2, nil)
	assert.True(t, r.TotalIncome.IsZero())
	assert.True(t, r.TotalExpenses.IsZero())
	assert.True(t, r.Balance.IsZero())
	assert.Empty(t, r.ExpensesByCategory)
}

func TestService_MonthlyAndYearly(t *testing.T) {
	l := testutil.NewLedger(t)
	ctx := context.Background()
	svc := report.NewService(l.DB)
	a := l.Account("Checking", "0")
	b := l.Account("Savings", "0")
	food := l.Category("Food", model.CategoryExpense)
	salary := l.Category("Salary", model.CategoryIncome)

	l.Txn(model.TypeIncome, a.ID, ptr(salary.ID), "3000", date(2024, 1, 31))
	l.Txn(model.TypeExpense, a.ID, ptr(food.ID), "120.40", date(2024, 1, 15))
	l.Txn(model.TypeExpense, a.ID, ptr(food.ID), "79.60", date(2024, 3, 2))
	l.Txn(model.TypeIncome, a.ID, ptr(salary.ID), "3000", date(2024, 12, 31))
	l.Txn(model.TypeIncome, a.ID, ptr(salary.ID), "1", date(2025, 1, 1))
	transfer := model.Transaction{
		OrgID: l.Org.ID, Type: model.TypeTransfer, Amount: dec("500"), Date: date(2024, 1, 20),
		AccountID: a.ID, DestinationAccountID: ptr(b.ID),
	}
	require.NoError(t, l.DB.Queries().InsertTransaction(ctx, &transfer))

	jan, err := svc.Monthly(ctx, l.Org.ID, 2024, 1)
	require.NoError(t, err)
	assert.True(t, jan.TotalIncome.Equal(dec("3000")))
	assert.True(t, jan.TotalExpenses.Equal(dec("120.40")))
	assert.True(t, jan.Balance.Equal(dec("2879.60")))
	require.Len(t, jan.ExpensesByCategory, 1)
	assert.Equal(t, "Food", jan.ExpensesByCategory[0].CategoryName)

	_, err = svc.Monthly(ctx, l.Org.ID, 2024, 0)
	assert.ErrorIs(t, err, model.ErrValidation)

	year, err := svc.Yearly(ctx, l.Org.ID, 2024)
	require.NoError(t, err)
	require.Len(t, year.Months, 12)
	for i, m := range year.Months {
		assert.Equal(t, i+1, m.Month)
		assert.Equal(t, 2024, m.Year)
	}
	assert.True(t, year.TotalIncome.Equal(dec("6000")))
	assert.True(t, year.TotalExpenses.Equal(dec("200")))
	assert.True(t, year.Balance.Equal(dec("5800")))
	assert.True(t, year.Months[1].TotalExpenses.IsZero())
	assert.True(t, year.Months[2].TotalExpenses.Equal(dec("79.60")))
}
