package ledger

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/finanza/internal/model"
)

func TestExportCSV(t *testing.T) {
	dest := int64(2)
	txns := []model.Transaction{
		{
			ID:           1,
			Type:         model.TypeExpense,
			Amount:       decimal.RequireFromString("4.5"),
			Date:         time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
			Description:  "Coffee, large",
			AccountName:  "Checking",
			CategoryName: "Food",
			Tags:         []string{"morning", "work"},
			Installments: 3,
		},
		{
			ID:                     2,
			Type:                   model.TypeTransfer,
			Amount:                 decimal.NewFromInt(100),
			Date:                   time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC),
			AccountName:            "Checking",
			DestinationAccountID:   &dest,
			DestinationAccountName: "Savings",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, ExportCSV(&buf, txns))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "id", records[0][colID])
	assert.Equal(t, []string{"1", "2024-03-05", "EXPENSE", "4.50", "Checking", "", "Food", "Coffee, large", "", "3", "morning|work"}, records[1])
	assert.Equal(t, "Savings", records[2][colDestination])
	assert.Equal(t, "", records[2][colInstallments])
}

func TestValidateTransaction_CollectsAll(t *testing.T) {
	card := int64(1)
	errs := ValidateTransaction(TransactionRequest{
		Type:         "REFUND",
		Amount:       decimal.RequireFromString("-1"),
		Installments: -2,
		Tags:         []string{" "},
	})
	fields := make([]string, len(errs))
	for i, e := range errs {
		fields[i] = e.Field
	}
	assert.Equal(t, []string{"type", "amount", "date", "account", "installments", "tags"}, fields)

	errs = ValidateTransaction(TransactionRequest{
		Type:         model.TypeExpense,
		Amount:       decimal.NewFromInt(1),
		Date:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		AccountID:    1,
		Installments: 3,
		CreditCardID: &card,
	})
	assert.Empty(t, errs)
}

func TestEffect(t *testing.T) {
	a := decimal.RequireFromString("12.34")

	in, err := Effect(model.TypeIncome, a)
	require.NoError(t, err)
	assert.True(t, in.Equal(a))

	out, err := Effect(model.TypeExpense, a)
	require.NoError(t, err)
	assert.True(t, out.Equal(a.Neg()))
	assert.True(t, in.Add(out).IsZero())

	_, err = Effect(model.TypeTransfer, a)
	assert.ErrorIs(t, err, model.ErrInvalidType)
}
