package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/finanza/internal/model"
	"github.com/cleared-dev/finanza/internal/storage"
)

// Effect is the signed change an income or expense makes to its account:
// +amount for INCOME, -amount for EXPENSE. Reversing a transaction applies
// the negated effect.
func Effect(typ model.TransactionType, amount decimal.Decimal) (decimal.Decimal, error) {
	switch typ {
	case model.TypeIncome:
		return amount, nil
	case model.TypeExpense:
		return amount.Neg(), nil
	default:
		return decimal.Zero, fmt.Errorf("%s has no single-account effect: %w", typ, model.ErrInvalidType)
	}
}

// adjust reads the account's current balance and stores it plus delta.
func adjust(ctx context.Context, q *storage.Queries, orgID, accountID int64, delta decimal.Decimal) (model.Account, error) {
	a, err := q.GetAccount(ctx, orgID, accountID)
	if err != nil {
		return model.Account{}, err
	}
	a.Balance = a.Balance.Add(delta)
	if err := q.SetAccountBalance(ctx, orgID, accountID, a.Balance); err != nil {
		return model.Account{}, err
	}
	return a, nil
}

func apply(ctx context.Context, q *storage.Queries, orgID int64, t model.Transaction) (model.Account, error) {
	delta, err := Effect(t.Type, t.Amount)
	if err != nil {
		return model.Account{}, err
	}
	return adjust(ctx, q, orgID, t.AccountID, delta)
}

func reverse(ctx context.Context, q *storage.Queries, orgID int64, t model.Transaction) (model.Account, error) {
	delta, err := Effect(t.Type, t.Amount)
	if err != nil {
		return model.Account{}, err
	}
	return adjust(ctx, q, orgID, t.AccountID, delta.Neg())
}
