package accounts

import "github.com/cleared-dev/finanza/internal/model"

// DefaultAccounts returns the accounts a new organization starts with.
func DefaultAccounts() []model.Account {
	return []model.Account{
		{Name: "Cash", Type: model.AccountTypeCash, Currency: "ARS", Description: "Wallet cash"},
		{Name: "Checking", Type: model.AccountTypeBank, Currency: "ARS", Description: "Primary bank account"},
		{Name: "Savings", Type: model.AccountTypeSavings, Currency: "ARS"},
		{Name: "Dollar Savings", Type: model.AccountTypeSavings, Currency: "USD", Description: "Foreign currency savings"},
	}
}
