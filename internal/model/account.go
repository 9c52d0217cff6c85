package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies where money is held.
type AccountType string

const (
	AccountTypeCash       AccountType = "CASH"
	AccountTypeBank       AccountType = "BANK"
	AccountTypeCreditCard AccountType = "CREDIT_CARD"
	AccountTypeInvestment AccountType = "INVESTMENT"
	AccountTypeLoan       AccountType = "LOAN"
	AccountTypeSavings    AccountType = "SAVINGS"
	AccountTypeOther      AccountType = "OTHER"
)

// DefaultAccountCurrency is used when an account is created without one.
const DefaultAccountCurrency = "USD"

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeCash, AccountTypeBank, AccountTypeCreditCard, AccountTypeInvestment,
		AccountTypeLoan, AccountTypeSavings, AccountTypeOther:
		return true
	}
	return false
}

// Account is a place money lives. Balance is only ever changed by the ledger.
type Account struct {
	ID          int64
	OrgID       int64
	Name        string
	Type        AccountType
	Balance     decimal.Decimal
	Currency    string
	Description string
	Active      bool
	CreatedBy   int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Organization is the tenant every other entity is scoped to.
type Organization struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}
