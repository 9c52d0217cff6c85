package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreditCard holds the billing-cycle configuration used to schedule
// installments.
type CreditCard struct {
	ID          int64
	OrgID       int64
	Name        string
	LastFour    string
	ClosingDay  int // 1..31
	DueDay      int // 1..31
	CreditLimit decimal.NullDecimal
	Currency    string
	Bank        string
	Active      bool
	AccountID   *int64
	CreatedBy   int64
	CreatedAt   time.Time
	UpdatedAt   time.Time

	AccountName string
}

// DefaultCardCurrency is used when a card is created without a currency.
const DefaultCardCurrency = "ARS"

// Installment is one scheduled payment of a financed purchase.
type Installment struct {
	ID            int64
	OrgID         int64
	TransactionID int64
	CreditCardID  int64
	Number        int // 1..Total
	Total         int
	Amount        decimal.Decimal
	DueDate       time.Time
	Paid          bool
	PaidDate      *time.Time

	TransactionDescription string
	CreditCardName         string
}

// CardSummary is a credit card with its outstanding installments.
type CardSummary struct {
	CreditCard
	CurrentDebt     decimal.Decimal
	AvailableCredit *decimal.Decimal // nil without a credit limit
}
