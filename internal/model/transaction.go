package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a money movement.
type TransactionType string

const (
	TypeIncome   TransactionType = "INCOME"
	TypeExpense  TransactionType = "EXPENSE"
	TypeTransfer TransactionType = "TRANSFER"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeExpense || t == TypeTransfer
}

// Transaction is one money movement against an account. TRANSFER
// transactions also carry the destination account.
type Transaction struct {
	ID                   int64
	OrgID                int64
	Type                 TransactionType
	Amount               decimal.Decimal
	Date                 time.Time
	Description          string
	Notes                string
	AccountID            int64
	CategoryID           *int64
	DestinationAccountID *int64
	CreditCardID         *int64
	Installments         int // 0 = not financed
	Tags                 []string
	Attachments          []string
	CreatedBy            int64
	CreatedAt            time.Time
	UpdatedAt            time.Time

	// Read-side names, filled by queries that join them.
	AccountName            string
	CategoryName           string
	DestinationAccountName string
}
