package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ParsedTransaction is one row read from a bank or spreadsheet export,
// before it is committed to the ledger. The direction of the money is
// carried by Type, not by the sign of Amount.
type ParsedTransaction struct {
	Line         int // 1-based row in the source file, header included
	Date         time.Time
	Description  string
	Amount       decimal.Decimal
	Type         string // INCOME or EXPENSE; anything else fails on commit
	CategoryName string
	Notes        string
	Reference    string
}

// ImportResult reports the outcome of committing a batch of parsed rows.
type ImportResult struct {
	BatchID      uuid.UUID
	Total        int
	Imported     int
	Failed       int
	Errors       []string
	Transactions []Transaction
}
