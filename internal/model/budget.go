package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget caps spending for one category in one calendar month.
// At most one exists per (org, category, year, month).
type Budget struct {
	ID           int64
	OrgID        int64
	CategoryID   int64
	CategoryName string
	Amount       decimal.Decimal
	Year         int
	Month        int // 1..12
	CreatedBy    int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// BudgetStatus is a budget together with its spend to date.
type BudgetStatus struct {
	Budget
	Spent      decimal.Decimal
	Remaining  decimal.Decimal
	Percentage decimal.Decimal
}
