package model

import "github.com/shopspring/decimal"

// CategorySummary is one category's share of a report's income or expenses.
type CategorySummary struct {
	CategoryID   int64
	CategoryName string
	Amount       decimal.Decimal
	Count        int
	Percentage   decimal.Decimal
}

// MonthlyReport aggregates one calendar month. Transfers are excluded.
type MonthlyReport struct {
	Year               int
	Month              int
	TotalIncome        decimal.Decimal
	TotalExpenses      decimal.Decimal
	Balance            decimal.Decimal
	TransactionCount   int
	IncomeByCategory   []CategorySummary
	ExpensesByCategory []CategorySummary
}

type YearlyReport struct {
	Year          int
	TotalIncome   decimal.Decimal
	TotalExpenses decimal.Decimal
	Balance       decimal.Decimal
	Months        []MonthlyReport // 1..12
}
