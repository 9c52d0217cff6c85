package model

import "time"

// CategoryType says which side of the ledger a category labels.
type CategoryType string

const (
	CategoryIncome  CategoryType = "INCOME"
	CategoryExpense CategoryType = "EXPENSE"
)

// CategoryTypeFor maps a transaction type to the category type that labels it.
func CategoryTypeFor(t TransactionType) CategoryType {
	if t == TypeIncome {
		return CategoryIncome
	}
	return CategoryExpense
}

// Category labels transactions for budgets and reports.
type Category struct {
	ID          int64
	OrgID       int64
	Name        string
	Description string
	Type        CategoryType
	Icon        string
	Color       string
	Active      bool
	CreatedBy   int64
	CreatedAt   time.Time
}

// RuleKind selects how a rule pattern is evaluated.
type RuleKind string

const (
	RuleContains    RuleKind = "CONTAINS"
	RuleStartsWith  RuleKind = "STARTS_WITH"
	RuleEndsWith    RuleKind = "ENDS_WITH"
	RuleExactMatch  RuleKind = "EXACT_MATCH"
	RuleRegex       RuleKind = "REGEX"
	RuleAmountRange RuleKind = "AMOUNT_RANGE"
)

// Valid reports whether k is a known rule kind.
func (k RuleKind) Valid() bool {
	switch k {
	case RuleContains, RuleStartsWith, RuleEndsWith, RuleExactMatch, RuleRegex, RuleAmountRange:
		return true
	}
	return false
}

// CategoryRule infers a category from a description or amount.
// Higher Priority is evaluated first.
type CategoryRule struct {
	ID           int64
	OrgID        int64
	Name         string
	Description  string
	Kind         RuleKind
	Pattern      string
	CategoryID   int64
	CategoryName string
	Active       bool
	Priority     int
	CreatedBy    int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
