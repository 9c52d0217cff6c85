package rules

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/finanza/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func rule(id int64, kind model.RuleKind, pattern string, categoryID int64) model.CategoryRule {
	return model.CategoryRule{ID: id, Kind: kind, Pattern: pattern, CategoryID: categoryID, Active: true}
}

func TestMatches(t *testing.T) {
	tests := []struct {
		name        string
		kind        model.RuleKind
		pattern     string
		description string
		amount      string
		want        bool
	}{
		{"contains", model.RuleContains, "UBER", "Uber trip downtown", "10", true},
		{"contains miss", model.RuleContains, "lyft", "Uber trip", "10", false},
		{"starts with", model.RuleStartsWith, "netflix", "NETFLIX.COM 123", "10", true},
		{"starts with miss", model.RuleStartsWith, "com", "NETFLIX.COM", "10", false},
		{"ends with", model.RuleEndsWith, "market", "Corner Market", "10", true},
		{"exact", model.RuleExactMatch, "rent", "RENT", "10", true},
		{"exact miss", model.RuleExactMatch, "rent", "rent march", "10", false},
		{"regex anywhere", model.RuleRegex, `caf[eé]`, "Morning CAFE latte", "10", true},
		{"regex miss", model.RuleRegex, `^cafe$`, "Morning cafe", "10", false},
		{"range inside", model.RuleAmountRange, "10-20", "anything", "15.50", true},
		{"range lower bound", model.RuleAmountRange, "10-20", "anything", "10", true},
		{"range upper bound", model.RuleAmountRange, "10-20", "anything", "20.00", true},
		{"range outside", model.RuleAmountRange, "10-20", "anything", "20.01", false},
		{"range with spaces", model.RuleAmountRange, " 1.5 - 2.5 ", "anything", "2", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Matches(rule(1, tt.kind, tt.pattern, 1), tt.description, dec(tt.amount))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatches_Malformed(t *testing.T) {
	for _, r := range []model.CategoryRule{
		rule(1, model.RuleRegex, "([a-z", 1),
		rule(2, model.RuleAmountRange, "10", 1),
		rule(3, model.RuleAmountRange, "1-2-3", 1),
		rule(4, model.RuleAmountRange, "a-b", 1),
		rule(5, model.RuleKind("FUZZY"), "x", 1),
	} {
		_, err := Matches(r, "x", dec("1"))
		assert.Error(t, err, "rule %d", r.ID)
	}
}

func TestMatch_PriorityOrderWins(t *testing.T) {
	// Already sorted by priority descending, as the store returns them.
	rules := []model.CategoryRule{
		{ID: 1, Kind: model.RuleContains, Pattern: "uber", CategoryID: 10, Priority: 5, Active: true},
		{ID: 2, Kind: model.RuleContains, Pattern: "u", CategoryID: 20, Priority: 1, Active: true},
	}
	got, ok := Match(context.Background(), rules, "Uber trip", dec("12"))
	require.True(t, ok)
	assert.Equal(t, int64(10), got.CategoryID)
}

func TestMatch_SkipsMalformedRules(t *testing.T) {
	rules := []model.CategoryRule{
		rule(1, model.RuleRegex, "(unclosed", 10),
		rule(2, model.RuleAmountRange, "lots", 20),
		rule(3, model.RuleContains, "coffee", 30),
	}
	got, ok := Match(context.Background(), rules, "Coffee shop", dec("4"))
	require.True(t, ok)
	assert.Equal(t, int64(30), got.CategoryID)
}

func TestMatch_NoMatch(t *testing.T) {
	_, ok := Match(context.Background(), []model.CategoryRule{rule(1, model.RuleExactMatch, "rent", 1)}, "groceries", dec("1"))
	assert.False(t, ok)

	_, ok = Match(context.Background(), nil, "groceries", dec("1"))
	assert.False(t, ok)
}
