package rules_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/finanza/internal/model"
	"github.com/cleared-dev/finanza/internal/rules"
	"github.com/cleared-dev/finanza/internal/testutil"
)

var dec = testutil.Dec

func TestService_FindCategory(t *testing.T) {
	l := testutil.NewLedger(t)
	ctx := context.Background()
	svc := rules.NewService(l.DB)
	transport := l.Category("Transport", model.CategoryExpense)
	misc := l.Category("Misc", model.CategoryExpense)

	_, err := svc.Create(ctx, l.Org.ID, 1, rules.CreateParams{
		Name: "anything with u", Kind: model.RuleContains, Pattern: "u", CategoryID: misc.ID, Priority: 1,
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, l.Org.ID, 1, rules.CreateParams{
		Name: "uber", Kind: model.RuleContains, Pattern: "uber", CategoryID: transport.ID, Priority: 5,
	})
	require.NoError(t, err)

	got, err := svc.FindCategory(ctx, l.Org.ID, "Uber trip", dec("12"))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, transport.ID, *got)

	got, err = svc.FindCategory(ctx, l.Org.ID, "Groceries", dec("12"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestService_InactiveRulesIgnored(t *testing.T) {
	l := testutil.NewLedger(t)
	ctx := context.Background()
	svc := rules.NewService(l.DB)
	cat := l.Category("Transport", model.CategoryExpense)
	off := false

	_, err := svc.Create(ctx, l.Org.ID, 1, rules.CreateParams{
		Name: "uber", Kind: model.RuleContains, Pattern: "uber", CategoryID: cat.ID, Active: &off,
	})
	require.NoError(t, err)

	got, err := svc.FindCategory(ctx, l.Org.ID, "Uber trip", dec("12"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestService_CreateValidation(t *testing.T) {
	l := testutil.NewLedger(t)
	ctx := context.Background()
	svc := rules.NewService(l.DB)
	cat := l.Category("Food", model.CategoryExpense)

	tests := []struct {
		name string
		p    rules.CreateParams
		want error
	}{
		{"bad regex", rules.CreateParams{Name: "r", Kind: model.RuleRegex, Pattern: "(", CategoryID: cat.ID}, model.ErrValidation},
		{"bad range", rules.CreateParams{Name: "r", Kind: model.RuleAmountRange, Pattern: "20-10", CategoryID: cat.ID}, model.ErrValidation},
		{"unknown kind", rules.CreateParams{Name: "r", Kind: "FUZZY", Pattern: "x", CategoryID: cat.ID}, model.ErrValidation},
		{"missing name", rules.CreateParams{Kind: model.RuleContains, Pattern: "x", CategoryID: cat.ID}, model.ErrValidation},
		{"unknown category", rules.CreateParams{Name: "r", Kind: model.RuleContains, Pattern: "x", CategoryID: 999}, model.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, l.Org.ID, 1, tt.p)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestService_UpdateAndDelete(t *testing.T) {
	l := testutil.NewLedger(t)
	ctx := context.Background()
	svc := rules.NewService(l.DB)
	food := l.Category("Food", model.CategoryExpense)
	dining := l.Category("Dining", model.CategoryExpense)

	r, err := svc.Create(ctx, l.Org.ID, 1, rules.CreateParams{
		Name: "cafe", Kind: model.RuleContains, Pattern: "cafe", CategoryID: food.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Food", r.CategoryName)

	prio := 9
	updated, err := svc.Update(ctx, l.Org.ID, r.ID, rules.UpdateParams{CategoryID: &dining.ID, Priority: &prio})
	require.NoError(t, err)
	assert.Equal(t, "Dining", updated.CategoryName)
	assert.Equal(t, 9, updated.Priority)
	assert.Equal(t, "cafe", updated.Pattern)

	other, err := l.DB.Queries().CreateOrganization(ctx, "Other")
	require.NoError(t, err)
	_, err = svc.Update(ctx, other.ID, r.ID, rules.UpdateParams{Priority: &prio})
	assert.ErrorIs(t, err, model.ErrUnauthorized)
	assert.ErrorIs(t, svc.Delete(ctx, other.ID, r.ID), model.ErrUnauthorized)

	require.NoError(t, svc.Delete(ctx, l.Org.ID, r.ID))
	_, err = svc.Get(ctx, l.Org.ID, r.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}
