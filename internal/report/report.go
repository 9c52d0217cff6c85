// Package report aggregates a period's transactions into income and
// expense totals broken down by category.
package report

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/cleared-dev/finanza/internal/logger"
	"github.com/cleared-dev/finanza/internal/model"
	"github.com/cleared-dev/finanza/internal/money"
	"github.com/cleared-dev/finanza/internal/period"
	"github.com/cleared-dev/finanza/internal/storage"
)

// Build aggregates the transactions of one month. Transfers count toward
// neither total. Uncategorized transactions count toward the totals but
// appear in no category group. Groups are sorted by amount descending,
// ties by category name.
func Build(year, month int, txns []model.Transaction) model.MonthlyReport {
	r := model.MonthlyReport{
		Year:          year,
		Month:         month,
		TotalIncome:   decimal.Zero,
		TotalExpenses: decimal.Zero,
	}
	income := newGroups()
	expenses := newGroups()

	for _, t := range txns {
		switch t.Type {
		case model.TypeIncome:
			r.TotalIncome = r.TotalIncome.Add(t.Amount)
			income.add(t)
		case model.TypeExpense:
			r.TotalExpenses = r.TotalExpenses.Add(t.Amount)
			expenses.add(t)
		default:
			continue
		}
		r.TransactionCount++
	}

	r.Balance = r.TotalIncome.Sub(r.TotalExpenses)
	r.IncomeByCategory = income.summaries(r.TotalIncome)
	r.ExpensesByCategory = expenses.summaries(r.TotalExpenses)
	return r
}

type groups struct {
	byID  map[int64]*model.CategorySummary
	order []int64
}

func newGroups() *groups {
	return &groups{byID: make(map[int64]*model.CategorySummary)}
}

func (g *groups) add(t model.Transaction) {
	if t.CategoryID == nil {
		return
	}
	s, ok := g.byID[*t.CategoryID]
	if !ok {
		s = &model.CategorySummary{CategoryID: *t.CategoryID, CategoryName: t.CategoryName, Amount: decimal.Zero}
		g.byID[*t.CategoryID] = s
		g.order = append(g.order, *t.CategoryID)
	}
	s.Amount = s.Amount.Add(t.Amount)
	s.Count++
}

func (g *groups) summaries(total decimal.Decimal) []model.CategorySummary {
	out := make([]model.CategorySummary, 0, len(g.order))
	for _, id := range g.order {
		s := *g.byID[id]
		s.Percentage = money.Percentage(s.Amount, total)
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].CategoryName < out[j].CategoryName
	})
	return out
}

// Service builds reports from stored transactions.
type Service struct {
	db *storage.DB
}

// NewService creates a report Service.
func NewService(db *storage.DB) *Service {
	return &Service{db: db}
}

// Monthly reports one calendar month.
func (s *Service) Monthly(ctx context.Context, orgID int64, year, month int) (model.MonthlyReport, error) {
	if month < 1 || month > 12 {
		return model.MonthlyReport{}, fmt.Errorf("month %d outside 1..12: %w", month, model.ErrValidation)
	}
	from, to := period.Range(year, month)
	txns, err := s.db.Queries().TransactionsBetween(ctx, orgID, from, to)
	if err != nil {
		return model.MonthlyReport{}, fmt.Errorf("loading %04d-%02d: %w", year, month, err)
	}
	r := Build(year, month, txns)

	logger.FromContext(ctx).Debug().
		Int("year", year).
		Int("month", month).
		Int("transactions", r.TransactionCount).
		Msg("monthly report built")
	return r, nil
}

// Yearly reports each month of a year independently, months 1 through 12
// in order.
func (s *Service) Yearly(ctx context.Context, orgID int64, year int) (model.YearlyReport, error) {
	months := make([]model.MonthlyReport, 12)

	g, gctx := errgroup.WithContext(ctx)
	for i := range months {
		i := i
		g.Go(func() error {
			r, err := s.Monthly(gctx, orgID, year, i+1)
			if err != nil {
				return err
			}
			months[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.YearlyReport{}, err
	}

	y := model.YearlyReport{Year: year, TotalIncome: decimal.Zero, TotalExpenses: decimal.Zero, Months: months}
	for _, m := range months {
		y.TotalIncome = y.TotalIncome.Add(m.TotalIncome)
		y.TotalExpenses = y.TotalExpenses.Add(m.TotalExpenses)
	}
	y.Balance = y.TotalIncome.Sub(y.TotalExpenses)
	return y, nil
}
