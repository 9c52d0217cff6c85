// Package budget compares monthly category budgets with what was spent.
package budget

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/finanza/internal/logger"
	"github.com/cleared-dev/finanza/internal/model"
	"github.com/cleared-dev/finanza/internal/money"
	"github.com/cleared-dev/finanza/internal/period"
	"github.com/cleared-dev/finanza/internal/storage"
)

// Status derives the remaining amount and percentage used from what was
// spent. The percentage is zero for a non-positive budget.
func Status(b model.Budget, spent decimal.Decimal) model.BudgetStatus {
	return model.BudgetStatus{
		Budget:     b,
		Spent:      spent,
		Remaining:  b.Amount.Sub(spent),
		Percentage: money.Percentage(spent, b.Amount),
	}
}

// Service manages budgets.
type Service struct {
	db *storage.DB
}

// NewService creates a budget Service.
func NewService(db *storage.DB) *Service {
	return &Service{db: db}
}

// Resolve sums the budget's category expenses within its month.
func (s *Service) Resolve(ctx context.Context, orgID int64, b model.Budget) (model.BudgetStatus, error) {
	from, to := period.Range(b.Year, b.Month)
	spent, err := s.db.Queries().SumExpenses(ctx, orgID, b.CategoryID, from, to)
	if err != nil {
		return model.BudgetStatus{}, fmt.Errorf("resolving budget %d: %w", b.ID, err)
	}
	return Status(b, spent), nil
}

// CreateParams holds the fields of a new budget.
type CreateParams struct {
	CategoryID int64
	Amount     decimal.Decimal
	Year       int
	Month      int
}

// Create stores a budget. Only one budget may exist per category and month.
func (s *Service) Create(ctx context.Context, orgID, userID int64, p CreateParams) (model.BudgetStatus, error) {
	if err := validate(p.Amount, p.Year, p.Month); err != nil {
		return model.BudgetStatus{}, err
	}

	q := s.db.Queries()
	cat, err := q.GetCategory(ctx, orgID, p.CategoryID)
	if err != nil {
		return model.BudgetStatus{}, err
	}

	b := model.Budget{
		OrgID:        orgID,
		CategoryID:   cat.ID,
		CategoryName: cat.Name,
		Amount:       p.Amount,
		Year:         p.Year,
		Month:        p.Month,
		CreatedBy:    userID,
	}
	if err := q.InsertBudget(ctx, &b); err != nil {
		return model.BudgetStatus{}, err
	}

	logger.FromContext(ctx).Info().
		Int64("budget_id", b.ID).
		Str("category", cat.Name).
		Str("amount", b.Amount.StringFixed(2)).
		Int("year", b.Year).
		Int("month", b.Month).
		Msg("budget created")
	return s.Resolve(ctx, orgID, b)
}

// Get returns a budget with its spending.
func (s *Service) Get(ctx context.Context, orgID, id int64) (model.BudgetStatus, error) {
	b, err := s.owned(ctx, orgID, id)
	if err != nil {
		return model.BudgetStatus{}, err
	}
	return s.Resolve(ctx, orgID, b)
}

// Find returns the budget of a category for one month.
func (s *Service) Find(ctx context.Context, orgID, categoryID int64, year, month int) (model.BudgetStatus, error) {
	b, err := s.db.Queries().FindBudget(ctx, orgID, categoryID, year, month)
	if err != nil {
		return model.BudgetStatus{}, err
	}
	return s.Resolve(ctx, orgID, b)
}

// UpdateAmount changes the budgeted amount.
func (s *Service) UpdateAmount(ctx context.Context, orgID, id int64, amount decimal.Decimal) (model.BudgetStatus, error) {
	b, err := s.owned(ctx, orgID, id)
	if err != nil {
		return model.BudgetStatus{}, err
	}
	if err := validate(amount, b.Year, b.Month); err != nil {
		return model.BudgetStatus{}, err
	}
	if err := s.db.Queries().UpdateBudgetAmount(ctx, id, amount); err != nil {
		return model.BudgetStatus{}, err
	}
	b.Amount = amount
	return s.Resolve(ctx, orgID, b)
}

// Delete removes a budget.
func (s *Service) Delete(ctx context.Context, orgID, id int64) error {
	if _, err := s.owned(ctx, orgID, id); err != nil {
		return err
	}
	if err := s.db.Queries().DeleteBudget(ctx, id); err != nil {
		return err
	}
	logger.FromContext(ctx).Info().Int64("budget_id", id).Msg("budget deleted")
	return nil
}

// ListByMonth returns one month's budgets with spending, ordered by
// category name.
func (s *Service) ListByMonth(ctx context.Context, orgID int64, year, month int) ([]model.BudgetStatus, error) {
	budgets, err := s.db.Queries().ListBudgetsByMonth(ctx, orgID, year, month)
	if err != nil {
		return nil, err
	}
	return s.resolveAll(ctx, orgID, budgets)
}

// ListByYear returns a year's budgets with spending, by month then
// category name.
func (s *Service) ListByYear(ctx context.Context, orgID int64, year int) ([]model.BudgetStatus, error) {
	budgets, err := s.db.Queries().ListBudgetsByYear(ctx, orgID, year)
	if err != nil {
		return nil, err
	}
	return s.resolveAll(ctx, orgID, budgets)
}

func (s *Service) resolveAll(ctx context.Context, orgID int64, budgets []model.Budget) ([]model.BudgetStatus, error) {
	out := make([]model.BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		st, err := s.Resolve(ctx, orgID, b)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

func (s *Service) owned(ctx context.Context, orgID, id int64) (model.Budget, error) {
	b, err := s.db.Queries().GetBudget(ctx, id)
	if err != nil {
		return model.Budget{}, err
	}
	if b.OrgID != orgID {
		return model.Budget{}, fmt.Errorf("budget %d: %w", id, model.ErrUnauthorized)
	}
	return b, nil
}

func validate(amount decimal.Decimal, year, month int) error {
	var errs []error
	if amount.IsNegative() {
		errs = append(errs, fmt.Errorf("amount %s is negative", amount))
	} else if !money.IsMinorUnit(amount) {
		errs = append(errs, fmt.Errorf("amount %s has more than %d decimal places", amount, money.Places))
	}
	if year < 1 {
		errs = append(errs, fmt.Errorf("year %d is invalid", year))
	}
	if month < 1 || month > 12 {
		errs = append(errs, fmt.Errorf("month %d outside 1..12", month))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", model.ErrValidation, errors.Join(errs...))
	}
	return nil
}
