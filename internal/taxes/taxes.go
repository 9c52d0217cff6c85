// Package taxes records the taxes charged on top of a transaction, such as
// the PAIS tax and AFIP withholdings on foreign-currency card purchases.
package taxes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/finanza/internal/logger"
	"github.com/cleared-dev/finanza/internal/model"
	"github.com/cleared-dev/finanza/internal/money"
	"github.com/cleared-dev/finanza/internal/storage"
)

// CalculateAmount returns pct percent of base rounded to cents.
func CalculateAmount(base, pct decimal.Decimal) decimal.Decimal {
	return money.PercentOf(base, pct)
}

// Line is a tax to record. A zero Amount is computed from the percentage
// and the transaction amount.
type Line struct {
	TaxType     model.TaxType
	Percentage  decimal.Decimal
	Amount      decimal.Decimal
	Description string
}

// Service manages tax lines.
type Service struct {
	db *storage.DB
}

// NewService creates a tax Service.
func NewService(db *storage.DB) *Service {
	return &Service{db: db}
}

// CreateForTransaction stores tax lines against an existing transaction.
func (s *Service) CreateForTransaction(ctx context.Context, orgID, transactionID int64, lines []Line) ([]model.TaxLine, error) {
	if err := validate(lines); err != nil {
		return nil, err
	}

	var out []model.TaxLine
	err := s.db.InTx(ctx, func(q *storage.Queries) error {
		txn, err := q.GetTransaction(ctx, orgID, transactionID)
		if err != nil {
			return err
		}
		for _, l := range lines {
			tl := model.TaxLine{
				OrgID:         orgID,
				TransactionID: txn.ID,
				TaxType:       l.TaxType,
				Percentage:    l.Percentage,
				Amount:        l.Amount,
				Description:   l.Description,
			}
			if tl.Amount.IsZero() {
				tl.Amount = CalculateAmount(txn.Amount, l.Percentage)
			}
			if err := q.InsertTaxLine(ctx, &tl); err != nil {
				return err
			}
			out = append(out, tl)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, tl := range out {
		total = total.Add(tl.Amount)
	}
	logger.FromContext(ctx).Info().
		Int64("transaction_id", transactionID).
		Int("lines", len(out)).
		Str("total", total.StringFixed(2)).
		Msg("tax lines recorded")
	return out, nil
}

// ByTransaction returns the tax lines of one transaction.
func (s *Service) ByTransaction(ctx context.Context, orgID, transactionID int64) ([]model.TaxLine, error) {
	return s.db.Queries().TaxLinesByTransaction(ctx, orgID, transactionID)
}

// ByDateRange returns the tax lines of transactions dated within [from, to].
func (s *Service) ByDateRange(ctx context.Context, orgID int64, from, to time.Time) ([]model.TaxLine, error) {
	return s.db.Queries().TaxLinesBetween(ctx, orgID, from, to)
}

// DeleteForTransaction removes the tax lines of one transaction.
func (s *Service) DeleteForTransaction(ctx context.Context, orgID, transactionID int64) error {
	return s.db.Queries().DeleteTaxLinesForTransaction(ctx, orgID, transactionID)
}

func validate(lines []Line) error {
	var errs []error
	if len(lines) == 0 {
		errs = append(errs, errors.New("at least one tax line is required"))
	}
	for i, l := range lines {
		if _, ok := model.ParseTaxType(string(l.TaxType)); !ok {
			errs = append(errs, fmt.Errorf("line %d: tax type %q is invalid", i+1, l.TaxType))
		}
		if l.Percentage.IsNegative() {
			errs = append(errs, fmt.Errorf("line %d: percentage %s is negative", i+1, l.Percentage))
		}
		if l.Amount.IsNegative() {
			errs = append(errs, fmt.Errorf("line %d: amount %s is negative", i+1, l.Amount))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", model.ErrValidation, errors.Join(errs...))
	}
	return nil
}
