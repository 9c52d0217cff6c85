// Package rates stores daily exchange-rate quotes and converts amounts with
// them.
package rates

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/finanza/internal/logger"
	"github.com/cleared-dev/finanza/internal/model"
	"github.com/cleared-dev/finanza/internal/storage"
)

// Service manages exchange rates.
type Service struct {
	db *storage.DB
}

// NewService creates a rate Service.
func NewService(db *storage.DB) *Service {
	return &Service{db: db}
}

// Upsert records the quote of one rate type for one day, replacing any
// quote already stored for that day and type.
func (s *Service) Upsert(ctx context.Context, orgID int64, date time.Time, typ model.RateType, buy, sell decimal.Decimal) (model.ExchangeRate, error) {
	if err := validate(typ, buy, sell); err != nil {
		return model.ExchangeRate{}, err
	}
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	var r model.ExchangeRate
	err := s.db.InTx(ctx, func(q *storage.Queries) error {
		existing, err := q.FindRate(ctx, orgID, day, typ)
		switch {
		case err == nil:
			existing.Buy, existing.Sell = buy, sell
			if err := q.UpdateRate(ctx, &existing); err != nil {
				return err
			}
			r = existing
			return nil
		case errors.Is(err, model.ErrNotFound):
			r = model.ExchangeRate{OrgID: orgID, Date: day, RateType: typ, Buy: buy, Sell: sell}
			return q.InsertRate(ctx, &r)
		default:
			return err
		}
	})
	if err != nil {
		return model.ExchangeRate{}, err
	}

	logger.FromContext(ctx).Info().
		Str("date", day.Format(time.DateOnly)).
		Str("type", string(typ)).
		Str("buy", buy.String()).
		Str("sell", sell.String()).
		Msg("exchange rate recorded")
	return r, nil
}

// ByDate returns every rate quoted on one day.
func (s *Service) ByDate(ctx context.Context, orgID int64, date time.Time) ([]model.ExchangeRate, error) {
	return s.db.Queries().RatesByDate(ctx, orgID, date)
}

// ByRange returns the quotes of one type within [from, to], newest first.
func (s *Service) ByRange(ctx context.Context, orgID int64, typ model.RateType, from, to time.Time) ([]model.ExchangeRate, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: range end %s before start %s", model.ErrValidation,
			to.Format(time.DateOnly), from.Format(time.DateOnly))
	}
	return s.db.Queries().RatesBetween(ctx, orgID, typ, from, to)
}

// All returns every stored quote, newest first.
func (s *Service) All(ctx context.Context, orgID int64) ([]model.ExchangeRate, error) {
	return s.db.Queries().AllRates(ctx, orgID)
}

// Latest returns the most recent quote of a type on or before asOf.
func (s *Service) Latest(ctx context.Context, orgID int64, typ model.RateType, asOf time.Time) (model.ExchangeRate, error) {
	return s.db.Queries().LatestRateOnOrBefore(ctx, orgID, asOf, typ)
}

// RateForDate returns the average of buy and sell for a day. Without a
// quote for that day the latest earlier quote is used, and without any
// quote the rate is 1.
func (s *Service) RateForDate(ctx context.Context, orgID int64, date time.Time, typ model.RateType) (decimal.Decimal, error) {
	q := s.db.Queries()
	r, err := q.FindRate(ctx, orgID, date, typ)
	if errors.Is(err, model.ErrNotFound) {
		r, err = q.LatestRateOnOrBefore(ctx, orgID, date, typ)
	}
	if errors.Is(err, model.ErrNotFound) {
		logger.FromContext(ctx).Warn().
			Str("date", date.Format(time.DateOnly)).
			Str("type", string(typ)).
			Msg("no exchange rate on record, using 1")
		return decimal.NewFromInt(1), nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return r.Average(), nil
}

// Convert multiplies amount by the day's rate, rounded to cents.
func (s *Service) Convert(ctx context.Context, orgID int64, amount decimal.Decimal, date time.Time, typ model.RateType) (decimal.Decimal, error) {
	rate, err := s.RateForDate(ctx, orgID, date, typ)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(rate).Round(2), nil
}

// Delete removes a quote.
func (s *Service) Delete(ctx context.Context, orgID, id int64) error {
	q := s.db.Queries()
	r, err := q.GetRate(ctx, id)
	if err != nil {
		return err
	}
	if r.OrgID != orgID {
		return fmt.Errorf("rate %d: %w", id, model.ErrUnauthorized)
	}
	return q.DeleteRate(ctx, id)
}

func validate(typ model.RateType, buy, sell decimal.Decimal) error {
	var errs []error
	if parsed, ok := model.ParseRateType(string(typ)); !ok || parsed != typ {
		errs = append(errs, fmt.Errorf("rate type %q is invalid", typ))
	}
	if !buy.IsPositive() {
		errs = append(errs, fmt.Errorf("buy rate %s must be positive", buy))
	}
	if !sell.IsPositive() {
		errs = append(errs, fmt.Errorf("sell rate %s must be positive", sell))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", model.ErrValidation, errors.Join(errs...))
	}
	return nil
}
