package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/cleared-dev/finanza/internal/model"
)

const rateColumns = `id, org_id, rate_date, rate_type, buy_rate, sell_rate, created_at`

// InsertRate stores a new exchange rate. A second rate for the same date
// and type is a conflict.
func (q *Queries) InsertRate(ctx context.Context, r *model.ExchangeRate) error {
	ts := now()
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO exchange_rates (org_id, rate_date, rate_type, buy_rate, sell_rate, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.OrgID, formatDate(r.Date), string(r.RateType), r.Buy, r.Sell, ts)
	if err != nil {
		return translate(err, fmt.Sprintf("%s rate for %s", r.RateType, formatDate(r.Date)))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading rate id: %w", err)
	}
	r.ID = id
	r.CreatedAt = parseTimestamp(ts)
	return nil
}

// UpdateRate overwrites the quoted prices of a rate.
func (q *Queries) UpdateRate(ctx context.Context, r *model.ExchangeRate) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE exchange_rates SET buy_rate = ?, sell_rate = ? WHERE org_id = ? AND id = ?`,
		r.Buy, r.Sell, r.OrgID, r.ID)
	if err != nil {
		return translate(err, fmt.Sprintf("updating rate %d", r.ID))
	}
	return requireRow(res, fmt.Sprintf("rate %d", r.ID))
}

// GetRate returns a rate by ID regardless of organization; callers check
// ownership.
func (q *Queries) GetRate(ctx context.Context, id int64) (model.ExchangeRate, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+rateColumns+` FROM exchange_rates WHERE id = ?`, id)
	r, err := scanRate(row)
	if err != nil {
		return model.ExchangeRate{}, translate(err, fmt.Sprintf("rate %d", id))
	}
	return r, nil
}

// DeleteRate removes a rate.
func (q *Queries) DeleteRate(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM exchange_rates WHERE id = ?`, id)
	if err != nil {
		return translate(err, fmt.Sprintf("deleting rate %d", id))
	}
	return requireRow(res, fmt.Sprintf("rate %d", id))
}

// FindRate returns the rate quoted for exactly one date.
func (q *Queries) FindRate(ctx context.Context, orgID int64, date time.Time, typ model.RateType) (model.ExchangeRate, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+rateColumns+` FROM exchange_rates WHERE org_id = ? AND rate_date = ? AND rate_type = ?`,
		orgID, formatDate(date), string(typ))
	r, err := scanRate(row)
	if err != nil {
		return model.ExchangeRate{}, translate(err, fmt.Sprintf("%s rate for %s", typ, formatDate(date)))
	}
	return r, nil
}

// LatestRateOnOrBefore returns the most recent rate of a type quoted on or
// before date.
func (q *Queries) LatestRateOnOrBefore(ctx context.Context, orgID int64, date time.Time, typ model.RateType) (model.ExchangeRate, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+rateColumns+` FROM exchange_rates
		  WHERE org_id = ? AND rate_type = ? AND rate_date <= ?
		  ORDER BY rate_date DESC LIMIT 1`,
		orgID, string(typ), formatDate(date))
	r, err := scanRate(row)
	if err != nil {
		return model.ExchangeRate{}, translate(err, fmt.Sprintf("%s rate on or before %s", typ, formatDate(date)))
	}
	return r, nil
}

// RatesByDate returns every rate quoted on one date.
func (q *Queries) RatesByDate(ctx context.Context, orgID int64, date time.Time) ([]model.ExchangeRate, error) {
	return q.queryRates(ctx,
		`SELECT `+rateColumns+` FROM exchange_rates WHERE org_id = ? AND rate_date = ? ORDER BY rate_type`,
		orgID, formatDate(date))
}

// RatesBetween returns the rates of one type within [from, to], newest first.
func (q *Queries) RatesBetween(ctx context.Context, orgID int64, typ model.RateType, from, to time.Time) ([]model.ExchangeRate, error) {
	return q.queryRates(ctx,
		`SELECT `+rateColumns+` FROM exchange_rates
		  WHERE org_id = ? AND rate_type = ? AND rate_date BETWEEN ? AND ?
		  ORDER BY rate_date DESC`,
		orgID, string(typ), formatDate(from), formatDate(to))
}

// AllRates returns every rate of the organization, newest first.
func (q *Queries) AllRates(ctx context.Context, orgID int64) ([]model.ExchangeRate, error) {
	return q.queryRates(ctx,
		`SELECT `+rateColumns+` FROM exchange_rates WHERE org_id = ? ORDER BY rate_date DESC, rate_type`, orgID)
}

func (q *Queries) queryRates(ctx context.Context, query string, args ...any) ([]model.ExchangeRate, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translate(err, "querying rates")
	}
	defer rows.Close()

	var out []model.ExchangeRate
	for rows.Next() {
		r, err := scanRate(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning rate: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanRate(s scanner) (model.ExchangeRate, error) {
	var (
		r              model.ExchangeRate
		day, typ, made string
	)
	if err := s.Scan(&r.ID, &r.OrgID, &day, &typ, &r.Buy, &r.Sell, &made); err != nil {
		return model.ExchangeRate{}, err
	}
	d, err := parseDate(day)
	if err != nil {
		return model.ExchangeRate{}, err
	}
	r.Date = d
	r.RateType = model.RateType(typ)
	r.CreatedAt = parseTimestamp(made)
	return r, nil
}
