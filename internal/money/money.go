// Package money holds the rounding rules shared by the ledger, the
// installment scheduler and the aggregators.
//
// Amounts are kept to the currency's minor unit (two places). Rounding is
// half-up, which for the non-negative amounts handled here is the same as
// shopspring's half-away-from-zero.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Places is the number of decimal places of the minor currency unit.
const Places = 2

// percentPlaces is the precision of a ratio before it is scaled to percent.
const percentPlaces = 4

var hundred = decimal.NewFromInt(100)

// ErrInvalidAmount is returned by Parse for malformed input.
var ErrInvalidAmount = errors.New("invalid amount")

// Round rounds d half-up to the minor unit.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// IsMinorUnit reports whether d has no more than two decimal places.
func IsMinorUnit(d decimal.Decimal) bool {
	return d.Equal(d.Round(Places))
}

// Percentage returns part/total rounded to 4 places, times 100.
// It is zero when total is not positive.
func Percentage(part, total decimal.Decimal) decimal.Decimal {
	if !total.IsPositive() {
		return decimal.Zero
	}
	return part.DivRound(total, percentPlaces).Mul(hundred)
}

// Split divides amount into n shares rounded to the minor unit. The last
// share absorbs the rounding remainder so the shares always sum to amount.
func Split(amount decimal.Decimal, n int) ([]decimal.Decimal, error) {
	if n < 1 {
		return nil, fmt.Errorf("splitting into %d shares: %w", n, ErrInvalidAmount)
	}
	share := amount.DivRound(decimal.NewFromInt(int64(n)), Places)
	shares := make([]decimal.Decimal, n)
	for i := 0; i < n-1; i++ {
		shares[i] = share
	}
	shares[n-1] = amount.Sub(share.Mul(decimal.NewFromInt(int64(n - 1))))
	return shares, nil
}

// PercentOf returns base*pct/100 rounded to the minor unit.
func PercentOf(base, pct decimal.Decimal) decimal.Decimal {
	return Round(base.Mul(pct).Div(hundred))
}

// Parse reads a user-entered amount. A decimal comma is accepted in place of
// a dot, and surrounding whitespace and a leading currency sign are ignored.
// When both separators appear the later one is the decimal mark and the
// other groups thousands ("1,234.50", "1.234,50"). A separator repeated
// on its own only groups ("1.234.567").
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = normalizeSeparators(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return d, nil
}

func normalizeSeparators(s string) string {
	dot, comma := strings.LastIndex(s, "."), strings.LastIndex(s, ",")
	switch {
	case dot >= 0 && comma >= 0:
		if comma > dot {
			s = strings.ReplaceAll(s, ".", "")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case strings.Count(s, ",") > 1:
		s = strings.ReplaceAll(s, ",", "")
	case strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}
	return strings.ReplaceAll(s, ",", ".")
}
