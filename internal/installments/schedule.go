// Package installments schedules financed credit-card purchases across
// billing cycles and tracks which installments have been paid.
package installments

import (
	"errors"
	"fmt"
	"time"

	"github.com/cleared-dev/finanza/internal/model"
	"github.com/cleared-dev/finanza/internal/money"
)

// ErrInvalidPlan is returned by Plan for inputs no schedule can be built from.
var ErrInvalidPlan = errors.New("invalid installment plan")

// Plan splits a purchase into total installments. Every share is rounded
// half-up to the minor unit and the last one absorbs the remainder, so the
// amounts sum to the purchase amount exactly. Installment 1 falls due per
// FirstDueDate; each later one is due one calendar month after the
// previous, on the card's due day clamped to the month's length.
func Plan(purchase model.Transaction, card model.CreditCard, total int) ([]model.Installment, error) {
	if total < 1 {
		return nil, fmt.Errorf("%w: %d installments", ErrInvalidPlan, total)
	}
	if !purchase.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount %s", ErrInvalidPlan, purchase.Amount)
	}
	if err := checkDay("closing", card.ClosingDay); err != nil {
		return nil, err
	}
	if err := checkDay("due", card.DueDay); err != nil {
		return nil, err
	}

	shares, err := money.Split(purchase.Amount, total)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPlan, err)
	}
	// Rounding the shares up can leave nothing, or less than nothing, for
	// the last one.
	if last := shares[total-1]; !last.IsPositive() {
		return nil, fmt.Errorf("%w: %s in %d installments leaves %s for the last one",
			ErrInvalidPlan, purchase.Amount, total, last)
	}

	first := FirstDueDate(purchase.Date, card.ClosingDay, card.DueDay)
	items := make([]model.Installment, total)
	for i := range items {
		items[i] = model.Installment{
			OrgID:         purchase.OrgID,
			TransactionID: purchase.ID,
			CreditCardID:  card.ID,
			Number:        i + 1,
			Total:         total,
			Amount:        shares[i],
			DueDate:       DueDate(first.Year(), first.Month()+time.Month(i), card.DueDay),
		}
	}
	return items, nil
}

// FirstDueDate returns when installment 1 of a purchase falls due. A
// purchase on or before the closing day belongs to the current cycle and
// is due next month; a later purchase is due the month after.
func FirstDueDate(purchase time.Time, closingDay, dueDay int) time.Time {
	offset := time.Month(1)
	if purchase.Day() > closingDay {
		offset = 2
	}
	return DueDate(purchase.Year(), purchase.Month()+offset, dueDay)
}

// DueDate returns day of the given month, clamped to the month's last day.
// Months past December roll into the following years.
func DueDate(year int, month time.Month, day int) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	if day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

func checkDay(name string, day int) error {
	if day < 1 || day > 31 {
		return fmt.Errorf("%w: %s day %d outside 1..31", ErrInvalidPlan, name, day)
	}
	return nil
}
