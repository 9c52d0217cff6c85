package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/finanza/internal/model"
	"github.com/cleared-dev/finanza/internal/money"
)

// parseDay reads a YYYY-MM-DD flag value. An empty value means today.
func parseDay(s string) (time.Time, error) {
	if s == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", model.ErrValidation, s)
	}
	return t, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := money.Parse(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %w", model.ErrValidation, err)
	}
	return d, nil
}

// optionalID turns an unset (zero) ID flag into nil.
func optionalID(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}

// table writes aligned columns.
type table struct {
	tw *tabwriter.Writer
}

func newTable(w io.Writer, header ...string) *table {
	t := &table{tw: tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)}
	t.row(header...)
	return t
}

func (t *table) row(cols ...string) {
	fmt.Fprintln(t.tw, strings.Join(cols, "\t"))
}

func (t *table) flush() error {
	return t.tw.Flush()
}

func fmtAmount(d decimal.Decimal) string {
	return d.StringFixed(money.Places)
}

func fmtDay(t time.Time) string {
	return t.Format(time.DateOnly)
}

func fmtID(n int64) string {
	return fmt.Sprintf("%d", n)
}

func fmtOptID(p *int64) string {
	if p == nil {
		return "-"
	}
	return fmtID(*p)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func parseID(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %q is not an id", model.ErrValidation, s)
	}
	return n, nil
}
