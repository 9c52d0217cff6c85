// Package period handles calendar months written as "2025-01".
package period

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Format returns a period like "2025-01".
func Format(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// Parse parses "2025-01" into year and month.
func Parse(p string) (year, month int, err error) {
	parts := strings.SplitN(strings.TrimSpace(p), "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid period format: %q", p)
	}

	year, err = strconv.Atoi(parts[0])
	if err != nil || len(parts[0]) != 4 {
		return 0, 0, fmt.Errorf("invalid year in period %q", p)
	}

	month, err = strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("invalid month in period %q", p)
	}

	return year, month, nil
}

// Range returns the first and last day of a calendar month.
func Range(year, month int) (time.Time, time.Time) {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(0, 1, -1)
}

// Of returns the period containing t.
func Of(t time.Time) (year, month int) {
	return t.Year(), int(t.Month())
}
