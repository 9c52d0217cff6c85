package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/finanza/internal/model"
	"github.com/cleared-dev/finanza/internal/period"
)

func newReportCommand(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Income and expense summaries",
	}
	cmd.AddCommand(newReportMonthlyCommand(flags), newReportYearlyCommand(flags))
	return cmd
}

func newReportMonthlyCommand(flags *globalFlags) *cobra.Command {
	var year, month int

	cmd := &cobra.Command{
		Use:   "monthly [YYYY-MM]",
		Short: "Totals and category breakdown for one month",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := periodArg(args, &year, &month); err != nil {
				return err
			}
			return run(cmd, flags, func(ctx context.Context, s *session) error {
				r, err := s.reports().Monthly(ctx, s.orgID, year, month)
				if err != nil {
					return err
				}
				fmt.Fprintf(s.out, "Report %s\n", period.Format(r.Year, r.Month))
				fmt.Fprintf(s.out, "Income:       %s\n", fmtAmount(r.TotalIncome))
				fmt.Fprintf(s.out, "Expenses:     %s\n", fmtAmount(r.TotalExpenses))
				fmt.Fprintf(s.out, "Balance:      %s\n", fmtAmount(r.Balance))
				fmt.Fprintf(s.out, "Transactions: %d\n", r.TransactionCount)
				if len(r.IncomeByCategory) > 0 {
					fmt.Fprintln(s.out, "\nIncome by category")
					if err := writeSummaries(s, r.IncomeByCategory); err != nil {
						return err
					}
				}
				if len(r.ExpensesByCategory) > 0 {
					fmt.Fprintln(s.out, "\nExpenses by category")
					if err := writeSummaries(s, r.ExpensesByCategory); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	now := time.Now()
	cmd.Flags().IntVar(&year, "year", now.Year(), "year")
	cmd.Flags().IntVar(&month, "month", int(now.Month()), "month 1-12")
	return cmd
}

func writeSummaries(s *session, items []model.CategorySummary) error {
	t := newTable(s.out, "CATEGORY", "AMOUNT", "COUNT", "SHARE%")
	for _, c := range items {
		t.row(c.CategoryName, fmtAmount(c.Amount), fmt.Sprintf("%d", c.Count), fmtAmount(c.Percentage))
	}
	return t.flush()
}

func newReportYearlyCommand(flags *globalFlags) *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "yearly",
		Short: "Month-by-month totals for one year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, flags, func(ctx context.Context, s *session) error {
				r, err := s.reports().Yearly(ctx, s.orgID, year)
				if err != nil {
					return err
				}
				t := newTable(s.out, "MONTH", "INCOME", "EXPENSES", "BALANCE", "TXNS")
				for _, m := range r.Months {
					t.row(period.Format(m.Year, m.Month), fmtAmount(m.TotalIncome),
						fmtAmount(m.TotalExpenses), fmtAmount(m.Balance), fmt.Sprintf("%d", m.TransactionCount))
				}
				t.row("TOTAL", fmtAmount(r.TotalIncome), fmtAmount(r.TotalExpenses), fmtAmount(r.Balance), "")
				return t.flush()
			})
		},
	}

	cmd.Flags().IntVar(&year, "year", time.Now().Year(), "year")
	return cmd
}

// periodArg overrides year and month with an optional YYYY-MM argument.
func periodArg(args []string, year, month *int) error {
	if len(args) == 0 {
		return nil
	}
	y, m, err := period.Parse(args[0])
	if err != nil {
		return fmt.Errorf("%w: %w", model.ErrValidation, err)
	}
	*year, *month = y, m
	return nil
}
