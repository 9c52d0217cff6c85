package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/finanza/internal/budget"
	"github.com/cleared-dev/finanza/internal/model"
	"github.com/cleared-dev/finanza/internal/period"
)

func newBudgetCommand(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Monthly spending limits per category",
	}
	cmd.AddCommand(
		newBudgetSetCommand(flags),
		newBudgetListCommand(flags),
		newBudgetUpdateCommand(flags),
		newBudgetDeleteCommand(flags),
	)
	return cmd
}

func newBudgetSetCommand(flags *globalFlags) *cobra.Command {
	var (
		p          budget.CreateParams
		amountFlag string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Create a budget for a category and month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if p.Amount, err = parseAmount(amountFlag); err != nil {
				return err
			}
			return run(cmd, flags, func(ctx context.Context, s *session) error {
				b, err := s.budgets().Create(ctx, s.orgID, s.userID, p)
				if err != nil {
					return err
				}
				fmt.Fprintf(s.out, "Budget %d: %s %s %s (spent %s)\n",
					b.ID, b.CategoryName, period.Format(b.Year, b.Month), fmtAmount(b.Amount), fmtAmount(b.Spent))
				return nil
			})
		},
	}

	now := time.Now()
	cmd.Flags().Int64Var(&p.CategoryID, "category", 0, "expense category id (required)")
	cmd.Flags().StringVar(&amountFlag, "amount", "", "monthly limit (required)")
	cmd.Flags().IntVar(&p.Year, "year", now.Year(), "year")
	cmd.Flags().IntVar(&p.Month, "month", int(now.Month()), "month 1-12")
	requireFlag(cmd, "category", "amount")
	return cmd
}

func newBudgetListCommand(flags *globalFlags) *cobra.Command {
	var year, month int

	cmd := &cobra.Command{
		Use:   "list [YYYY-MM]",
		Short: "Show budgets with their spend to date",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := periodArg(args, &year, &month); err != nil {
				return err
			}
			return run(cmd, flags, func(ctx context.Context, s *session) error {
				var (
					list []model.BudgetStatus
					err  error
				)
				if month == 0 {
					list, err = s.budgets().ListByYear(ctx, s.orgID, year)
				} else {
					list, err = s.budgets().ListByMonth(ctx, s.orgID, year, month)
				}
				if err != nil {
					return err
				}
				return writeBudgets(s, list)
			})
		},
	}

	now := time.Now()
	cmd.Flags().IntVar(&year, "year", now.Year(), "year")
	cmd.Flags().IntVar(&month, "month", int(now.Month()), "month 1-12, 0 for the whole year")
	return cmd
}

func writeBudgets(s *session, list []model.BudgetStatus) error {
	t := newTable(s.out, "ID", "MONTH", "CATEGORY", "BUDGET", "SPENT", "REMAINING", "USED%")
	for _, b := range list {
		t.row(fmtID(b.ID), period.Format(b.Year, b.Month), b.CategoryName,
			fmtAmount(b.Amount), fmtAmount(b.Spent), fmtAmount(b.Remaining), fmtAmount(b.Percentage))
	}
	return t.flush()
}

func newBudgetUpdateCommand(flags *globalFlags) *cobra.Command {
	var amountFlag string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a budget's amount",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			budgetID, err := parseID(args[0])
			if err != nil {
				return err
			}
			amount, err := parseAmount(amountFlag)
			if err != nil {
				return err
			}
			return run(cmd, flags, func(ctx context.Context, s *session) error {
				b, err := s.budgets().UpdateAmount(ctx, s.orgID, budgetID, amount)
				if err != nil {
					return err
				}
				fmt.Fprintf(s.out, "Budget %d is now %s (remaining %s)\n", b.ID, fmtAmount(b.Amount), fmtAmount(b.Remaining))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&amountFlag, "amount", "", "new monthly limit (required)")
	requireFlag(cmd, "amount")
	return cmd
}

func newBudgetDeleteCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			budgetID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return run(cmd, flags, func(ctx context.Context, s *session) error {
				if err := s.budgets().Delete(ctx, s.orgID, budgetID); err != nil {
					return err
				}
				fmt.Fprintf(s.out, "Deleted budget %d\n", budgetID)
				return nil
			})
		},
	}
}
