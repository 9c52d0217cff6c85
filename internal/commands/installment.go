package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/finanza/internal/model"
)

func newInstallmentCommand(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "installment",
		Aliases: []string{"inst"},
		Short:   "Track credit card installments",
	}
	cmd.AddCommand(
		newInstallmentUpcomingCommand(flags),
		newInstallmentUnpaidCommand(flags),
		newInstallmentCardCommand(flags),
		newInstallmentPayCommand(flags, true),
		newInstallmentPayCommand(flags, false),
	)
	return cmd
}

func newInstallmentUpcomingCommand(flags *globalFlags) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "upcoming",
		Short: "List installments due in a date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			start, err := parseDay(from)
			if err != nil {
				return err
			}
			end := start.AddDate(0, 1, 0)
			if to != "" {
				if end, err = parseDay(to); err != nil {
					return err
				}
			}
			return run(cmd, flags, func(ctx context.Context, s *session) error {
				items, err := s.installments().Upcoming(ctx, s.orgID, start, end)
				if err != nil {
					return err
				}
				return writeInstallments(s, items)
			})
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first due date, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&to, "to", "", "last due date, YYYY-MM-DD (default one month after --from)")
	return cmd
}

func newInstallmentUnpaidCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "unpaid",
		Short: "List every unpaid installment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, flags, func(ctx context.Context, s *session) error {
				items, err := s.installments().Unpaid(ctx, s.orgID)
				if err != nil {
					return err
				}
				return writeInstallments(s, items)
			})
		},
	}
}

func newInstallmentCardCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "card <card-id>",
		Short: "List the installments of one card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cardID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return run(cmd, flags, func(ctx context.Context, s *session) error {
				items, err := s.installments().ByCard(ctx, s.orgID, cardID)
				if err != nil {
					return err
				}
				return writeInstallments(s, items)
			})
		},
	}
}

func newInstallmentPayCommand(flags *globalFlags, paid bool) *cobra.Command {
	use, short := "pay <id>", "Mark an installment paid today"
	if !paid {
		use, short = "unpay <id>", "Clear an installment's payment"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			installmentID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return run(cmd, flags, func(ctx context.Context, s *session) error {
				svc := s.installments()
				mark := svc.MarkPaid
				if !paid {
					mark = svc.MarkUnpaid
				}
				in, err := mark(ctx, s.orgID, installmentID)
				if err != nil {
					return err
				}
				state := "unpaid"
				if in.Paid {
					state = "paid"
				}
				fmt.Fprintf(s.out, "Installment %d (%d/%d) marked %s\n", in.ID, in.Number, in.Total, state)
				return nil
			})
		},
	}
}

func writeInstallments(s *session, items []model.Installment) error {
	t := newTable(s.out, "ID", "DUE", "CARD", "PURCHASE", "N", "AMOUNT", "PAID")
	for _, in := range items {
		paid := "no"
		if in.PaidDate != nil {
			paid = fmtDay(*in.PaidDate)
		}
		t.row(fmtID(in.ID), fmtDay(in.DueDate), in.CreditCardName, in.TransactionDescription,
			fmt.Sprintf("%d/%d", in.Number, in.Total), fmtAmount(in.Amount), paid)
	}
	return t.flush()
}
