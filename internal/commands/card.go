package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/finanza/internal/cards"
	"github.com/cleared-dev/finanza/internal/model"
)

func newCardCommand(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "card",
		Short: "Manage credit cards",
	}
	cmd.AddCommand(
		newCardCreateCommand(flags),
		newCardListCommand(flags),
		newCardShowCommand(flags),
	)
	return cmd
}

func newCardCreateCommand(flags *globalFlags) *cobra.Command {
	var (
		p         cards.CreateParams
		limit     string
		accountID int64
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a credit card",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit != "" {
				l, err := parseAmount(limit)
				if err != nil {
					return err
				}
				p.CreditLimit = decimal.NewNullDecimal(l)
			}
			p.AccountID = optionalID(accountID)
			return run(cmd, flags, func(ctx context.Context, s *session) error {
				c, err := s.cards().Create(ctx, s.orgID, s.userID, p)
				if err != nil {
					return err
				}
				fmt.Fprintf(s.out, "Created card %d %s (closes day %d, due day %d)\n", c.ID, c.Name, c.ClosingDay, c.DueDay)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&p.Name, "name", "", "card name (required)")
	cmd.Flags().IntVar(&p.ClosingDay, "closing-day", 0, "statement closing day 1..31 (required)")
	cmd.Flags().IntVar(&p.DueDay, "due-day", 0, "payment due day 1..31 (required)")
	cmd.Flags().StringVar(&limit, "limit", "", "credit limit")
	cmd.Flags().StringVar(&p.LastFour, "last-four", "", "last four digits")
	cmd.Flags().StringVar(&p.Bank, "bank", "", "issuing bank")
	cmd.Flags().StringVar(&p.Currency, "currency", "", "ISO currency code (default ARS)")
	cmd.Flags().Int64Var(&accountID, "account", 0, "account the card is paid from")
	requireFlag(cmd, "name", "closing-day", "due-day")
	return cmd
}

func newCardListCommand(flags *globalFlags) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cards with their current debt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, flags, func(ctx context.Context, s *session) error {
				list := s.cards().ListActive
				if all {
					list = s.cards().List
				}
				summaries, err := list(ctx, s.orgID)
				if err != nil {
					return err
				}
				t := newTable(s.out, "ID", "NAME", "CLOSING", "DUE", "DEBT", "AVAILABLE")
				for _, c := range summaries {
					t.row(fmtID(c.ID), c.Name, strconv.Itoa(c.ClosingDay), strconv.Itoa(c.DueDay),
						fmtAmount(c.CurrentDebt), available(c))
				}
				return t.flush()
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include inactive cards")
	return cmd
}

func newCardShowCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a card and its installments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cardID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return run(cmd, flags, func(ctx context.Context, s *session) error {
				c, err := s.cards().Get(ctx, s.orgID, cardID)
				if err != nil {
					return err
				}
				items, err := s.installments().ByCard(ctx, s.orgID, cardID)
				if err != nil {
					return err
				}
				fmt.Fprintf(s.out, "%s (%s)\nClosing day: %d\nDue day: %d\nDebt: %s\nAvailable: %s\n\n",
					c.Name, c.Currency, c.ClosingDay, c.DueDay, fmtAmount(c.CurrentDebt), available(c))
				return writeInstallments(s, items)
			})
		},
	}
}

func available(c model.CardSummary) string {
	if c.AvailableCredit == nil {
		return "-"
	}
	return fmtAmount(*c.AvailableCredit)
}
