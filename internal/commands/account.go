package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/finanza/internal/accounts"
	"github.com/cleared-dev/finanza/internal/model"
)

func newAccountCommand(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage accounts",
	}
	cmd.AddCommand(
		newAccountCreateCommand(flags),
		newAccountListCommand(flags),
		newAccountDeactivateCommand(flags),
		newAccountExportCommand(flags),
	)
	return cmd
}

func newAccountCreateCommand(flags *globalFlags) *cobra.Command {
	var name, typ, balance, currency, description string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opening, err := parseAmount(balance)
			if err != nil {
				return err
			}
			return run(cmd, flags, func(ctx context.Context, s *session) error {
				a, err := s.accounts().Create(ctx, s.orgID, s.userID, accounts.CreateParams{
					Name:           name,
					Type:           model.AccountType(strings.ToUpper(typ)),
					OpeningBalance: opening,
					Currency:       currency,
					Description:    description,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(s.out, "Created account %d %s (%s %s)\n", a.ID, a.Name, fmtAmount(a.Balance), a.Currency)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "account name (required)")
	cmd.Flags().StringVar(&typ, "type", string(model.AccountTypeBank), "CASH, BANK, CREDIT_CARD, INVESTMENT, LOAN, SAVINGS or OTHER")
	cmd.Flags().StringVar(&balance, "balance", "0", "opening balance")
	cmd.Flags().StringVar(&currency, "currency", "", "ISO currency code (default USD)")
	cmd.Flags().StringVar(&description, "description", "", "free-form description")
	requireFlag(cmd, "name")
	return cmd
}

func newAccountListCommand(flags *globalFlags) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts with their balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, flags, func(ctx context.Context, s *session) error {
				list := s.accounts().ListActive
				if all {
					list = s.accounts().List
				}
				accts, err := list(ctx, s.orgID)
				if err != nil {
					return err
				}
				t := newTable(s.out, "ID", "NAME", "TYPE", "BALANCE", "CURRENCY", "ACTIVE")
				for _, a := range accts {
					t.row(fmtID(a.ID), a.Name, string(a.Type), fmtAmount(a.Balance), a.Currency, yesNo(a.Active))
				}
				return t.flush()
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include inactive accounts")
	return cmd
}

func newAccountDeactivateCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate <id>",
		Short: "Deactivate an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			accountID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return run(cmd, flags, func(ctx context.Context, s *session) error {
				if err := s.accounts().Deactivate(ctx, s.orgID, accountID); err != nil {
					return err
				}
				fmt.Fprintf(s.out, "Deactivated account %d\n", accountID)
				return nil
			})
		},
	}
}

func newAccountExportCommand(flags *globalFlags) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every account as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, flags, func(ctx context.Context, s *session) error {
				accts, err := s.accounts().List(ctx, s.orgID)
				if err != nil {
					return err
				}
				if output == "" || output == "-" {
					return accounts.WriteCSV(s.out, accts)
				}
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("creating %s: %w", output, err)
				}
				defer f.Close()
				return accounts.WriteCSV(f, accts)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}
