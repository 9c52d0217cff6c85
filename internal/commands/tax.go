package commands

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/finanza/internal/model"
	"github.com/cleared-dev/finanza/internal/taxes"
)

func newTaxCommand(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tax",
		Short: "Taxes charged on transactions",
	}
	cmd.AddCommand(newTaxAddCommand(flags), newTaxListCommand(flags))
	return cmd
}

func newTaxAddCommand(flags *globalFlags) *cobra.Command {
	var typeFlag, pctFlag, amountFlag, description string

	cmd := &cobra.Command{
		Use:   "add <txn-id>",
		Short: "Attach a tax line to a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			txnID, err := parseID(args[0])
			if err != nil {
				return err
			}
			typ, ok := model.ParseTaxType(typeFlag)
			if !ok {
				return fmt.Errorf("%w: tax type %q", model.ErrInvalidType, typeFlag)
			}
			pct, err := decimal.NewFromString(pctFlag)
			if err != nil {
				return fmt.Errorf("%w: percentage %q", model.ErrValidation, pctFlag)
			}
			line := taxes.Line{TaxType: typ, Percentage: pct, Description: description}
			if amountFlag != "" {
				if line.Amount, err = parseAmount(amountFlag); err != nil {
					return err
				}
			}
			return run(cmd, flags, func(ctx context.Context, s *session) error {
				out, err := s.taxes().CreateForTransaction(ctx, s.orgID, txnID, []taxes.Line{line})
				if err != nil {
					return err
				}
				for _, l := range out {
					fmt.Fprintf(s.out, "Tax %d: %s %s%% = %s on transaction %d\n",
						l.ID, l.TaxType, l.Percentage, fmtAmount(l.Amount), l.TransactionID)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&typeFlag, "type", "", "PAIS, PERCEPCION_RG_5371, PERCEPCION_RG_4815, IVA, IIBB or OTROS (required)")
	cmd.Flags().StringVar(&pctFlag, "percentage", "", "rate in percent (required)")
	cmd.Flags().StringVar(&amountFlag, "amount", "", "tax amount (default: percentage of the transaction)")
	cmd.Flags().StringVar(&description, "description", "", "description")
	requireFlag(cmd, "type", "percentage")
	return cmd
}

func newTaxListCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list <txn-id>",
		Short: "Show the taxes on a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			txnID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return run(cmd, flags, func(ctx context.Context, s *session) error {
				lines, err := s.taxes().ByTransaction(ctx, s.orgID, txnID)
				if err != nil {
					return err
				}
				total := decimal.Zero
				t := newTable(s.out, "ID", "TYPE", "PERCENT", "AMOUNT", "DESCRIPTION")
				for _, l := range lines {
					total = total.Add(l.Amount)
					t.row(fmtID(l.ID), string(l.TaxType), l.Percentage.String(), fmtAmount(l.Amount), l.Description)
				}
				t.row("", "TOTAL", "", fmtAmount(total), "")
				return t.flush()
			})
		},
	}
}
