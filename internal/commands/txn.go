package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/cleared-dev/finanza/internal/ledger"
	"github.com/cleared-dev/finanza/internal/model"
	"github.com/cleared-dev/finanza/internal/storage"
)

func newTxnCommand(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "txn",
		Aliases: []string{"transaction"},
		Short:   "Record and browse income and expenses",
	}
	cmd.AddCommand(
		newTxnAddCommand(flags),
		newTxnUpdateCommand(flags),
		newTxnDeleteCommand(flags),
		newTxnListCommand(flags),
		newTxnExportCommand(flags),
	)
	return cmd
}

// txnFlags are the editable fields of a transaction as command-line flags.
type txnFlags struct {
	typ          string
	amount       string
	date         string
	description  string
	notes        string
	accountID    int64
	categoryID   int64
	cardID       int64
	installments int
	tags         []string
	attachments  []string
}

func (f *txnFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.typ, "type", string(model.TypeExpense), "INCOME or EXPENSE")
	fs.StringVar(&f.amount, "amount", "", "amount, always positive")
	fs.StringVar(&f.date, "date", "", "date YYYY-MM-DD (default today)")
	fs.StringVar(&f.description, "description", "", "description, matched by rules")
	fs.StringVar(&f.notes, "notes", "", "free-form notes")
	fs.Int64Var(&f.accountID, "account", 0, "account id")
	fs.Int64Var(&f.categoryID, "category", 0, "category id (default: chosen by rules)")
	fs.Int64Var(&f.cardID, "card", 0, "credit card id for a financed purchase")
	fs.IntVar(&f.installments, "installments", 0, "number of installments (with --card, default 1)")
	fs.StringSliceVar(&f.tags, "tag", nil, "tag, repeatable")
	fs.StringSliceVar(&f.attachments, "attachment", nil, "attachment reference, repeatable")
}

// apply copies every flag that was set on the command line onto req.
func (f *txnFlags) apply(fs *pflag.FlagSet, req *ledger.TransactionRequest) error {
	if fs.Changed("type") || req.Type == "" {
		req.Type = model.TransactionType(strings.ToUpper(f.typ))
	}
	if fs.Changed("amount") || req.Amount.IsZero() {
		a, err := parseAmount(f.amount)
		if err != nil {
			return err
		}
		req.Amount = a
	}
	if fs.Changed("date") || req.Date.IsZero() {
		d, err := parseDay(f.date)
		if err != nil {
			return err
		}
		req.Date = d
	}
	if fs.Changed("description") {
		req.Description = f.description
	}
	if fs.Changed("notes") {
		req.Notes = f.notes
	}
	if fs.Changed("account") {
		req.AccountID = f.accountID
	}
	if fs.Changed("category") {
		req.CategoryID = optionalID(f.categoryID)
	}
	if fs.Changed("card") {
		req.CreditCardID = optionalID(f.cardID)
	}
	if fs.Changed("installments") {
		req.Installments = f.installments
	}
	if fs.Changed("tag") {
		req.Tags = f.tags
	}
	if fs.Changed("attachment") {
		req.Attachments = f.attachments
	}
	return nil
}

func newTxnAddCommand(flags *globalFlags) *cobra.Command {
	f := &txnFlags{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an income or expense",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var req ledger.TransactionRequest
			if err := f.apply(cmd.Flags(), &req); err != nil {
				return err
			}
			return run(cmd, flags, func(ctx context.Context, s *session) error {
				t, err := s.ledger().CreateTransaction(ctx, s.orgID, s.userID, req)
				if err != nil {
					return err
				}
				fmt.Fprintf(s.out, "Recorded %s %d: %s %s on %s", t.Type, t.ID, fmtAmount(t.Amount), t.AccountName, fmtDay(t.Date))
				if t.CategoryName != "" {
					fmt.Fprintf(s.out, " [%s]", t.CategoryName)
				}
				fmt.Fprintln(s.out)
				return nil
			})
		},
	}

	f.register(cmd.Flags())
	requireFlag(cmd, "amount", "account")
	return cmd
}

func newTxnUpdateCommand(flags *globalFlags) *cobra.Command {
	f := &txnFlags{}
	var clearCategory bool

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a transaction; unset flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			txnID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return run(cmd, flags, func(ctx context.Context, s *session) error {
				svc := s.ledger()
				old, err := svc.GetTransaction(ctx, s.orgID, txnID)
				if err != nil {
					return err
				}
				req := ledger.TransactionRequest{
					Type:         old.Type,
					Amount:       old.Amount,
					Date:         old.Date,
					Description:  old.Description,
					Notes:        old.Notes,
					AccountID:    old.AccountID,
					CategoryID:   old.CategoryID,
					CreditCardID: old.CreditCardID,
					Installments: old.Installments,
					Tags:         old.Tags,
					Attachments:  old.Attachments,
				}
				if err := f.apply(cmd.Flags(), &req); err != nil {
					return err
				}
				if clearCategory {
					req.CategoryID = nil
				}
				t, err := svc.UpdateTransaction(ctx, s.orgID, txnID, req)
				if err != nil {
					return err
				}
				fmt.Fprintf(s.out, "Updated transaction %d: %s %s\n", t.ID, t.Type, fmtAmount(t.Amount))
				return nil
			})
		},
	}

	f.register(cmd.Flags())
	cmd.Flags().BoolVar(&clearCategory, "clear-category", false, "remove the category")
	return cmd
}

func newTxnDeleteCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction and undo its balance change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			txnID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return run(cmd, flags, func(ctx context.Context, s *session) error {
				if err := s.ledger().DeleteTransaction(ctx, s.orgID, txnID); err != nil {
					return err
				}
				fmt.Fprintf(s.out, "Deleted transaction %d\n", txnID)
				return nil
			})
		},
	}
}

// filterFlags narrow a transaction listing.
type filterFlags struct {
	from, to   string
	categoryID int64
	typ        string
	limit      int
	offset     int
}

func (f *filterFlags) register(fs *pflag.FlagSet, paged bool) {
	fs.StringVar(&f.from, "from", "", "first date, YYYY-MM-DD")
	fs.StringVar(&f.to, "to", "", "last date, YYYY-MM-DD")
	fs.Int64Var(&f.categoryID, "category", 0, "only this category")
	fs.StringVar(&f.typ, "type", "", "only INCOME, EXPENSE or TRANSFER")
	if paged {
		fs.IntVar(&f.limit, "limit", 50, "page size")
		fs.IntVar(&f.offset, "offset", 0, "rows to skip")
	}
}

func (f *filterFlags) filter() (storage.TransactionFilter, error) {
	out := storage.TransactionFilter{
		CategoryID: optionalID(f.categoryID),
		Type:       model.TransactionType(strings.ToUpper(f.typ)),
		Limit:      f.limit,
		Offset:     f.offset,
	}
	if f.from != "" {
		d, err := parseDay(f.from)
		if err != nil {
			return out, err
		}
		out.From = &d
	}
	if f.to != "" {
		d, err := parseDay(f.to)
		if err != nil {
			return out, err
		}
		out.To = &d
	}
	return out, nil
}

func newTxnListCommand(flags *globalFlags) *cobra.Command {
	f := &filterFlags{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := f.filter()
			if err != nil {
				return err
			}
			return run(cmd, flags, func(ctx context.Context, s *session) error {
				page, err := s.ledger().ListTransactions(ctx, s.orgID, filter)
				if err != nil {
					return err
				}
				t := newTable(s.out, "ID", "DATE", "TYPE", "AMOUNT", "ACCOUNT", "CATEGORY", "DESCRIPTION")
				for _, txn := range page.Items {
					account := txn.AccountName
					if txn.Type == model.TypeTransfer {
						account += " -> " + txn.DestinationAccountName
					}
					t.row(fmtID(txn.ID), fmtDay(txn.Date), string(txn.Type), fmtAmount(txn.Amount), account,
						txn.CategoryName, txn.Description)
				}
				if err := t.flush(); err != nil {
					return err
				}
				fmt.Fprintf(s.out, "%d of %d\n", len(page.Items), page.Total)
				return nil
			})
		},
	}

	f.register(cmd.Flags(), true)
	return cmd
}

func newTxnExportCommand(flags *globalFlags) *cobra.Command {
	f := &filterFlags{}
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write transactions as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := f.filter()
			if err != nil {
				return err
			}
			return run(cmd, flags, func(ctx context.Context, s *session) error {
				page, err := s.ledger().ListTransactions(ctx, s.orgID, filter)
				if err != nil {
					return err
				}
				if output == "" || output == "-" {
					return ledger.ExportCSV(s.out, page.Items)
				}
				file, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("creating %s: %w", output, err)
				}
				defer file.Close()
				if err := ledger.ExportCSV(file, page.Items); err != nil {
					return err
				}
				fmt.Fprintf(s.out, "Exported %d transactions to %s\n", len(page.Items), output)
				return nil
			})
		},
	}

	f.register(cmd.Flags(), false)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func newTransferCommand(flags *globalFlags) *cobra.Command {
	var (
		req        ledger.TransferRequest
		amountFlag string
		dateFlag   string
	)

	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Move money between two accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if req.Amount, err = parseAmount(amountFlag); err != nil {
				return err
			}
			if req.Date, err = parseDay(dateFlag); err != nil {
				return err
			}
			return run(cmd, flags, func(ctx context.Context, s *session) error {
				t, err := s.ledger().CreateTransfer(ctx, s.orgID, s.userID, req)
				if err != nil {
					return err
				}
				fmt.Fprintf(s.out, "Transferred %s from %s to %s (transaction %d)\n",
					fmtAmount(t.Amount), t.AccountName, t.DestinationAccountName, t.ID)
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&req.FromAccountID, "from", 0, "source account id (required)")
	cmd.Flags().Int64Var(&req.ToAccountID, "to", 0, "destination account id (required)")
	cmd.Flags().StringVar(&amountFlag, "amount", "", "amount (required)")
	cmd.Flags().StringVar(&dateFlag, "date", "", "date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&req.Description, "description", "", "description (default \"Transfer from X to Y\")")
	cmd.Flags().StringVar(&req.Notes, "notes", "", "free-form notes")
	requireFlag(cmd, "from", "to", "amount")
	return cmd
}
