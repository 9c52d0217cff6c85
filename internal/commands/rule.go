package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/finanza/internal/model"
	"github.com/cleared-dev/finanza/internal/rules"
)

func newRuleCommand(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rule",
		Short: "Manage categorization rules",
	}
	cmd.AddCommand(
		newRuleCreateCommand(flags),
		newRuleListCommand(flags),
		newRuleDeleteCommand(flags),
		newRuleTestCommand(flags),
	)
	return cmd
}

func newRuleCreateCommand(flags *globalFlags) *cobra.Command {
	var p rules.CreateParams
	var kind string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a rule",
		Long: "Create a rule that assigns a category. Kinds: CONTAINS, STARTS_WITH, ENDS_WITH,\n" +
			"EXACT_MATCH, REGEX and AMOUNT_RANGE (pattern \"min-max\"). Higher priorities are tried first.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p.Kind = model.RuleKind(strings.ToUpper(kind))
			return run(cmd, flags, func(ctx context.Context, s *session) error {
				r, err := s.rules().Create(ctx, s.orgID, s.userID, p)
				if err != nil {
					return err
				}
				fmt.Fprintf(s.out, "Created rule %d %s -> %s\n", r.ID, r.Name, r.CategoryName)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&p.Name, "name", "", "rule name (required)")
	cmd.Flags().StringVar(&kind, "kind", string(model.RuleContains), "match kind")
	cmd.Flags().StringVar(&p.Pattern, "pattern", "", "pattern to match (required)")
	cmd.Flags().Int64Var(&p.CategoryID, "category", 0, "category assigned on match (required)")
	cmd.Flags().IntVar(&p.Priority, "priority", 0, "evaluation priority")
	cmd.Flags().StringVar(&p.Description, "description", "", "free-form description")
	requireFlag(cmd, "name", "pattern", "category")
	return cmd
}

func newRuleListCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List rules in evaluation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, flags, func(ctx context.Context, s *session) error {
				list, err := s.rules().List(ctx, s.orgID)
				if err != nil {
					return err
				}
				t := newTable(s.out, "ID", "PRIORITY", "NAME", "KIND", "PATTERN", "CATEGORY", "ACTIVE")
				for _, r := range list {
					t.row(fmtID(r.ID), strconv.Itoa(r.Priority), r.Name, string(r.Kind), r.Pattern, r.CategoryName, yesNo(r.Active))
				}
				return t.flush()
			})
		},
	}
}

func newRuleDeleteCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ruleID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return run(cmd, flags, func(ctx context.Context, s *session) error {
				if err := s.rules().Delete(ctx, s.orgID, ruleID); err != nil {
					return err
				}
				fmt.Fprintf(s.out, "Deleted rule %d\n", ruleID)
				return nil
			})
		},
	}
}

func newRuleTestCommand(flags *globalFlags) *cobra.Command {
	var amountFlag string

	cmd := &cobra.Command{
		Use:   "test <description>",
		Short: "Show which rule would categorize a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amt, err := parseAmount(amountFlag)
			if err != nil {
				return err
			}
			return run(cmd, flags, func(ctx context.Context, s *session) error {
				r, ok, err := s.rules().Test(ctx, s.orgID, args[0], amt)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(s.out, "No rule matches")
					return nil
				}
				fmt.Fprintf(s.out, "Rule %d %s matches: category %d %s\n", r.ID, r.Name, r.CategoryID, r.CategoryName)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&amountFlag, "amount", "0", "transaction amount")
	return cmd
}
