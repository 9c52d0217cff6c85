package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/finanza/internal/categories"
	"github.com/cleared-dev/finanza/internal/model"
)

func newCategoryCommand(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Manage categories",
	}
	cmd.AddCommand(
		newCategoryCreateCommand(flags),
		newCategoryListCommand(flags),
		newCategoryDeleteCommand(flags),
	)
	return cmd
}

func newCategoryCreateCommand(flags *globalFlags) *cobra.Command {
	var p categories.CreateParams
	var typ string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p.Type = model.CategoryType(strings.ToUpper(typ))
			return run(cmd, flags, func(ctx context.Context, s *session) error {
				c, err := s.categories().Create(ctx, s.orgID, s.userID, p)
				if err != nil {
					return err
				}
				fmt.Fprintf(s.out, "Created category %d %s (%s)\n", c.ID, c.Name, c.Type)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&p.Name, "name", "", "category name (required)")
	cmd.Flags().StringVar(&typ, "type", string(model.CategoryExpense), "INCOME or EXPENSE")
	cmd.Flags().StringVar(&p.Description, "description", "", "free-form description")
	cmd.Flags().StringVar(&p.Icon, "icon", "", "icon name")
	cmd.Flags().StringVar(&p.Color, "color", "", "display color")
	requireFlag(cmd, "name")
	return cmd
}

func newCategoryListCommand(flags *globalFlags) *cobra.Command {
	var typ string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, flags, func(ctx context.Context, s *session) error {
				var (
					cats []model.Category
					err  error
				)
				if typ == "" {
					cats, err = s.categories().List(ctx, s.orgID)
				} else {
					cats, err = s.categories().ListByType(ctx, s.orgID, model.CategoryType(strings.ToUpper(typ)))
				}
				if err != nil {
					return err
				}
				t := newTable(s.out, "ID", "NAME", "TYPE")
				for _, c := range cats {
					t.row(fmtID(c.ID), c.Name, string(c.Type))
				}
				return t.flush()
			})
		},
	}

	cmd.Flags().StringVar(&typ, "type", "", "only INCOME or EXPENSE categories")
	return cmd
}

func newCategoryDeleteCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Deactivate a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			categoryID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return run(cmd, flags, func(ctx context.Context, s *session) error {
				if err := s.categories().Delete(ctx, s.orgID, categoryID); err != nil {
					return err
				}
				fmt.Fprintf(s.out, "Deleted category %d\n", categoryID)
				return nil
			})
		},
	}
}
