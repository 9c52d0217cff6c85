package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/finanza/internal/accounts"
	"github.com/cleared-dev/finanza/internal/categories"
	"github.com/cleared-dev/finanza/internal/config"
	"github.com/cleared-dev/finanza/internal/gitops"
	"github.com/cleared-dev/finanza/internal/logger"
	"github.com/cleared-dev/finanza/internal/storage"
)

const gitignore = "finanza.db\nfinanza.db-*\n.env\nimport/\nlogs/\n"

func newInitCommand(flags *globalFlags) *cobra.Command {
	var (
		name   string
		noSeed bool
		useGit bool
	)

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new finanza project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			log, err := logger.New(orDefault(flags.logLevel, "info"), orDefault(flags.logFormat, "console"), os.Stderr)
			if err != nil {
				return err
			}
			ctx := logger.WithContext(cmd.Context(), log)
			if err := runInit(ctx, absDir, name, !noSeed, useGit); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized finanza project at %s\n", absDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "organization name (required)")
	requireFlag(cmd, "name")
	cmd.Flags().BoolVar(&noSeed, "no-seed", false, "skip the default accounts and categories")
	cmd.Flags().BoolVar(&useGit, "git", false, "version the project configuration with git")

	return cmd
}

func runInit(ctx context.Context, dir, name string, seed, useGit bool) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking config: %w", err)
	}

	cfg := config.Default(name)
	for _, d := range []string{cfg.Audit.Dir, cfg.Import.Dir, filepath.Join(cfg.Import.Dir, "processed")} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	db, err := storage.Open(ctx, filepath.Join(dir, cfg.Database.Path))
	if err != nil {
		return err
	}
	defer db.Close()

	org, err := db.Queries().CreateOrganization(ctx, name)
	if err != nil {
		return err
	}
	cfg.Organization.ID = org.ID

	if seed {
		if _, err := accounts.NewService(db).Seed(ctx, org.ID, cfg.User.ID); err != nil {
			return err
		}
		if _, err := categories.NewService(db).Seed(ctx, org.ID, cfg.User.ID); err != nil {
			return err
		}
	}

	if err := config.Save(cfgPath, cfg); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	if useGit {
		if err := gitops.Init(dir); err != nil {
			return err
		}
		hash, err := gitops.Commit(dir, "init: "+name, gitops.DefaultAuthor, config.FileName, ".gitignore")
		if err != nil {
			return err
		}
		logger.FromContext(ctx).Info().Str("commit", hash).Msg("project committed")
	}

	logger.FromContext(ctx).Info().Int64("organization_id", org.ID).Str("name", name).Msg("project initialized")
	return nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
