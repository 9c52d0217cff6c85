package commands

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/finanza/internal/importer"
	"github.com/cleared-dev/finanza/internal/logger"
	"github.com/cleared-dev/finanza/internal/model"
)

const formatAuto = "auto"

func newImportCommand(flags *globalFlags) *cobra.Command {
	var (
		format    string
		accountID int64
	)

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import a bank CSV into an account",
		Long: `Import a bank CSV into an account.

Without a file, every CSV waiting in the project's import directory is
imported and then moved to its processed/ subdirectory. With --format auto
the layout is recognized from the header row.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := importer.DefaultRegistry()
			if format != formatAuto {
				if _, err := reg.Lookup(format); err != nil {
					return err
				}
			}
			return run(cmd, flags, func(ctx context.Context, s *session) error {
				if len(args) == 1 {
					return importFile(ctx, s, reg, format, accountID, args[0])
				}
				return importPending(ctx, s, reg, format, accountID)
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", formatAuto, "CSV layout: auto, chase or generic")
	cmd.Flags().Int64Var(&accountID, "account", 0, "account to import into (required)")
	requireFlag(cmd, "account")
	return cmd
}

// pickParser returns the parser named by format, or the one recognizing
// the file's header when format is auto.
func pickParser(reg *importer.Registry, format string, data []byte) (importer.Parser, error) {
	if format != formatAuto {
		return reg.Lookup(format)
	}
	header, err := csv.NewReader(bytes.NewReader(data)).Read()
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %w", model.ErrValidation, err)
	}
	p, ok := reg.Detect(header)
	if !ok {
		return nil, fmt.Errorf("%w: unrecognized CSV layout, pass --format", model.ErrValidation)
	}
	return p, nil
}

func importFile(ctx context.Context, s *session, reg *importer.Registry, format string, accountID int64, path string) error {
	name := filepath.Base(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	parser, err := pickParser(reg, format, data)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	rows, err := parser.Parse(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("parsing %s as %s: %w", name, parser.Format(), err)
	}

	res, err := s.importer().Commit(ctx, s.orgID, s.userID, accountID, rows)
	if err != nil {
		return err
	}

	fmt.Fprintf(s.out, "%s: imported %d of %d rows (batch %s)\n", name, res.Imported, res.Total, res.BatchID)
	for _, e := range res.Errors {
		fmt.Fprintf(s.out, "  %s\n", e)
	}
	return nil
}

func importPending(ctx context.Context, s *session, reg *importer.Registry, format string, accountID int64) error {
	dir := s.cfg.Import.Dir
	files, err := importer.Scan(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintf(s.out, "No CSV files waiting in %s\n", dir)
		return nil
	}

	for _, file := range files {
		if err := importFile(ctx, s, reg, format, accountID, file.Path); err != nil {
			return err
		}
		dst, err := importer.MarkProcessed(dir, file.Name)
		if err != nil {
			return err
		}
		logger.FromContext(ctx).Debug().Str("file", file.Name).Str("moved_to", dst).Msg("import file processed")
	}
	return nil
}
