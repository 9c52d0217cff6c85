package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/finanza/internal/buildinfo"
	"github.com/cleared-dev/finanza/internal/config"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:     "finanza",
		Short:   "Personal and household finance ledger",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", config.FileName, "path to "+config.FileName)
	pf.StringVar(&flags.logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")
	pf.StringVar(&flags.logFormat, "log-format", "", "override logging.format (console, json)")

	rootCmd.AddCommand(
		newInitCommand(flags),
		newAccountCommand(flags),
		newCategoryCommand(flags),
		newRuleCommand(flags),
		newCardCommand(flags),
		newTxnCommand(flags),
		newTransferCommand(flags),
		newInstallmentCommand(flags),
		newBudgetCommand(flags),
		newReportCommand(flags),
		newRateCommand(flags),
		newTaxCommand(flags),
		newImportCommand(flags),
		newEventsCommand(flags),
	)

	return rootCmd
}

func requireFlag(cmd *cobra.Command, names ...string) {
	for _, n := range names {
		if err := cmd.MarkFlagRequired(n); err != nil {
			panic(fmt.Sprintf("marking flag %q required: %v", n, err))
		}
	}
}
