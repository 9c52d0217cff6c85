package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/finanza/internal/auditlog"
	"github.com/cleared-dev/finanza/internal/events"
)

func newEventsCommand(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Ledger change notifications",
	}
	cmd.AddCommand(newEventsLogCommand(flags), newEventsTailCommand(flags))
	return cmd
}

func newEventsLogCommand(flags *globalFlags) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Print the audit log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, flags, func(_ context.Context, s *session) error {
				entries, err := auditlog.Read(s.cfg.Audit.Dir)
				if err != nil {
					return err
				}
				if limit > 0 && len(entries) > limit {
					entries = entries[len(entries)-limit:]
				}
				t := newTable(s.out, "TIME", "TYPE", "ENTITY", "AMOUNT", "DETAILS")
				for _, e := range entries {
					t.row(e.Timestamp.Format("2006-01-02 15:04:05"), e.Type, fmtID(e.EntityID), fmtAmount(e.Amount), e.Details)
				}
				return t.flush()
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show only the last n entries")
	return cmd
}

func newEventsTailCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tail",
		Short: "Print events from the AMQP queue as they arrive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, flags, func(ctx context.Context, s *session) error {
				if s.amqp == nil {
					return errors.New("amqp is not enabled in the project config")
				}
				err := s.amqp.Consume(ctx, func(_ context.Context, e events.Event) error {
					_, err := fmt.Fprintf(s.out, "%s %s org=%d entity=%d amount=%s\n",
						e.OccurredAt.Format("15:04:05"), e.Type, e.OrgID, e.EntityID, fmtAmount(e.Amount))
					return err
				})
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			})
		},
	}
}
