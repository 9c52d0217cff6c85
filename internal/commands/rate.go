package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/finanza/internal/model"
)

func newRateCommand(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rate",
		Short: "Daily exchange rates",
	}
	cmd.AddCommand(newRateSetCommand(flags), newRateGetCommand(flags), newRateListCommand(flags))
	return cmd
}

func parseRateType(s string) (model.RateType, error) {
	t, ok := model.ParseRateType(s)
	if !ok {
		return "", fmt.Errorf("%w: rate type %q (want OFICIAL, MEP, BLUE or TARJETA)", model.ErrInvalidType, s)
	}
	return t, nil
}

func newRateSetCommand(flags *globalFlags) *cobra.Command {
	var dateFlag, typeFlag, buyFlag, sellFlag string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Record the buy and sell quote for a day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			date, err := parseDay(dateFlag)
			if err != nil {
				return err
			}
			typ, err := parseRateType(typeFlag)
			if err != nil {
				return err
			}
			buy, err := parseAmount(buyFlag)
			if err != nil {
				return err
			}
			sell, err := parseAmount(sellFlag)
			if err != nil {
				return err
			}
			return run(cmd, flags, func(ctx context.Context, s *session) error {
				r, err := s.rates().Upsert(ctx, s.orgID, date, typ, buy, sell)
				if err != nil {
					return err
				}
				fmt.Fprintf(s.out, "%s %s: buy %s sell %s\n", r.RateType, fmtDay(r.Date), r.Buy, r.Sell)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&typeFlag, "type", string(model.RateOficial), "OFICIAL, MEP, BLUE or TARJETA")
	cmd.Flags().StringVar(&buyFlag, "buy", "", "buy quote (required)")
	cmd.Flags().StringVar(&sellFlag, "sell", "", "sell quote (required)")
	requireFlag(cmd, "buy", "sell")
	return cmd
}

func newRateGetCommand(flags *globalFlags) *cobra.Command {
	var dateFlag, typeFlag, convertFlag string

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show the rate in effect on a day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			date, err := parseDay(dateFlag)
			if err != nil {
				return err
			}
			typ, err := parseRateType(typeFlag)
			if err != nil {
				return err
			}
			return run(cmd, flags, func(ctx context.Context, s *session) error {
				svc := s.rates()
				if convertFlag != "" {
					amount, err := parseAmount(convertFlag)
					if err != nil {
						return err
					}
					converted, err := svc.Convert(ctx, s.orgID, amount, date, typ)
					if err != nil {
						return err
					}
					fmt.Fprintf(s.out, "%s at %s %s = %s\n", fmtAmount(amount), typ, fmtDay(date), fmtAmount(converted))
					return nil
				}
				rate, err := svc.RateForDate(ctx, s.orgID, date, typ)
				if err != nil {
					return err
				}
				fmt.Fprintf(s.out, "%s %s: %s\n", typ, fmtDay(date), rate)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&typeFlag, "type", string(model.RateOficial), "OFICIAL, MEP, BLUE or TARJETA")
	cmd.Flags().StringVar(&convertFlag, "convert", "", "convert this amount at the rate")
	return cmd
}

func newRateListCommand(flags *globalFlags) *cobra.Command {
	var typeFlag, fromFlag, toFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded rates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, flags, func(ctx context.Context, s *session) error {
				var (
					list []model.ExchangeRate
					err  error
				)
				if typeFlag == "" {
					list, err = s.rates().All(ctx, s.orgID)
				} else {
					typ, perr := parseRateType(typeFlag)
					if perr != nil {
						return perr
					}
					from, perr := parseDay(fromFlag)
					if perr != nil {
						return perr
					}
					to, perr := parseDay(toFlag)
					if perr != nil {
						return perr
					}
					if fromFlag == "" {
						from = to.AddDate(0, -1, 0)
					}
					list, err = s.rates().ByRange(ctx, s.orgID, typ, from, to)
				}
				if err != nil {
					return err
				}
				t := newTable(s.out, "ID", "DATE", "TYPE", "BUY", "SELL", "AVERAGE")
				for _, r := range list {
					t.row(fmtID(r.ID), fmtDay(r.Date), string(r.RateType), r.Buy.String(), r.Sell.String(), r.Average().String())
				}
				return t.flush()
			})
		},
	}

	cmd.Flags().StringVar(&typeFlag, "type", "", "only this rate type (enables --from/--to)")
	cmd.Flags().StringVar(&fromFlag, "from", "", "first date (default one month before --to)")
	cmd.Flags().StringVar(&toFlag, "to", "", "last date (default today)")
	return cmd
}
