package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Manage exchange rates (units per one unit of the base currency)",
}

var ratesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print all exchange rates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
			rates, err := rt.catalog.ListRates(ctx)
			if err != nil {
				return err
			}
			for _, r := range rates {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%g\n", r.Currency, r.Rate)
			}
			return nil
		})
	},
}

var ratesSetCmd = &cobra.Command{
	Use:   "set [currency] [rate]",
	Short: "Create or update a rate",
	Long: `Stores the number of units of currency bought by one unit of the base
currency.

Example:
  marketctl rates set USD 1.0875`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rate, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid rate %q: %w", args[1], err)
		}
		return withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
			r, err := rt.catalog.UpsertRate(ctx, cliActor, args[0], rate)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%g\n", r.Currency, r.Rate)
			return nil
		})
	},
}

var ratesDeleteCmd = &cobra.Command{
	Use:   "delete [currency]",
	Short: "Delete a rate",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
			return rt.catalog.DeleteRate(ctx, cliActor, args[0])
		})
	},
}
