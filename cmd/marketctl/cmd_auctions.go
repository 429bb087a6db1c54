package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var closeAuctionsCmd = &cobra.Command{
	Use:   "close-auctions",
	Short: "Run one auction closer pass",
	Long: `Activates scheduled auctions whose start has passed and settles the
ones whose end has passed, creating pending orders for winners. This is the
pass the API's background worker runs on every tick.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
			sum, err := rt.auctions.CloseExpired(ctx)
			if sum != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "activated=%d settled=%d sold=%d\n", sum.Activated, sum.Settled, sum.Sold)
			}
			return err
		})
	},
}
