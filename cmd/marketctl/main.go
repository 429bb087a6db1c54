// Command marketctl runs marketplace maintenance tasks against the same
// database and object store as the API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"
)

var timeout time.Duration

var rootCmd = &cobra.Command{
	Use:   "marketctl",
	Short: "Maintenance commands for the art marketplace",
	Long: `marketctl shares configuration with the API server (environment
variables, optionally from .env) and performs one-off administrative work:
schema migration, auction settlement, exchange rates and social posts.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Operation timeout")

	ratesCmd.AddCommand(ratesListCmd)
	ratesCmd.AddCommand(ratesSetCmd)
	ratesCmd.AddCommand(ratesDeleteCmd)
	socialCmd.AddCommand(socialAnnounceCmd)
	socialCmd.AddCommand(socialHistoryCmd)

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(closeAuctionsCmd)
	rootCmd.AddCommand(ratesCmd)
	rootCmd.AddCommand(socialCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
