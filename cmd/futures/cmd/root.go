package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "futures",
	Short: "A futures backtesting and trade accounting engine",
	Long: `Futures is a backtesting engine for futures contracts written in Go.

It provides tools for:
  - Replaying historical bar data through trading strategies
  - Position accounting with weighted average cost basis
  - Long, short, partial close and reversal handling
  - An append-only trade ledger with full fill history
  - Journaling fills and equity curves to CSV or SQLite

Complete documentation is available at https://github.com/rustyeddy/futures`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

var logLevel string

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
}
